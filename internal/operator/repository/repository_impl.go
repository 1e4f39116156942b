package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/operator/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectOperator = `SELECT id, username, display_name, role, password_hash, is_active, created_at, updated_at
	FROM operators`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, op *domain.Operator) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO operators (id, username, display_name, role, password_hash, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ID,
		op.Username,
		op.DisplayName,
		op.Role,
		op.PasswordHash,
		op.IsActive,
		op.CreatedAt,
		op.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Operator, error) {
	var op domain.Operator
	err := db.WithContext(ctx).Raw(selectOperator+` WHERE id = ?`, id).Scan(&op).Error
	if err != nil {
		return nil, err
	}
	if op.ID == 0 {
		return nil, nil
	}
	return &op, nil
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Operator, error) {
	var op domain.Operator
	err := db.WithContext(ctx).Raw(selectOperator+` WHERE username = ?`, username).Scan(&op).Error
	if err != nil {
		return nil, err
	}
	if op.ID == 0 {
		return nil, nil
	}
	return &op, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Operator, error) {
	var ops []*domain.Operator
	err := db.WithContext(ctx).Raw(selectOperator + ` ORDER BY username ASC`).Scan(&ops).Error
	if err != nil {
		return nil, err
	}
	return ops, nil
}
