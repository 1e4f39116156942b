package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/filling/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func selectFillings() sq.SelectBuilder {
	return sq.Select(
		"f.id", "f.customer_id", "f.driver_id", "COALESCE(d.name, '') AS driver_name",
		"f.filling_type", "f.amount", "f.is_debt", "f.customer_name", "f.tank_no",
		"f.notes", "f.created_by", "f.created_at", "f.finished_at",
	).
		From("fillings f").
		LeftJoin("drivers d ON d.id = f.driver_id")
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, filling *domain.Filling) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fillings (id, customer_id, driver_id, filling_type, amount, is_debt, customer_name, tank_no, notes, created_by, created_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		filling.ID,
		filling.CustomerID,
		filling.DriverID,
		filling.FillingType,
		filling.Amount,
		filling.IsDebt,
		filling.CustomerName,
		filling.TankNo,
		filling.Notes,
		filling.CreatedBy,
		filling.CreatedAt,
		filling.FinishedAt,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM fillings WHERE id = ?`, id).Error
}

func (r *repo) DetachDebts(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`UPDATE debts SET filling_id = NULL WHERE filling_id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Filling, error) {
	stmt, args, err := selectFillings().Where(sq.Eq{"f.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var filling domain.Filling
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&filling).Error; err != nil {
		return nil, err
	}
	if filling.ID == 0 {
		return nil, nil
	}
	return &filling, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Filling, error) {
	query := selectFillings()
	if filter.FillingType != "" {
		query = query.Where(sq.Eq{"f.filling_type": filter.FillingType})
	}
	if filter.CustomerID != nil {
		query = query.Where(sq.Eq{"f.customer_id": *filter.CustomerID})
	}
	if filter.DriverID != nil {
		query = query.Where(sq.Eq{"f.driver_id": *filter.DriverID})
	}
	if filter.IsDebt != nil {
		query = query.Where(sq.Eq{"f.is_debt": *filter.IsDebt})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where(sq.Or{
			sq.Like{"f.customer_name": like},
			sq.Like{"f.tank_no": like},
			sq.Like{"f.notes": like},
		})
	}
	if filter.CreatedFrom != nil {
		query = query.Where(sq.GtOrEq{"f.created_at": filter.CreatedFrom.UTC()})
	}
	if filter.CreatedTo != nil {
		query = query.Where(sq.LtOrEq{"f.created_at": filter.CreatedTo.UTC()})
	}
	if filter.Cursor != nil {
		query = query.Where(sq.Or{
			sq.Lt{"f.created_at": filter.Cursor.CreatedAt},
			sq.And{sq.Eq{"f.created_at": filter.Cursor.CreatedAt}, sq.Lt{"f.id": filter.Cursor.ID}},
		})
	}
	query = query.OrderBy("f.created_at DESC", "f.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit + 1))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var fillings []*domain.Filling
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&fillings).Error; err != nil {
		return nil, err
	}
	return fillings, nil
}
