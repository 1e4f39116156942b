package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/area/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, area *domain.Area) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO areas (id, name, is_active, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		area.ID,
		area.Name,
		area.IsActive,
		area.Notes,
		area.CreatedAt,
		area.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, area *domain.Area) error {
	return db.WithContext(ctx).Exec(
		`UPDATE areas SET name = ?, is_active = ?, notes = ?, updated_at = ? WHERE id = ?`,
		area.Name,
		area.IsActive,
		area.Notes,
		area.UpdatedAt,
		area.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM areas WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Area, error) {
	var area domain.Area
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, is_active, notes, created_at, updated_at FROM areas WHERE id = ?`,
		id,
	).Scan(&area).Error
	if err != nil {
		return nil, err
	}
	if area.ID == 0 {
		return nil, nil
	}
	return &area, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*domain.Area, error) {
	var areas []*domain.Area
	stmt := db.WithContext(ctx).Model(&domain.Area{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if err := stmt.Order("name asc, id asc").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *repo) CountCustomers(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM customers WHERE area_id = ?`, id).Scan(&count).Error
	return count, err
}

func (r *repo) CustomerCounts(ctx context.Context, db *gorm.DB) ([]domain.CustomerCount, error) {
	var counts []domain.CustomerCount
	err := db.WithContext(ctx).Raw(
		`SELECT a.id AS area_id, a.name AS name, COUNT(c.id) AS count
		 FROM areas a
		 LEFT JOIN customers c ON c.area_id = a.id
		 GROUP BY a.id, a.name
		 ORDER BY a.name ASC`,
	).Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
