package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/tanktype/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tankType *domain.TankType) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tank_types (id, name, capacity_liters, price, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tankType.ID,
		tankType.Name,
		tankType.CapacityLiters,
		tankType.Price,
		tankType.IsActive,
		tankType.CreatedAt,
		tankType.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tankType *domain.TankType) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tank_types
		 SET name = ?, capacity_liters = ?, price = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		tankType.Name,
		tankType.CapacityLiters,
		tankType.Price,
		tankType.IsActive,
		tankType.UpdatedAt,
		tankType.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM tank_types WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TankType, error) {
	var tankType domain.TankType
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, capacity_liters, price, is_active, created_at, updated_at
		 FROM tank_types WHERE id = ?`,
		id,
	).Scan(&tankType).Error
	if err != nil {
		return nil, err
	}
	if tankType.ID == 0 {
		return nil, nil
	}
	return &tankType, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*domain.TankType, error) {
	var tankTypes []*domain.TankType
	stmt := db.WithContext(ctx).Model(&domain.TankType{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if err := stmt.Order("price asc, name asc").Find(&tankTypes).Error; err != nil {
		return nil, err
	}
	return tankTypes, nil
}

func (r *repo) CountCustomers(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM customers WHERE tank_type_id = ?`, id).Scan(&count).Error
	return count, err
}

func (r *repo) CustomerCounts(ctx context.Context, db *gorm.DB) ([]domain.CustomerCount, error) {
	var counts []domain.CustomerCount
	err := db.WithContext(ctx).Raw(
		`SELECT t.id AS tank_type_id, t.name AS name, COUNT(c.id) AS count
		 FROM tank_types t
		 LEFT JOIN customers c ON c.tank_type_id = t.id
		 GROUP BY t.id, t.name
		 ORDER BY t.name ASC`,
	).Scan(&counts).Error
	return counts, err
}
