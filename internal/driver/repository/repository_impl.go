package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/driver/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, driver *domain.Driver) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO drivers (id, name, phone, role, job_title, is_active, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Role,
		driver.JobTitle,
		driver.IsActive,
		driver.PhotoURL,
		driver.CreatedAt,
		driver.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, driver *domain.Driver) error {
	return db.WithContext(ctx).Exec(
		`UPDATE drivers
		 SET name = ?, phone = ?, role = ?, job_title = ?, is_active = ?, photo_url = ?, updated_at = ?
		 WHERE id = ?`,
		driver.Name,
		driver.Phone,
		driver.Role,
		driver.JobTitle,
		driver.IsActive,
		driver.PhotoURL,
		driver.UpdatedAt,
		driver.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM drivers WHERE id = ?`, id).Error
}

// DetachReferences mirrors ON DELETE SET NULL for engines without FK enforcement.
func (r *repo) DetachReferences(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	for _, table := range []string{"customers", "cars", "requests", "fillings"} {
		if err := db.WithContext(ctx).Exec(`UPDATE `+table+` SET driver_id = NULL WHERE driver_id = ?`, id).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Driver, error) {
	var driver domain.Driver
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, phone, role, job_title, is_active, photo_url, created_at, updated_at
		 FROM drivers WHERE id = ?`,
		id,
	).Scan(&driver).Error
	if err != nil {
		return nil, err
	}
	if driver.ID == 0 {
		return nil, nil
	}
	return &driver, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Driver, error) {
	var drivers []*domain.Driver
	stmt := db.WithContext(ctx).Model(&domain.Driver{})
	if filter.Role != "" {
		stmt = stmt.Where("role = ?", filter.Role)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if err := stmt.Order("name asc, id asc").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}
