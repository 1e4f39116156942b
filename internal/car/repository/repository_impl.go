package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/car/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectCars = `SELECT c.id, c.driver_id, COALESCE(d.name, '') AS driver_name, c.name, c.color, c.note, c.photos, c.created_at, c.updated_at
	FROM cars c
	LEFT JOIN drivers d ON d.id = c.driver_id`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, car *domain.Car) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO cars (id, driver_id, name, color, note, photos, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		car.ID,
		car.DriverID,
		car.Name,
		car.Color,
		car.Note,
		photos(car),
		car.CreatedAt,
		car.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, car *domain.Car) error {
	return db.WithContext(ctx).Exec(
		`UPDATE cars SET driver_id = ?, name = ?, color = ?, note = ?, photos = ?, updated_at = ? WHERE id = ?`,
		car.DriverID,
		car.Name,
		car.Color,
		car.Note,
		photos(car),
		car.UpdatedAt,
		car.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM cars WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Car, error) {
	var car domain.Car
	if err := db.WithContext(ctx).Raw(selectCars+` WHERE c.id = ?`, id).Scan(&car).Error; err != nil {
		return nil, err
	}
	if car.ID == 0 {
		return nil, nil
	}
	return &car, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Car, error) {
	var cars []*domain.Car
	if err := db.WithContext(ctx).Raw(selectCars + ` ORDER BY c.name ASC, c.id ASC`).Scan(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *repo) DriverExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM drivers WHERE id = ?`, id).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func photos(car *domain.Car) any {
	if car.Photos == nil {
		return "[]"
	}
	return car.Photos
}
