package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, car *Car) error
	Update(ctx context.Context, db *gorm.DB, car *Car) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Car, error)
	List(ctx context.Context, db *gorm.DB) ([]*Car, error)
	DriverExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
