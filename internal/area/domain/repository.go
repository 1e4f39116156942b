package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, area *Area) error
	Update(ctx context.Context, db *gorm.DB, area *Area) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Area, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*Area, error)
	CountCustomers(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	CustomerCounts(ctx context.Context, db *gorm.DB) ([]CustomerCount, error)
}
