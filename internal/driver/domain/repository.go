package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Role       Role
	ActiveOnly bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, driver *Driver) error
	Update(ctx context.Context, db *gorm.DB, driver *Driver) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DetachReferences(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Driver, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Driver, error)
}
