package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, op *Operator) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Operator, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*Operator, error)
	List(ctx context.Context, db *gorm.DB) ([]*Operator, error)
}
