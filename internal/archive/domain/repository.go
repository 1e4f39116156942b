package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Source      Source
	CustomerID  *snowflake.ID
	Search      string
	DeletedFrom *time.Time
	DeletedTo   *time.Time
	Cursor      *Cursor
	Limit       int
}

type Cursor struct {
	ID        snowflake.ID
	DeletedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *DeletedRecord) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*DeletedRecord, error)
}
