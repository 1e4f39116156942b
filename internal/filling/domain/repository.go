package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	FillingType string
	CustomerID  *snowflake.ID
	DriverID    *snowflake.ID
	IsDebt      *bool
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Cursor      *Cursor
	Limit       int
}

type Cursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, filling *Filling) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Filling, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Filling, error)
	// DetachDebts unlinks debts that point at the filling before it is removed.
	DetachDebts(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
