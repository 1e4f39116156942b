package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status      Status
	RequestType Type
	CustomerID  *snowflake.ID
	DriverID    *snowflake.ID
	AreaID      *snowflake.ID
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
	Insert(ctx context.Context, db *gorm.DB, req *Request) error
	// FindByID loads the request with its customer, driver and tank-type price.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Request, error)
	// MarkDelivered moves a pending request; false means it was not pending.
	MarkDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, isDebt bool, at time.Time) (bool, error)
	UpdateDriver(ctx context.Context, db *gorm.DB, id snowflake.ID, driverID *snowflake.ID, at time.Time) error
	UpdateCreatedAt(ctx context.Context, db *gorm.DB, id snowflake.ID, createdAt, at time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// DeleteDelivered removes a delivered request; false means it was gone or not delivered.
	DeleteDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	CountPending(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error)
	CustomerExists(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (bool, error)
	// DriverRole returns the staff role, or "" when the driver does not exist.
	DriverRole(ctx context.Context, db *gorm.DB, driverID snowflake.ID) (string, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Request, error)
}
