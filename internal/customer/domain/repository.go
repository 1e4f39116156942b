package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search      string
	AreaID      *snowflake.ID
	DriverID    *snowflake.ID
	TankTypeID  *snowflake.ID
	LocatedOnly bool
	Cursor      *Cursor
	Limit       int
}

type Cursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	UpdateLocation(ctx context.Context, db *gorm.DB, id snowflake.ID, lat, lng float64, at time.Time) error
	UpdateDocuments(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Customer, error)
	// CountTankNo counts customers holding tankNo, ignoring excludeID when non-zero.
	CountTankNo(ctx context.Context, db *gorm.DB, tankNo string, excludeID snowflake.ID) (int64, error)
	CountReference(ctx context.Context, db *gorm.DB, table string, id snowflake.ID) (int64, error)
	CountUnpaidDebts(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	ListRequests(ctx context.Context, db *gorm.DB, id snowflake.ID) ([]*OpenRequest, error)
	DeleteRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) error
	// ReleaseHistory detaches settled debts and fillings so the customer row can go.
	ReleaseHistory(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

// OpenRequest is the part of a request row archived when its customer is deleted.
type OpenRequest struct {
	ID          snowflake.ID
	RequestType string
	Status      string
	Notes       string
	CreatedAt   time.Time
}
