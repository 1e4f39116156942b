package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateTankTypeRequest struct {
	Name           string
	CapacityLiters int
	Price          int64
	IsActive       *bool
}

type UpdateTankTypeRequest struct {
	Name           *string
	CapacityLiters *int
	Price          *int64
	IsActive       *bool
}

type Service interface {
	Create(ctx context.Context, req CreateTankTypeRequest) (TankType, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateTankTypeRequest) (TankType, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (TankType, error)
	List(ctx context.Context) ([]TankType, error)
	ListActive(ctx context.Context) ([]TankType, error)
	CustomerCounts(ctx context.Context) ([]CustomerCount, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidCapacity = errors.New("invalid_capacity")
	ErrNotFound        = errors.New("not_found")
	ErrInUse           = errors.New("tank_type_in_use")
)
