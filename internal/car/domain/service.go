package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
)

type CreateCarRequest struct {
	DriverID *snowflake.ID
	Name     string
	Color    string
	Note     string
}

// UpdateCarRequest leaves nil fields untouched. ClearDriver unassigns the car.
type UpdateCarRequest struct {
	DriverID    *snowflake.ID
	ClearDriver bool
	Name        *string
	Color       *string
	Note        *string
}

type Photo struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type Service interface {
	Create(ctx context.Context, req CreateCarRequest) (Car, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateCarRequest) (Car, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Car, error)
	List(ctx context.Context) ([]Car, error)
	// AddPhotos uploads every photo before touching the row; a failed upload leaves the car unchanged.
	AddPhotos(ctx context.Context, id snowflake.ID, photos []Photo) (Car, error)
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidFile   = errors.New("invalid_file")
	ErrDriverMissing = errors.New("driver_not_found")
	ErrNotFound      = errors.New("not_found")
)
