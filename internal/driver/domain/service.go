package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
)

type CreateDriverRequest struct {
	Name     string
	Phone    string
	Role     Role
	JobTitle string
	IsActive *bool
}

type UpdateDriverRequest struct {
	Name     *string
	Phone    *string
	Role     *Role
	JobTitle *string
	IsActive *bool
}

type ListDriverRequest struct {
	Role       string
	ActiveOnly bool
}

type UploadPhotoRequest struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type Service interface {
	Create(ctx context.Context, req CreateDriverRequest) (Driver, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateDriverRequest) (Driver, error)
	// Delete detaches the staff member from customers, cars and requests first.
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Driver, error)
	List(ctx context.Context, req ListDriverRequest) ([]Driver, error)
	ListActiveDrivers(ctx context.Context) ([]Driver, error)
	UploadPhoto(ctx context.Context, id snowflake.ID, req UploadPhotoRequest) (Driver, error)
}

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidRole = errors.New("invalid_role")
	ErrInvalidFile = errors.New("invalid_file")
	ErrNotFound    = errors.New("not_found")
)
