package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateAreaRequest struct {
	Name     string
	IsActive *bool
	Notes    string
}

type UpdateAreaRequest struct {
	Name     *string
	IsActive *bool
	Notes    *string
}

type Service interface {
	Create(ctx context.Context, req CreateAreaRequest) (Area, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateAreaRequest) (Area, error)
	// Delete refuses while customers still reference the area.
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Area, error)
	List(ctx context.Context) ([]Area, error)
	ListActive(ctx context.Context) ([]Area, error)
	CustomerCounts(ctx context.Context) ([]CustomerCount, error)
}

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("not_found")
	ErrInUse       = errors.New("area_in_use")
)
