package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
)

type ExternalSaleRequest struct {
	Price int64
	Notes string
	// Date defaults to now.
	Date *time.Time
}

type ListFillingRequest struct {
	pagination.Pagination
	FillingType string
	CustomerID  *snowflake.ID
	DriverID    *snowflake.ID
	IsDebt      *bool
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListFillingResponse struct {
	pagination.PageInfo
	Fillings []Filling `json:"fillings"`
}

type Service interface {
	// RecordExternalSale writes a cash sale straight to the ledger; no request or debt is created.
	RecordExternalSale(ctx context.Context, req ExternalSaleRequest) (Filling, error)
	// Delete snapshots the filling into the deletion archive, then removes it.
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Filling, error)
	List(ctx context.Context, req ListFillingRequest) (ListFillingResponse, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrNotFound         = errors.New("not_found")
)
