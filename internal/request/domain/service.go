package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	debtdomain "github.com/smallbiznis/aquaflow/internal/debt/domain"
	fillingdomain "github.com/smallbiznis/aquaflow/internal/filling/domain"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
)

type CreateRequest struct {
	CustomerID  snowflake.ID
	RequestType Type
	DriverID    *snowflake.ID
	Notes       string
	// CreatedAt defaults to now.
	CreatedAt *time.Time
}

type ListRequestsRequest struct {
	pagination.Pagination
	Status      string
	RequestType string
	CustomerID  *snowflake.ID
	DriverID    *snowflake.ID
	AreaID      *snowflake.ID
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListRequestsResponse struct {
	pagination.PageInfo
	Requests []Request `json:"requests"`
}

type FinishResult struct {
	Filling fillingdomain.Filling `json:"filling"`
	Debt    *debtdomain.Debt      `json:"debt,omitempty"`
}

type Service interface {
	// Create queues a pending request. Guarded types refuse a second pending request per customer.
	Create(ctx context.Context, req CreateRequest) (Request, error)
	// CreateDirect records a new filling or tank withdrawal that is already delivered.
	CreateDirect(ctx context.Context, req CreateRequest) (Request, error)
	MarkDelivered(ctx context.Context, id snowflake.ID, isDebt bool) (Request, error)
	// Finish archives a delivered request into the fillings ledger, opening a debt
	// when isDebt is set and the amount is positive. All steps share one transaction.
	Finish(ctx context.Context, id snowflake.ID, isDebt bool) (FinishResult, error)
	UpdateDriver(ctx context.Context, id snowflake.ID, driverID *snowflake.ID) (Request, error)
	UpdateDate(ctx context.Context, id snowflake.ID, createdAt time.Time) (Request, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Request, error)
	List(ctx context.Context, req ListRequestsRequest) (ListRequestsResponse, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidDriver        = errors.New("invalid_driver")
	ErrInvalidPageToken     = errors.New("invalid_page_token")
	ErrInvalidTimeRange     = errors.New("invalid_time_range")
	ErrInvalidTransition    = errors.New("invalid_transition")
	ErrPendingRequestExists = errors.New("pending_request_exists")
	ErrRequestInProgress    = errors.New("request_in_progress")
	ErrNotFound             = errors.New("not_found")
)
