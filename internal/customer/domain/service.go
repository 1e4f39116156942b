package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	Name       string
	Phone      string
	TankNo     string
	AreaID     *snowflake.ID
	DriverID   *snowflake.ID
	TankTypeID *snowflake.ID
	Latitude   *float64
	Longitude  *float64
	Notes      string
}

// UpdateCustomerRequest leaves nil fields untouched. The Clear* flags unset a reference.
type UpdateCustomerRequest struct {
	Name          *string
	Phone         *string
	TankNo        *string
	AreaID        *snowflake.ID
	ClearArea     bool
	DriverID      *snowflake.ID
	ClearDriver   bool
	TankTypeID    *snowflake.ID
	ClearTankType bool
	Notes         *string
}

type ListCustomerRequest struct {
	pagination.Pagination
	Search     string
	AreaID     *snowflake.ID
	DriverID   *snowflake.ID
	TankTypeID *snowflake.ID
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Document struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type MapRequest struct {
	AreaID   *snowflake.ID
	DriverID *snowflake.ID
	// Near adds a distance_m property measured from this point.
	Near *orb.Point
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateCustomerRequest) (Customer, error)
	// Delete refuses while unpaid debts remain. Filling history is kept with its snapshot.
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	UpdateLocation(ctx context.Context, id snowflake.ID, lat, lng float64) (Customer, error)
	UploadDocument(ctx context.Context, id snowflake.ID, doc Document) (Customer, error)
	Map(ctx context.Context, req MapRequest) (*geojson.FeatureCollection, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidTankNo      = errors.New("invalid_tank_no")
	ErrInvalidLocation    = errors.New("invalid_location")
	ErrInvalidFile        = errors.New("invalid_file")
	ErrInvalidPageToken   = errors.New("invalid_page_token")
	ErrInvalidReference   = errors.New("invalid_reference")
	ErrTankNumberExists   = errors.New("tank_number_exists")
	ErrHasOutstandingDebt = errors.New("customer_has_outstanding_debt")
	ErrNotFound           = errors.New("not_found")
)
