package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	TypeNewFilling   Type = "new_filling"
	TypeWithdrawTank Type = "withdraw_tank"
	TypeChangeWater  Type = "change_water"
	TypeSetLocation  Type = "set_location"
	TypeExternalSale Type = "external_sale"
)

func (t Type) Valid() bool {
	switch t {
	case TypeNewFilling, TypeWithdrawTank, TypeChangeWater, TypeSetLocation, TypeExternalSale:
		return true
	}
	return false
}

// Guarded reports whether a customer may hold only one pending request of this kind.
func (t Type) Guarded() bool {
	return t != TypeSetLocation
}

// Direct reports whether the type may skip the pending queue.
func (t Type) Direct() bool {
	return t == TypeNewFilling || t == TypeWithdrawTank
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDelivered
}

// Request is a live service ask. Finishing moves it into the fillings ledger.
// The customer and tank-type fields are read-only joins.
type Request struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID   snowflake.ID  `json:"customer_id"`
	DriverID     *snowflake.ID `json:"driver_id,omitempty"`
	RequestType  Type          `json:"request_type"`
	Status       Status        `json:"status"`
	IsDebt       bool          `json:"is_debt"`
	Notes        string        `json:"notes"`
	CreatedBy    string        `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	CustomerName string        `gorm:"->" json:"customer_name"`
	TankNo       string        `gorm:"->" json:"tank_no"`
	Phone        string        `gorm:"->" json:"customer_phone"`
	AreaID       *snowflake.ID `gorm:"->" json:"area_id,omitempty"`
	AreaName     string        `gorm:"->" json:"area_name"`
	DriverName   string        `gorm:"->" json:"driver_name"`
	TankTypeName string        `gorm:"->" json:"tank_type_name"`
	Price        int64         `gorm:"->" json:"price"`
	Latitude     *float64      `gorm:"->" json:"latitude,omitempty"`
	Longitude    *float64      `gorm:"->" json:"longitude,omitempty"`
}

// Amount is what finishing the request charges: the tank-type price for a
// new filling, nothing otherwise.
func (r Request) Amount() int64 {
	if r.RequestType == TypeNewFilling && r.Price > 0 {
		return r.Price
	}
	return 0
}

var (
	ErrInvalidType   = errors.New("invalid_request_type")
	ErrInvalidStatus = errors.New("invalid_request_status")
	ErrInvalidDate   = errors.New("invalid_date")
)

// NewRequest validates a request before insert.
func NewRequest(id, customerID snowflake.ID, requestType Type, status Status, driverID *snowflake.ID, notes, createdBy string, createdAt time.Time) (Request, error) {
	if customerID == 0 {
		return Request{}, ErrInvalidCustomer
	}
	if !requestType.Valid() {
		return Request{}, ErrInvalidType
	}
	if !status.Valid() {
		return Request{}, ErrInvalidStatus
	}
	if createdAt.IsZero() {
		return Request{}, ErrInvalidDate
	}
	return Request{
		ID:          id,
		CustomerID:  customerID,
		DriverID:    driverID,
		RequestType: requestType,
		Status:      status,
		Notes:       strings.TrimSpace(notes),
		CreatedBy:   strings.TrimSpace(createdBy),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}
