package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TypeExternalSale = "external_sale"

	ExternalSaleCustomer    = "بيع خارجي"
	ExternalSaleTankNo      = "-"
	ExternalSaleNotesPrefix = "بيع خارجي - "

	// UnknownSnapshot fills the customer snapshot when the customer row is gone.
	UnknownSnapshot = "Unknown"
)

// Filling is the permanent ledger row for a finished request or an external sale.
// CustomerName and TankNo are copied at creation so history survives customer edits.
type Filling struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID   *snowflake.ID `json:"customer_id,omitempty"`
	DriverID     *snowflake.ID `json:"driver_id,omitempty"`
	DriverName   string        `gorm:"->" json:"driver_name,omitempty"`
	FillingType  string        `json:"filling_type"`
	Amount       int64         `json:"amount"`
	IsDebt       bool          `json:"is_debt"`
	CustomerName string        `json:"customer_name"`
	TankNo       string        `json:"tank_no"`
	Notes        string        `json:"notes"`
	CreatedBy    string        `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidType   = errors.New("invalid_filling_type")
	ErrInvalidDates  = errors.New("invalid_filling_dates")
)

// NewFilling validates a ledger row before it is written.
func NewFilling(f Filling) (Filling, error) {
	f.FillingType = strings.TrimSpace(f.FillingType)
	if f.FillingType == "" {
		return Filling{}, ErrInvalidType
	}
	if f.Amount < 0 {
		return Filling{}, ErrInvalidAmount
	}
	if f.CreatedAt.IsZero() || f.FinishedAt.IsZero() {
		return Filling{}, ErrInvalidDates
	}
	if strings.TrimSpace(f.CustomerName) == "" {
		f.CustomerName = UnknownSnapshot
	}
	if strings.TrimSpace(f.TankNo) == "" {
		f.TankNo = UnknownSnapshot
	}
	return f, nil
}
