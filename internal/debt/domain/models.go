package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Debt tracks an unpaid filling. RemainingAmount only ever decreases and
// IsPaid is true exactly when it reaches zero.
type Debt struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID      snowflake.ID  `json:"customer_id"`
	FillingID       *snowflake.ID `json:"filling_id,omitempty"`
	Amount          int64         `json:"amount"`
	RemainingAmount int64         `json:"remaining_amount"`
	IsPaid          bool          `json:"is_paid"`
	Notes           string        `json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	PaidAt          *time.Time    `json:"paid_at,omitempty"`
}

var (
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidRemaining = errors.New("invalid_remaining_amount")
	ErrInvalidCustomer  = errors.New("invalid_customer")
)

// NewDebt opens a debt for the full amount. Zero or negative amounts are refused.
func NewDebt(id, customerID snowflake.ID, fillingID *snowflake.ID, amount int64, notes string, now time.Time) (Debt, error) {
	if customerID == 0 {
		return Debt{}, ErrInvalidCustomer
	}
	if amount <= 0 {
		return Debt{}, ErrInvalidAmount
	}
	return Debt{
		ID:              id,
		CustomerID:      customerID,
		FillingID:       fillingID,
		Amount:          amount,
		RemainingAmount: amount,
		Notes:           strings.TrimSpace(notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Validate checks the stored balance invariants.
func (d Debt) Validate() error {
	if d.Amount < 0 {
		return ErrInvalidAmount
	}
	if d.RemainingAmount < 0 || d.RemainingAmount > d.Amount {
		return ErrInvalidRemaining
	}
	if d.IsPaid != (d.RemainingAmount == 0) {
		return ErrInvalidRemaining
	}
	return nil
}

// Allocation records how much of a payment went to one debt. Previous is
// the balance the allocation was computed from.
type Allocation struct {
	DebtID    snowflake.ID  `json:"debt_id"`
	FillingID *snowflake.ID `json:"filling_id,omitempty"`
	Previous  int64         `json:"previous_remaining"`
	Applied   int64         `json:"applied"`
	Remaining int64         `json:"remaining"`
	Settled   bool          `json:"settled"`
}

// Allocate spends payment on debts oldest first (created_at, then id).
// It returns the touched debts with their new balances, one allocation per
// touched debt in the same order, and the part of the payment no debt could
// absorb. Unpaid debts already at zero are settled with nothing applied.
func Allocate(debts []Debt, payment int64, now time.Time) ([]Debt, []Allocation, int64) {
	if payment <= 0 {
		return nil, nil, payment
	}

	ordered := make([]Debt, 0, len(debts))
	for _, debt := range debts {
		if !debt.IsPaid {
			ordered = append(ordered, debt)
		}
	}
	SortFIFO(ordered)

	var (
		touched     []Debt
		allocations []Allocation
	)
	left := payment
	for _, debt := range ordered {
		if left <= 0 && debt.RemainingAmount > 0 {
			continue
		}
		previous := debt.RemainingAmount
		applied := debt.RemainingAmount
		if left < applied {
			applied = left
		}
		debt.RemainingAmount -= applied
		debt.UpdatedAt = now
		if debt.RemainingAmount == 0 {
			debt.IsPaid = true
			paidAt := now
			debt.PaidAt = &paidAt
		}
		left -= applied

		touched = append(touched, debt)
		allocations = append(allocations, Allocation{
			DebtID:    debt.ID,
			FillingID: debt.FillingID,
			Previous:  previous,
			Applied:   applied,
			Remaining: debt.RemainingAmount,
			Settled:   debt.IsPaid,
		})
	}
	return touched, allocations, left
}

func SortFIFO(debts []Debt) {
	sort.SliceStable(debts, func(i, j int) bool {
		if !debts[i].CreatedAt.Equal(debts[j].CreatedAt) {
			return debts[i].CreatedAt.Before(debts[j].CreatedAt)
		}
		return debts[i].ID < debts[j].ID
	})
}

// UnpaidDebt is one open debt joined with the customer fields shown on the debts page.
type UnpaidDebt struct {
	ID              snowflake.ID `json:"id"`
	CustomerID      snowflake.ID `json:"customer_id"`
	CustomerName    string       `json:"customer_name"`
	TankNo          string       `json:"tank_no"`
	Phone           string       `json:"phone"`
	AreaName        string       `json:"area_name"`
	TankTypeName    string       `json:"tank_type_name"`
	Latitude        *float64     `json:"latitude,omitempty"`
	Longitude       *float64     `json:"longitude,omitempty"`
	RemainingAmount int64        `json:"remaining_amount"`
	CreatedAt       time.Time    `json:"created_at"`
}

// CustomerOutstanding summarises a customer's open debts.
type CustomerOutstanding struct {
	CustomerID   snowflake.ID `json:"customer_id"`
	CustomerName string       `json:"customer_name"`
	TankNo       string       `json:"tank_no"`
	Phone        string       `json:"phone"`
	AreaName     string       `json:"area_name"`
	TankTypeName string       `json:"tank_type_name"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	TotalDebt    int64        `json:"total_debt"`
	OldestDate   time.Time    `json:"oldest_date"`
	RecordsCount int          `json:"records_count"`
	AgeDays      int          `json:"age_days"`
	AgingBucket  string       `json:"aging_bucket"`
	RiskLevel    string       `json:"risk_level"`
}

// AggregateOutstanding folds open debts into one summary per customer,
// ordered by oldest debt then customer id. Input order does not matter.
func AggregateOutstanding(rows []UnpaidDebt) []CustomerOutstanding {
	byCustomer := make(map[snowflake.ID]*CustomerOutstanding)
	for _, row := range rows {
		summary, ok := byCustomer[row.CustomerID]
		if !ok {
			summary = &CustomerOutstanding{
				CustomerID:   row.CustomerID,
				CustomerName: row.CustomerName,
				TankNo:       row.TankNo,
				Phone:        row.Phone,
				AreaName:     row.AreaName,
				TankTypeName: row.TankTypeName,
				Latitude:     row.Latitude,
				Longitude:    row.Longitude,
				OldestDate:   row.CreatedAt,
			}
			byCustomer[row.CustomerID] = summary
		}
		summary.TotalDebt += row.RemainingAmount
		summary.RecordsCount++
		if row.CreatedAt.Before(summary.OldestDate) {
			summary.OldestDate = row.CreatedAt
		}
	}

	out := make([]CustomerOutstanding, 0, len(byCustomer))
	for _, summary := range byCustomer {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OldestDate.Equal(out[j].OldestDate) {
			return out[i].OldestDate.Before(out[j].OldestDate)
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// CustomerInfo is the header printed on a debt statement.
type CustomerInfo struct {
	ID       snowflake.ID
	Name     string
	TankNo   string
	Phone    string
	AreaName string
}
