package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
)

type PaymentRequest struct {
	CustomerID snowflake.ID
	Amount     int64
}

type PaymentResult struct {
	CustomerID  snowflake.ID `json:"customer_id"`
	AmountPaid  int64        `json:"amount_paid"`
	Applied     int64        `json:"applied"`
	Unapplied   int64        `json:"unapplied"`
	Allocations []Allocation `json:"allocations"`
	Outstanding int64        `json:"outstanding"`
}

type Service interface {
	// ProcessPayment settles the customer's debts oldest first in one transaction.
	// Any excess is reported as Unapplied and otherwise dropped.
	ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error)
	ListOutstanding(ctx context.Context) ([]CustomerOutstanding, error)
	CustomerDebts(ctx context.Context, customerID snowflake.ID, includePaid bool) ([]Debt, error)
	Outstanding(ctx context.Context, customerID snowflake.ID) (int64, error)
	Statement(ctx context.Context, customerID snowflake.ID) (io.Reader, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrBalanceChanged   = errors.New("debt_balance_changed")
)
