package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, debt *Debt) error
	// ListUnpaidByCustomer returns open debts in payment order.
	ListUnpaidByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*Debt, error)
	// SaveBalance writes a new balance only if the stored one still equals
	// previous. It reports false when another write got there first.
	SaveBalance(ctx context.Context, db *gorm.DB, debt *Debt, previous int64) (bool, error)
	ClearFillingDebtFlag(ctx context.Context, db *gorm.DB, fillingID snowflake.ID) error
	ListUnpaidWithCustomer(ctx context.Context, db *gorm.DB) ([]UnpaidDebt, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, includePaid bool) ([]*Debt, error)
	SumOutstanding(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error)
	FindCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*CustomerInfo, error)
}
