package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/aquaflow/internal/debt/domain"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveBalanceRejectsStaleWrite(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := Provide()

	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})
	debtID := testutil.InsertDebt(t, db, customerID, nil, 100, 100, testutil.Base)

	rows, err := repo.ListUnpaidByCustomer(ctx, db, customerID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	read := *rows[0]
	at := testutil.Base.Add(time.Hour)

	first := read
	first.RemainingAmount = 70
	first.UpdatedAt = at
	ok, err := repo.SaveBalance(ctx, db, &first, read.RemainingAmount)
	require.NoError(t, err)
	assert.True(t, ok)

	second := read
	second.RemainingAmount = 50
	second.UpdatedAt = at
	ok, err = repo.SaveBalance(ctx, db, &second, read.RemainingAmount)
	require.NoError(t, err)
	assert.False(t, ok)

	var remaining int64
	require.NoError(t, db.Raw(`SELECT remaining_amount FROM debts WHERE id = ?`, debtID).Scan(&remaining).Error)
	assert.Equal(t, int64(70), remaining)
}

func TestSaveBalanceIgnoresPaidDebt(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := Provide()

	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})
	debtID := testutil.InsertDebt(t, db, customerID, nil, 100, 0, testutil.Base)

	debt := domain.Debt{ID: debtID, CustomerID: customerID, Amount: 100, RemainingAmount: 0, IsPaid: true, UpdatedAt: testutil.Base}
	ok, err := repo.SaveBalance(ctx, db, &debt, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
