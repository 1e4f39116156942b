package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/config"
	"github.com/smallbiznis/aquaflow/internal/debt/domain"
	"github.com/smallbiznis/aquaflow/internal/debt/repository"
	"github.com/smallbiznis/aquaflow/internal/providers/pdf"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Clock:  clock.NewFakeClock(now),
		Repo:   repository.Provide(),
		Policy: config.NewStaticDebtPolicyHolder(config.DefaultDebtPolicy()),
		PDF:    pdf.New(),
	}), db
}

type debtRow struct {
	RemainingAmount int64
	IsPaid          bool
}

func loadDebt(t *testing.T, db *gorm.DB, id snowflake.ID) debtRow {
	t.Helper()
	var row debtRow
	require.NoError(t, db.Raw(`SELECT remaining_amount, is_paid FROM debts WHERE id = ?`, id).Scan(&row).Error)
	return row
}

func fillingIsDebt(t *testing.T, db *gorm.DB, id snowflake.ID) bool {
	t.Helper()
	var count int64
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM fillings WHERE id = ? AND is_debt = ?`, id, true).Scan(&count).Error)
	return count == 1
}

func TestProcessPaymentFIFOAndFillingFlag(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})

	oldFilling := testutil.InsertFilling(t, db, &customerID, 10000, true, now.AddDate(0, 0, -20))
	newFilling := testutil.InsertFilling(t, db, &customerID, 15000, true, now.AddDate(0, 0, -2))
	oldDebt := testutil.InsertDebt(t, db, customerID, &oldFilling, 10000, 10000, now.AddDate(0, 0, -20))
	newDebt := testutil.InsertDebt(t, db, customerID, &newFilling, 15000, 15000, now.AddDate(0, 0, -2))

	result, err := svc.ProcessPayment(ctx, domain.PaymentRequest{CustomerID: customerID, Amount: 12000})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), result.Applied)
	assert.Zero(t, result.Unapplied)
	assert.Equal(t, int64(13000), result.Outstanding)
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, oldDebt, result.Allocations[0].DebtID)
	assert.True(t, result.Allocations[0].Settled)

	assert.Equal(t, debtRow{RemainingAmount: 0, IsPaid: true}, loadDebt(t, db, oldDebt))
	assert.Equal(t, debtRow{RemainingAmount: 13000, IsPaid: false}, loadDebt(t, db, newDebt))
	assert.False(t, fillingIsDebt(t, db, oldFilling))
	assert.True(t, fillingIsDebt(t, db, newFilling))
}

func TestProcessPaymentExactSettlement(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})
	first := testutil.InsertDebt(t, db, customerID, nil, 5000, 5000, now.AddDate(0, 0, -3))
	second := testutil.InsertDebt(t, db, customerID, nil, 7000, 4000, now.AddDate(0, 0, -1))

	result, err := svc.ProcessPayment(ctx, domain.PaymentRequest{CustomerID: customerID, Amount: 9000})
	require.NoError(t, err)
	assert.Zero(t, result.Outstanding)
	assert.Zero(t, result.Unapplied)
	assert.Equal(t, debtRow{IsPaid: true}, loadDebt(t, db, first))
	assert.Equal(t, debtRow{IsPaid: true}, loadDebt(t, db, second))

	outstanding, err := svc.Outstanding(ctx, customerID)
	require.NoError(t, err)
	assert.Zero(t, outstanding)
}

func TestProcessPaymentReportsUnapplied(t *testing.T) {
	svc, db := newTestService(t)
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})
	testutil.InsertDebt(t, db, customerID, nil, 5000, 5000, now.AddDate(0, 0, -3))

	result, err := svc.ProcessPayment(context.Background(), domain.PaymentRequest{CustomerID: customerID, Amount: 8000})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.Applied)
	assert.Equal(t, int64(3000), result.Unapplied)
}

func TestProcessPaymentSettlesZeroBalanceDebt(t *testing.T) {
	svc, db := newTestService(t)
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})
	fillingID := testutil.InsertFilling(t, db, &customerID, 5000, true, now.AddDate(0, 0, -4))
	stale := testutil.InsertDebt(t, db, customerID, &fillingID, 5000, 0, now.AddDate(0, 0, -4))
	require.NoError(t, db.Exec(`UPDATE debts SET is_paid = ? WHERE id = ?`, false, stale).Error)
	open := testutil.InsertDebt(t, db, customerID, nil, 3000, 3000, now.AddDate(0, 0, -1))

	result, err := svc.ProcessPayment(context.Background(), domain.PaymentRequest{CustomerID: customerID, Amount: 1000})
	require.NoError(t, err)
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, stale, result.Allocations[0].DebtID)
	assert.Zero(t, result.Allocations[0].Applied)
	assert.True(t, result.Allocations[0].Settled)
	assert.Equal(t, int64(1000), result.Applied)

	assert.Equal(t, debtRow{RemainingAmount: 0, IsPaid: true}, loadDebt(t, db, stale))
	assert.Equal(t, debtRow{RemainingAmount: 2000, IsPaid: false}, loadDebt(t, db, open))
	assert.False(t, fillingIsDebt(t, db, fillingID))
}

// racingRepo lowers a balance behind the service's back right after the read.
type racingRepo struct {
	domain.Repository
}

func (r racingRepo) ListUnpaidByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.Debt, error) {
	debts, err := r.Repository.ListUnpaidByCustomer(ctx, db, customerID)
	if err != nil {
		return nil, err
	}
	if err := db.Exec(`UPDATE debts SET remaining_amount = remaining_amount - 30 WHERE customer_id = ?`, customerID).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

func TestProcessPaymentDetectsConcurrentPayment(t *testing.T) {
	db := testutil.NewDB(t)
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Clock:  clock.NewFakeClock(now),
		Repo:   racingRepo{Repository: repository.Provide()},
		Policy: config.NewStaticDebtPolicyHolder(config.DefaultDebtPolicy()),
		PDF:    pdf.New(),
	})
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})
	debtID := testutil.InsertDebt(t, db, customerID, nil, 100, 100, now.AddDate(0, 0, -2))

	_, err := svc.ProcessPayment(context.Background(), domain.PaymentRequest{CustomerID: customerID, Amount: 50})
	assert.ErrorIs(t, err, domain.ErrBalanceChanged)
	assert.Equal(t, debtRow{RemainingAmount: 100, IsPaid: false}, loadDebt(t, db, debtID))
}

func TestProcessPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ProcessPayment(context.Background(), domain.PaymentRequest{CustomerID: 1, Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = svc.ProcessPayment(context.Background(), domain.PaymentRequest{CustomerID: 1, Amount: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListOutstandingAppliesPolicy(t *testing.T) {
	svc, db := newTestService(t)
	areaID := testutil.InsertArea(t, db, "Karrada", true)
	ali := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1", AreaID: &areaID})
	sara := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Sara", TankNo: "T-2"})

	testutil.InsertDebt(t, db, ali, nil, 20000, 20000, now.AddDate(0, 0, -45))
	testutil.InsertDebt(t, db, ali, nil, 10000, 5000, now.AddDate(0, 0, -5))
	testutil.InsertDebt(t, db, sara, nil, 600000, 600000, now.AddDate(0, 0, -2))
	testutil.InsertDebt(t, db, sara, nil, 9000, 0, now.AddDate(0, 0, -90))

	summaries, err := svc.ListOutstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, ali, summaries[0].CustomerID)
	assert.Equal(t, int64(25000), summaries[0].TotalDebt)
	assert.Equal(t, 2, summaries[0].RecordsCount)
	assert.Equal(t, 45, summaries[0].AgeDays)
	assert.Equal(t, "31-60", summaries[0].AgingBucket)
	assert.Equal(t, "medium", summaries[0].RiskLevel)
	assert.Equal(t, "Karrada", summaries[0].AreaName)

	assert.Equal(t, sara, summaries[1].CustomerID)
	assert.Equal(t, 1, summaries[1].RecordsCount)
	assert.Equal(t, "0-30", summaries[1].AgingBucket)
	assert.Equal(t, "high", summaries[1].RiskLevel)
}

func TestCustomerDebtsIncludePaid(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})
	testutil.InsertDebt(t, db, customerID, nil, 100, 0, now.AddDate(0, 0, -3))
	testutil.InsertDebt(t, db, customerID, nil, 100, 100, now.AddDate(0, 0, -1))

	open, err := svc.CustomerDebts(ctx, customerID, false)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	all, err := svc.CustomerDebts(ctx, customerID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStatement(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1"})
	testutil.InsertDebt(t, db, customerID, nil, 15000, 15000, now.AddDate(0, 0, -3))

	reader, err := svc.Statement(ctx, customerID)
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body[:4]))

	_, err = svc.Statement(ctx, 12345)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
