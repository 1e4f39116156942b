package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	archivedomain "github.com/smallbiznis/aquaflow/internal/archive/domain"
	archiverepository "github.com/smallbiznis/aquaflow/internal/archive/repository"
	archiveservice "github.com/smallbiznis/aquaflow/internal/archive/service"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/filling/domain"
	"github.com/smallbiznis/aquaflow/internal/filling/repository"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (domain.Service, archivedomain.Service, *gorm.DB) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	db := testutil.NewDB(t)
	clk := clock.NewFakeClock(now)
	archive := archiveservice.New(archiveservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  archiverepository.Provide(),
	})
	return New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    repository.Provide(),
		Archive: archive,
	}), archive, db
}

func operatorCtx() context.Context {
	return operatorcontext.WithOperator(context.Background(), operatorcontext.Operator{ID: 7, Username: "huda", Role: "accountant"})
}

func TestRecordExternalSale(t *testing.T) {
	svc, _, db := newTestService(t)
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	filling, err := svc.RecordExternalSale(operatorCtx(), domain.ExternalSaleRequest{Price: 25000, Notes: "market stall", Date: &date})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeExternalSale, filling.FillingType)
	assert.Equal(t, int64(25000), filling.Amount)
	assert.False(t, filling.IsDebt)
	assert.Nil(t, filling.CustomerID)
	assert.Equal(t, "بيع خارجي", filling.CustomerName)
	assert.Equal(t, "-", filling.TankNo)
	assert.Equal(t, "بيع خارجي - market stall", filling.Notes)
	assert.Equal(t, "huda", filling.CreatedBy)
	assert.True(t, filling.CreatedAt.Equal(date))
	assert.True(t, filling.FinishedAt.Equal(now))

	var requests, debts int64
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM requests`).Scan(&requests).Error)
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM debts`).Scan(&debts).Error)
	assert.Zero(t, requests)
	assert.Zero(t, debts)
}

func TestRecordExternalSaleRequiresPrice(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RecordExternalSale(context.Background(), domain.ExternalSaleRequest{Price: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	filling, err := svc.RecordExternalSale(context.Background(), domain.ExternalSaleRequest{Price: 100})
	require.NoError(t, err)
	assert.True(t, filling.CreatedAt.Equal(now))
	assert.Equal(t, "system", filling.CreatedBy)
}

func TestDeleteArchivesFinishedSnapshot(t *testing.T) {
	svc, archive, db := newTestService(t)
	ctx := operatorCtx()
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-9"})
	fillingID := testutil.InsertFilling(t, db, &customerID, 15000, true, testutil.Base)
	debtID := testutil.InsertDebt(t, db, customerID, &fillingID, 15000, 15000, testutil.Base)

	require.NoError(t, svc.Delete(ctx, fillingID))

	_, err := svc.Get(ctx, fillingID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	archived, err := archive.List(ctx, archivedomain.ListRequest{Source: "filling"})
	require.NoError(t, err)
	require.Len(t, archived.Records, 1)
	record := archived.Records[0]
	assert.Equal(t, fillingID, record.OriginalID)
	assert.Equal(t, archivedomain.StatusFinished, record.StatusAtDeletion)
	assert.Equal(t, int64(15000), record.Amount)
	assert.Equal(t, "huda", record.DeletedBy)
	require.NotNil(t, record.CustomerID)
	assert.Equal(t, customerID, *record.CustomerID)

	var detached int64
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM debts WHERE id = ? AND filling_id IS NULL`, debtID).Scan(&detached).Error)
	assert.Equal(t, int64(1), detached)

	assert.ErrorIs(t, svc.Delete(ctx, fillingID), domain.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	customerID := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-9"})
	testutil.InsertFilling(t, db, &customerID, 15000, true, testutil.Base)
	testutil.InsertFilling(t, db, &customerID, 0, false, testutil.Base.Add(time.Hour))
	_, err := svc.RecordExternalSale(ctx, domain.ExternalSaleRequest{Price: 500})
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListFillingRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Fillings, 3)
	assert.Equal(t, domain.TypeExternalSale, all.Fillings[0].FillingType)

	debts, err := svc.List(ctx, domain.ListFillingRequest{IsDebt: testutil.Ptr(true)})
	require.NoError(t, err)
	require.Len(t, debts.Fillings, 1)
	assert.Equal(t, int64(15000), debts.Fillings[0].Amount)

	external, err := svc.List(ctx, domain.ListFillingRequest{FillingType: domain.TypeExternalSale})
	require.NoError(t, err)
	assert.Len(t, external.Fillings, 1)

	from := now
	to := now.Add(-time.Hour)
	_, err = svc.List(ctx, domain.ListFillingRequest{CreatedFrom: &from, CreatedTo: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestNewFillingFillsUnknownSnapshot(t *testing.T) {
	filling, err := domain.NewFilling(domain.Filling{FillingType: "change_water", CreatedAt: now, FinishedAt: now})
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownSnapshot, filling.CustomerName)
	assert.Equal(t, domain.UnknownSnapshot, filling.TankNo)

	_, err = domain.NewFilling(domain.Filling{FillingType: "new_filling", Amount: -1, CreatedAt: now, FinishedAt: now})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
