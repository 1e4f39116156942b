package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/tanktype/domain"
	"github.com/smallbiznis/aquaflow/internal/tanktype/repository"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	db := testutil.NewDB(t)
	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	}), db
}

func TestCreateValidatesPriceAndCapacity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateTankTypeRequest{Name: "1000L", Price: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.CreateTankTypeRequest{Name: "1000L", CapacityLiters: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidCapacity)

	_, err = svc.Create(ctx, domain.CreateTankTypeRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	big, err := svc.Create(ctx, domain.CreateTankTypeRequest{Name: "2000L", CapacityLiters: 2000, Price: 40000})
	require.NoError(t, err)
	small, err := svc.Create(ctx, domain.CreateTankTypeRequest{Name: "1000L", CapacityLiters: 1000, Price: 25000})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, small.ID, list[0].ID)
	assert.Equal(t, big.ID, list[1].ID)
}

func TestUpdatePrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateTankTypeRequest{Name: "1000L", Price: 25000})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, domain.UpdateTankTypeRequest{Price: testutil.Ptr(int64(30000))})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), updated.Price)

	_, err = svc.Update(ctx, created.ID, domain.UpdateTankTypeRequest{Price: testutil.Ptr(int64(-1))})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestDeleteInUse(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	used, err := svc.Create(ctx, domain.CreateTankTypeRequest{Name: "1000L", Price: 25000})
	require.NoError(t, err)
	testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "A-1", TankTypeID: &used.ID})

	assert.ErrorIs(t, svc.Delete(ctx, used.ID), domain.ErrInUse)

	counts, err := svc.CustomerCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, int64(1), counts[0].Count)

	assert.ErrorIs(t, svc.Delete(ctx, snowflake.ID(12345)), domain.ErrNotFound)
}
