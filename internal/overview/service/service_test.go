package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStats(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)
	svc := New(Params{DB: db, Log: zap.NewNop(), Clock: clock.NewFakeClock(now)})

	north := testutil.InsertArea(t, db, "North", true)
	testutil.InsertArea(t, db, "Old Town", false)
	testutil.InsertTankType(t, db, "1000L", 10000)
	testutil.InsertDriver(t, db, "Omar", "driver", true)
	testutil.InsertDriver(t, db, "Kareem", "driver", false)
	testutil.InsertDriver(t, db, "Yusuf", "assistant", true)

	ali := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "T-1", AreaID: &north})
	sara := testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Sara", TankNo: "T-2"})

	require.NoError(t, db.Exec(
		`INSERT INTO requests (id, customer_id, request_type, status, created_at, updated_at) VALUES (1, ?, 'new_filling', 'pending', ?, ?), (2, ?, 'change_water', 'delivered', ?, ?)`,
		ali, now, now, sara, now, now,
	).Error)

	testutil.InsertFilling(t, db, &ali, 15000, true, now.Add(-2*time.Hour))
	testutil.InsertFilling(t, db, &sara, 10000, false, now.Add(-time.Hour))
	testutil.InsertFilling(t, db, &sara, 10000, false, now.AddDate(0, 0, -1))

	testutil.InsertDebt(t, db, ali, nil, 15000, 15000, now)
	testutil.InsertDebt(t, db, ali, nil, 5000, 2000, now)
	testutil.InsertDebt(t, db, sara, nil, 8000, 0, now)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Customers)
	assert.Equal(t, int64(1), stats.ActiveAreas)
	assert.Equal(t, int64(1), stats.TankTypes)
	assert.Equal(t, int64(2), stats.Drivers)
	assert.Equal(t, int64(1), stats.Assistants)
	assert.Zero(t, stats.Employees)
	assert.Equal(t, int64(1), stats.PendingRequests)
	assert.Equal(t, int64(1), stats.DeliveredRequests)
	assert.Equal(t, int64(1), stats.DebtorCustomers)
	assert.Equal(t, int64(17000), stats.OutstandingDebt)
	assert.Equal(t, int64(2), stats.FillingsToday)
	assert.Equal(t, int64(25000), stats.FillingsTodayTotal)
}

func TestStatsEmpty(t *testing.T) {
	db := testutil.NewDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop(), Clock: clock.NewFakeClock(testutil.Base)})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.OutstandingDebt)
	assert.Zero(t, stats.FillingsToday)
}
