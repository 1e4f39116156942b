package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	arearepository "github.com/smallbiznis/aquaflow/internal/area/repository"
	areaservice "github.com/smallbiznis/aquaflow/internal/area/service"
	"github.com/smallbiznis/aquaflow/internal/clock"
	driverrepository "github.com/smallbiznis/aquaflow/internal/driver/repository"
	driverservice "github.com/smallbiznis/aquaflow/internal/driver/service"
	"github.com/smallbiznis/aquaflow/internal/storage"
	tanktyperepository "github.com/smallbiznis/aquaflow/internal/tanktype/repository"
	tanktypeservice "github.com/smallbiznis/aquaflow/internal/tanktype/service"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetReturnsActiveEntries(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	db := testutil.NewDB(t)
	clk := clock.NewFakeClock(testutil.Base)

	testutil.InsertArea(t, db, "North", true)
	testutil.InsertArea(t, db, "Closed", false)
	testutil.InsertTankType(t, db, "2000L", 15000)
	testutil.InsertDriver(t, db, "Omar", "driver", true)
	testutil.InsertDriver(t, db, "Kareem", "driver", false)
	testutil.InsertDriver(t, db, "Yusuf", "assistant", true)

	svc := New(Params{
		Areas: areaservice.New(areaservice.Params{
			DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: arearepository.Provide(),
		}),
		TankTypes: tanktypeservice.New(tanktypeservice.Params{
			DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: tanktyperepository.Provide(),
		}),
		Drivers: driverservice.New(driverservice.Params{
			DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: driverrepository.Provide(),
			Storage: storage.NewLocalProvider(t.TempDir(), "/uploads"),
		}),
	})

	lookups, err := svc.Get(context.Background())
	require.NoError(t, err)

	require.Len(t, lookups.Drivers, 1)
	assert.Equal(t, "Omar", lookups.Drivers[0].Name)
	require.Len(t, lookups.Areas, 1)
	assert.Equal(t, "North", lookups.Areas[0].Name)
	require.Len(t, lookups.TankTypes, 1)
	assert.Equal(t, int64(15000), lookups.TankTypes[0].Price)
}
