package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/area/domain"
	"github.com/smallbiznis/aquaflow/internal/area/repository"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *changefeed.Hub) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	db := testutil.NewDB(t)
	hub := changefeed.NewHub()
	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
		Feed:  hub,
	}), db, hub
}

func TestCreateAndListActive(t *testing.T) {
	svc, _, hub := newTestService(t)
	ctx := context.Background()
	sub, _, err := hub.Subscribe([]string{changefeed.TableAreas}, 0)
	require.NoError(t, err)
	defer sub.Close()

	_, err = svc.Create(ctx, domain.CreateAreaRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	north, err := svc.Create(ctx, domain.CreateAreaRequest{Name: " North "})
	require.NoError(t, err)
	assert.Equal(t, "North", north.Name)
	assert.True(t, north.IsActive)

	_, err = svc.Create(ctx, domain.CreateAreaRequest{Name: "Closed", IsActive: testutil.Ptr(false)})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, north.ID, active[0].ID)

	assert.Len(t, sub.Events(), 2)
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateAreaRequest{Name: "North"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, domain.UpdateAreaRequest{
		Name:     testutil.Ptr("North Side"),
		IsActive: testutil.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "North Side", updated.Name)
	assert.False(t, updated.IsActive)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "North Side", got.Name)

	_, err = svc.Update(ctx, snowflake.ID(404), domain.UpdateAreaRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRefusesWhileCustomersReferenceArea(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	area, err := svc.Create(ctx, domain.CreateAreaRequest{Name: "North"})
	require.NoError(t, err)
	testutil.InsertCustomer(t, db, testutil.CustomerFixture{Name: "Ali", TankNo: "N-1", AreaID: &area.ID})

	counts, err := svc.CustomerCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, int64(1), counts[0].Count)

	assert.ErrorIs(t, svc.Delete(ctx, area.ID), domain.ErrInUse)

	empty, err := svc.Create(ctx, domain.CreateAreaRequest{Name: "Empty"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, empty.ID))
	_, err = svc.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
