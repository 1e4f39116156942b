package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/archive/domain"
	"github.com/smallbiznis/aquaflow/internal/archive/repository"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Insert(ctx context.Context, db *gorm.DB, record *domain.DeletedRecord) error {
	args := m.Called(ctx, db, record)
	return args.Error(0)
}

func (m *mockRepo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.DeletedRecord, error) {
	args := m.Called(ctx, db, filter)
	return args.Get(0).([]*domain.DeletedRecord), args.Error(1)
}

func newService(t *testing.T, db *gorm.DB, repo domain.Repository) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)),
		Repo:  repo,
	}).(*Service)
}

func TestArchiveThenDeleteSkipsDeleteWhenSnapshotFails(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Insert", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	svc := newService(t, nil, repo)

	deleted := false
	_, err := svc.ArchiveThenDelete(context.Background(), nil, domain.DeletedRecord{
		Source:     domain.SourceRequest,
		OriginalID: 10,
	}, func(*gorm.DB) error {
		deleted = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, deleted)
	repo.AssertExpectations(t)
}

func TestArchiveThenDeleteWritesSnapshotFirst(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(t, db, repository.Provide())

	snapshotSeen := false
	record, err := svc.ArchiveThenDelete(context.Background(), db, domain.DeletedRecord{
		Source:           domain.SourceFilling,
		OriginalID:       77,
		CustomerName:     "Ahmed",
		TankNo:           "T-1",
		StatusAtDeletion: domain.StatusFinished,
		Amount:           25000,
		DeletedBy:        "sara",
	}, func(tx *gorm.DB) error {
		var count int64
		require.NoError(t, tx.Raw(`SELECT COUNT(*) FROM deleted_records WHERE original_id = ?`, 77).Scan(&count).Error)
		snapshotSeen = count == 1
		return nil
	})
	require.NoError(t, err)
	assert.True(t, snapshotSeen)
	assert.Equal(t, "sara", record.DeletedBy)

	resp, err := svc.List(context.Background(), domain.ListRequest{Source: "filling"})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, int64(25000), resp.Records[0].Amount)
	assert.Equal(t, domain.StatusFinished, resp.Records[0].StatusAtDeletion)
}

func TestArchiveThenDeleteRollsBackSnapshotWithFailedDelete(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(t, db, repository.Provide())

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.ArchiveThenDelete(context.Background(), tx, domain.DeletedRecord{
			Source:     domain.SourceRequest,
			OriginalID: 5,
		}, func(*gorm.DB) error {
			return errors.New("delete failed")
		})
		return err
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM deleted_records`).Scan(&count).Error)
	assert.Zero(t, count)
}

func TestArchiveValidation(t *testing.T) {
	svc := newService(t, nil, &mockRepo{})
	noop := func(*gorm.DB) error { return nil }

	_, err := svc.ArchiveThenDelete(context.Background(), nil, domain.DeletedRecord{Source: "customer", OriginalID: 1}, noop)
	assert.ErrorIs(t, err, domain.ErrInvalidSource)

	_, err = svc.ArchiveThenDelete(context.Background(), nil, domain.DeletedRecord{Source: domain.SourceRequest}, noop)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = svc.List(context.Background(), domain.ListRequest{Source: "customer"})
	assert.ErrorIs(t, err, domain.ErrInvalidSource)
}

func TestListPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(t, db, repository.Provide())
	fake := svc.clock.(*clock.FakeClock)

	for i := 1; i <= 3; i++ {
		fake.Advance(time.Minute)
		_, err := svc.ArchiveThenDelete(context.Background(), db, domain.DeletedRecord{
			Source:     domain.SourceRequest,
			OriginalID: snowflake.ID(i),
		}, func(*gorm.DB) error { return nil })
		require.NoError(t, err)
	}

	first, err := svc.List(context.Background(), domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, first.Records, 3)
	assert.Equal(t, snowflake.ID(3), first.Records[0].OriginalID)

	req := domain.ListRequest{}
	req.PageSize = 2
	page, err := svc.List(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	require.True(t, page.HasMore)

	req.PageToken = page.NextPageToken
	next, err := svc.List(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, next.Records, 1)
	assert.Equal(t, snowflake.ID(1), next.Records[0].OriginalID)
	assert.False(t, next.HasMore)
}
