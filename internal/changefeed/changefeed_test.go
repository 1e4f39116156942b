package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversOnlySubscribedTables(t *testing.T) {
	hub := NewHub()
	sub, backlog, err := hub.Subscribe([]string{"requests"}, 0)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, backlog)

	hub.Publish(Event{Table: TableDebts, Op: OpUpdate})
	hub.Publish(Event{Table: TableRequests, Op: OpInsert})

	select {
	case event := <-sub.Events():
		assert.Equal(t, TableRequests, event.Table)
		assert.Equal(t, OriginLocal, event.Origin)
		assert.Equal(t, uint64(2), event.Seq)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	select {
	case event := <-sub.Events():
		t.Fatalf("unexpected event %+v", event)
	default:
	}
}

func TestHubBacklogAfterSeq(t *testing.T) {
	hub := NewHub()
	hub.Touch(OpUpdate, TableRequests, TableFillings, TableDebts)

	sub, backlog, err := hub.Subscribe([]string{"debts,requests"}, 1)
	require.NoError(t, err)
	defer sub.Close()

	require.Len(t, backlog, 1)
	assert.Equal(t, TableDebts, backlog[0].Table)
	assert.Equal(t, uint64(3), backlog[0].Seq)
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe(nil, 0)
	require.NoError(t, err)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < DefaultSubscriberBuffer*4; i++ {
			hub.Publish(Event{Table: TableCars})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, sub.Events(), DefaultSubscriberBuffer)
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe([]string{TableAreas}, 0)
	require.NoError(t, err)
	sub.Close()
	sub.Close()

	hub.Publish(Event{Table: TableAreas})
	assert.Len(t, sub.Events(), 0)
}

func TestSubscribeRejectsUnknownTables(t *testing.T) {
	_, _, err := NewHub().Subscribe([]string{"operators"}, 0)
	assert.ErrorIs(t, err, ErrInvalidTables)

	var hub *Hub
	_, _, err = hub.Subscribe(nil, 0)
	assert.ErrorIs(t, err, ErrHubUnavailable)
	hub.Publish(Event{Table: TableAreas})
}

func TestNormalizeTables(t *testing.T) {
	assert.Equal(t, []string{"debts", "requests"}, NormalizeTables([]string{" Requests ,debts", "requests", "nope"}))
	assert.Len(t, NormalizeTables(nil), len(KnownTables))
}

func TestDebounceCollapsesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event)
	out := Debounce(ctx, events, 30*time.Millisecond)

	events <- Event{Seq: 1, Table: TableRequests}
	events <- Event{Seq: 2, Table: TableDebts}
	events <- Event{Seq: 3, Table: TableRequests}

	select {
	case refresh := <-out:
		assert.Equal(t, []string{"debts", "requests"}, refresh.Tables)
		assert.Equal(t, uint64(3), refresh.LastSeq)
	case <-time.After(time.Second):
		t.Fatal("expected refresh")
	}

	select {
	case refresh := <-out:
		t.Fatalf("unexpected second refresh %+v", refresh)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebounceFlushesOnClose(t *testing.T) {
	events := make(chan Event, 1)
	out := Debounce(context.Background(), events, time.Hour)

	events <- Event{Seq: 9, Table: TableFillings}
	close(events)

	refresh, ok := <-out
	require.True(t, ok)
	assert.Equal(t, []string{"fillings"}, refresh.Tables)

	_, ok = <-out
	assert.False(t, ok)
}

func TestParseNotification(t *testing.T) {
	event, err := ParseNotification(`{"table":"debts","op":"UPDATE"}`)
	require.NoError(t, err)
	assert.Equal(t, TableDebts, event.Table)
	assert.Equal(t, "update", event.Op)
	assert.Equal(t, OriginPostgres, event.Origin)

	_, err = ParseNotification(`{"table":"operators","op":"INSERT"}`)
	assert.Error(t, err)
	_, err = ParseNotification(`not json`)
	assert.Error(t, err)
}
