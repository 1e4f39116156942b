package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// NotifyChannel is filled by the aquaflow_notify_change trigger.
const NotifyChannel = "aquaflow_changes"

const (
	listenerMinBackoff = time.Second
	listenerMaxBackoff = 30 * time.Second
)

type notifyPayload struct {
	Table string `json:"table"`
	Op    string `json:"op"`
}

// ParseNotification decodes a trigger payload into an Event.
func ParseNotification(payload string) (Event, error) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Event{}, err
	}
	table := strings.ToLower(strings.TrimSpace(p.Table))
	if !isKnownTable(table) {
		return Event{}, errors.New("unknown_table")
	}
	return Event{
		Table:  table,
		Op:     strings.ToLower(strings.TrimSpace(p.Op)),
		Origin: OriginPostgres,
	}, nil
}

// Listener republishes postgres NOTIFY events into the hub so that writes from
// other instances reach local subscribers.
type Listener struct {
	dsn    string
	hub    *Hub
	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewListener(dsn string, hub *Hub, log *zap.Logger) *Listener {
	return &Listener{
		dsn: dsn,
		hub: hub,
		log: log.Named("changefeed.pgnotify"),
	}
}

func (l *Listener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(ctx)
	}()
}

func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}

func (l *Listener) run(ctx context.Context) {
	backoff := listenerMinBackoff
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.Warn("listener disconnected", zap.Error(err), zap.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > listenerMaxBackoff {
			backoff = listenerMaxBackoff
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}
	l.log.Info("listening for change notifications", zap.String("channel", NotifyChannel))

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		event, err := ParseNotification(notification.Payload)
		if err != nil {
			l.log.Debug("ignoring notification", zap.String("payload", notification.Payload), zap.Error(err))
			continue
		}
		l.hub.Publish(event)
	}
}
