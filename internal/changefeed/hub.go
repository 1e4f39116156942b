package changefeed

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"

	OriginLocal    = "local"
	OriginPostgres = "postgres"
)

// Tables that emit change events.
const (
	TableAreas     = "areas"
	TableTankTypes = "tank_types"
	TableDrivers   = "drivers"
	TableCars      = "cars"
	TableCustomers = "customers"
	TableRequests  = "requests"
	TableFillings  = "fillings"
	TableDebts     = "debts"
)

var KnownTables = []string{
	TableAreas, TableTankTypes, TableDrivers, TableCars,
	TableCustomers, TableRequests, TableFillings, TableDebts,
}

var (
	ErrHubUnavailable = errors.New("hub_unavailable")
	ErrInvalidTables  = errors.New("invalid_tables")
)

type Event struct {
	Seq    uint64    `json:"seq"`
	Table  string    `json:"table"`
	Op     string    `json:"op"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Hub fans table change events out to subscribers. Publish never blocks;
// a slow subscriber drops events, which is fine for refresh signals.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	seq              atomic.Uint64
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
}

type Subscription struct {
	hub    *Hub
	tables []string
	id     uint64
	ch     chan Event
	once   sync.Once
}

var subscriptionID atomic.Uint64

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish stamps the event with a sequence number and delivers it.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	event.Table = strings.TrimSpace(event.Table)
	if event.Table == "" {
		return
	}
	if event.Origin == "" {
		event.Origin = OriginLocal
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	event.Seq = h.seq.Add(1)

	stream := h.ensureStream(event.Table)
	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan Event, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Touch publishes one event per table with the same op.
func (h *Hub) Touch(op string, tables ...string) {
	for _, table := range tables {
		h.Publish(Event{Table: table, Op: op})
	}
}

// Subscribe registers for the given tables. Buffered events with a sequence
// greater than afterSeq are returned as backlog, oldest first.
func (h *Hub) Subscribe(tables []string, afterSeq uint64) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, ErrHubUnavailable
	}
	normalized := NormalizeTables(tables)
	if len(normalized) == 0 {
		return nil, nil, ErrInvalidTables
	}

	sub := &Subscription{
		hub:    h,
		tables: normalized,
		id:     subscriptionID.Add(1),
		ch:     make(chan Event, h.subscriberBuffer),
	}

	var backlog []Event
	for _, table := range normalized {
		stream := h.ensureStream(table)
		stream.mu.Lock()
		stream.subs[sub.id] = sub.ch
		if afterSeq > 0 {
			for _, event := range stream.buffer {
				if event.Seq > afterSeq {
					backlog = append(backlog, event)
				}
			}
		}
		stream.mu.Unlock()
	}
	sort.Slice(backlog, func(i, j int) bool { return backlog[i].Seq < backlog[j].Seq })

	return sub, backlog, nil
}

func (h *Hub) ensureStream(table string) *stream {
	h.mu.RLock()
	current := h.streams[table]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[table]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan Event)}
		h.streams[table] = current
	}
	return current
}

// Streams are kept after the last subscriber leaves so the buffer survives reconnects.
func (h *Hub) unsubscribe(tables []string, id uint64) {
	for _, table := range tables {
		h.mu.RLock()
		stream := h.streams[table]
		h.mu.RUnlock()
		if stream == nil {
			continue
		}
		stream.mu.Lock()
		delete(stream.subs, id)
		stream.mu.Unlock()
	}
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Tables() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.tables...)
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.tables, s.id)
	})
}

// NormalizeTables keeps known table names, deduplicated and sorted.
// An empty input selects every table.
func NormalizeTables(tables []string) []string {
	if len(tables) == 0 {
		all := append([]string(nil), KnownTables...)
		sort.Strings(all)
		return all
	}
	seen := make(map[string]struct{}, len(tables))
	out := make([]string, 0, len(tables))
	for _, raw := range tables {
		for _, part := range strings.Split(raw, ",") {
			table := strings.ToLower(strings.TrimSpace(part))
			if !isKnownTable(table) {
				continue
			}
			if _, ok := seen[table]; ok {
				continue
			}
			seen[table] = struct{}{}
			out = append(out, table)
		}
	}
	sort.Strings(out)
	return out
}

func isKnownTable(table string) bool {
	for _, known := range KnownTables {
		if known == table {
			return true
		}
	}
	return false
}
