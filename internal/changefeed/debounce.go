package changefeed

import (
	"context"
	"sort"
	"time"
)

const DefaultDebounceWindow = 500 * time.Millisecond

// Refresh tells a client which tables changed during one quiet window.
type Refresh struct {
	Tables  []string `json:"tables"`
	LastSeq uint64   `json:"last_seq"`
}

// Debounce collapses bursts of events into one Refresh emitted after the
// input has been quiet for window. The output closes when ctx ends or
// events closes; a pending refresh is flushed on close of events.
func Debounce(ctx context.Context, events <-chan Event, window time.Duration) <-chan Refresh {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	out := make(chan Refresh, 1)

	go func() {
		defer close(out)

		pending := map[string]struct{}{}
		var lastSeq uint64
		// Go 1.23 timer semantics: Reset discards any undelivered tick.
		timer := time.NewTimer(window)
		timer.Stop()

		flush := func() bool {
			if len(pending) == 0 {
				return true
			}
			refresh := Refresh{Tables: make([]string, 0, len(pending)), LastSeq: lastSeq}
			for table := range pending {
				refresh.Tables = append(refresh.Tables, table)
			}
			sort.Strings(refresh.Tables)
			pending = map[string]struct{}{}

			select {
			case out <- refresh:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-events:
				if !ok {
					timer.Stop()
					flush()
					return
				}
				pending[event.Table] = struct{}{}
				if event.Seq > lastSeq {
					lastSeq = event.Seq
				}
				timer.Reset(window)
			case <-timer.C:
				if !flush() {
					return
				}
			}
		}
	}()

	return out
}
