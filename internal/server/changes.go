package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
)

const changesHeartbeat = 15 * time.Second

// StreamChanges pushes debounced table refresh signals over SSE. Clients
// resume with Last-Event-ID to receive buffered events they missed.
func (s *Server) StreamChanges(c *gin.Context) {
	if s.feed == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	flusher, ok := streamFlusher(c.Writer)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	afterSeq, err := lastEventID(c)
	if err != nil {
		AbortWithError(c, newValidationError("last_event_id", "invalid_last_event_id", "invalid last event id"))
		return
	}

	subscription, backlog, err := s.feed.Subscribe(c.QueryArray("tables"), afterSeq)
	if err != nil {
		if errors.Is(err, changefeed.ErrInvalidTables) {
			AbortWithError(c, err)
			return
		}
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer subscription.Close()

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}
	if refresh, ok := backlogRefresh(backlog); ok {
		if err := writeRefresh(writer, refresh); err != nil {
			return
		}
	}
	flusher.Flush()

	ctx := c.Request.Context()
	refreshes := changefeed.Debounce(ctx, subscription.Events(), s.cfg.ChangefeedDebounce)
	heartbeat := time.NewTicker(changesHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case refresh, ok := <-refreshes:
			if !ok {
				return
			}
			if err := writeRefresh(writer, refresh); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// streamFlusher reports whether the connection under gin's writer can flush.
// gin's own writer always claims to, and panics on Flush when it cannot.
func streamFlusher(w gin.ResponseWriter) (http.Flusher, bool) {
	var inner http.ResponseWriter = w
	if u, ok := w.(interface{ Unwrap() http.ResponseWriter }); ok {
		inner = u.Unwrap()
	}
	if _, ok := inner.(http.Flusher); !ok {
		return nil, false
	}
	return w, true
}

func lastEventID(c *gin.Context) (uint64, error) {
	raw := strings.TrimSpace(c.GetHeader("Last-Event-ID"))
	if raw == "" {
		raw = strings.TrimSpace(c.Query("last_event_id"))
	}
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func backlogRefresh(events []changefeed.Event) (changefeed.Refresh, bool) {
	if len(events) == 0 {
		return changefeed.Refresh{}, false
	}
	seen := map[string]struct{}{}
	refresh := changefeed.Refresh{}
	for _, event := range events {
		if _, ok := seen[event.Table]; !ok {
			seen[event.Table] = struct{}{}
			refresh.Tables = append(refresh.Tables, event.Table)
		}
		if event.Seq > refresh.LastSeq {
			refresh.LastSeq = event.Seq
		}
	}
	return refresh, true
}

func writeRefresh(w io.Writer, refresh changefeed.Refresh) error {
	data, err := json.Marshal(gin.H{"tables": refresh.Tables})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: refresh\ndata: %s\n\n", refresh.LastSeq, data)
	return err
}
