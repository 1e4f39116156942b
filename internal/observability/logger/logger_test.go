package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/aquaflow/internal/observability/obscontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-9")
	ctx = obscontext.WithActor(ctx, "operator", "77")
	WithContext(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "operator", fields["actor_type"])
	assert.Equal(t, "77", fields["actor_id"])
}

func TestWithContextWithoutFieldsReturnsBase(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithContext(context.Background(), base))
}

func TestGinMiddlewarePropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinMiddleware(MiddlewareConfig{}))
	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = obscontext.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", resp.Header().Get("X-Request-Id"))
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinMiddleware(MiddlewareConfig{}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from debts"))
	assert.Equal(t, "UPDATE", operationFromSQL("WITH x AS (SELECT 1) UPDATE debts SET is_paid = true"))
	assert.Equal(t, "DELETE", operationFromSQL("WITH gone AS (SELECT id FROM requests WHERE status = 'delivered') DELETE FROM requests WHERE id IN (SELECT id FROM gone)"))
	assert.Equal(t, "SELECT", operationFromSQL("SELECT COUNT(1) FROM debts"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestTableFromSQL(t *testing.T) {
	assert.Equal(t, "debts", tableFromSQL(`SELECT id FROM debts WHERE customer_id = ?`))
	assert.Equal(t, "fillings", tableFromSQL(`INSERT INTO "fillings" (id) VALUES (?)`))
	assert.Equal(t, "requests", tableFromSQL(`UPDATE requests SET status = ?`))
	assert.Equal(t, "debts", tableFromSQL(`WITH open AS (SELECT id FROM customers) UPDATE debts SET is_paid = true`))
	assert.Equal(t, "", tableFromSQL(`SELECT 1`))
}

func captureGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestQueryLoggerLogsLedgerWrites(t *testing.T) {
	logs := captureGlobal(t)
	l := NewQueryLogger(QueryLogConfig{})
	ctx := obscontext.WithRequestID(context.Background(), "req-1")

	l.Trace(ctx, time.Now(), func() (string, int64) {
		return `UPDATE debts SET remaining_amount = ? WHERE id = ?`, 1
	}, nil)
	l.Trace(ctx, time.Now(), func() (string, int64) {
		return `SELECT id FROM debts WHERE customer_id = ?`, 3
	}, nil)
	l.Trace(ctx, time.Now(), func() (string, int64) {
		return `UPDATE requests SET status = ?`, 1
	}, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "UPDATE", fields["operation"])
	assert.Equal(t, "debts", fields["table"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.NotContains(t, fields, "sql")
}

func TestQueryLoggerFlagsSlowAndFailedStatements(t *testing.T) {
	logs := captureGlobal(t)
	l := NewQueryLogger(QueryLogConfig{SlowThreshold: 500 * time.Millisecond})

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return `SELECT id FROM customers`, 10
	}, nil)
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT id FROM customers WHERE id = ?`, 0
	}, gormlogger.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `INSERT INTO areas (id) VALUES (?)`, 0
	}, errors.New("constraint failed"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, true, logs.All()[0].ContextMap()["slow"])
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
	assert.Equal(t, "areas", logs.All()[1].ContextMap()["table"])
}

func TestQueryLoggerSilentMode(t *testing.T) {
	logs := captureGlobal(t)
	l := NewQueryLogger(QueryLogConfig{Verbose: true}).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `DELETE FROM fillings WHERE id = ?`, 1
	}, errors.New("boom"))
	assert.Zero(t, logs.Len())
}
