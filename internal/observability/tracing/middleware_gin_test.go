package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return recorder
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, attr := range span.Attributes() {
		out[attr.Key] = attr.Value
	}
	return out
}

func TestGinMiddlewareNamesSpanAfterRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := recordSpans(t)

	router := gin.New()
	router.Use(GinMiddleware())
	router.POST("/api/requests/:id/finish", func(c *gin.Context) {
		ctx := operatorcontext.WithOperator(c.Request.Context(), operatorcontext.Operator{ID: 4, Username: "mona", Role: "dispatcher"})
		c.Request = c.Request.WithContext(ctx)
		Annotate(ctx,
			KeyRequestType.String("new_filling"),
			KeyDebtCreated.Bool(true),
			attribute.String("customer_name", "Ali"),
		)
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/requests/42/finish", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "POST /api/requests/:id/finish", span.Name())
	assert.Equal(t, "aquaflow.http", span.InstrumentationScope().Name)

	attrs := spanAttributes(span)
	assert.Equal(t, "requests", attrs[KeyResource].AsString())
	assert.Equal(t, "42", attrs[KeyEntityID].AsString())
	assert.Equal(t, "dispatcher", attrs[KeyOperatorRole].AsString())
	assert.Equal(t, "new_filling", attrs[KeyRequestType].AsString())
	assert.True(t, attrs[KeyDebtCreated].AsBool())
	assert.Equal(t, int64(http.StatusOK), attrs["http.status_code"].AsInt64())
	assert.NotContains(t, attrs, attribute.Key("customer_name"))
}

func TestGinMiddlewareMarksServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := recordSpans(t)

	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/requests", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/requests?request_type=New_Filling", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	attrs := spanAttributes(spans[0])
	assert.Equal(t, "new_filling", attrs[KeyRequestType].AsString())
	assert.NotContains(t, attrs, KeyOperatorRole)
}

func TestResourceFromRoute(t *testing.T) {
	assert.Equal(t, "debts", resourceFromRoute("/api/debts/payments"))
	assert.Equal(t, "customers", resourceFromRoute("/api/customers"))
	assert.Equal(t, "", resourceFromRoute("/auth/login"))
	assert.Equal(t, "", resourceFromRoute("unmatched"))
}
