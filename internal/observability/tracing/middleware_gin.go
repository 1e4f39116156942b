package tracing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/aquaflow/internal/observability/obscontext"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "aquaflow.http"

// Back-office span attributes. Names and phones never go on a span.
const (
	KeyResource     attribute.Key = "aquaflow.resource"
	KeyEntityID     attribute.Key = "aquaflow.entity_id"
	KeyOperatorRole attribute.Key = "aquaflow.operator.role"
	KeyRequestType  attribute.Key = "aquaflow.request.type"
	KeyCustomerID   attribute.Key = "aquaflow.customer_id"
	KeyDebtCreated  attribute.Key = "aquaflow.debt_created"
)

// GinMiddleware opens one server span per API call, named after the
// matched route so /api/requests/:id/finish is one series, not one per id.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, SpanName(c.Request.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(routeAttributes(c, route)...),
		)
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			if member, err := baggage.NewMember("request_id", requestID); err == nil {
				if bag, err := baggage.New(member); err == nil {
					ctx = baggage.ContextWithBaggage(ctx, bag)
				}
			}
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []attribute.KeyValue{
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		}
		if op, ok := operatorcontext.OperatorFromContext(c.Request.Context()); ok {
			attrs = append(attrs, KeyOperatorRole.String(op.Role))
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if last := c.Errors.Last(); last != nil {
				if safe := SafeError(last.Err); safe != nil {
					span.RecordError(safe)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// SpanName is "<METHOD> <route template>".
func SpanName(method, route string) string {
	return strings.ToUpper(method) + " " + route
}

// Annotate adds allowlisted attributes to the span carried by ctx.
func Annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(SafeAttributes(attrs...)...)
}

func routeAttributes(c *gin.Context, route string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
	}
	if resource := resourceFromRoute(route); resource != "" {
		attrs = append(attrs, KeyResource.String(resource))
	}
	if id := c.Param("id"); id != "" {
		attrs = append(attrs, KeyEntityID.String(id))
	}
	if requestType := strings.TrimSpace(c.Query("request_type")); requestType != "" && strings.HasPrefix(route, "/api/requests") {
		attrs = append(attrs, KeyRequestType.String(strings.ToLower(requestType)))
	}
	return SafeAttributes(attrs...)
}

// resourceFromRoute returns the first segment after /api, e.g. "requests"
// for /api/requests/:id/finish.
func resourceFromRoute(route string) string {
	trimmed := strings.TrimPrefix(route, "/api/")
	if trimmed == route {
		return ""
	}
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}
