package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("request_type", "new_filling"),
		attribute.String("customer_id", "456"),
		attribute.String("transition", "finished"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "request_type" && attrs[1].Key != "request_type" {
		t.Fatalf("expected request_type to be retained")
	}
	if attrs[0].Key != "transition" && attrs[1].Key != "transition" {
		t.Fatalf("expected transition to be retained")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordRequestTransition(ctx, "new_filling", "finished")
	m.RecordPayment(ctx, "partial", 100)
	m.RecordArchived(ctx, "request")
	m.RecordDebtCreated(ctx)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "aquaflow"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordPayment(context.Background(), "settled", 2500)
}
