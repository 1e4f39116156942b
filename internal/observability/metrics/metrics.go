package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	requestTransitions metric.Int64Counter
	payments           metric.Int64Counter
	paymentAmount      metric.Int64Counter
	archivedRecords    metric.Int64Counter
	debtsCreated       metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "aquaflow"
	}
	meter := provider.Meter(name)

	requestTransitions, err := meter.Int64Counter("aquaflow_request_transitions_total")
	if err != nil {
		return nil, err
	}
	payments, err := meter.Int64Counter("aquaflow_payments_total")
	if err != nil {
		return nil, err
	}
	paymentAmount, err := meter.Int64Counter("aquaflow_payment_amount_total")
	if err != nil {
		return nil, err
	}
	archivedRecords, err := meter.Int64Counter("aquaflow_archived_records_total")
	if err != nil {
		return nil, err
	}
	debtsCreated, err := meter.Int64Counter("aquaflow_debts_created_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestTransitions: requestTransitions,
		payments:           payments,
		paymentAmount:      paymentAmount,
		archivedRecords:    archivedRecords,
		debtsCreated:       debtsCreated,
	}, nil
}

// RecordRequestTransition counts lifecycle moves such as created, delivered, finished.
func (m *Metrics) RecordRequestTransition(ctx context.Context, requestType, transition string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("request_type", strings.TrimSpace(requestType)),
		attribute.String("transition", strings.TrimSpace(transition)),
	)
	m.requestTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPayment counts an allocated payment and its applied amount.
func (m *Metrics) RecordPayment(ctx context.Context, outcome string, applied int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.payments.Add(ctx, 1, metric.WithAttributes(attrs...))
	if applied > 0 {
		m.paymentAmount.Add(ctx, applied, metric.WithAttributes(attrs...))
	}
}

// RecordArchived counts snapshots written to the deletion archive.
func (m *Metrics) RecordArchived(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.archivedRecords.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDebtCreated counts debts opened by finished requests.
func (m *Metrics) RecordDebtCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.debtsCreated.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"request_type": {},
	"transition":   {},
	"outcome":      {},
	"source":       {},
	"route":        {},
	"method":       {},
	"status_code":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
