package observability

import (
	"testing"

	"github.com/smallbiznis/aquaflow/internal/config"
	"github.com/stretchr/testify/assert"
)

func fromMap(values map[string]string) envReader {
	return func(key string) string { return values[key] }
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig(config.Config{Environment: "production", AppVersion: "1.2.3", OTLPEndpoint: "collector:4317"}, fromMap(nil))

	assert.Equal(t, "aquaflow", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio)
	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg := loadConfig(config.Config{Environment: "production"}, fromMap(map[string]string{
		"OTEL_ENABLED":                       "true",
		"OTEL_SAMPLING_RATIO":                "0.5",
		"OTEL_EXPORTER_OTLP_PROTOCOL":        "grpc",
		"OTEL_EXPORTER_OTLP_TRACES_PROTOCOL": " HTTP ",
		"LOG_LEVEL":                          "DEBUG",
		"DEPLOYMENT_ENV":                     "staging",
	}))

	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, 0.5, cfg.OtelSamplingRatio)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, "staging", cfg.Environment)
	assert.True(t, cfg.Debug())
}

func TestLoadConfigSamplesEverythingInDevelopment(t *testing.T) {
	cfg := loadConfig(config.Config{Environment: "development"}, fromMap(map[string]string{"OTEL_SAMPLING_RATIO": "7"}))
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
}

func TestDebugInDevelopment(t *testing.T) {
	assert.True(t, Config{Environment: "development"}.Debug())
	assert.True(t, Config{Environment: "production", LogLevel: "debug"}.Debug())
}

func TestSplitConfigSharesExporterSettings(t *testing.T) {
	out := splitConfig(Config{
		ServiceName:          "aquaflow",
		Environment:          "development",
		OtelEnabled:          true,
		OtelExporterEndpoint: "collector:4318",
		OtelExporterProtocol: "http",
		OtelSamplingRatio:    1,
	})

	assert.True(t, out.Logger.Debug)
	assert.True(t, out.Logger.IncludeStackOnError)
	assert.Equal(t, "collector:4318", out.Tracing.ExporterEndpoint)
	assert.Equal(t, "collector:4318", out.Metrics.ExporterEndpoint)
	assert.Equal(t, 1.0, out.Tracing.SamplingRatio)
	assert.True(t, out.Metrics.Enabled)
}
