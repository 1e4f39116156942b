package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/aquaflow/internal/config"
)

// Config is the logging and telemetry slice of the aquaflow configuration.
// LOG_* and OTEL_* variables override what config.Load produced.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

const (
	defaultServiceName = "aquaflow"
	// Production traces are sampled; a back office gets little traffic so
	// development keeps every span.
	defaultSamplingRatio = 0.1
)

func LoadConfig(cfg config.Config) Config {
	return loadConfig(cfg, os.Getenv)
}

// envReader reads one override; empty means unset.
type envReader func(string) string

func loadConfig(cfg config.Config, getenv envReader) Config {
	env := envReader(func(key string) string { return strings.TrimSpace(getenv(key)) })

	out := Config{
		ServiceName:          firstNonEmpty(strings.TrimSpace(cfg.AppName), defaultServiceName),
		Environment:          firstNonEmpty(env("DEPLOYMENT_ENV"), strings.TrimSpace(cfg.Environment)),
		Version:              firstNonEmpty(env("SERVICE_VERSION"), strings.TrimSpace(cfg.AppVersion)),
		LogLevel:             strings.ToLower(firstNonEmpty(env("LOG_LEVEL"), "info")),
		LogFormat:            strings.ToLower(firstNonEmpty(env("LOG_FORMAT"), "json")),
		OtelExporterEndpoint: firstNonEmpty(env("OTEL_EXPORTER_OTLP_ENDPOINT"), strings.TrimSpace(cfg.OTLPEndpoint)),
		OtelExporterProtocol: strings.ToLower(firstNonEmpty(
			env("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"),
			env("OTEL_EXPORTER_OTLP_PROTOCOL"),
			"grpc",
		)),
	}
	out.OtelEnabled = env.flag("OTEL_ENABLED", false)

	ratio := defaultSamplingRatio
	if isDevEnv(out.Environment) {
		ratio = 1
	}
	out.OtelSamplingRatio = env.ratio("OTEL_SAMPLING_RATIO", ratio)
	return out
}

// Debug turns on verbose request logging: an explicit debug level or any
// development environment.
func (c Config) Debug() bool {
	return strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") || isDevEnv(c.Environment)
}

func isDevEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func (e envReader) flag(key string, def bool) bool {
	parsed, err := strconv.ParseBool(e(key))
	if err != nil {
		return def
	}
	return parsed
}

// ratio reads a sampling ratio in (0, 1]; anything else keeps def.
func (e envReader) ratio(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(e(key), 64)
	if err != nil || parsed <= 0 || parsed > 1 {
		return def
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
