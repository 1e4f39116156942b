package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBSlowQuery       time.Duration
	DBLogQueries      bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Storage   StorageConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig

	ChangefeedDebounce time.Duration
	PGNotifyEnabled    bool
}

type StorageConfig struct {
	Driver        string
	LocalDir      string
	PublicBaseURL string
	BucketPrefix  string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

type RateLimitConfig struct {
	LoginRate      float64
	LoginBurst     int
	RequestLockTTL time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "aquaflow"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "aquaflow"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBSlowQuery:       getenvDuration("DATABASE_SLOW_QUERY", 200*time.Millisecond),
		DBLogQueries:      getenvBool("DATABASE_LOG_QUERIES", false),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("REDIS_DB", 0),
		Storage: StorageConfig{
			Driver:        strings.ToLower(getenv("STORAGE_DRIVER", StorageDriverLocal)),
			LocalDir:      getenv("STORAGE_LOCAL_DIR", "./uploads"),
			PublicBaseURL: strings.TrimRight(getenv("STORAGE_PUBLIC_BASE_URL", "/uploads"), "/"),
			BucketPrefix:  strings.TrimSpace(getenv("GCS_BUCKET_PREFIX", "")),
		},
		Auth: AuthConfig{
			JWTSecret:     strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
			TokenTTL:      getenvDuration("AUTH_TOKEN_TTL", 12*time.Hour),
			AdminUsername: strings.TrimSpace(getenv("ADMIN_USERNAME", "")),
			AdminPassword: getenv("ADMIN_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			LoginRate:      getenvFloat("LOGIN_RATE_PER_SECOND", 0.2),
			LoginBurst:     getenvInt("LOGIN_BURST", 5),
			RequestLockTTL: getenvDuration("REQUEST_LOCK_TTL", 5*time.Second),
		},
		ChangefeedDebounce: time.Duration(getenvInt("CHANGEFEED_DEBOUNCE_MS", 500)) * time.Millisecond,
		PGNotifyEnabled:    getenvBool("PG_NOTIFY_ENABLED", false),
	}

	return cfg
}

const (
	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"
)

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
