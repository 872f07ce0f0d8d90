package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clickpulse/pulse/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage StorageConfig

	// Aggregation configuration
	Aggregation AggregationConfig

	// Ingestion rate limit configuration
	RateLimit RateLimitConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// StorageConfig holds event store and metrics cache configuration
type StorageConfig struct {
	// SQLite event store
	SQLitePath string

	// Redis metrics cache
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int
}

// AggregationConfig holds windowed aggregation settings
type AggregationConfig struct {
	// Interval between metric cycles; the next cycle starts this long
	// after the previous one completes
	Interval     time.Duration
	InitialDelay time.Duration

	ActiveUsersWindow    time.Duration
	PageViewsWindow      time.Duration
	ActiveSessionsWindow time.Duration

	// RetentionSchedule is a 5-field cron spec for the daily cleanup
	RetentionSchedule string
	RetentionPeriod   time.Duration
}

// RateLimitConfig holds ingestion admission control settings
type RateLimitConfig struct {
	// EventsPerSecond is the sustained token refill rate
	EventsPerSecond int
	// BurstCapacity is the bucket size
	BurstCapacity int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Aggregation:   loadAggregationConfig(),
		RateLimit:     loadRateLimitConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PULSE_HOST", "0.0.0.0"),
		Port:            getEnv("PULSE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("PULSE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PULSE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PULSE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PULSE_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("PULSE_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() StorageConfig {
	return StorageConfig{
		SQLitePath:      getEnv("PULSE_SQLITE_PATH", "pulse-events.db"),
		RedisURL:        getEnv("PULSE_REDIS_URL", "redis://localhost:6379"),
		RedisPassword:   getEnv("PULSE_REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("PULSE_REDIS_DB", 0),
		RedisMaxRetries: getEnvInt("PULSE_REDIS_MAX_RETRIES", 3),
		RedisPoolSize:   getEnvInt("PULSE_REDIS_POOL_SIZE", 10),
	}
}

// loadAggregationConfig loads aggregation settings from environment
func loadAggregationConfig() AggregationConfig {
	return AggregationConfig{
		Interval:             getEnvDuration("PULSE_AGGREGATION_INTERVAL", 10*time.Second),
		InitialDelay:         getEnvDuration("PULSE_AGGREGATION_INITIAL_DELAY", 5*time.Second),
		ActiveUsersWindow:    getEnvDuration("PULSE_ACTIVE_USERS_WINDOW", 5*time.Minute),
		PageViewsWindow:      getEnvDuration("PULSE_PAGE_VIEWS_WINDOW", 15*time.Minute),
		ActiveSessionsWindow: getEnvDuration("PULSE_ACTIVE_SESSIONS_WINDOW", 5*time.Minute),
		RetentionSchedule:    getEnv("PULSE_RETENTION_SCHEDULE", "0 2 * * *"),
		RetentionPeriod:      getEnvDuration("PULSE_RETENTION_PERIOD", 24*time.Hour),
	}
}

// loadRateLimitConfig loads admission control settings from environment
func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		EventsPerSecond: getEnvInt("PULSE_RATE_LIMIT_EVENTS_PER_SECOND", 100),
		BurstCapacity:   getEnvInt("PULSE_RATE_LIMIT_BURST_CAPACITY", 200),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("PULSE_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("PULSE_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite path is required")
	}
	if c.Storage.RedisURL == "" {
		return fmt.Errorf("redis URL is required")
	}

	if c.Aggregation.Interval <= 0 {
		return fmt.Errorf("aggregation interval must be positive")
	}
	if c.Aggregation.ActiveUsersWindow <= 0 ||
		c.Aggregation.PageViewsWindow <= 0 ||
		c.Aggregation.ActiveSessionsWindow <= 0 {
		return fmt.Errorf("aggregation windows must be positive")
	}
	if c.Aggregation.RetentionPeriod <= 0 {
		return fmt.Errorf("retention period must be positive")
	}

	if c.RateLimit.EventsPerSecond <= 0 {
		return fmt.Errorf("rate limit events per second must be positive")
	}
	if c.RateLimit.BurstCapacity < c.RateLimit.EventsPerSecond {
		return fmt.Errorf("rate limit burst capacity must be at least the per-second rate")
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
