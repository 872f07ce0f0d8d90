// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	PULSE_HOST="0.0.0.0"
//	PULSE_PORT="8080"
//	PULSE_HEALTH_PORT="9090"
//	PULSE_READ_TIMEOUT="15s"
//	PULSE_WRITE_TIMEOUT="15s"
//
// Storage settings:
//
//	PULSE_SQLITE_PATH="pulse-events.db"
//	PULSE_REDIS_URL="redis://localhost:6379"
//	PULSE_REDIS_POOL_SIZE="10"
//
// Aggregation settings:
//
//	PULSE_AGGREGATION_INTERVAL="10s"
//	PULSE_AGGREGATION_INITIAL_DELAY="5s"
//	PULSE_ACTIVE_USERS_WINDOW="5m"
//	PULSE_PAGE_VIEWS_WINDOW="15m"
//	PULSE_ACTIVE_SESSIONS_WINDOW="5m"
//	PULSE_RETENTION_SCHEDULE="0 2 * * *"
//	PULSE_RETENTION_PERIOD="24h"
//
// Rate limit settings:
//
//	PULSE_RATE_LIMIT_EVENTS_PER_SECOND="100"
//	PULSE_RATE_LIMIT_BURST_CAPACITY="200"
//
// Observability settings:
//
//	PULSE_LOG_LEVEL="info"  # debug, info, warn, error
//	PULSE_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Cycle interval: %s\n", cfg.Aggregation.Interval)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/analytics: Uses aggregation configuration
//   - pkg/observability: Uses observability configuration
package config
