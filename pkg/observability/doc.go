// Package observability provides structured logging, Prometheus metrics, and
// health checks for the analytics server.
//
// # Overview
//
// This package handles the operational surface of the service: a JSON logger
// built on log/slog with request-ID context propagation, a Prometheus metrics
// registry covering the HTTP, ingestion, and aggregation paths, and liveness/
// readiness probes that ping the event store and metrics cache.
//
// # Key Types
//
// Logger: Structured JSON logger with field chaining
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("task", "metrics").Info("cycle complete")
//
// Metrics: Prometheus metrics for ingestion, aggregation, and HTTP traffic
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.EventsIngestedTotal.Inc()
//
// HealthChecker: Probes dependencies implementing Pinger
//
//	checker := observability.NewHealthChecker(map[string]observability.Pinger{
//		"events": store,
//		"cache":  cache,
//	})
//
// # Related Packages
//
//   - pkg/api: Instruments handlers and emits request logs
//   - pkg/analytics: Records cycle outcomes and durations
package observability
