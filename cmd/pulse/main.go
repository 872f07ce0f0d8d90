package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/clickpulse/pulse/pkg/analytics"
	"github.com/clickpulse/pulse/pkg/api"
	"github.com/clickpulse/pulse/pkg/cache"
	"github.com/clickpulse/pulse/pkg/config"
	"github.com/clickpulse/pulse/pkg/middleware"
	"github.com/clickpulse/pulse/pkg/observability"
	"github.com/clickpulse/pulse/pkg/scheduler"
	"github.com/clickpulse/pulse/pkg/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	store, err := sqlite.Open(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer store.Close()
	logger.WithField("path", cfg.Storage.SQLitePath).Info("Event store opened")

	metricsCache, err := cache.NewRedisCache(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to metrics cache: %w", err)
	}
	defer metricsCache.Close()
	logger.WithField("url", cfg.Storage.RedisURL).Info("Metrics cache connected")

	// Aggregation: windowed metric cycles plus daily retention cleanup
	engine := analytics.NewEngine(store, metricsCache, cfg.Aggregation, logger, metrics)
	sched := scheduler.New(logger)
	sched.Every("metric-aggregation", cfg.Aggregation.Interval, cfg.Aggregation.InitialDelay, engine.RunCycle)
	if err := sched.Cron("retention-cleanup", cfg.Aggregation.RetentionSchedule, engine.RetentionCleanup); err != nil {
		return err
	}

	query := analytics.NewQueryService(metricsCache, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	server := api.NewServer(store, query, limiter, logger, metrics)

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port so probes bypass rate limiting
	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(map[string]observability.Pinger{
		"event_store":   store,
		"metrics_cache": metricsCache,
	})
	observability.RegisterHealthRoutes(healthMux, checker)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", observability.Handler(registry))
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.WithField("addr", apiServer.Addr).Info("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.WithField("addr", healthServer.Addr).Info("Health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	sched.Start()
	logger.WithFields(map[string]interface{}{
		"interval":      cfg.Aggregation.Interval.String(),
		"initial_delay": cfg.Aggregation.InitialDelay.String(),
		"retention":     cfg.Aggregation.RetentionSchedule,
	}).Info("Aggregation scheduler started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("Shutting down gracefully")
	case err := <-errCh:
		logger.WithError(err).Error("Server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("API server shutdown failed")
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Health server shutdown failed")
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Scheduler shutdown failed")
	}

	logger.Info("Shutdown complete")
	return nil
}
