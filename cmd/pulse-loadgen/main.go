package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clickpulse/pulse/pkg/simulator"
)

var (
	targetURL    = flag.String("target", getEnv("PULSE_LOADGEN_TARGET", "http://localhost:8080/api/events"), "Ingestion endpoint URL")
	emitInterval = flag.Duration("emit-interval", 20*time.Millisecond, "Pause between generated events")
	minUsers     = flag.Int("min-users", 800, "Minimum simulated user pool size")
	maxUsers     = flag.Int("max-users", 1000, "Maximum simulated user pool size")
	maxInFlight  = flag.Int("max-in-flight", 64, "Maximum concurrent sends")
	logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	}

	if *minUsers <= 0 || *maxUsers < *minUsers {
		log.Fatalf("Invalid user pool range [%d, %d]", *minUsers, *maxUsers)
	}

	cfg := simulator.DefaultConfig(*targetURL)
	cfg.EmitInterval = *emitInterval
	cfg.MinUsers = *minUsers
	cfg.MaxUsers = *maxUsers
	cfg.MaxInFlight = *maxInFlight

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	simulator.New(cfg, log).Run(ctx)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
