package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ingestion metrics
	EventsIngestedTotal    prometheus.Counter
	IngestRejectedTotal    *prometheus.CounterVec
	IngestStoreErrorsTotal prometheus.Counter

	// Aggregation metrics
	AggregationCyclesTotal   *prometheus.CounterVec
	AggregationCycleDuration prometheus.Histogram
	EventsDeletedTotal       prometheus.Counter

	// Cache metrics
	CacheErrorsTotal *prometheus.CounterVec

	// Published snapshot gauges
	ActiveUsers  prometheus.Gauge
	TrackedPages prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulse_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		EventsIngestedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_events_ingested_total",
				Help: "Total number of events accepted and stored",
			},
		),
		IngestRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_ingest_rejected_total",
				Help: "Total number of rejected ingestion requests",
			},
			[]string{"reason"},
		),
		IngestStoreErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_ingest_store_errors_total",
				Help: "Total number of event store failures during ingestion",
			},
		),
		AggregationCyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_aggregation_cycles_total",
				Help: "Total number of aggregation cycles by outcome",
			},
			[]string{"status"},
		),
		AggregationCycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pulse_aggregation_cycle_duration_seconds",
				Help:    "Aggregation cycle duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		EventsDeletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_events_deleted_total",
				Help: "Total number of events removed by retention cleanup",
			},
		),
		CacheErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_cache_errors_total",
				Help: "Total number of metrics cache failures",
			},
			[]string{"operation"},
		),
		ActiveUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulse_active_users",
				Help: "Most recently published active user count",
			},
		),
		TrackedPages: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulse_tracked_pages",
				Help: "Number of page URLs in the most recent page view snapshot",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EventsIngestedTotal,
		m.IngestRejectedTotal,
		m.IngestStoreErrorsTotal,
		m.AggregationCyclesTotal,
		m.AggregationCycleDuration,
		m.EventsDeletedTotal,
		m.CacheErrorsTotal,
		m.ActiveUsers,
		m.TrackedPages,
	)

	return m
}

// Handler returns the Prometheus scrape handler for a registry
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the response status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler wraps an HTTP handler with request count and duration metrics
func (m *Metrics) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
