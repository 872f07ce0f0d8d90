package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/clickpulse/pulse/pkg/analytics"
	"github.com/clickpulse/pulse/pkg/middleware"
	"github.com/clickpulse/pulse/pkg/observability"
	"github.com/clickpulse/pulse/pkg/storage"
)

// Limiter admits or rejects a request for a client key
type Limiter interface {
	Allow(key string) bool
}

// Server represents our API server
type Server struct {
	store   storage.EventStore
	query   *analytics.QueryService
	limiter Limiter
	router  *mux.Router
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewServer creates a new API server
func NewServer(store storage.EventStore, query *analytics.QueryService, limiter Limiter, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		store:   store,
		query:   query,
		limiter: limiter,
		router:  mux.NewRouter(),
		logger:  logger,
		metrics: metrics,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestLogging(s.logger))

	// Ingestion routes
	s.router.Handle("/api/events",
		s.metrics.InstrumentHandler("/api/events", http.HandlerFunc(s.ingestEvent))).Methods("POST")
	s.router.HandleFunc("/api/events/health", s.ingestHealth).Methods("GET")

	// Analytics routes
	s.router.Handle("/api/analytics/active-users",
		s.metrics.InstrumentHandler("/api/analytics/active-users", http.HandlerFunc(s.getActiveUsers))).Methods("GET")
	s.router.Handle("/api/analytics/top-pages",
		s.metrics.InstrumentHandler("/api/analytics/top-pages", http.HandlerFunc(s.getTopPages))).Methods("GET")
	s.router.Handle("/api/analytics/active-sessions",
		s.metrics.InstrumentHandler("/api/analytics/active-sessions", http.HandlerFunc(s.getActiveSessions))).Methods("GET")
	s.router.Handle("/api/analytics/recent-sessions",
		s.metrics.InstrumentHandler("/api/analytics/recent-sessions", http.HandlerFunc(s.getRecentSessions))).Methods("GET")
	s.router.HandleFunc("/api/analytics/health", s.analyticsHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
