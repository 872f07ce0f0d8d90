package api

import (
	"net/http"

	"github.com/clickpulse/pulse/pkg/httputil"
	"github.com/clickpulse/pulse/pkg/middleware"
	"github.com/clickpulse/pulse/pkg/observability"
	"github.com/clickpulse/pulse/pkg/storage"
)

// ingestEvent handles POST /api/events
func (s *Server) ingestEvent(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())

	if !s.limiter.Allow(middleware.ClientIP(r)) {
		s.metrics.IngestRejectedTotal.WithLabelValues("rate_limited").Inc()
		httputil.WriteTooManyRequests(w, "Event ingestion rate limit exceeded. Please retry later.")
		return
	}

	var event storage.Event
	if err := httputil.ParseJSON(r, &event); err != nil {
		s.metrics.IngestRejectedTotal.WithLabelValues("malformed_json").Inc()
		httputil.WriteBadRequest(w, "Request body is not valid JSON")
		return
	}

	if fieldErrors := ValidateEvent(&event); fieldErrors != nil {
		s.metrics.IngestRejectedTotal.WithLabelValues("validation").Inc()
		httputil.WriteValidationError(w, fieldErrors)
		return
	}

	eventID, err := s.store.Append(r.Context(), &event)
	if err != nil {
		s.metrics.IngestStoreErrorsTotal.Inc()
		logger.WithError(err).Error("Failed to store event")
		httputil.WriteInternalError(w)
		return
	}

	s.metrics.EventsIngestedTotal.Inc()
	httputil.WriteCreated(w, IngestResponse{
		Status:  "success",
		EventID: eventID,
		Message: "Event ingested successfully",
	})
}

// ingestHealth handles GET /api/events/health
func (s *Server) ingestHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, HealthResponse{Status: "UP", Service: "event-ingestion"})
}

// analyticsHealth handles GET /api/analytics/health
func (s *Server) analyticsHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, HealthResponse{Status: "UP", Service: "analytics"})
}
