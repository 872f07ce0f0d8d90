package api

import (
	"net/http"
	"strings"

	"github.com/clickpulse/pulse/pkg/httputil"
)

const (
	defaultLimit      = 5
	maxTopPagesLimit  = 100
	maxRecentSessions = 50
)

// getActiveUsers handles GET /api/analytics/active-users
func (s *Server) getActiveUsers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.query.ActiveUsers(r.Context()))
}

// getTopPages handles GET /api/analytics/top-pages
func (s *Server) getTopPages(w http.ResponseWriter, r *http.Request) {
	limit := httputil.ClampedQueryInt(r, "limit", defaultLimit, 1, maxTopPagesLimit)
	httputil.WriteSuccess(w, s.query.TopPages(r.Context(), limit))
}

// getActiveSessions handles GET /api/analytics/active-sessions
func (s *Server) getActiveSessions(w http.ResponseWriter, r *http.Request) {
	userID := httputil.ParseQueryString(r, "userId", "")
	if strings.TrimSpace(userID) == "" {
		httputil.WriteBadRequest(w, "userId query parameter is required")
		return
	}

	httputil.WriteSuccess(w, s.query.ActiveSessions(r.Context(), userID))
}

// getRecentSessions handles GET /api/analytics/recent-sessions
func (s *Server) getRecentSessions(w http.ResponseWriter, r *http.Request) {
	limit := httputil.ClampedQueryInt(r, "limit", defaultLimit, 1, maxRecentSessions)
	httputil.WriteSuccess(w, s.query.RecentSessions(r.Context(), limit))
}
