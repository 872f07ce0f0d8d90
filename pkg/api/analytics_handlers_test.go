package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clickpulse/pulse/pkg/analytics"
)

func TestGetActiveUsers(t *testing.T) {
	deps := setupServerTest(t)

	if err := deps.cache.SetCount(context.Background(), analytics.ActiveUsersKey, 42, 5*time.Minute); err != nil {
		t.Fatalf("SetCount failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/active-users", nil)
	rec := httptest.NewRecorder()
	deps.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var resp analytics.ActiveUsersResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ActiveUsers != 42 {
		t.Errorf("ActiveUsers = %d, want 42", resp.ActiveUsers)
	}
}

func TestGetTopPages_LimitClamping(t *testing.T) {
	deps := setupServerTest(t)
	ctx := context.Background()

	views := map[string]int64{}
	urls := []string{"/a", "/b", "/c", "/d", "/e", "/f", "/g", "/h"}
	for i, url := range urls {
		views[url] = int64(100 - i)
	}
	if err := deps.cache.ReplaceHash(ctx, analytics.PageViewsKey, views, 15*time.Minute); err != nil {
		t.Fatalf("ReplaceHash failed: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"default limit", "", 5},
		{"explicit limit", "?limit=3", 3},
		{"zero clamps to default", "?limit=0", 5},
		{"above max clamps to default", "?limit=101", 5},
		{"malformed clamps to default", "?limit=abc", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/analytics/top-pages"+tt.query, nil)
			rec := httptest.NewRecorder()
			deps.server.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("Status = %d, want 200", rec.Code)
			}

			var resp analytics.TopPagesResult
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if len(resp.Pages) != tt.want {
				t.Errorf("Got %d pages, want %d", len(resp.Pages), tt.want)
			}
		})
	}
}

func TestGetActiveSessions(t *testing.T) {
	deps := setupServerTest(t)

	if err := deps.cache.ReplaceSet(context.Background(), analytics.SessionKey("usr_7"), []string{"sess_7_a"}, 5*time.Minute); err != nil {
		t.Fatalf("ReplaceSet failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/active-sessions?userId=usr_7", nil)
	rec := httptest.NewRecorder()
	deps.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var resp analytics.ActiveSessionsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.UserID != "usr_7" || resp.ActiveSessions != 1 {
		t.Errorf("Got %+v, want usr_7 with 1 session", resp)
	}
}

func TestGetActiveSessions_MissingUserID(t *testing.T) {
	deps := setupServerTest(t)

	for _, query := range []string{"", "?userId=", "?userId=%20%20"} {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/active-sessions"+query, nil)
		rec := httptest.NewRecorder()
		deps.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Query %q status = %d, want 400", query, rec.Code)
		}
	}
}

func TestGetRecentSessions(t *testing.T) {
	deps := setupServerTest(t)
	ctx := context.Background()

	for user, sessions := range map[string][]string{
		"usr_1": {"a", "b"},
		"usr_2": {"a"},
	} {
		if err := deps.cache.ReplaceSet(ctx, analytics.SessionKey(user), sessions, 5*time.Minute); err != nil {
			t.Fatalf("ReplaceSet failed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/recent-sessions?limit=1", nil)
	rec := httptest.NewRecorder()
	deps.server.ServeHTTP(rec, req)

	var resp analytics.RecentSessionsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0].UserID != "usr_1" {
		t.Errorf("Users = %+v, want single entry usr_1", resp.Users)
	}
}
