package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/clickpulse/pulse/pkg/cache"
	"github.com/clickpulse/pulse/pkg/observability"
)

// ActiveUsersResult is the active user count response payload
type ActiveUsersResult struct {
	ActiveUsers int64  `json:"activeUsers"`
	Timestamp   string `json:"timestamp"`
}

// PageViewCount is one entry in the top pages ranking
type PageViewCount struct {
	URL   string `json:"url"`
	Views int64  `json:"views"`
}

// TopPagesResult is the top pages response payload
type TopPagesResult struct {
	Pages     []PageViewCount `json:"pages"`
	Timestamp string          `json:"timestamp"`
}

// ActiveSessionsResult is the per-user session response payload
type ActiveSessionsResult struct {
	UserID         string   `json:"userId"`
	ActiveSessions int      `json:"activeSessions"`
	Sessions       []string `json:"sessions"`
	Timestamp      string   `json:"timestamp"`
}

// UserSessionInfo is one entry in the recent sessions ranking
type UserSessionInfo struct {
	UserID         string   `json:"userId"`
	ActiveSessions int      `json:"activeSessions"`
	Sessions       []string `json:"sessions"`
}

// RecentSessionsResult is the recent sessions response payload
type RecentSessionsResult struct {
	Users     []UserSessionInfo `json:"users"`
	Timestamp string            `json:"timestamp"`
}

// QueryService reads published aggregates from the metrics cache. All reads
// fail open: a missing key or an unreachable cache degrades to zero values
// rather than an error. Response timestamps are generation time, not data
// computation time; the staleness bound is the aggregation window plus the
// cycle interval.
type QueryService struct {
	cache  cache.MetricsCache
	logger *observability.Logger
	now    func() time.Time
}

// NewQueryService creates a query service
func NewQueryService(c cache.MetricsCache, logger *observability.Logger) *QueryService {
	return &QueryService{
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
}

func (q *QueryService) timestamp() string {
	return q.now().UTC().Format(time.RFC3339)
}

// ActiveUsers returns the published distinct user count, or zero when the
// snapshot is absent or the cache is unreachable
func (q *QueryService) ActiveUsers(ctx context.Context) ActiveUsersResult {
	result := ActiveUsersResult{Timestamp: q.timestamp()}

	count, ok, err := q.cache.GetCount(ctx, ActiveUsersKey)
	if err != nil {
		q.logger.WithError(err).Error("error retrieving active users")
		return result
	}
	if ok {
		result.ActiveUsers = count
	}

	return result
}

// TopPages returns up to limit pages ranked by view count descending.
// Ties break on URL ascending so rankings are deterministic.
func (q *QueryService) TopPages(ctx context.Context, limit int) TopPagesResult {
	result := TopPagesResult{Pages: []PageViewCount{}, Timestamp: q.timestamp()}

	counts, err := q.cache.GetHash(ctx, PageViewsKey)
	if err != nil {
		q.logger.WithError(err).Error("error retrieving top pages")
		return result
	}

	pages := make([]PageViewCount, 0, len(counts))
	for url, views := range counts {
		pages = append(pages, PageViewCount{URL: url, Views: views})
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Views != pages[j].Views {
			return pages[i].Views > pages[j].Views
		}
		return pages[i].URL < pages[j].URL
	})

	if len(pages) > limit {
		pages = pages[:limit]
	}
	result.Pages = pages

	return result
}

// ActiveSessions returns the published session set for one user
func (q *QueryService) ActiveSessions(ctx context.Context, userID string) ActiveSessionsResult {
	result := ActiveSessionsResult{
		UserID:    userID,
		Sessions:  []string{},
		Timestamp: q.timestamp(),
	}

	sessions, err := q.cache.SetMembers(ctx, SessionKey(userID))
	if err != nil {
		q.logger.WithField("user_id", userID).WithError(err).Error("error retrieving active sessions")
		return result
	}

	sort.Strings(sessions)
	result.Sessions = sessions
	result.ActiveSessions = len(sessions)

	return result
}

// RecentSessions scans all published session sets and returns up to limit
// users ranked by session count descending, ties broken on user ID ascending
func (q *QueryService) RecentSessions(ctx context.Context, limit int) RecentSessionsResult {
	result := RecentSessionsResult{Users: []UserSessionInfo{}, Timestamp: q.timestamp()}

	keys, err := q.cache.ScanKeys(ctx, UserSessionsPrefix+"*")
	if err != nil {
		q.logger.WithError(err).Error("error scanning session keys")
		return result
	}

	users := make([]UserSessionInfo, 0, len(keys))
	for _, key := range keys {
		userID := strings.TrimPrefix(key, UserSessionsPrefix)

		sessions, err := q.cache.SetMembers(ctx, key)
		if err != nil {
			q.logger.WithField("user_id", userID).WithError(err).Error("error reading session set")
			continue
		}
		if len(sessions) == 0 {
			// Key expired between scan and read
			continue
		}

		sort.Strings(sessions)
		users = append(users, UserSessionInfo{
			UserID:         userID,
			ActiveSessions: len(sessions),
			Sessions:       sessions,
		})
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].ActiveSessions != users[j].ActiveSessions {
			return users[i].ActiveSessions > users[j].ActiveSessions
		}
		return users[i].UserID < users[j].UserID
	})

	if len(users) > limit {
		users = users[:limit]
	}
	result.Users = users

	return result
}
