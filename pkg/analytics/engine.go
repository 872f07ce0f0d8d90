package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/clickpulse/pulse/pkg/cache"
	"github.com/clickpulse/pulse/pkg/config"
	"github.com/clickpulse/pulse/pkg/observability"
	"github.com/clickpulse/pulse/pkg/storage"
)

// Engine computes windowed aggregates from the event store and publishes
// them into the metrics cache. One cycle runs at a time; the scheduler
// guarantees a run never overlaps a still-executing prior run.
type Engine struct {
	store   storage.EventStore
	cache   cache.MetricsCache
	cfg     config.AggregationConfig
	logger  *observability.Logger
	metrics *observability.Metrics

	// now is injectable for tests
	now func() time.Time
}

// NewEngine creates an aggregation engine. metrics may be nil.
func NewEngine(store storage.EventStore, c cache.MetricsCache, cfg config.AggregationConfig,
	logger *observability.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		store:   store,
		cache:   c,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// RunCycle computes and publishes all three metrics. Each metric is computed
// fully in memory before its publish, and each publish is atomic with respect
// to itself only; there is no cross-metric transaction. The first error aborts
// the remainder of the cycle so a failed cycle publishes nothing further.
func (e *Engine) RunCycle(ctx context.Context) error {
	start := e.now()
	e.logger.Debug("starting metrics cycle")

	err := e.runCycle(ctx)

	if e.metrics != nil {
		e.metrics.AggregationCycleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			e.metrics.AggregationCyclesTotal.WithLabelValues("error").Inc()
		} else {
			e.metrics.AggregationCyclesTotal.WithLabelValues("success").Inc()
		}
	}

	if err != nil {
		return err
	}

	e.logger.Debug("metrics cycle completed")
	return nil
}

func (e *Engine) runCycle(ctx context.Context) error {
	if err := e.updateActiveUsers(ctx); err != nil {
		return fmt.Errorf("active users: %w", err)
	}
	if err := e.updatePageViews(ctx); err != nil {
		return fmt.Errorf("page views: %w", err)
	}
	if err := e.updateActiveSessions(ctx); err != nil {
		return fmt.Errorf("active sessions: %w", err)
	}
	return nil
}

// updateActiveUsers publishes the distinct user count over the last window
func (e *Engine) updateActiveUsers(ctx context.Context) error {
	now := e.now()
	events, err := e.store.FindBetween(ctx, now.Add(-e.cfg.ActiveUsersWindow), now)
	if err != nil {
		return err
	}

	users := make(map[string]struct{})
	for _, event := range events {
		users[event.UserID] = struct{}{}
	}
	activeUsers := int64(len(users))

	if err := e.cache.SetCount(ctx, ActiveUsersKey, activeUsers, e.cfg.ActiveUsersWindow); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.ActiveUsers.Set(float64(activeUsers))
	}
	e.logger.WithField("active_users", activeUsers).Debug("active users updated")
	return nil
}

// updatePageViews publishes view counts per URL over the last window. The
// whole prior mapping is replaced; when no page views occurred the key is
// deleted rather than written empty.
func (e *Engine) updatePageViews(ctx context.Context) error {
	now := e.now()
	events, err := e.store.FindBetween(ctx, now.Add(-e.cfg.PageViewsWindow), now)
	if err != nil {
		return err
	}

	counts := make(map[string]int64)
	for _, event := range events {
		if event.EventType == storage.EventTypePageView {
			counts[event.PageURL]++
		}
	}

	if err := e.cache.ReplaceHash(ctx, PageViewsKey, counts, e.cfg.PageViewsWindow); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.TrackedPages.Set(float64(len(counts)))
	}
	e.logger.WithField("pages", len(counts)).Debug("page views updated")
	return nil
}

// updateActiveSessions publishes per-user session sets over the last window.
// Users with no recent events are not rewritten; their sets expire via TTL.
func (e *Engine) updateActiveSessions(ctx context.Context) error {
	now := e.now()
	events, err := e.store.FindBetween(ctx, now.Add(-e.cfg.ActiveSessionsWindow), now)
	if err != nil {
		return err
	}

	userSessions := make(map[string]map[string]struct{})
	for _, event := range events {
		sessions, ok := userSessions[event.UserID]
		if !ok {
			sessions = make(map[string]struct{})
			userSessions[event.UserID] = sessions
		}
		sessions[event.SessionID] = struct{}{}
	}

	for userID, sessions := range userSessions {
		members := make([]string, 0, len(sessions))
		for sessionID := range sessions {
			members = append(members, sessionID)
		}

		if err := e.cache.ReplaceSet(ctx, SessionKey(userID), members, e.cfg.ActiveSessionsWindow); err != nil {
			return err
		}
	}

	e.logger.WithField("users", len(userSessions)).Debug("active sessions updated")
	return nil
}

// RetentionCleanup deletes events older than the retention period. It exists
// only to bound event store growth and is independent of window aggregation.
func (e *Engine) RetentionCleanup(ctx context.Context) error {
	cutoff := e.now().Add(-e.cfg.RetentionPeriod)

	deleted, err := e.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("retention cleanup: %w", err)
	}

	if e.metrics != nil {
		e.metrics.EventsDeletedTotal.Add(float64(deleted))
	}
	e.logger.WithFields(map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("cleaned up old events")
	return nil
}
