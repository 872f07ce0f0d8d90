package analytics

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/clickpulse/pulse/pkg/cache"
	"github.com/clickpulse/pulse/pkg/config"
	"github.com/clickpulse/pulse/pkg/observability"
	"github.com/clickpulse/pulse/pkg/storage"
	"github.com/clickpulse/pulse/pkg/storage/sqlite"
)

func testAggregationConfig() config.AggregationConfig {
	return config.AggregationConfig{
		Interval:             10 * time.Second,
		ActiveUsersWindow:    5 * time.Minute,
		PageViewsWindow:      15 * time.Minute,
		ActiveSessionsWindow: 5 * time.Minute,
		RetentionPeriod:      24 * time.Hour,
	}
}

func setupEngineTest(t *testing.T) (*Engine, *sqlite.Store, *cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		store.Close()
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	c, err := cache.NewRedisCache(config.StorageConfig{RedisURL: "redis://" + mr.Addr()})
	if err != nil {
		store.Close()
		mr.Close()
		t.Fatalf("Failed to create cache: %v", err)
	}

	t.Cleanup(func() {
		c.Close()
		mr.Close()
		store.Close()
	})

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	engine := NewEngine(store, c, testAggregationConfig(), logger, nil)

	return engine, store, c, mr
}

func appendEvent(t *testing.T, store *sqlite.Store, userID, eventType, pageURL, sessionID string) {
	t.Helper()

	event := &storage.Event{
		EventTime: time.Now().UTC().Format(time.RFC3339),
		UserID:    userID,
		EventType: eventType,
		PageURL:   pageURL,
		SessionID: sessionID,
	}
	if _, err := store.Append(context.Background(), event); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
}

func TestEngine_RunCycle_EndToEnd(t *testing.T) {
	engine, store, c, mr := setupEngineTest(t)
	ctx := context.Background()

	appendEvent(t, store, "usr_1", "page_view", "/home", "sess_1_a")
	appendEvent(t, store, "usr_1", "page_view", "/home", "sess_1_a")
	appendEvent(t, store, "usr_1", "click", "/cart", "sess_1_b")

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	// One distinct user
	activeUsers, ok, err := c.GetCount(ctx, ActiveUsersKey)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if !ok || activeUsers != 1 {
		t.Errorf("ActiveUsers = %d (ok=%v), want 1", activeUsers, ok)
	}

	// Only page_view events count; the click on /cart must not appear
	pageViews, err := c.GetHash(ctx, PageViewsKey)
	if err != nil {
		t.Fatalf("GetHash failed: %v", err)
	}
	if len(pageViews) != 1 {
		t.Fatalf("Got %d page entries, want 1: %v", len(pageViews), pageViews)
	}
	if pageViews["/home"] != 2 {
		t.Errorf("pageViews[/home] = %d, want 2", pageViews["/home"])
	}

	// Both sessions for usr_1, regardless of event type
	sessions, err := c.SetMembers(ctx, SessionKey("usr_1"))
	if err != nil {
		t.Fatalf("SetMembers failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("Got %d sessions, want 2: %v", len(sessions), sessions)
	}

	// TTLs equal the source windows
	if ttl := mr.TTL(ActiveUsersKey); ttl != 5*time.Minute {
		t.Errorf("active users TTL = %v, want 5m", ttl)
	}
	if ttl := mr.TTL(PageViewsKey); ttl != 15*time.Minute {
		t.Errorf("page views TTL = %v, want 15m", ttl)
	}
	if ttl := mr.TTL(SessionKey("usr_1")); ttl != 5*time.Minute {
		t.Errorf("session set TTL = %v, want 5m", ttl)
	}
}

func TestEngine_RunCycle_EmptyStore(t *testing.T) {
	engine, _, c, mr := setupEngineTest(t)
	ctx := context.Background()

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	// No events publishes zero, not an error
	activeUsers, ok, err := c.GetCount(ctx, ActiveUsersKey)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if !ok || activeUsers != 0 {
		t.Errorf("ActiveUsers = %d (ok=%v), want 0 (ok=true)", activeUsers, ok)
	}

	// An empty grouping writes no page view mapping at all
	if mr.Exists(PageViewsKey) {
		t.Error("Expected no page views key for an empty store")
	}
}

func TestEngine_RunCycle_DistinctUsersAndSessions(t *testing.T) {
	engine, store, c, _ := setupEngineTest(t)
	ctx := context.Background()

	appendEvent(t, store, "usr_1", "page_view", "/home", "sess_1_a")
	appendEvent(t, store, "usr_1", "search", "/search", "sess_1_a")
	appendEvent(t, store, "usr_2", "page_view", "/home", "sess_2_a")
	appendEvent(t, store, "usr_3", "click", "/deals", "sess_3_a")

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	activeUsers, _, err := c.GetCount(ctx, ActiveUsersKey)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if activeUsers != 3 {
		t.Errorf("ActiveUsers = %d, want 3", activeUsers)
	}

	// Repeated session in multiple events stays a single member
	sessions, err := c.SetMembers(ctx, SessionKey("usr_1"))
	if err != nil {
		t.Fatalf("SetMembers failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("Got %d sessions for usr_1, want 1", len(sessions))
	}
}

func TestEngine_RunCycle_WindowExcludesOldEvents(t *testing.T) {
	engine, store, c, mr := setupEngineTest(t)
	ctx := context.Background()

	appendEvent(t, store, "usr_1", "page_view", "/home", "sess_1_a")

	// Advance the engine clock past every window
	engine.now = func() time.Time { return time.Now().Add(time.Hour) }

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	activeUsers, _, err := c.GetCount(ctx, ActiveUsersKey)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if activeUsers != 0 {
		t.Errorf("ActiveUsers = %d, want 0 for out-of-window events", activeUsers)
	}
	if mr.Exists(PageViewsKey) {
		t.Error("Expected no page views key when all events are out of window")
	}
}

func TestEngine_RunCycle_Idempotent(t *testing.T) {
	engine, store, c, _ := setupEngineTest(t)
	ctx := context.Background()

	appendEvent(t, store, "usr_1", "page_view", "/home", "sess_1_a")
	appendEvent(t, store, "usr_2", "page_view", "/cart", "sess_2_a")

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("First RunCycle failed: %v", err)
	}

	firstUsers, _, _ := c.GetCount(ctx, ActiveUsersKey)
	firstViews, _ := c.GetHash(ctx, PageViewsKey)

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("Second RunCycle failed: %v", err)
	}

	secondUsers, _, _ := c.GetCount(ctx, ActiveUsersKey)
	secondViews, _ := c.GetHash(ctx, PageViewsKey)

	if firstUsers != secondUsers {
		t.Errorf("ActiveUsers changed between cycles: %d != %d", firstUsers, secondUsers)
	}
	if len(firstViews) != len(secondViews) {
		t.Fatalf("Page view entries changed between cycles: %v != %v", firstViews, secondViews)
	}
	for url, views := range firstViews {
		if secondViews[url] != views {
			t.Errorf("pageViews[%s] changed between cycles: %d != %d", url, views, secondViews[url])
		}
	}
}

func TestEngine_RunCycle_CacheFailureAbortsCycle(t *testing.T) {
	engine, store, c, mr := setupEngineTest(t)
	ctx := context.Background()

	appendEvent(t, store, "usr_1", "page_view", "/home", "sess_1_a")
	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	// New data arrives, then the cache goes down mid-flight
	appendEvent(t, store, "usr_2", "page_view", "/cart", "sess_2_a")
	mr.SetError("connection refused")

	if err := engine.RunCycle(ctx); err == nil {
		t.Fatal("Expected RunCycle to fail with an unreachable cache")
	}

	// The failed cycle must not have replaced the prior snapshot
	mr.SetError("")
	pageViews, err := c.GetHash(ctx, PageViewsKey)
	if err != nil {
		t.Fatalf("GetHash failed: %v", err)
	}
	if pageViews["/home"] != 1 {
		t.Errorf("pageViews[/home] = %d, want 1 (prior snapshot)", pageViews["/home"])
	}
}

func TestEngine_RetentionCleanup(t *testing.T) {
	engine, store, _, _ := setupEngineTest(t)
	ctx := context.Background()

	appendEvent(t, store, "usr_1", "page_view", "/home", "sess_1_a")
	appendEvent(t, store, "usr_2", "click", "/cart", "sess_2_a")

	// With the clock two days ahead, everything is past retention
	engine.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	if err := engine.RetentionCleanup(ctx); err != nil {
		t.Fatalf("RetentionCleanup failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count = %d after cleanup, want 0", count)
	}
}

func TestEngine_RetentionCleanup_KeepsRecentEvents(t *testing.T) {
	engine, store, _, _ := setupEngineTest(t)
	ctx := context.Background()

	appendEvent(t, store, "usr_1", "page_view", "/home", "sess_1_a")

	if err := engine.RetentionCleanup(ctx); err != nil {
		t.Fatalf("RetentionCleanup failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d after cleanup, want 1", count)
	}
}
