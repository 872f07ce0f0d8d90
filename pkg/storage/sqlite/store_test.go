package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/clickpulse/pulse/pkg/storage"
)

func setupStoreTest(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testEvent(userID, eventType, pageURL, sessionID string) *storage.Event {
	return &storage.Event{
		EventTime: time.Now().UTC().Format(time.RFC3339),
		UserID:    userID,
		EventType: eventType,
		PageURL:   pageURL,
		SessionID: sessionID,
	}
}

func TestStore_Append(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	event := testEvent("usr_1", "page_view", "/home", "sess_1_a")
	id, err := store.Append(ctx, event)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if id == "" {
		t.Error("Expected non-empty event ID")
	}
	if event.ID != id {
		t.Errorf("Event ID = %q, want %q", event.ID, id)
	}
	if event.IngestTime.IsZero() {
		t.Error("Expected IngestTime to be assigned")
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestStore_IngestTimeMonotonic(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	// Simulate a wall clock that jumps backwards between appends
	times := []time.Time{
		time.Date(2026, 1, 1, 12, 0, 10, 0, time.UTC),
		time.Date(2026, 1, 1, 12, 0, 5, 0, time.UTC),
		time.Date(2026, 1, 1, 12, 0, 20, 0, time.UTC),
	}
	i := 0
	store.now = func() time.Time {
		t := times[i]
		i++
		return t
	}

	var prev time.Time
	for n := 0; n < len(times); n++ {
		event := testEvent("usr_1", "click", "/cart", "sess_1_a")
		if _, err := store.Append(ctx, event); err != nil {
			t.Fatalf("Append %d failed: %v", n, err)
		}
		if event.IngestTime.Before(prev) {
			t.Errorf("IngestTime went backwards: %v < %v", event.IngestTime, prev)
		}
		prev = event.IngestTime
	}
}

func TestStore_FindBetween(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	offsets := []time.Duration{0, time.Minute, 2 * time.Minute, 10 * time.Minute}
	i := 0
	store.now = func() time.Time { t := base.Add(offsets[i]); i++; return t }

	for n := range offsets {
		event := testEvent("usr_1", "page_view", "/home", "sess_1_a")
		if _, err := store.Append(ctx, event); err != nil {
			t.Fatalf("Append %d failed: %v", n, err)
		}
	}

	// Inclusive range picks up the first three events only
	events, err := store.FindBetween(ctx, base, base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("FindBetween failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Got %d events, want 3", len(events))
	}

	// Ordered by ingest time ascending
	for n := 1; n < len(events); n++ {
		if events[n].IngestTime.Before(events[n-1].IngestTime) {
			t.Errorf("Events out of order at index %d", n)
		}
	}
}

func TestStore_FindBetween_Empty(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	events, err := store.FindBetween(ctx, time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("FindBetween failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Got %d events, want 0", len(events))
	}
}

func TestStore_DeleteBefore(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	offsets := []time.Duration{0, time.Hour, 25 * time.Hour}
	i := 0
	store.now = func() time.Time { t := base.Add(offsets[i]); i++; return t }

	for n := range offsets {
		event := testEvent("usr_1", "click", "/home", "sess_1_a")
		if _, err := store.Append(ctx, event); err != nil {
			t.Fatalf("Append %d failed: %v", n, err)
		}
	}

	deleted, err := store.DeleteBefore(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Deleted %d events, want 2", deleted)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestStore_EventFieldsRoundTrip(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	want := testEvent("usr_42", "add_to_cart", "/products/books", "sess_42_x")
	if _, err := store.Append(ctx, want); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := store.FindBetween(ctx, time.Now().UTC().Add(-time.Minute), time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("FindBetween failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Got %d events, want 1", len(events))
	}

	got := events[0]
	if got.UserID != want.UserID || got.EventType != want.EventType ||
		got.PageURL != want.PageURL || got.SessionID != want.SessionID ||
		got.EventTime != want.EventTime {
		t.Errorf("Round-tripped event mismatch: got %+v, want %+v", got, want)
	}
}
