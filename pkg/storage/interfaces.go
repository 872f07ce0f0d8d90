package storage

import (
	"context"
	"time"
)

// Event is a single clickstream record. Events are immutable once stored;
// the aggregation engine only reads them and deletes by retention cutoff.
type Event struct {
	// ID is assigned by the store on append
	ID string `json:"id,omitempty"`

	// EventTime is the client-declared ISO-8601 instant. It is informational
	// and may diverge from IngestTime.
	EventTime string `json:"timestamp"`

	UserID    string `json:"user_id"`
	EventType string `json:"event_type"`
	PageURL   string `json:"page_url"`
	SessionID string `json:"session_id"`

	// IngestTime is assigned at write time and is the only field used for
	// window membership. It is monotonic non-decreasing across appends.
	IngestTime time.Time `json:"ingest_time,omitempty"`
}

// EventTypePageView is the event type counted by the page view aggregate
const EventTypePageView = "page_view"

// EventStore is an append-only, time-indexed record store
type EventStore interface {
	// Append stores the event, assigning its ID and IngestTime, and
	// returns the assigned ID
	Append(ctx context.Context, event *Event) (string, error)

	// FindBetween returns all events with IngestTime in [start, end],
	// ordered by IngestTime ascending
	FindBetween(ctx context.Context, start, end time.Time) ([]Event, error)

	// DeleteBefore removes events with IngestTime before the cutoff and
	// returns the number removed
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the total number of stored events
	Count(ctx context.Context) (int64, error)

	// Ping checks store connectivity
	Ping(ctx context.Context) error

	Close() error
}
