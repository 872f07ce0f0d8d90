package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/clickpulse/pulse/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	event_time  TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	page_url    TEXT NOT NULL,
	session_id  TEXT NOT NULL,
	ingest_time INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_ingest_time ON events(ingest_time);
CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id);
`

// Store is a SQLite-backed append-only event store
type Store struct {
	db *sql.DB

	// guards the ingest clock so IngestTime never goes backwards even if
	// the wall clock does
	mu         sync.Mutex
	lastIngest time.Time
	now        func() time.Time
}

// Open creates a store at the given DSN (":memory:" for tests) and
// ensures the schema exists
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite handles a single writer; serialize access through one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events schema: %w", err)
	}

	return &Store{
		db:  db,
		now: time.Now,
	}, nil
}

// nextIngestTime returns a monotonic non-decreasing ingest timestamp
func (s *Store) nextIngestTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC()
	if t.Before(s.lastIngest) {
		t = s.lastIngest
	}
	s.lastIngest = t
	return t
}

// Append stores the event, assigning its ID and IngestTime
func (s *Store) Append(ctx context.Context, event *storage.Event) (string, error) {
	event.ID = uuid.New().String()
	event.IngestTime = s.nextIngestTime()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, event_time, user_id, event_type, page_url, session_id, ingest_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.EventTime,
		event.UserID,
		event.EventType,
		event.PageURL,
		event.SessionID,
		event.IngestTime.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to append event: %w", err)
	}

	return event.ID, nil
}

// FindBetween returns events with IngestTime in [start, end] ordered by
// IngestTime ascending
func (s *Store) FindBetween(ctx context.Context, start, end time.Time) ([]storage.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_time, user_id, event_type, page_url, session_id, ingest_time
		 FROM events
		 WHERE ingest_time >= ? AND ingest_time <= ?
		 ORDER BY ingest_time ASC`,
		start.UnixNano(), end.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []storage.Event
	for rows.Next() {
		var e storage.Event
		var ingestNanos int64
		if err := rows.Scan(&e.ID, &e.EventTime, &e.UserID, &e.EventType, &e.PageURL, &e.SessionID, &ingestNanos); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.IngestTime = time.Unix(0, ingestNanos).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// DeleteBefore removes events with IngestTime before the cutoff
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE ingest_time < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to delete events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted events: %w", err)
	}

	return deleted, nil
}

// Count returns the total number of stored events
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
