package api

import (
	"strings"
	"time"

	"github.com/clickpulse/pulse/pkg/storage"
)

// ValidateEvent checks the required event fields and returns a map of field
// name to message for every violation. A nil map means the event is valid.
// The event ID and ingest time are server-assigned and ignored here.
func ValidateEvent(event *storage.Event) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(event.UserID) == "" {
		errs["user_id"] = "User ID is required"
	}
	if strings.TrimSpace(event.EventType) == "" {
		errs["event_type"] = "Event type is required"
	}
	if strings.TrimSpace(event.PageURL) == "" {
		errs["page_url"] = "Page URL is required"
	}
	if strings.TrimSpace(event.SessionID) == "" {
		errs["session_id"] = "Session ID is required"
	}

	if strings.TrimSpace(event.EventTime) == "" {
		errs["timestamp"] = "Timestamp is required"
	} else if _, err := time.Parse(time.RFC3339, event.EventTime); err != nil {
		errs["timestamp"] = "Invalid timestamp format. Expected ISO 8601 format."
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
