package simulator

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SessionRegistry tracks the live sessions of every simulated user. Each
// user's sessions are kept in creation order so the oldest can be evicted
// when the per-user cap is hit.
type SessionRegistry struct {
	mu             sync.Mutex
	maxPerUser     int
	newProbability float64
	sessions       map[string][]string
}

// NewSessionRegistry creates a registry with the given per-user session cap
// and new-session probability
func NewSessionRegistry(maxPerUser int, newProbability float64) *SessionRegistry {
	return &SessionRegistry{
		maxPerUser:     maxPerUser,
		newProbability: newProbability,
		sessions:       map[string][]string{},
	}
}

// SessionFor returns the session ID an event for this user should carry.
// A user with no sessions always gets a new one; otherwise a new session is
// opened with the configured probability, evicting the oldest session when
// the cap would be exceeded. In the common case a random existing session
// continues.
func (r *SessionRegistry) SessionFor(userID string, rng *rand.Rand) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.sessions[userID]
	if len(existing) == 0 || rng.Float64() < r.newProbability {
		return r.openSession(userID)
	}

	return existing[rng.Intn(len(existing))]
}

// openSession creates a session for the user, evicting the oldest one if the
// cap is reached. Caller holds the lock.
func (r *SessionRegistry) openSession(userID string) string {
	// Session IDs carry the bare user number: usr_42 owns sess_42_<uuid>
	userNumber := strings.TrimPrefix(userID, "usr_")
	sessionID := fmt.Sprintf("sess_%s_%s", userNumber, uuid.New().String())

	existing := r.sessions[userID]
	if len(existing) >= r.maxPerUser {
		existing = existing[1:]
	}
	r.sessions[userID] = append(existing, sessionID)

	return sessionID
}

// Sessions returns a copy of the user's current session IDs in creation order
func (r *SessionRegistry) Sessions(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.sessions[userID]...)
}

// TrackedUsers returns the number of users with at least one session
func (r *SessionRegistry) TrackedUsers() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}
