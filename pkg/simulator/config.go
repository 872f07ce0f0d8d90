package simulator

import "time"

// Config holds load generator settings
type Config struct {
	// TargetURL is the full ingestion endpoint, e.g. http://localhost:8080/api/events
	TargetURL string

	// EmitInterval is the pause between generated events
	EmitInterval time.Duration
	// ResampleInterval is how often the user population size is redrawn
	ResampleInterval time.Duration
	// StatsInterval is how often cumulative send stats are logged
	StatsInterval time.Duration

	// Population size is redrawn uniformly from [MinUsers, MaxUsers]
	MinUsers int
	MaxUsers int

	// NewSessionProbability is the chance an event opens a new session
	// instead of continuing an existing one
	NewSessionProbability float64
	// MaxSessionsPerUser caps concurrent sessions per user; the oldest
	// session is evicted when a new one would exceed it
	MaxSessionsPerUser int

	// MaxInFlight bounds concurrent HTTP sends
	MaxInFlight int
	// RequestTimeout is the per-send HTTP timeout
	RequestTimeout time.Duration

	// PageURLs and EventTypes are the sampling pools
	PageURLs   []string
	EventTypes []string
}

// DefaultConfig returns production-shaped defaults: roughly 50 events/s
// from 800-1000 users
func DefaultConfig(targetURL string) Config {
	return Config{
		TargetURL:             targetURL,
		EmitInterval:          20 * time.Millisecond,
		ResampleInterval:      5 * time.Second,
		StatsInterval:         30 * time.Second,
		MinUsers:              800,
		MaxUsers:              1000,
		NewSessionProbability: 0.10,
		MaxSessionsPerUser:    3,
		MaxInFlight:           64,
		RequestTimeout:        5 * time.Second,
		PageURLs: []string{
			"/home",
			"/products/electronics",
			"/products/clothing",
			"/products/books",
			"/products/sports",
			"/products/home-garden",
			"/cart",
			"/checkout",
			"/account",
			"/search",
			"/categories",
			"/deals",
			"/wishlist",
			"/orders",
			"/help",
		},
		EventTypes: []string{
			"page_view",
			"click",
			"add_to_cart",
			"remove_from_cart",
			"search",
			"filter",
		},
	}
}
