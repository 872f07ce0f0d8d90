package middleware

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/clickpulse/pulse/pkg/config"
)

// maxTrackedClients bounds the number of concurrently tracked bucket keys
const maxTrackedClients = 10000

// RateLimiter implements token-bucket admission control. Buckets are held
// in an expirable LRU so idle clients age out without a cleanup goroutine.
type RateLimiter struct {
	refillPerSecond float64
	capacity        float64

	mu      sync.Mutex
	buckets *lru.LRU[string, *bucket]
	now     func() time.Time
}

type bucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewRateLimiter creates a rate limiter. The bucket refills at
// EventsPerSecond tokens per second up to BurstCapacity.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	// An idle bucket is full again after capacity/rate seconds; keep it
	// around twice that long before the LRU drops it
	idleTTL := 2 * time.Duration(float64(cfg.BurstCapacity)/float64(cfg.EventsPerSecond)*float64(time.Second))
	if idleTTL < time.Minute {
		idleTTL = time.Minute
	}

	return &RateLimiter{
		refillPerSecond: float64(cfg.EventsPerSecond),
		capacity:        float64(cfg.BurstCapacity),
		buckets:         lru.NewLRU[string, *bucket](maxTrackedClients, nil, idleTTL),
		now:             time.Now,
	}
}

// Allow consumes one token for the key, reporting whether the request
// is admitted
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.refill(key)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

// Remaining returns the number of whole tokens left for a key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return int(rl.refill(key).tokens)
}

// refill returns the key's bucket with tokens credited for elapsed time,
// creating a full bucket for unseen keys. Caller holds the lock.
func (rl *RateLimiter) refill(key string) *bucket {
	b, ok := rl.buckets.Get(key)
	if !ok {
		b = &bucket{tokens: rl.capacity, lastUpdate: rl.now()}
		rl.buckets.Add(key, b)
		return b
	}

	now := rl.now()
	if elapsed := now.Sub(b.lastUpdate).Seconds(); elapsed > 0 {
		b.tokens += elapsed * rl.refillPerSecond
		if b.tokens > rl.capacity {
			b.tokens = rl.capacity
		}
		b.lastUpdate = now
	}

	return b
}
