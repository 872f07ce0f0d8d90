package simulator

import (
	"fmt"
	"math/rand"
	"sync/atomic"
)

// Population tracks the current simulated user pool size. The size is
// resampled periodically so the distinct-user metrics drift over time
// instead of plateauing.
type Population struct {
	min  int
	max  int
	size atomic.Int64
}

// NewPopulation creates a population starting at the midpoint of its range
func NewPopulation(min, max int) *Population {
	p := &Population{min: min, max: max}
	p.size.Store(int64((min + max) / 2))
	return p
}

// Resample draws a new pool size uniformly from [min, max]
func (p *Population) Resample(rng *rand.Rand) int {
	size := p.min + rng.Intn(p.max-p.min+1)
	p.size.Store(int64(size))
	return size
}

// Size returns the current pool size
func (p *Population) Size() int {
	return int(p.size.Load())
}

// RandomUserID draws a user from the current pool
func (p *Population) RandomUserID(rng *rand.Rand) string {
	return fmt.Sprintf("usr_%d", 1+rng.Intn(p.Size()))
}
