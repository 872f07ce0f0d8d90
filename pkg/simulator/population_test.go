package simulator

import (
	"strconv"
	"strings"
	"testing"
)

func TestPopulation_ResampleStaysInRange(t *testing.T) {
	p := NewPopulation(800, 1000)
	rng := testRand()

	for i := 0; i < 1000; i++ {
		size := p.Resample(rng)
		if size < 800 || size > 1000 {
			t.Fatalf("Resample returned %d, want [800, 1000]", size)
		}
		if p.Size() != size {
			t.Fatalf("Size() = %d after resample to %d", p.Size(), size)
		}
	}
}

func TestPopulation_RandomUserIDWithinPool(t *testing.T) {
	p := NewPopulation(10, 10)
	rng := testRand()

	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := p.RandomUserID(rng)
		n, err := strconv.Atoi(strings.TrimPrefix(id, "usr_"))
		if err != nil {
			t.Fatalf("User ID %q is not usr_<n>", id)
		}
		if n < 1 || n > 10 {
			t.Fatalf("User number %d outside pool of 10", n)
		}
		seen[id] = true
	}

	// 1000 draws from 10 users should hit everyone
	if len(seen) != 10 {
		t.Errorf("Saw %d distinct users, want 10", len(seen))
	}
}
