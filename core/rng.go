package core

import (
	"math/rand"
	"sync"
)

// Rand abstracts the randomness behind lie probability, reaction gating and
// damage rolls so tests can fix draws deterministically.
type Rand interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// IntN returns a uniform draw in [0, n).
	IntN(n int) int
}

// SeededRand is the production Rand backed by math/rand with an explicit
// seed. Safe for concurrent use; parallel encounters share one source.
type SeededRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewSeededRand creates a deterministic Rand from a seed.
func NewSeededRand(seed int64) *SeededRand {
	return &SeededRand{src: rand.New(rand.NewSource(seed))}
}

func (r *SeededRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

func (r *SeededRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

// ScriptedRand replays fixed draws in order, cycling when exhausted. Test
// double for the scenarios that pin reaction gates and damage rolls.
type ScriptedRand struct {
	Floats []float64
	Ints   []int
	fi, ii int
}

func (r *ScriptedRand) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0
	}
	v := r.Floats[r.fi%len(r.Floats)]
	r.fi++
	return v
}

func (r *ScriptedRand) IntN(n int) int {
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[r.ii%len(r.Ints)] % n
	r.ii++
	return v
}
