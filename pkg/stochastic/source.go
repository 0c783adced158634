package stochastic

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields zero-mean symmetric random draws in [-1, 1]. It is the only
// entropy capability the calculation engines receive, so tests can swap in a
// fixed sequence and assert exact outputs.
//
// The uniform draw is a simplified stand-in for a Gaussian shock; it
// understates tail risk versus a true normal sampler.
type Source interface {
	Next() float64
}

type pseudoSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPseudoSource returns a time-seeded source for production use.
func NewPseudoSource() Source {
	return NewSeededSource(time.Now().UnixNano())
}

// NewSeededSource returns a source with a fixed seed, producing a reproducible
// draw sequence.
func NewSeededSource(seed int64) Source {
	return &pseudoSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *pseudoSource) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()*2 - 1
}

// Fixed replays a caller-supplied sequence, cycling when exhausted. An empty
// sequence always yields 0, which collapses every stochastic term to its drift.
type Fixed struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewFixed returns a Fixed source over the given values.
func NewFixed(values ...float64) *Fixed {
	return &Fixed{values: values}
}

func (f *Fixed) Next() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return 0
	}
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}
