package testutil

import "sync"

// Sequence is a thread-safe counter. The first call to Next returns 1.
//
// The scenario harness numbers its steps with a Sequence, and
// SequentialTokens derives session tokens from one.
type Sequence struct {
	mu sync.Mutex
	n  int64
}

// NewSequence returns a Sequence starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments and returns the counter.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

// Current returns the counter without incrementing it.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Reset sets the counter back to 0 so a scenario can be replayed with the
// same numbering.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}
