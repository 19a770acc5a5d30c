package poller

import "sync"

// Sequence hands out increasing generation numbers for one widget. A result
// is committed only if no newer generation was issued after it started.
type Sequence struct {
	mu  sync.Mutex
	gen uint64
}

// Next issues a new generation, invalidating all earlier ones.
func (s *Sequence) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++

	return s.gen
}

func (s *Sequence) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gen == gen
}

// Commit runs apply only if gen is still the latest generation. The check
// and apply happen under one lock so a newer Next cannot interleave.
func (s *Sequence) Commit(gen uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return false
	}

	apply()

	return true
}

// Sequencer is a Sequence per key, e.g. per (device, signal).
type Sequencer struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{gens: make(map[string]uint64)}
}

func (s *Sequencer) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[key]++

	return s.gens[key]
}

func (s *Sequencer) IsCurrent(key string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gens[key] == gen
}

func (s *Sequencer) Commit(key string, gen uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[key] != gen {
		return false
	}

	apply()

	return true
}
