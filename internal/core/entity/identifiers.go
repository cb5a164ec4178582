package entity

import (
	"fmt"
	"sync"
)

// Identifiers enforces composite id uniqueness across a simulation.
type Identifiers struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewIdentifiers() *Identifiers {
	return &Identifiers{ids: make(map[string]struct{})}
}

// Register claims id, failing with ErrDuplicateIdentifier if it is taken.
func (s *Identifiers) Register(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.ids[id]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateIdentifier, id)
	}
	s.ids[id] = struct{}{}
	return nil
}

// Release frees id for reuse.
func (s *Identifiers) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *Identifiers) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *Identifiers) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
