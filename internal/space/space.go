// Package space holds the live entity set of a simulation.
package space

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/core/event"
	"github.com/swarmsim/racersim/internal/core/factory"
)

// ErrUnknownType is returned by Create for an unregistered type tag.
var ErrUnknownType = errors.New("space: unknown entity type")

// ErrNotFound is returned when no live entity has the requested id.
var ErrNotFound = errors.New("space: entity not found")

// Space owns the live entities and a deferred removal queue flushed by
// CleanupSystem at the end of each tick.
type Space struct {
	env      *factory.Env
	log      *zap.Logger
	entities []factory.Entity
	byID     map[string]factory.Entity
	removals []string
}

func New(env *factory.Env) *Space {
	return &Space{
		env:      env,
		log:      env.Log.Named("space"),
		entities: make([]factory.Entity, 0, 16),
		byID:     make(map[string]factory.Entity, 16),
		removals: make([]string, 0, 8),
	}
}

func (s *Space) Env() *factory.Env { return s.env }

// Create builds an entity of type tag from node and adds it. An entity that
// fails to build never enters the live set.
func (s *Space) Create(tag string, node *conftree.Node) (factory.Entity, error) {
	desc, ok := factory.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, tag)
	}
	e, err := desc.New(s.env, node)
	if err != nil {
		return nil, err
	}
	if err := s.Add(e); err != nil {
		_ = e.Destroy()
		return nil, err
	}
	return e, nil
}

// Add places an already constructed entity in the space.
func (s *Space) Add(e factory.Entity) error {
	if _, exists := s.byID[e.ID()]; exists {
		return fmt.Errorf("entity %q already in space", e.ID())
	}
	s.entities = append(s.entities, e)
	s.byID[e.ID()] = e
	event.Emit(s.env.Bus, event.EntityAdded{ID: e.ID(), Type: e.Type()})
	s.log.Debug("entity added", zap.String("id", e.ID()), zap.String("type", e.Type()))
	return nil
}

func (s *Space) Get(id string) (factory.Entity, error) {
	e, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

func (s *Space) Len() int { return len(s.entities) }

// Each visits live entities in insertion order.
func (s *Space) Each(fn func(factory.Entity)) {
	for _, e := range s.entities {
		fn(e)
	}
}

// MarkForRemoval queues an entity for end-of-tick destruction.
func (s *Space) MarkForRemoval(id string) {
	s.removals = append(s.removals, id)
}

// FlushRemovals destroys every queued entity. Unknown or repeated ids are
// ignored.
func (s *Space) FlushRemovals() {
	for _, id := range s.removals {
		e, ok := s.byID[id]
		if !ok {
			continue
		}
		s.remove(e)
	}
	s.removals = s.removals[:0]
}

func (s *Space) remove(e factory.Entity) {
	if err := e.Destroy(); err != nil {
		s.log.Warn("destroy entity", zap.String("id", e.ID()), zap.Error(err))
	}
	delete(s.byID, e.ID())
	if i := slices.Index(s.entities, e); i >= 0 {
		s.entities = slices.Delete(s.entities, i, i+1)
	}
	event.Emit(s.env.Bus, event.EntityRemoved{ID: e.ID()})
}

// Reset resets every live entity. Failures are joined.
func (s *Space) Reset() error {
	var errs []error
	for _, e := range s.entities {
		if err := e.Reset(); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", e.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Destroy destroys every live entity in reverse insertion order.
func (s *Space) Destroy() {
	for i := len(s.entities) - 1; i >= 0; i-- {
		e := s.entities[i]
		if err := e.Destroy(); err != nil {
			s.log.Warn("destroy entity", zap.String("id", e.ID()), zap.Error(err))
		}
		event.Emit(s.env.Bus, event.EntityRemoved{ID: e.ID()})
	}
	clear(s.entities)
	s.entities = s.entities[:0]
	clear(s.byID)
	s.removals = s.removals[:0]
}
