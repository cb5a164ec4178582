package entity

import "fmt"

// Registry is a composite's ordered, name-keyed collection of components.
// Iteration follows insertion order; teardown and update propagation rely on it.
type Registry struct {
	byID  map[string]Component
	order []Component
}

func NewRegistry() *Registry {
	return &Registry{
		byID:  make(map[string]Component, 8),
		order: make([]Component, 0, 8),
	}
}

// Add registers c under its own id.
func (r *Registry) Add(c Component) error {
	id := c.ID()
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateComponent, id)
	}
	r.byID[id] = c
	r.order = append(r.order, c)
	return nil
}

// Get returns the component registered under id.
func (r *Registry) Get(id string) (Component, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, id)
	}
	return c, nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry) Len() int { return len(r.order) }

// IDs returns component ids in insertion order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	for i, c := range r.order {
		ids[i] = c.ID()
	}
	return ids
}

func (r *Registry) Each(fn func(Component)) {
	for _, c := range r.order {
		fn(c)
	}
}

func (r *Registry) EachReverse(fn func(Component)) {
	for i := len(r.order) - 1; i >= 0; i-- {
		fn(r.order[i])
	}
}

// Clear drops every component without destroying it.
func (r *Registry) Clear() {
	clear(r.byID)
	clear(r.order)
	r.order = r.order[:0]
}

// Lookup resolves id and asserts the component type.
func Lookup[T any](r *Registry, id string) (T, error) {
	var zero T
	c, err := r.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("component %q: type mismatch, got %T", id, c)
	}
	return typed, nil
}
