package controller

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Deps are the simulation-wide collaborators a controller constructor may use.
type Deps struct {
	ScriptsDir string
	Seed       int64 // base seed; controllers derive per-entity random sources
	Log        *zap.Logger
}

// Factory creates an uninitialised controller.
type Factory func(deps Deps) (Controller, error)

// Descriptor is the registration record of one controller type tag.
type Descriptor struct {
	Brief string
	New   Factory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Descriptor)
)

// Register adds a controller type under tag. Tags are unique; registering a
// tag twice panics, as it can only happen from a programming error at init.
func Register(tag string, d Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[tag]; exists {
		panic(fmt.Sprintf("controller type already registered: %s", tag))
	}
	registry[tag] = d
}

// LookupType returns the descriptor registered under tag.
func LookupType(tag string) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[tag]
	return d, ok
}

// New builds an uninitialised controller of type tag.
func New(tag string, deps Deps) (Controller, error) {
	d, ok := LookupType(tag)
	if !ok {
		return nil, fmt.Errorf("unknown controller type: %s", tag)
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return d.New(deps)
}

// Tags returns the registered controller type tags, sorted.
func Tags() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}
