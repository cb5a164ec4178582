// Package factory maps entity type tags to constructors. Entity packages
// register themselves from init; the space builds entities through Get.
package factory

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/controller"
	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/core/event"
)

// Env carries the simulation-wide collaborators shared by every entity.
type Env struct {
	Identifiers *entity.Identifiers
	Pool        *entity.Pool
	Controllers *controller.Library
	ScriptsDir  string
	Seed        int64
	Log         *zap.Logger
	Bus         *event.Bus
}

// NewEnv returns an Env with fresh identifier and handle registries.
func NewEnv(log *zap.Logger) *Env {
	if log == nil {
		log = zap.NewNop()
	}
	return &Env{
		Identifiers: entity.NewIdentifiers(),
		Pool:        entity.NewPool(),
		Controllers: controller.NewLibrary(),
		Log:         log,
		Bus:         event.NewBus(),
	}
}

// Entity is a composite placed in the simulated space.
type Entity interface {
	ID() string
	Type() string
	Handle() entity.Handle
	UpdateComponents() error
	Reset() error
	Destroy() error
}

// Constructor builds an entity from its configuration node.
type Constructor func(env *Env, node *conftree.Node) (Entity, error)

// Descriptor is the registration record of one entity type.
type Descriptor struct {
	Author      string
	Version     string
	Brief       string
	Description string
	Status      string
	New         Constructor
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Descriptor)
)

// Register adds an entity type under tag. Duplicate tags are rejected.
func Register(tag string, d Descriptor) error {
	if d.New == nil {
		return fmt.Errorf("entity type %s: nil constructor", tag)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[tag]; exists {
		return fmt.Errorf("entity type already registered: %s", tag)
	}
	registry[tag] = d
	return nil
}

// MustRegister is Register for init functions.
func MustRegister(tag string, d Descriptor) {
	if err := Register(tag, d); err != nil {
		panic(err)
	}
}

func Get(tag string) (Descriptor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := registry[tag]
	return d, ok
}

// Tags returns every registered tag, sorted.
func Tags() []string {
	mu.RLock()
	defer mu.RUnlock()
	tags := make([]string, 0, len(registry))
	for t := range registry {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}
