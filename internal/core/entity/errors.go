package entity

import (
	"errors"
	"fmt"
)

// Lifecycle errors shared by composites and their components.
var (
	// ErrDuplicateIdentifier indicates a composite id already in use in the simulation.
	ErrDuplicateIdentifier = errors.New("entity: duplicate identifier")

	// ErrDuplicateComponent indicates a component id already registered in its composite.
	ErrDuplicateComponent = errors.New("entity: duplicate component")

	// ErrComponentNotFound indicates a lookup for a component that is not registered.
	ErrComponentNotFound = errors.New("entity: component not found")

	// ErrComponentInit indicates a component failed to construct or initialize.
	ErrComponentInit = errors.New("entity: component initialization failed")

	// ErrConstructionAborted indicates a composite could not be assembled.
	ErrConstructionAborted = errors.New("entity: construction aborted")

	// ErrDestroyed indicates a lifecycle call on an already destroyed composite.
	ErrDestroyed = errors.New("entity: destroyed")
)

// ComponentError wraps a component-level failure with the component id and
// the lifecycle step that failed.
type ComponentError struct {
	Component string
	Op        string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %q: %s: %v", e.Component, e.Op, e.Err)
}

func (e *ComponentError) Unwrap() error { return e.Err }

func (e *ComponentError) Is(target error) bool { return target == ErrComponentInit }

// InitError builds the ComponentError returned by Init implementations.
func InitError(component string, err error) error {
	return &ComponentError{Component: component, Op: "init", Err: err}
}

// ConstructionError is returned when a composite fails to assemble. It names
// the composite and keeps the original cause reachable through errors.Is/As.
type ConstructionError struct {
	Entity string
	Err    error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to initialize entity %q: %v", e.Entity, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func (e *ConstructionError) Is(target error) bool { return target == ErrConstructionAborted }
