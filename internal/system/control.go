package system

import (
	"time"

	"github.com/swarmsim/racersim/internal/core/factory"
	coresys "github.com/swarmsim/racersim/internal/core/system"
	"github.com/swarmsim/racersim/internal/space"
)

// Controlled is an entity with control logic.
type Controlled interface {
	ControlStep()
}

// ControlSystem steps the control logic of every live entity.
// Phase 1 (Control).
type ControlSystem struct {
	space *space.Space
}

func NewControlSystem(s *space.Space) *ControlSystem {
	return &ControlSystem{space: s}
}

func (s *ControlSystem) Phase() coresys.Phase { return coresys.PhaseControl }

func (s *ControlSystem) Update(_ time.Duration) {
	s.space.Each(func(e factory.Entity) {
		if c, ok := e.(Controlled); ok {
			c.ControlStep()
		}
	})
}
