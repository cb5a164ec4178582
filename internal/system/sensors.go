package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/core/factory"
	coresys "github.com/swarmsim/racersim/internal/core/system"
	"github.com/swarmsim/racersim/internal/space"
)

// SensorSystem runs the update pass of every live entity once the bodies
// have moved. Phase 3 (Sensors).
type SensorSystem struct {
	space *space.Space
	log   *zap.Logger
}

func NewSensorSystem(s *space.Space, log *zap.Logger) *SensorSystem {
	return &SensorSystem{space: s, log: log}
}

func (s *SensorSystem) Phase() coresys.Phase { return coresys.PhaseSensors }

func (s *SensorSystem) Update(_ time.Duration) {
	s.space.Each(func(e factory.Entity) {
		if err := e.UpdateComponents(); err != nil {
			s.log.Error("update components", zap.String("entity", e.ID()), zap.Error(err))
		}
	})
}
