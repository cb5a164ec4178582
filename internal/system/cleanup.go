package system

import (
	"time"

	coresys "github.com/swarmsim/racersim/internal/core/system"
	"github.com/swarmsim/racersim/internal/space"
)

// CleanupSystem flushes the deferred entity removal queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	space *space.Space
}

func NewCleanupSystem(s *space.Space) *CleanupSystem {
	return &CleanupSystem{space: s}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.space.FlushRemovals()
}
