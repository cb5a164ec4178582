package system

import "time"

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhaseEvents  Phase = iota // 0: dispatch last tick's events
	PhaseControl              // 1: controller steps
	PhasePhysics              // 2: move bodies from actuator commands
	PhaseSensors              // 3: composite update-propagation pass
	PhasePersist              // 4: telemetry sampling and flush
	PhaseCleanup              // 5: destroy entities marked for removal
)

func (p Phase) String() string {
	switch p {
	case PhaseEvents:
		return "events"
	case PhaseControl:
		return "control"
	case PhasePhysics:
		return "physics"
	case PhaseSensors:
		return "sensors"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every tick-driven system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
