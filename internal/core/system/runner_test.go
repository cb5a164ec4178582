package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"sensors", PhaseSensors, &log})
	r.Register(recorder{"control-a", PhaseControl, &log})
	r.Register(recorder{"control-b", PhaseControl, &log})
	r.Register(recorder{"events", PhaseEvents, &log})

	r.Tick(10 * time.Millisecond)

	assert.Equal(t, []string{"events", "control-a", "control-b", "sensors", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"sensors", PhaseSensors, &log})
	r.Register(recorder{"control", PhaseControl, &log})

	r.TickPhase(PhaseSensors, time.Millisecond)

	assert.Equal(t, []string{"sensors"}, log)
	assert.Zero(t, r.Ticks())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "physics", PhasePhysics.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
