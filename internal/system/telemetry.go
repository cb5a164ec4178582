package system

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/component"
	"github.com/swarmsim/racersim/internal/core/event"
	"github.com/swarmsim/racersim/internal/core/factory"
	coresys "github.com/swarmsim/racersim/internal/core/system"
	"github.com/swarmsim/racersim/internal/geom"
	"github.com/swarmsim/racersim/internal/space"
)

// Sample is one telemetry record of one entity.
type Sample struct {
	Tick     uint64
	EntityID string
	Position geom.Vector3
	Yaw      float64 // degrees
	Speed    float64
	Charge   float64
}

// Sink receives telemetry batches.
type Sink interface {
	WriteSamples(ctx context.Context, samples []Sample) error
}

// Powered is an entity with a battery.
type Powered interface {
	Battery() *component.BatteryEquipped
}

// TelemetrySystem samples every live entity each interval ticks and emits
// BatteryDepleted the first time an entity runs dry. Phase 4 (Persist).
type TelemetrySystem struct {
	space    *space.Space
	sinks    []Sink
	log      *zap.Logger
	interval int
	timeout  time.Duration

	tick     uint64
	depleted map[string]bool
}

func NewTelemetrySystem(s *space.Space, log *zap.Logger, intervalTicks int, sinks ...Sink) *TelemetrySystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &TelemetrySystem{
		space:    s,
		sinks:    sinks,
		log:      log,
		interval: intervalTicks,
		timeout:  5 * time.Second,
		depleted: make(map[string]bool),
	}
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *TelemetrySystem) Update(_ time.Duration) {
	s.tick++
	s.checkDepletion()
	if s.tick%uint64(s.interval) != 0 {
		return
	}
	s.Flush()
}

func (s *TelemetrySystem) checkDepletion() {
	bus := s.space.Env().Bus
	s.space.Each(func(e factory.Entity) {
		p, ok := e.(Powered)
		if !ok || s.depleted[e.ID()] || !p.Battery().Depleted() {
			return
		}
		s.depleted[e.ID()] = true
		event.Emit(bus, event.BatteryDepleted{ID: e.ID(), Tick: s.tick})
		s.log.Info("battery depleted", zap.String("entity", e.ID()), zap.Uint64("tick", s.tick))
	})
}

// Reset starts a new episode: entities may report depletion again.
func (s *TelemetrySystem) Reset() {
	clear(s.depleted)
}

// Flush samples all entities now and writes to every sink.
func (s *TelemetrySystem) Flush() {
	samples := s.collect()
	if len(samples) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	for _, sink := range s.sinks {
		if err := sink.WriteSamples(ctx, samples); err != nil {
			s.log.Error("write telemetry", zap.Int("samples", len(samples)), zap.Error(err))
		}
	}
}

func (s *TelemetrySystem) collect() []Sample {
	samples := make([]Sample, 0, s.space.Len())
	s.space.Each(func(e factory.Entity) {
		smp := Sample{Tick: s.tick, EntityID: e.ID()}
		if d, ok := e.(Driven); ok {
			smp.Position = d.Body().Position()
			smp.Yaw = geom.Degrees(d.Body().Orientation().Yaw())
			smp.Speed = d.Wheels().Throttle()
		}
		if p, ok := e.(Powered); ok {
			smp.Charge = p.Battery().AvailableCharge()
		}
		samples = append(samples, smp)
	})
	return samples
}

// MemorySink keeps every sample in memory.
type MemorySink struct {
	mu      sync.Mutex
	samples []Sample
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) WriteSamples(_ context.Context, samples []Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, samples...)
	return nil
}

func (m *MemorySink) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// Charge returns the charge series of one entity, oldest first.
func (m *MemorySink) Charge(entityID string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []float64
	for _, smp := range m.samples {
		if smp.EntityID == entityID {
			out = append(out, smp.Charge)
		}
	}
	return out
}
