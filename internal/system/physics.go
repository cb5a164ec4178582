package system

import (
	"math"
	"time"

	"github.com/swarmsim/racersim/internal/component"
	"github.com/swarmsim/racersim/internal/core/factory"
	coresys "github.com/swarmsim/racersim/internal/core/system"
	"github.com/swarmsim/racersim/internal/geom"
	"github.com/swarmsim/racersim/internal/space"
)

// Driven is an entity whose body is moved by an Ackermann drivetrain.
type Driven interface {
	Body() *component.Embodied
	Wheels() *component.AckermannWheeled
}

// PhysicsSystem integrates a kinematic bicycle model: the throttle is the
// forward speed along the body's X axis and the steering angle sets the yaw
// rate through the wheelbase. Phase 2 (Physics).
type PhysicsSystem struct {
	space       *space.Space
	maxSpeed    float64
	maxSteering float64
	bounds      geom.Vector3
}

// NewPhysicsSystem clamps commands to maxSpeed (m/s) and maxSteering
// (radians). Zero disables the corresponding clamp.
func NewPhysicsSystem(s *space.Space, maxSpeed, maxSteering float64) *PhysicsSystem {
	return &PhysicsSystem{space: s, maxSpeed: maxSpeed, maxSteering: maxSteering}
}

// SetBounds confines bodies to the arena floor of the given size, centred
// on the origin. A zero X or Y leaves that axis unbounded.
func (s *PhysicsSystem) SetBounds(size geom.Vector3) {
	s.bounds = size
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	s.space.Each(func(e factory.Entity) {
		d, ok := e.(Driven)
		if !ok {
			return
		}
		body, wheels := d.Body(), d.Wheels()
		if !body.Enabled() || !wheels.Enabled() {
			return
		}
		pos, orient := Step(body.Position(), body.Orientation(),
			clamp(wheels.Throttle(), s.maxSpeed), clamp(wheels.Steering(), s.maxSteering),
			wheels.Wheelbase(), sec)
		pos.X = clamp(pos.X, s.bounds.X/2)
		pos.Y = clamp(pos.Y, s.bounds.Y/2)
		body.MoveTo(pos, orient)
	})
}

// Step advances one pose by dt seconds at speed v with steering angle delta.
func Step(pos geom.Vector3, orient geom.Quaternion, v, delta, wheelbase, dt float64) (geom.Vector3, geom.Quaternion) {
	if v == 0 || dt == 0 {
		return pos, orient
	}
	forward := geom.XAxis.Rotate(orient)
	pos = pos.Add(forward.Scale(v * dt))
	if wheelbase > 0 && delta != 0 {
		yaw := v / wheelbase * math.Tan(delta) * dt
		orient = geom.FromAxisAngle(geom.ZAxis, yaw).Multiply(orient)
	}
	return pos, orient
}

func clamp(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	return math.Max(-limit, math.Min(limit, v))
}
