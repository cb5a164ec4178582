package component

import (
	"math"

	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/geom"
)

// ProximitySensor is one ray of a ranging sensor, expressed in the frame
// of its anchor.
type ProximitySensor struct {
	Offset    geom.Vector3
	Direction geom.Vector3 // scaled by the ray range
	Anchor    *Anchor
}

// Ray is a sensor ray in the world frame.
type Ray struct {
	Start geom.Vector3
	End   geom.Vector3
}

// ProximitySensorEquipped is a set of ranging rays. Readings are written by
// whatever models sensor physics; this component only tracks where the rays
// are.
type ProximitySensorEquipped struct {
	entity.Base

	sensors  []ProximitySensor
	rays     []Ray
	readings []float64
}

func NewProximitySensorEquipped(owner entity.Handle, id string) *ProximitySensorEquipped {
	return &ProximitySensorEquipped{Base: entity.NewBase(owner, id)}
}

func (p *ProximitySensorEquipped) AddSensor(offset, direction geom.Vector3, rng float64, anchor *Anchor) {
	dir := direction
	if l := dir.Length(); l > 0 {
		dir = dir.Scale(rng / l)
	}
	p.sensors = append(p.sensors, ProximitySensor{Offset: offset, Direction: dir, Anchor: anchor})
	p.rays = append(p.rays, Ray{})
	p.readings = append(p.readings, 0)
}

// AddSensorRing adds n rays evenly spaced on a horizontal circle of the
// given radius around center, pointing outwards, starting at startAngle
// (radians, counter-clockwise from the anchor's X axis).
func (p *ProximitySensorEquipped) AddSensorRing(center geom.Vector3, radius, startAngle, rng float64, n int, anchor *Anchor) {
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		a := startAngle + float64(i)*step
		dir := geom.Vector3{X: math.Cos(a), Y: math.Sin(a)}
		p.AddSensor(center.Add(dir.Scale(radius)), dir, rng, anchor)
	}
}

// Update moves every ray into the world frame of its anchor.
func (p *ProximitySensorEquipped) Update() {
	for i, s := range p.sensors {
		if s.Anchor == nil {
			continue
		}
		start := s.Anchor.Position.Add(s.Offset.Rotate(s.Anchor.Orientation))
		p.rays[i] = Ray{Start: start, End: start.Add(s.Direction.Rotate(s.Anchor.Orientation))}
	}
}

// Reset clears the readings.
func (p *ProximitySensorEquipped) Reset() {
	clear(p.readings)
}

func (p *ProximitySensorEquipped) NumSensors() int { return len(p.sensors) }

func (p *ProximitySensorEquipped) Sensor(i int) ProximitySensor { return p.sensors[i] }

func (p *ProximitySensorEquipped) Ray(i int) Ray { return p.rays[i] }

// Readings returns a copy of the current readings, one per ray.
func (p *ProximitySensorEquipped) Readings() []float64 {
	out := make([]float64, len(p.readings))
	copy(out, p.readings)
	return out
}

func (p *ProximitySensorEquipped) SetReading(i int, v float64) {
	p.readings[i] = v
}
