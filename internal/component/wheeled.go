package component

import (
	"fmt"

	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/geom"
)

// Wheel indices of an Ackermann drivetrain.
const (
	RearLeftWheel = iota
	RearRightWheel
	FrontLeftWheel
	FrontRightWheel
	NumWheels
)

// Wheel is a wheel mounting: offset from the body origin and radius.
type Wheel struct {
	Offset geom.Vector3
	Radius float64
}

// AckermannWheeled is a four-wheel car-like drivetrain commanded by a
// steering angle and a throttle.
type AckermannWheeled struct {
	entity.Base

	wheels   [NumWheels]Wheel
	steering float64 // radians, positive turns left
	throttle float64 // linear speed, m/s
}

func NewAckermannWheeled(owner entity.Handle, id string) *AckermannWheeled {
	return &AckermannWheeled{Base: entity.NewBase(owner, id)}
}

// SetWheel mounts wheel i.
func (w *AckermannWheeled) SetWheel(i int, offset geom.Vector3, radius float64) error {
	if i < 0 || i >= NumWheels {
		return fmt.Errorf("wheel index %d out of range", i)
	}
	w.wheels[i] = Wheel{Offset: offset, Radius: radius}
	return nil
}

func (w *AckermannWheeled) Wheel(i int) Wheel { return w.wheels[i] }

func (w *AckermannWheeled) Wheels() []Wheel {
	out := make([]Wheel, NumWheels)
	copy(out, w.wheels[:])
	return out
}

// Wheelbase is the distance between the rear and front axles.
func (w *AckermannWheeled) Wheelbase() float64 {
	return w.wheels[FrontLeftWheel].Offset.X - w.wheels[RearLeftWheel].Offset.X
}

func (w *AckermannWheeled) SetSteeringAndThrottle(steering, throttle float64) {
	w.steering, w.throttle = steering, throttle
}

func (w *AckermannWheeled) Steering() float64 { return w.steering }
func (w *AckermannWheeled) Throttle() float64 { return w.throttle }

// Reset drops the last command. Mountings are fixed at construction.
func (w *AckermannWheeled) Reset() {
	w.steering, w.throttle = 0, 0
}
