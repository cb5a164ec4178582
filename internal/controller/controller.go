// Package controller defines the control-logic contract hosted by the
// controllable component, the library of controller configurations an
// arena declares, and the registry mapping controller type tags to
// constructors.
//
// A controller reaches the robot only through Devices: the named sensors
// and actuators its configuration declares. Resolution happens in Init and
// fails loudly when a declared device is missing.
package controller

import (
	"fmt"

	"github.com/swarmsim/racersim/internal/geom"
)

// Standard device names a controller configuration may declare.
const (
	DeviceSteering = "ackermann_steering"
	DeviceLidar    = "lidar"
	DeviceRAB      = "range_and_bearing"
	DeviceBattery  = "battery"
	DevicePose     = "positioning"
)

// Controller is one control-logic variant.
type Controller interface {
	Init(cfg Config, dev Devices) error
	ControlStep()
	Reset()
	Destroy()
}

// Devices resolves the declared sensors and actuators of one robot.
type Devices interface {
	// EntityID is the id of the composite the controller drives.
	EntityID() string
	// Device returns the component bound to a declared device name.
	Device(name string) (any, error)
}

// SteeringActuator commands an Ackermann drivetrain.
type SteeringActuator interface {
	SetSteeringAndThrottle(steering, throttle float64)
}

// ProximitySensor exposes ranging readings, one per ray.
type ProximitySensor interface {
	Readings() []float64
}

// RABActuator fills the outgoing radio payload.
type RABActuator interface {
	SetData(offset int, data []byte) error
	DataSize() int
}

// BatterySensor reports the remaining charge.
type BatterySensor interface {
	AvailableCharge() float64
	FullCharge() float64
}

// PoseSensor reports the body pose.
type PoseSensor interface {
	Position() geom.Vector3
	Orientation() geom.Quaternion
}

// Lookup resolves a device and asserts its interface.
func Lookup[T any](d Devices, name string) (T, error) {
	var zero T
	dev, err := d.Device(name)
	if err != nil {
		return zero, err
	}
	typed, ok := dev.(T)
	if !ok {
		return zero, fmt.Errorf("device %q: %T does not provide %T", name, dev, zero)
	}
	return typed, nil
}
