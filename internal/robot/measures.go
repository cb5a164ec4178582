package robot

import "github.com/swarmsim/racersim/internal/geom"

// Physical measures of the DeepRacer, in metres. The body origin is the
// point on the floor halfway between the wheels.
const (
	WheelRadius = 0.03
	// BaseTop is the height of the radio emitter above the origin.
	BaseTop = 0.15

	LidarElevation  = 0.2
	LidarRingRadius = 0.04
	LidarRange      = 12.0
	LidarRays       = 24

	// MaxSteering bounds the front wheel angle, radians.
	MaxSteering = 0.52
	// MaxSpeed bounds the throttle, m/s.
	MaxSpeed = 4.0
)

// Wheel mountings relative to the origin.
var (
	RearLeftWheelOffset   = geom.Vector3{X: -0.0825, Y: 0.08, Z: WheelRadius}
	RearRightWheelOffset  = geom.Vector3{X: -0.0825, Y: -0.08, Z: WheelRadius}
	FrontLeftWheelOffset  = geom.Vector3{X: 0.0825, Y: 0.08, Z: WheelRadius}
	FrontRightWheelOffset = geom.Vector3{X: 0.0825, Y: -0.08, Z: WheelRadius}
)

// Radio defaults for entities that do not set rab_range or rab_data_size.
const (
	DefaultRABRange    = 3.0
	DefaultRABDataSize = 10
)

// Component ids, in registry order.
const (
	BodyID       = "body_0"
	WheelsID     = "wheels_0"
	LidarID      = "lidar"
	RABID        = "rab_0"
	BatteryID    = "battery_0"
	ControllerID = "controller_0"
)
