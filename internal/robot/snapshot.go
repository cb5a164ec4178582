package robot

import (
	"github.com/swarmsim/racersim/internal/component"
	"github.com/swarmsim/racersim/internal/geom"
)

// Snapshot is the observable state of a DeepRacer.
type Snapshot struct {
	ID         string
	Components []string

	Position    geom.Vector3
	Orientation geom.Quaternion

	Wheels   []component.Wheel
	Steering float64
	Throttle float64

	LidarRays     []component.Ray
	LidarReadings []float64

	RABPosition geom.Vector3
	RABRange    float64
	RABData     []byte

	BatteryModel string
	Charge       float64
}

// Snapshot captures the current state. It returns the zero Snapshot once
// destroyed.
func (d *Deepracer) Snapshot() Snapshot {
	if d.destroyed {
		return Snapshot{}
	}
	rays := make([]component.Ray, d.lidar.NumSensors())
	for i := range rays {
		rays[i] = d.lidar.Ray(i)
	}
	return Snapshot{
		ID:            d.id,
		Components:    d.components.IDs(),
		Position:      d.body.Position(),
		Orientation:   d.body.Orientation(),
		Wheels:        d.wheels.Wheels(),
		Steering:      d.wheels.Steering(),
		Throttle:      d.wheels.Throttle(),
		LidarRays:     rays,
		LidarReadings: d.lidar.Readings(),
		RABPosition:   d.rab.Position(),
		RABRange:      d.rab.Range(),
		RABData:       d.rab.Data(),
		BatteryModel:  d.battery.Model(),
		Charge:        d.battery.AvailableCharge(),
	}
}
