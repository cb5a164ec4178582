package robot

import (
	"errors"
	"fmt"

	"github.com/swarmsim/racersim/internal/component"
	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/controller"
	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/geom"
)

// ErrStageOrder is returned when a build stage is entered out of order or
// before the stages it depends on have committed.
var ErrStageOrder = errors.New("robot: build stage out of order")

type stage int

const (
	stageBody stage = iota
	stageDrivetrain
	// stageVision is reserved for a camera component. It is skipped.
	stageVision
	stageSensor
	stageRadio
	stagePower
	stageControl
	numStages
)

var stageNames = [numStages]string{"body", "drivetrain", "vision", "sensor", "radio", "power", "control"}

func (s stage) String() string {
	if s < 0 || s >= numStages {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// requires lists, per stage, the stages that must have committed first.
var requires = [numStages][]stage{
	stageDrivetrain: {stageBody},
	stageSensor:     {stageBody},
	stageRadio:      {stageBody},
	stagePower:      {stageBody},
	stageControl:    {stageBody, stageDrivetrain, stageSensor, stageRadio, stagePower},
}

// builder assembles a Deepracer one stage at a time. Stages only move
// forward and every component is registered as soon as it exists.
type builder struct {
	d         *Deepracer
	last      stage
	committed [numStages]bool
}

func newBuilder(d *Deepracer) *builder {
	return &builder{d: d, last: -1}
}

func (b *builder) enter(s stage) error {
	if s <= b.last {
		return fmt.Errorf("%w: %s after %s", ErrStageOrder, s, b.last)
	}
	for _, req := range requires[s] {
		if !b.committed[req] {
			return fmt.Errorf("%w: %s needs %s", ErrStageOrder, s, req)
		}
	}
	b.last = s
	return nil
}

func (b *builder) commit(s stage, c entity.Component) error {
	if err := b.d.components.Add(c); err != nil {
		return err
	}
	b.committed[s] = true
	return nil
}

func (b *builder) skip(s stage) error {
	return b.enter(s)
}

// body creates the body at pos/orient and, when node is given, lets it
// read its pose from the configuration.
func (b *builder) body(pos geom.Vector3, orient geom.Quaternion, node *conftree.Node) error {
	if err := b.enter(stageBody); err != nil {
		return err
	}
	body := component.NewEmbodied(b.d.handle, BodyID, pos, orient)
	if err := b.commit(stageBody, body); err != nil {
		return err
	}
	b.d.body = body
	if node != nil {
		return body.Init(node)
	}
	return nil
}

func (b *builder) drivetrain() error {
	if err := b.enter(stageDrivetrain); err != nil {
		return err
	}
	w := component.NewAckermannWheeled(b.d.handle, WheelsID)
	if err := b.commit(stageDrivetrain, w); err != nil {
		return err
	}
	b.d.wheels = w
	mounts := [component.NumWheels]geom.Vector3{
		component.RearLeftWheel:   RearLeftWheelOffset,
		component.RearRightWheel:  RearRightWheelOffset,
		component.FrontLeftWheel:  FrontLeftWheelOffset,
		component.FrontRightWheel: FrontRightWheelOffset,
	}
	for i, offset := range mounts {
		if err := w.SetWheel(i, offset, WheelRadius); err != nil {
			return entity.InitError(WheelsID, err)
		}
	}
	return nil
}

func (b *builder) sensor() error {
	if err := b.enter(stageSensor); err != nil {
		return err
	}
	lidar := component.NewProximitySensorEquipped(b.d.handle, LidarID)
	if err := b.commit(stageSensor, lidar); err != nil {
		return err
	}
	b.d.lidar = lidar
	lidar.AddSensorRing(geom.Vector3{Z: LidarElevation}, LidarRingRadius, 0, LidarRange, LidarRays, b.d.body.OriginAnchor())
	return nil
}

func (b *builder) radio(rng float64, dataSize int) error {
	if err := b.enter(stageRadio); err != nil {
		return err
	}
	body := b.d.body
	rab, err := component.NewRABEquipped(b.d.handle, RABID, dataSize, rng,
		body.OriginAnchor(), body, geom.Vector3{Z: BaseTop})
	if err != nil {
		return err
	}
	if err := b.commit(stageRadio, rab); err != nil {
		return err
	}
	b.d.rab = rab
	return nil
}

// power creates the battery with the named model; a configuration node,
// when present, overrides it.
func (b *builder) power(model string, node *conftree.Node) error {
	if err := b.enter(stagePower); err != nil {
		return err
	}
	battery, err := component.NewBatteryEquipped(b.d.handle, BatteryID, b.d.body, model)
	if err != nil {
		return err
	}
	if err := b.commit(stagePower, battery); err != nil {
		return err
	}
	b.d.battery = battery
	if node != nil {
		return battery.Init(node)
	}
	return nil
}

// control attaches the control logic. Exactly one of configID and node is
// used: node wins when present.
func (b *builder) control(configID string, node *conftree.Node) error {
	if err := b.enter(stageControl); err != nil {
		return err
	}
	env := b.d.env
	c := component.NewControllable(b.d.handle, ControllerID, b.d.id, b.d.components, deviceBindings,
		env.Controllers, controller.Deps{ScriptsDir: env.ScriptsDir, Seed: env.Seed, Log: env.Log})
	if err := b.commit(stageControl, c); err != nil {
		return err
	}
	b.d.ctrl = c
	if node != nil {
		return c.Init(node)
	}
	return c.SetController(configID)
}

// deviceBindings maps controller device names to component ids.
var deviceBindings = map[string]string{
	controller.DeviceSteering: WheelsID,
	controller.DeviceLidar:    LidarID,
	controller.DeviceRAB:      RABID,
	controller.DeviceBattery:  BatteryID,
	controller.DevicePose:     BodyID,
}
