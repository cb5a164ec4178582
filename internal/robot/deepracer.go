// Package robot implements the DeepRacer composite: body, Ackermann
// drivetrain, lidar, range-and-bearing radio, battery and control logic,
// assembled in that order.
package robot

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/component"
	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/core/factory"
	"github.com/swarmsim/racersim/internal/geom"
)

// Tag is the entity type tag of the DeepRacer.
const Tag = "deepracer"

// Params are the inputs of programmatic construction.
type Params struct {
	ID           string
	Controller   string // controller configuration id, or a controller type tag
	Position     geom.Vector3
	Orientation  geom.Quaternion
	RABRange     float64
	RABDataSize  int
	BatteryModel string
}

// DefaultParams returns params with the default radio and a battery that
// never depletes.
func DefaultParams(id, controllerID string) Params {
	return Params{
		ID:          id,
		Controller:  controllerID,
		Orientation: geom.Identity,
		RABRange:    DefaultRABRange,
		RABDataSize: DefaultRABDataSize,
	}
}

// Deepracer is the composite entity.
type Deepracer struct {
	id         string
	env        *factory.Env
	log        *zap.Logger
	handle     entity.Handle
	components *entity.Registry

	body    *component.Embodied
	wheels  *component.AckermannWheeled
	lidar   *component.ProximitySensorEquipped
	rab     *component.RABEquipped
	battery *component.BatteryEquipped
	ctrl    *component.Controllable

	// pass is the update pass: lidar, radio, battery.
	pass []entity.Component

	destroyed bool
}

// New builds a DeepRacer from explicit parameters.
func New(env *factory.Env, p Params) (*Deepracer, error) {
	return build(env, p.ID, func(b *builder) error {
		if err := b.body(p.Position, p.Orientation, nil); err != nil {
			return err
		}
		if err := b.drivetrain(); err != nil {
			return err
		}
		if err := b.skip(stageVision); err != nil {
			return err
		}
		if err := b.sensor(); err != nil {
			return err
		}
		if err := b.radio(p.RABRange, p.RABDataSize); err != nil {
			return err
		}
		if err := b.power(p.BatteryModel, nil); err != nil {
			return err
		}
		return b.control(p.Controller, nil)
	})
}

// FromConfig builds a DeepRacer from its configuration node:
//
//	id: dr0                  # required, unique
//	rab_range: 4             # optional, default 3
//	rab_data_size: 100       # optional, default 10
//	body: {position: "0.4,2.3,0.25", orientation: "45,0,0"}
//	controller: {config: mycntrl}
//	battery: {model: time, factor: 1e-5}   # optional
func FromConfig(env *factory.Env, node *conftree.Node) (*Deepracer, error) {
	id, err := node.Get("id")
	if err != nil {
		return nil, &entity.ConstructionError{Entity: id, Err: err}
	}
	return build(env, id, func(b *builder) error {
		bodyNode, err := node.Child("body")
		if err != nil {
			return err
		}
		if err := b.body(geom.Zero, geom.Identity, bodyNode); err != nil {
			return err
		}
		if err := b.drivetrain(); err != nil {
			return err
		}
		if err := b.skip(stageVision); err != nil {
			return err
		}
		if err := b.sensor(); err != nil {
			return err
		}
		rng, err := node.FloatOr("rab_range", DefaultRABRange)
		if err != nil {
			return err
		}
		size, err := node.UintOr("rab_data_size", DefaultRABDataSize)
		if err != nil {
			return err
		}
		if size > component.MaxDataSize {
			return &conftree.AttrError{Node: node.Name, Attr: "rab_data_size",
				Value: strconv.FormatUint(uint64(size), 10), Err: component.ErrDataSizeTooLarge}
		}
		if err := b.radio(rng, int(size)); err != nil {
			return err
		}
		var batteryNode *conftree.Node
		if node.HasChild("battery") {
			batteryNode, _ = node.Child("battery")
		}
		if err := b.power(component.ModelNone, batteryNode); err != nil {
			return err
		}
		controllerNode, err := node.Child("controller")
		if err != nil {
			return err
		}
		return b.control("", controllerNode)
	})
}

// build registers id, runs the stages and the first update pass. Any
// failure tears down what was built and returns a ConstructionError.
func build(env *factory.Env, id string, stages func(*builder) error) (*Deepracer, error) {
	if err := env.Identifiers.Register(id); err != nil {
		return nil, &entity.ConstructionError{Entity: id, Err: err}
	}
	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}
	d := &Deepracer{
		id:         id,
		env:        env,
		log:        log.With(zap.String("entity", id)),
		handle:     env.Pool.Acquire(),
		components: entity.NewRegistry(),
	}
	if err := stages(newBuilder(d)); err != nil {
		d.teardown()
		d.log.Debug("construction aborted", zap.Error(err))
		return nil, &entity.ConstructionError{Entity: id, Err: err}
	}
	d.pass = []entity.Component{d.lidar, d.rab, d.battery}
	d.updateComponents()
	d.log.Debug("entity constructed", zap.Strings("components", d.components.IDs()))
	return d, nil
}

// teardown destroys components in reverse order and releases the id and
// handle. The composite is unusable afterwards.
func (d *Deepracer) teardown() {
	d.components.EachReverse(func(c entity.Component) { c.Destroy() })
	d.components.Clear()
	d.body, d.wheels, d.lidar, d.rab, d.battery, d.ctrl = nil, nil, nil, nil, nil, nil
	d.pass = nil
	d.env.Identifiers.Release(d.id)
	d.env.Pool.Release(d.handle)
	d.destroyed = true
}

func (d *Deepracer) ID() string            { return d.id }
func (d *Deepracer) Type() string          { return Tag }
func (d *Deepracer) Handle() entity.Handle { return d.handle }

// Alive reports whether the composite has not been destroyed.
func (d *Deepracer) Alive() bool { return !d.destroyed && d.env.Pool.Alive(d.handle) }

// UpdateComponents runs the update pass: lidar, radio, battery, each only
// when enabled.
func (d *Deepracer) UpdateComponents() error {
	if d.destroyed {
		return entity.ErrDestroyed
	}
	d.updateComponents()
	return nil
}

func (d *Deepracer) updateComponents() {
	for _, c := range d.pass {
		if c.Enabled() {
			c.Update()
		}
	}
}

// Reset resets every component in registry order, then runs the update
// pass so the state matches a fresh construction.
func (d *Deepracer) Reset() error {
	if d.destroyed {
		return entity.ErrDestroyed
	}
	d.components.Each(func(c entity.Component) { c.Reset() })
	d.updateComponents()
	return nil
}

// Destroy tears the composite down. A second call returns ErrDestroyed.
func (d *Deepracer) Destroy() error {
	if d.destroyed {
		return entity.ErrDestroyed
	}
	d.teardown()
	d.log.Debug("entity destroyed")
	return nil
}

// ControlStep runs one step of the control logic.
func (d *Deepracer) ControlStep() {
	if d.destroyed {
		return
	}
	d.ctrl.ControlStep()
}

// Component returns the component registered under id.
func (d *Deepracer) Component(id string) (entity.Component, error) {
	if d.destroyed {
		return nil, entity.ErrDestroyed
	}
	return d.components.Get(id)
}

// Components returns the component ids in registry order.
func (d *Deepracer) Components() []string { return d.components.IDs() }

func (d *Deepracer) Body() *component.Embodied                 { return d.body }
func (d *Deepracer) Wheels() *component.AckermannWheeled       { return d.wheels }
func (d *Deepracer) Lidar() *component.ProximitySensorEquipped { return d.lidar }
func (d *Deepracer) RAB() *component.RABEquipped               { return d.rab }
func (d *Deepracer) Battery() *component.BatteryEquipped       { return d.battery }
func (d *Deepracer) Controllable() *component.Controllable     { return d.ctrl }
