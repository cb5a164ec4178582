package component

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/controller"
	"github.com/swarmsim/racersim/internal/core/entity"
)

// ErrUndeclaredDevice is returned when a controller asks for a device its
// configuration does not list.
var ErrUndeclaredDevice = errors.New("controller: device not declared")

// Controllable hosts the control logic of a composite. It must be the last
// component added: device resolution reads the components before it.
type Controllable struct {
	entity.Base

	entityID   string
	components *entity.Registry
	bindings   map[string]string
	library    *controller.Library
	deps       controller.Deps
	log        *zap.Logger

	cfg  controller.Config
	ctrl controller.Controller
}

// NewControllable binds device names to component ids of the owning
// composite's registry.
func NewControllable(owner entity.Handle, id, entityID string, components *entity.Registry,
	bindings map[string]string, library *controller.Library, deps controller.Deps) *Controllable {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Controllable{
		Base:       entity.NewBase(owner, id),
		entityID:   entityID,
		components: components,
		bindings:   bindings,
		library:    library,
		deps:       deps,
		log:        deps.Log.With(zap.String("entity", entityID)),
	}
}

// Init reads the "config" attribute: the id of a controller configuration.
func (c *Controllable) Init(node *conftree.Node) error {
	id, err := node.Get("config")
	if err != nil {
		return entity.InitError(c.ID(), err)
	}
	return c.SetController(id)
}

// SetController creates and initialises the controller configured under id.
// An id missing from the library is taken as a controller type tag with
// no devices and no parameters.
func (c *Controllable) SetController(id string) error {
	cfg, ok := c.library.Get(id)
	if !ok {
		if _, registered := controller.LookupType(id); !registered {
			return entity.InitError(c.ID(), fmt.Errorf("unknown controller config %q", id))
		}
		cfg = controller.Config{ID: id, Type: id, Params: conftree.New("params")}
	}
	ctrl, err := controller.New(cfg.Type, c.deps)
	if err != nil {
		return entity.InitError(c.ID(), err)
	}
	c.cfg = cfg
	if err := ctrl.Init(cfg, c); err != nil {
		return entity.InitError(c.ID(), fmt.Errorf("controller %q: %w", cfg.ID, err))
	}
	c.ctrl = ctrl
	c.log.Debug("controller attached", zap.String("config", cfg.ID), zap.String("type", cfg.Type))
	return nil
}

// EntityID implements controller.Devices.
func (c *Controllable) EntityID() string { return c.entityID }

// Device implements controller.Devices.
func (c *Controllable) Device(name string) (any, error) {
	if !c.cfg.Declares(name) {
		return nil, fmt.Errorf("%w: %q", ErrUndeclaredDevice, name)
	}
	compID, ok := c.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: no component provides device %q", entity.ErrComponentNotFound, name)
	}
	return c.components.Get(compID)
}

// ControlStep runs one step of the controller. A panic in control logic is
// logged and does not escape into the simulation loop.
func (c *Controllable) ControlStep() {
	if c.ctrl == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("control step panic", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	c.ctrl.ControlStep()
}

func (c *Controllable) Reset() {
	if c.ctrl != nil {
		c.ctrl.Reset()
	}
}

func (c *Controllable) Destroy() {
	if c.ctrl != nil {
		c.ctrl.Destroy()
		c.ctrl = nil
	}
}

func (c *Controllable) Controller() controller.Controller { return c.ctrl }
func (c *Controllable) Config() controller.Config         { return c.cfg }
