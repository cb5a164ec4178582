package controller

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"path/filepath"
	"strconv"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/scripting"
)

// TagLua is the controller driven by a Lua script.
const TagLua = "lua_controller"

func init() {
	Register(TagLua, Descriptor{
		Brief: "Runs control_step(robot) from the Lua script named by params.script.",
		New: func(deps Deps) (Controller, error) {
			return &Lua{scriptsDir: deps.ScriptsDir, seed: deps.Seed, log: deps.Log}, nil
		},
	})
}

// Lua hosts one script VM per robot. The script may define
// init(params), control_step(robot), reset() and destroy(); only
// control_step is required. robot.random() draws from a source seeded by the
// simulation seed and the entity id, reseeded on Reset.
type Lua struct {
	scriptsDir string
	seed       int64
	log        *zap.Logger
	entityID   string

	engine *scripting.Engine
	robot  *lua.LTable
	pcg    *rand.PCG
	rng    *rand.Rand
	failed bool
}

func (c *Lua) Init(cfg Config, dev Devices) error {
	script, err := cfg.Params.Get("script")
	if err != nil {
		return err
	}
	if !filepath.IsAbs(script) {
		script = filepath.Join(c.scriptsDir, script)
	}
	c.log = c.log.With(zap.String("entity", dev.EntityID()), zap.String("script", script))
	c.entityID = dev.EntityID()
	c.pcg = rand.NewPCG(uint64(c.seed), streamOf(c.entityID))
	c.rng = rand.New(c.pcg)

	engine, err := scripting.NewEngine(filepath.Join(c.scriptsDir, "lib"), script, c.log)
	if err != nil {
		return err
	}
	if !engine.Has("control_step") {
		engine.Close()
		return fmt.Errorf("%s: %w: control_step", script, scripting.ErrNoFunction)
	}
	c.engine = engine

	robot, err := c.bindDevices(cfg, dev)
	if err != nil {
		c.close()
		return err
	}
	c.robot = robot

	if err := engine.CallOptional("init", c.params(cfg)); err != nil {
		c.close()
		return err
	}
	return nil
}

func streamOf(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

func (c *Lua) close() {
	c.engine.Close()
	c.engine = nil
	c.robot = nil
}

// bindDevices builds the robot table. Only declared devices get a function.
func (c *Lua) bindDevices(cfg Config, dev Devices) (*lua.LTable, error) {
	e := c.engine
	robot := e.NewTable()
	robot.RawSetString("id", lua.LString(dev.EntityID()))
	robot.RawSetString("random", e.Func(func(L *lua.LState) int {
		L.Push(lua.LNumber(c.rng.Float64()))
		return 1
	}))

	for _, name := range cfg.Devices() {
		switch name {
		case DeviceSteering:
			act, err := Lookup[SteeringActuator](dev, name)
			if err != nil {
				return nil, err
			}
			robot.RawSetString("set_steering_and_throttle", e.Func(func(L *lua.LState) int {
				act.SetSteeringAndThrottle(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))
				return 0
			}))
		case DeviceLidar:
			sens, err := Lookup[ProximitySensor](dev, name)
			if err != nil {
				return nil, err
			}
			robot.RawSetString("lidar_readings", e.Func(func(L *lua.LState) int {
				t := L.NewTable()
				for _, r := range sens.Readings() {
					t.Append(lua.LNumber(r))
				}
				L.Push(t)
				return 1
			}))
		case DeviceBattery:
			sens, err := Lookup[BatterySensor](dev, name)
			if err != nil {
				return nil, err
			}
			robot.RawSetString("battery_charge", e.Func(func(L *lua.LState) int {
				L.Push(lua.LNumber(sens.AvailableCharge()))
				return 1
			}))
		case DevicePose:
			sens, err := Lookup[PoseSensor](dev, name)
			if err != nil {
				return nil, err
			}
			robot.RawSetString("position", e.Func(func(L *lua.LState) int {
				p := sens.Position()
				L.Push(lua.LNumber(p.X))
				L.Push(lua.LNumber(p.Y))
				L.Push(lua.LNumber(p.Z))
				return 3
			}))
		case DeviceRAB:
			act, err := Lookup[RABActuator](dev, name)
			if err != nil {
				return nil, err
			}
			robot.RawSetString("rab_send", e.Func(func(L *lua.LState) int {
				offset := L.CheckInt(1)
				data := L.CheckString(2)
				if err := act.SetData(offset, []byte(data)); err != nil {
					L.RaiseError("%s", err.Error())
				}
				return 0
			}))
		default:
			// Unknown names still have to resolve so typos fail loudly.
			if _, err := dev.Device(name); err != nil {
				return nil, err
			}
		}
	}
	return robot, nil
}

func (c *Lua) params(cfg Config) *lua.LTable {
	values := make(map[string]any)
	for _, k := range cfg.Params.AttrNames() {
		v, _ := cfg.Params.Attr(k)
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			values[k] = f
		} else {
			values[k] = v
		}
	}
	return c.engine.Table(values)
}

func (c *Lua) ControlStep() {
	if c.engine == nil || c.failed {
		return
	}
	if err := c.engine.Call("control_step", c.robot); err != nil {
		// A failed script is not stepped again until Reset.
		c.failed = true
		c.log.Error("control step failed", zap.Error(err))
	}
}

func (c *Lua) Reset() {
	if c.engine == nil {
		return
	}
	c.failed = false
	c.pcg.Seed(uint64(c.seed), streamOf(c.entityID))
	if err := c.engine.CallOptional("reset"); err != nil {
		c.log.Error("reset failed", zap.Error(err))
	}
}

func (c *Lua) Destroy() {
	if c.engine == nil {
		return
	}
	if err := c.engine.CallOptional("destroy"); err != nil {
		c.log.Error("destroy failed", zap.Error(err))
	}
	c.close()
}

// Engine exposes the script VM for inspection.
func (c *Lua) Engine() *scripting.Engine { return c.engine }
