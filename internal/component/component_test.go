package component

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/controller"
	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/geom"
)

const eps = 1e-9

var owner = entity.NewHandle(1, 0)

func assertVec(t *testing.T, want, got geom.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
	assert.InDelta(t, want.Z, got.Z, eps, "z")
}

func TestEmbodiedInitAndReset(t *testing.T) {
	b := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity)
	node := conftree.New("body").SetAttr("position", "0.4,2.3,0.25").SetAttr("orientation", "90,0,0")
	require.NoError(t, b.Init(node))

	assertVec(t, geom.Vector3{X: 0.4, Y: 2.3, Z: 0.25}, b.Position())
	assert.Equal(t, b.Position(), b.OriginAnchor().Position)
	assert.Equal(t, OriginAnchorID, b.OriginAnchor().ID)

	b.MoveTo(geom.Vector3{X: 5}, geom.Identity)
	assert.Equal(t, geom.Vector3{X: 5}, b.OriginAnchor().Position)

	b.Reset()
	assertVec(t, geom.Vector3{X: 0.4, Y: 2.3, Z: 0.25}, b.OriginAnchor().Position)
	assert.Equal(t, b.InitialOrientation(), b.Orientation())
}

func TestEmbodiedInitErrors(t *testing.T) {
	tests := []struct {
		name string
		node *conftree.Node
	}{
		{"missing position", conftree.New("body")},
		{"bad position", conftree.New("body").SetAttr("position", "1,2")},
		{"bad orientation", conftree.New("body").SetAttr("position", "1,2,3").SetAttr("orientation", "a,b,c")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity).Init(tt.node)
			assert.ErrorIs(t, err, entity.ErrComponentInit)
			var ce *entity.ComponentError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "body_0", ce.Component)
		})
	}
}

func TestAckermannWheeled(t *testing.T) {
	w := NewAckermannWheeled(owner, "wheels_0")
	require.NoError(t, w.SetWheel(RearLeftWheel, geom.Vector3{X: -0.08, Y: 0.08}, 0.03))
	require.NoError(t, w.SetWheel(FrontLeftWheel, geom.Vector3{X: 0.08, Y: 0.08}, 0.03))
	assert.Error(t, w.SetWheel(NumWheels, geom.Vector3{}, 0.03))
	assert.Error(t, w.SetWheel(-1, geom.Vector3{}, 0.03))

	assert.InDelta(t, 0.16, w.Wheelbase(), eps)
	assert.Len(t, w.Wheels(), NumWheels)

	w.SetSteeringAndThrottle(0.2, 1.5)
	assert.Equal(t, 0.2, w.Steering())
	assert.Equal(t, 1.5, w.Throttle())
	w.Reset()
	assert.Zero(t, w.Steering())
	assert.Zero(t, w.Throttle())
	assert.Equal(t, 0.03, w.Wheel(FrontLeftWheel).Radius)
}

func TestProximityRingFollowsAnchor(t *testing.T) {
	body := NewEmbodied(owner, "body_0", geom.Vector3{X: 1}, geom.Identity)
	p := NewProximitySensorEquipped(owner, "lidar")
	p.AddSensorRing(geom.Vector3{Z: 0.1}, 0.05, 0, 2, 4, body.OriginAnchor())
	require.Equal(t, 4, p.NumSensors())

	p.Update()
	assertVec(t, geom.Vector3{X: 1.05, Z: 0.1}, p.Ray(0).Start)
	assertVec(t, geom.Vector3{X: 3.05, Z: 0.1}, p.Ray(0).End)

	// Turning the body a quarter left swings the first ray onto +Y.
	body.MoveTo(geom.Vector3{X: 1}, geom.FromEulerZYX(90, 0, 0))
	p.Update()
	assertVec(t, geom.Vector3{X: 1, Y: 0.05, Z: 0.1}, p.Ray(0).Start)
	assertVec(t, geom.Vector3{X: 1, Y: 2.05, Z: 0.1}, p.Ray(0).End)

	p.SetReading(1, 0.7)
	assert.Equal(t, []float64{0, 0.7, 0, 0}, p.Readings())
	p.Reset()
	assert.Equal(t, []float64{0, 0, 0, 0}, p.Readings())
}

func TestRABEquipped(t *testing.T) {
	body := NewEmbodied(owner, "body_0", geom.Vector3{X: 1, Y: 2}, geom.Identity)
	r, err := NewRABEquipped(owner, "rab_0", 10, 3, body.OriginAnchor(), body, geom.Vector3{Z: 0.15})
	require.NoError(t, err)

	r.Update()
	assertVec(t, geom.Vector3{X: 1, Y: 2, Z: 0.15}, r.Position())
	assert.Equal(t, 3.0, r.Range())
	assert.Equal(t, 10, r.DataSize())
	assert.Same(t, body, r.Body())

	require.NoError(t, r.SetData(8, []byte{1, 2}))
	assert.ErrorIs(t, r.SetData(9, []byte{1, 2}), ErrPayloadOverflow)
	assert.ErrorIs(t, r.SetData(-1, []byte{1}), ErrPayloadOverflow)
	assert.Equal(t, byte(2), r.Data()[9])

	r.Reset()
	assert.Equal(t, make([]byte, 10), r.Data())
}

func TestRABEquippedRejectsBadParams(t *testing.T) {
	body := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity)
	tests := []struct {
		name   string
		size   int
		rng    float64
		anchor *Anchor
	}{
		{"zero size", 0, 3, body.OriginAnchor()},
		{"negative range", 10, -1, body.OriginAnchor()},
		{"NaN range", 10, math.NaN(), body.OriginAnchor()},
		{"infinite range", 10, math.Inf(1), body.OriginAnchor()},
		{"negative infinite range", 10, math.Inf(-1), body.OriginAnchor()},
		{"oversized payload", MaxDataSize + 1, 3, body.OriginAnchor()},
		{"no anchor", 10, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRABEquipped(owner, "rab_0", tt.size, tt.rng, tt.anchor, body, geom.Vector3{})
			assert.ErrorIs(t, err, entity.ErrComponentInit)
		})
	}
}

func TestBatteryNeverDepletesWithoutModel(t *testing.T) {
	body := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity)
	b, err := NewBatteryEquipped(owner, "battery_0", body, ModelNone)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		body.MoveTo(geom.Vector3{X: float64(i)}, geom.Identity)
		b.Update()
	}
	assert.Equal(t, b.FullCharge(), b.AvailableCharge())
	assert.Equal(t, ModelNone, b.Model())
}

func TestBatteryTimeModel(t *testing.T) {
	body := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity)
	b, err := NewBatteryEquipped(owner, "battery_0", body, ModelNone)
	require.NoError(t, err)
	require.NoError(t, b.Init(conftree.New("battery").SetAttr("model", "time").SetAttr("factor", "0.3")))

	b.Update()
	b.Update()
	assert.InDelta(t, 0.4, b.AvailableCharge(), eps)
	b.Update()
	b.Update()
	assert.Zero(t, b.AvailableCharge())
	assert.True(t, b.Depleted())

	b.Reset()
	assert.Equal(t, 1.0, b.AvailableCharge())
}

func TestBatteryMotionModel(t *testing.T) {
	body := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity)
	b, err := NewBatteryEquipped(owner, "battery_0", body, ModelNone)
	require.NoError(t, err)
	node := conftree.New("battery").
		SetAttr("model", "motion").
		SetAttr("pos_factor", "0.1").
		SetAttr("orient_factor", "0.01").
		SetAttr("full_charge", "2").
		SetAttr("start_charge", "1.5")
	require.NoError(t, b.Init(node))
	assert.Equal(t, 2.0, b.FullCharge())

	b.Update()
	assert.Equal(t, 1.5, b.AvailableCharge(), "no motion, no drain")

	body.MoveTo(geom.Vector3{X: 2}, geom.FromEulerZYX(90, 0, 0))
	b.Update()
	assert.InDelta(t, 1.5-0.2-0.01*math.Pi/2, b.AvailableCharge(), eps)

	// Reset rebases on the restored pose.
	body.Reset()
	b.Reset()
	b.Update()
	assert.Equal(t, 1.5, b.AvailableCharge())
}

func TestBatteryMotionModelStationary(t *testing.T) {
	for _, model := range []string{ModelMotion, ModelTimeMotion} {
		t.Run(model, func(t *testing.T) {
			body := NewEmbodied(owner, "body_0", geom.Vector3{X: 0.4, Y: 2.3, Z: 0.25}, geom.FromEulerZYX(45, 90, 0))
			b, err := NewBatteryEquipped(owner, "battery_0", body, ModelNone)
			require.NoError(t, err)
			node := conftree.New("battery").SetAttr("model", model)
			if model == ModelTimeMotion {
				node.SetAttr("time_factor", "0")
			}
			require.NoError(t, b.Init(node))
			for i := 0; i < 1000; i++ {
				b.Update()
			}
			assert.Equal(t, b.FullCharge(), b.AvailableCharge())
		})
	}
}

func TestBatteryTimeMotionModel(t *testing.T) {
	body := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity)
	b, err := NewBatteryEquipped(owner, "battery_0", body, ModelNone)
	require.NoError(t, err)
	node := conftree.New("battery").
		SetAttr("model", "time_motion").
		SetAttr("time_factor", "0.01").
		SetAttr("pos_factor", "0.1")
	require.NoError(t, b.Init(node))

	body.MoveTo(geom.Vector3{Y: 1}, geom.Identity)
	b.Update()
	assert.InDelta(t, 1-0.01-0.1, b.AvailableCharge(), eps)
	assert.Equal(t, ModelTimeMotion, b.Model())
}

func TestBatteryErrors(t *testing.T) {
	body := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity)

	_, err := NewBatteryEquipped(owner, "battery_0", body, "nuclear")
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.ErrorIs(t, err, entity.ErrComponentInit)

	_, err = NewBatteryEquipped(owner, "battery_0", nil, ModelTime)
	assert.ErrorIs(t, err, entity.ErrComponentInit)

	tests := []struct {
		name string
		node *conftree.Node
	}{
		{"unknown model", conftree.New("battery").SetAttr("model", "nuclear")},
		{"bad factor", conftree.New("battery").SetAttr("model", "time").SetAttr("factor", "x")},
		{"start above full", conftree.New("battery").SetAttr("start_charge", "2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBatteryEquipped(owner, "battery_0", body, ModelNone)
			require.NoError(t, err)
			assert.ErrorIs(t, b.Init(tt.node), entity.ErrComponentInit)
		})
	}
}

type panicky struct{ controller.Idle }

func (p *panicky) ControlStep() { panic("kaboom") }

func init() {
	controller.Register("test_panicky", controller.Descriptor{
		New: func(controller.Deps) (controller.Controller, error) { return &panicky{}, nil },
	})
}

func newControllable(t *testing.T, lib *controller.Library) (*Controllable, *entity.Registry) {
	t.Helper()
	reg := entity.NewRegistry()
	body := NewEmbodied(owner, "body_0", geom.Vector3{}, geom.Identity)
	wheels := NewAckermannWheeled(owner, "wheels_0")
	require.NoError(t, reg.Add(body))
	require.NoError(t, reg.Add(wheels))
	c := NewControllable(owner, "controller_0", "dr0", reg, map[string]string{
		controller.DeviceSteering: "wheels_0",
		controller.DevicePose:     "body_0",
		controller.DeviceLidar:    "lidar",
	}, lib, controller.Deps{})
	require.NoError(t, reg.Add(c))
	return c, reg
}

func TestControllableResolvesDevices(t *testing.T) {
	lib := controller.NewLibrary()
	require.NoError(t, lib.Add(controller.Config{
		ID:        "idle",
		Type:      controller.TagIdle,
		Actuators: []string{controller.DeviceSteering},
		Sensors:   []string{controller.DevicePose},
	}))
	c, _ := newControllable(t, lib)
	require.NoError(t, c.Init(conftree.New("controller").SetAttr("config", "idle")))

	steer, err := controller.Lookup[controller.SteeringActuator](c, controller.DeviceSteering)
	require.NoError(t, err)
	steer.SetSteeringAndThrottle(0.1, 1)

	_, err = c.Device(controller.DeviceBattery)
	assert.ErrorIs(t, err, ErrUndeclaredDevice)
	assert.Equal(t, "dr0", c.EntityID())

	c.ControlStep()
	assert.Equal(t, 1, c.Controller().(*controller.Idle).Steps)
	c.Reset()
	assert.Zero(t, c.Controller().(*controller.Idle).Steps)
	c.Destroy()
	assert.Nil(t, c.Controller())
	c.ControlStep()
}

func TestControllableMissingDeviceFailsLoudly(t *testing.T) {
	lib := controller.NewLibrary()
	require.NoError(t, lib.Add(controller.Config{ID: "needs_lidar", Type: controller.TagIdle, Sensors: []string{controller.DeviceLidar}}))
	require.NoError(t, lib.Add(controller.Config{ID: "needs_rab", Type: controller.TagIdle, Actuators: []string{controller.DeviceRAB}}))

	tests := []struct {
		config string
		target error
	}{
		{"needs_lidar", entity.ErrComponentNotFound}, // bound but not registered
		{"needs_rab", entity.ErrComponentNotFound},   // no binding at all
		{"no_such_config", entity.ErrComponentInit},
	}
	for _, tt := range tests {
		t.Run(tt.config, func(t *testing.T) {
			c, _ := newControllable(t, lib)
			err := c.SetController(tt.config)
			assert.ErrorIs(t, err, tt.target)
			assert.ErrorIs(t, err, entity.ErrComponentInit)
			assert.Nil(t, c.Controller())
		})
	}

	c, _ := newControllable(t, lib)
	assert.ErrorIs(t, c.Init(conftree.New("controller")), conftree.ErrAttrNotFound)
}

func TestControllableTagFallbackAndPanic(t *testing.T) {
	c, _ := newControllable(t, controller.NewLibrary())
	require.NoError(t, c.SetController("test_panicky"))
	assert.Equal(t, "test_panicky", c.Config().Type)
	assert.NotPanics(t, c.ControlStep)
}
