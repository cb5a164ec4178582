package component

import (
	"errors"
	"fmt"

	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/geom"
)

// Discharge model names accepted by BatteryEquipped.
const (
	ModelNone       = ""
	ModelTime       = "time"
	ModelMotion     = "motion"
	ModelTimeMotion = "time_motion"
)

// ErrUnknownModel is returned for an unsupported discharge model name.
var ErrUnknownModel = errors.New("battery: unknown discharge model")

// Default discharge factors, per update.
const (
	DefaultTimeFactor   = 1e-5
	DefaultPosFactor    = 1e-3
	DefaultOrientFactor = 1e-3
)

// DischargeModel computes how much charge one update consumes.
type DischargeModel interface {
	Name() string
	Configure(node *conftree.Node) error
	// Rebase forgets accumulated motion; called after construction and Reset.
	Rebase(body *Embodied)
	Drain(body *Embodied) float64
}

func newDischargeModel(name string) (DischargeModel, error) {
	switch name {
	case ModelNone, "none":
		return nil, nil
	case ModelTime:
		return &timeDischarge{factor: DefaultTimeFactor}, nil
	case ModelMotion:
		return &motionDischarge{posFactor: DefaultPosFactor, orientFactor: DefaultOrientFactor}, nil
	case ModelTimeMotion:
		return &timeMotionDischarge{
			timeDischarge:   timeDischarge{factor: DefaultTimeFactor},
			motionDischarge: motionDischarge{posFactor: DefaultPosFactor, orientFactor: DefaultOrientFactor},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

type timeDischarge struct {
	factor float64
}

func (m *timeDischarge) Name() string { return ModelTime }

func (m *timeDischarge) Configure(node *conftree.Node) (err error) {
	m.factor, err = node.FloatOr("factor", m.factor)
	return err
}

func (m *timeDischarge) Rebase(*Embodied)        {}
func (m *timeDischarge) Drain(*Embodied) float64 { return m.factor }

type motionDischarge struct {
	posFactor    float64
	orientFactor float64

	lastPosition    geom.Vector3
	lastOrientation geom.Quaternion
}

func (m *motionDischarge) Name() string { return ModelMotion }

func (m *motionDischarge) Configure(node *conftree.Node) (err error) {
	if m.posFactor, err = node.FloatOr("pos_factor", m.posFactor); err != nil {
		return err
	}
	m.orientFactor, err = node.FloatOr("orient_factor", m.orientFactor)
	return err
}

func (m *motionDischarge) Rebase(body *Embodied) {
	m.lastPosition, m.lastOrientation = body.Position(), body.Orientation()
}

func (m *motionDischarge) Drain(body *Embodied) float64 {
	pos, orient := body.Position(), body.Orientation()
	d := m.posFactor*pos.Distance(m.lastPosition) + m.orientFactor*orient.AngleTo(m.lastOrientation)
	m.lastPosition, m.lastOrientation = pos, orient
	return d
}

type timeMotionDischarge struct {
	timeDischarge
	motionDischarge
}

func (m *timeMotionDischarge) Name() string { return ModelTimeMotion }

func (m *timeMotionDischarge) Configure(node *conftree.Node) (err error) {
	if m.factor, err = node.FloatOr("time_factor", m.factor); err != nil {
		return err
	}
	return m.motionDischarge.Configure(node)
}

func (m *timeMotionDischarge) Rebase(body *Embodied) { m.motionDischarge.Rebase(body) }

func (m *timeMotionDischarge) Drain(body *Embodied) float64 {
	return m.timeDischarge.Drain(body) + m.motionDischarge.Drain(body)
}

// BatteryEquipped is the power source. Without a discharge model the charge
// never changes.
type BatteryEquipped struct {
	entity.Base

	body        *Embodied
	model       DischargeModel
	fullCharge  float64
	startCharge float64
	charge      float64
}

// NewBatteryEquipped creates a full battery using the named discharge model
// with default factors.
func NewBatteryEquipped(owner entity.Handle, id string, body *Embodied, model string) (*BatteryEquipped, error) {
	b := &BatteryEquipped{
		Base:        entity.NewBase(owner, id),
		body:        body,
		fullCharge:  1,
		startCharge: 1,
		charge:      1,
	}
	if err := b.setModel(model); err != nil {
		return nil, entity.InitError(id, err)
	}
	return b, nil
}

func (b *BatteryEquipped) setModel(name string) error {
	m, err := newDischargeModel(name)
	if err != nil {
		return err
	}
	if m != nil && b.body == nil {
		return fmt.Errorf("model %q needs a body", name)
	}
	b.model = m
	b.rebase()
	return nil
}

// Init reads model, its factors, full_charge and start_charge.
func (b *BatteryEquipped) Init(node *conftree.Node) error {
	if err := b.configure(node); err != nil {
		return entity.InitError(b.ID(), err)
	}
	return nil
}

func (b *BatteryEquipped) configure(node *conftree.Node) error {
	if err := b.setModel(node.StringOr("model", ModelNone)); err != nil {
		return err
	}
	if b.model != nil {
		if err := b.model.Configure(node); err != nil {
			return err
		}
	}
	full, err := node.FloatOr("full_charge", b.fullCharge)
	if err != nil {
		return err
	}
	start, err := node.FloatOr("start_charge", full)
	if err != nil {
		return err
	}
	if full <= 0 || start < 0 || start > full {
		return fmt.Errorf("charge out of range: start %g, full %g", start, full)
	}
	b.fullCharge, b.startCharge, b.charge = full, start, start
	return nil
}

func (b *BatteryEquipped) rebase() {
	if b.model != nil {
		b.model.Rebase(b.body)
	}
}

// Update applies the discharge model. Charge never goes below zero.
func (b *BatteryEquipped) Update() {
	if b.model == nil || b.charge <= 0 {
		return
	}
	b.charge -= b.model.Drain(b.body)
	if b.charge < 0 {
		b.charge = 0
	}
}

// Reset restores the start charge and the motion baseline.
func (b *BatteryEquipped) Reset() {
	b.charge = b.startCharge
	b.rebase()
}

func (b *BatteryEquipped) AvailableCharge() float64 { return b.charge }
func (b *BatteryEquipped) FullCharge() float64      { return b.fullCharge }
func (b *BatteryEquipped) StartCharge() float64     { return b.startCharge }
func (b *BatteryEquipped) Depleted() bool           { return b.charge <= 0 }

// Model returns the discharge model name; ModelNone means never depleting.
func (b *BatteryEquipped) Model() string {
	if b.model == nil {
		return ModelNone
	}
	return b.model.Name()
}
