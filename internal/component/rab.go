package component

import (
	"errors"
	"fmt"
	"math"

	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/geom"
)

// MaxDataSize bounds the radio payload in bytes.
const MaxDataSize = 4096

var (
	// ErrPayloadOverflow is returned when a write does not fit the radio payload.
	ErrPayloadOverflow = errors.New("rab: payload overflow")
	// ErrDataSizeTooLarge is returned for payloads above MaxDataSize.
	ErrDataSizeTooLarge = errors.New("rab: data size too large")
)

// RABEquipped is the range-and-bearing radio: a fixed-size outgoing payload
// emitted from a point mounted on a body anchor.
type RABEquipped struct {
	entity.Base

	data     []byte
	rng      float64
	anchor   *Anchor
	body     *Embodied
	offset   geom.Vector3
	position geom.Vector3
}

// NewRABEquipped mounts a radio at offset from anchor. The payload holds
// exactly dataSize bytes.
func NewRABEquipped(owner entity.Handle, id string, dataSize int, rng float64,
	anchor *Anchor, body *Embodied, offset geom.Vector3) (*RABEquipped, error) {
	switch {
	case dataSize <= 0:
		return nil, entity.InitError(id, fmt.Errorf("data size must be positive, got %d", dataSize))
	case dataSize > MaxDataSize:
		return nil, entity.InitError(id, fmt.Errorf("%w: %d > %d", ErrDataSizeTooLarge, dataSize, MaxDataSize))
	case math.IsNaN(rng) || math.IsInf(rng, 0) || rng < 0:
		return nil, entity.InitError(id, fmt.Errorf("range must be finite and not negative, got %g", rng))
	case anchor == nil || body == nil:
		return nil, entity.InitError(id, errors.New("radio needs a body anchor"))
	}
	return &RABEquipped{
		Base:   entity.NewBase(owner, id),
		data:   make([]byte, dataSize),
		rng:    rng,
		anchor: anchor,
		body:   body,
		offset: offset,
	}, nil
}

// Update places the emitter at the anchor plus the rotated mounting offset.
func (r *RABEquipped) Update() {
	r.position = r.anchor.Position.Add(r.offset.Rotate(r.anchor.Orientation))
}

// Reset zeroes the outgoing payload.
func (r *RABEquipped) Reset() {
	clear(r.data)
}

func (r *RABEquipped) Range() float64         { return r.rng }
func (r *RABEquipped) DataSize() int          { return len(r.data) }
func (r *RABEquipped) Position() geom.Vector3 { return r.position }
func (r *RABEquipped) Body() *Embodied        { return r.body }

// Data returns a copy of the outgoing payload.
func (r *RABEquipped) Data() []byte {
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

// SetData writes data at offset.
func (r *RABEquipped) SetData(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(r.data) {
		return fmt.Errorf("%w: %d bytes at %d, size %d", ErrPayloadOverflow, len(data), offset, len(r.data))
	}
	copy(r.data[offset:], data)
	return nil
}
