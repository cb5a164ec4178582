package component

import (
	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/geom"
)

// Anchor is a reference frame attached to a body. Dependent components
// read it to place themselves.
type Anchor struct {
	ID          string
	Position    geom.Vector3
	Orientation geom.Quaternion
}

// OriginAnchorID names the anchor at the bottom point of every body.
const OriginAnchorID = "origin"

// Embodied is the physical body: pose plus the origin anchor.
type Embodied struct {
	entity.Base

	position    geom.Vector3
	orientation geom.Quaternion

	initPosition    geom.Vector3
	initOrientation geom.Quaternion

	origin Anchor
}

// NewEmbodied creates a body at the given initial pose.
func NewEmbodied(owner entity.Handle, id string, pos geom.Vector3, orient geom.Quaternion) *Embodied {
	b := &Embodied{Base: entity.NewBase(owner, id)}
	b.origin.ID = OriginAnchorID
	b.setInitialPose(pos, orient)
	return b
}

// Init reads the "position" (x,y,z) and "orientation" (z,y,x degrees)
// attributes. Position is required.
func (b *Embodied) Init(node *conftree.Node) error {
	pos, err := node.Vector3("position")
	if err != nil {
		return entity.InitError(b.ID(), err)
	}
	orient, err := node.Orientation("orientation")
	if err != nil {
		return entity.InitError(b.ID(), err)
	}
	b.setInitialPose(pos, orient)
	return nil
}

func (b *Embodied) setInitialPose(pos geom.Vector3, orient geom.Quaternion) {
	b.initPosition, b.initOrientation = pos, orient
	b.MoveTo(pos, orient)
}

// Reset restores the initial pose.
func (b *Embodied) Reset() {
	b.MoveTo(b.initPosition, b.initOrientation)
}

// MoveTo sets the pose and drags the origin anchor with it.
func (b *Embodied) MoveTo(pos geom.Vector3, orient geom.Quaternion) {
	b.position, b.orientation = pos, orient
	b.origin.Position, b.origin.Orientation = pos, orient
}

func (b *Embodied) Position() geom.Vector3        { return b.position }
func (b *Embodied) Orientation() geom.Quaternion  { return b.orientation }
func (b *Embodied) InitialPosition() geom.Vector3 { return b.initPosition }

func (b *Embodied) InitialOrientation() geom.Quaternion { return b.initOrientation }

// OriginAnchor returns the live origin anchor. The pointer stays valid for
// the lifetime of the body.
func (b *Embodied) OriginAnchor() *Anchor { return &b.origin }
