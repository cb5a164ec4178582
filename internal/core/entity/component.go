package entity

import "github.com/swarmsim/racersim/internal/conftree"

// Component is one independently lifecycled capability of a composite.
//
// Update must only be called while Enabled reports true; the caller checks,
// so a disabled component costs nothing per tick.
type Component interface {
	ID() string
	Enabled() bool
	SetEnabled(bool)
	// Owner is a non-owning reference to the composite holding this component.
	Owner() Handle

	Init(node *conftree.Node) error
	Reset()
	Destroy()
	Update()
}

// Base carries the identity and enabled flag every component shares.
// Embed it and override the lifecycle hooks that matter.
type Base struct {
	id      string
	owner   Handle
	enabled bool
}

func NewBase(owner Handle, id string) Base {
	return Base{id: id, owner: owner, enabled: true}
}

func (b *Base) ID() string                { return b.id }
func (b *Base) Owner() Handle             { return b.owner }
func (b *Base) Enabled() bool             { return b.enabled }
func (b *Base) SetEnabled(on bool)        { b.enabled = on }
func (b *Base) Init(*conftree.Node) error { return nil }
func (b *Base) Reset()                    {}
func (b *Base) Destroy()                  {}
func (b *Base) Update()                   {}
