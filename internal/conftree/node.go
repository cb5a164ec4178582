// Package conftree is the hierarchical, attribute-based configuration tree
// read by config-driven entity construction.
//
// Trees are built from YAML documents: scalar values become attributes,
// mappings become child nodes and sequences of mappings become repeated
// children sharing the sequence key as their name.
package conftree

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/swarmsim/racersim/internal/geom"
	"gopkg.in/yaml.v3"
)

// ErrNodeNotFound is returned when a required child node is missing.
var ErrNodeNotFound = errors.New("conftree: node not found")

// ErrAttrNotFound is returned when a required attribute is missing.
var ErrAttrNotFound = errors.New("conftree: attribute not found")

// ErrNotFinite is wrapped by AttrError for NaN and infinite numbers.
var ErrNotFinite = errors.New("conftree: number is not finite")

// AttrError reports an attribute whose value could not be parsed.
type AttrError struct {
	Node  string
	Attr  string
	Value string
	Err   error
}

func (e *AttrError) Error() string {
	return fmt.Sprintf("node %q: attribute %q=%q: %v", e.Node, e.Attr, e.Value, e.Err)
}

func (e *AttrError) Unwrap() error { return e.Err }

// Node is one element of the configuration tree.
type Node struct {
	Name     string
	Line     int
	attrs    map[string]string
	order    []string
	children []*Node
}

// New returns an empty node.
func New(name string) *Node {
	return &Node{Name: name, attrs: make(map[string]string)}
}

// SetAttr sets or replaces an attribute.
func (n *Node) SetAttr(key, value string) *Node {
	if _, ok := n.attrs[key]; !ok {
		n.order = append(n.order, key)
	}
	n.attrs[key] = value
	return n
}

// AddChild appends c and returns it.
func (n *Node) AddChild(c *Node) *Node {
	n.children = append(n.children, c)
	return c
}

// Attr returns the raw attribute value.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.attrs[key]
	return v, ok
}

func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// AttrNames returns attribute keys in document order.
func (n *Node) AttrNames() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// Child returns the first child named name, or ErrNodeNotFound.
func (n *Node) Child(name string) (*Node, error) {
	if n != nil {
		for _, c := range n.children {
			if c.Name == name {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q in %q", ErrNodeNotFound, name, n.name())
}

func (n *Node) HasChild(name string) bool {
	_, err := n.Child(name)
	return err == nil
}

// Children returns every child named name in document order.
func (n *Node) Children(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the required attribute key.
func (n *Node) Get(key string) (string, error) {
	v, ok := n.Attr(key)
	if !ok {
		return "", fmt.Errorf("%w: %q in %q", ErrAttrNotFound, key, n.name())
	}
	return v, nil
}

func (n *Node) StringOr(key, def string) string {
	if v, ok := n.Attr(key); ok {
		return v
	}
	return def
}

// Float returns the required float attribute key.
func (n *Node) Float(key string) (float64, error) {
	v, err := n.Get(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, n.attrErr(key, v, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, n.attrErr(key, v, ErrNotFinite)
	}
	return f, nil
}

// FloatOr returns key parsed as a float, or def when absent.
func (n *Node) FloatOr(key string, def float64) (float64, error) {
	if !n.HasAttr(key) {
		return def, nil
	}
	return n.Float(key)
}

// UintOr returns key parsed as an unsigned integer, or def when absent.
func (n *Node) UintOr(key string, def uint32) (uint32, error) {
	v, ok := n.Attr(key)
	if !ok {
		return def, nil
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, n.attrErr(key, v, err)
	}
	return uint32(u), nil
}

// BoolOr returns key parsed as a bool, or def when absent.
func (n *Node) BoolOr(key string, def bool) (bool, error) {
	v, ok := n.Attr(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, n.attrErr(key, v, err)
	}
	return b, nil
}

// Vector3 returns the required "x,y,z" attribute key.
func (n *Node) Vector3(key string) (geom.Vector3, error) {
	v, err := n.Get(key)
	if err != nil {
		return geom.Vector3{}, err
	}
	vec, err := geom.ParseVector3(v)
	if err != nil {
		return geom.Vector3{}, n.attrErr(key, v, err)
	}
	return vec, nil
}

// Orientation returns the "z,y,x" degrees attribute key as a rotation.
// A missing attribute yields the identity.
func (n *Node) Orientation(key string) (geom.Quaternion, error) {
	v, ok := n.Attr(key)
	if !ok {
		return geom.Identity, nil
	}
	q, err := geom.ParseEulerZYX(v)
	if err != nil {
		return geom.Quaternion{}, n.attrErr(key, v, err)
	}
	return q, nil
}

// Floats returns every attribute that parses as a float, keyed by name.
// Non-numeric attributes are skipped.
func (n *Node) Floats() map[string]float64 {
	out := make(map[string]float64, len(n.order))
	for _, k := range n.order {
		if f, err := strconv.ParseFloat(n.attrs[k], 64); err == nil {
			out[k] = f
		}
	}
	return out
}

func (n *Node) attrErr(key, value string, err error) error {
	return &AttrError{Node: n.name(), Attr: key, Value: value, Err: err}
}

func (n *Node) name() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}

// Parse builds a tree from a YAML document. The returned root is named
// rootName.
func Parse(data []byte, rootName string) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	root := New(rootName)
	if len(doc.Content) == 0 {
		return root, nil
	}
	body := doc.Content[0]
	if body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping", body.Line)
	}
	root.Line = body.Line
	if err := fill(root, body); err != nil {
		return nil, err
	}
	return root, nil
}

func fill(n *Node, m *yaml.Node) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i].Value, resolve(m.Content[i+1])
		switch val.Kind {
		case yaml.ScalarNode:
			n.SetAttr(key, val.Value)
		case yaml.MappingNode:
			c := n.AddChild(&Node{Name: key, Line: val.Line, attrs: make(map[string]string)})
			if err := fill(c, val); err != nil {
				return err
			}
		case yaml.SequenceNode:
			if err := fillSeq(n, key, val); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: unsupported value for %q", val.Line, key)
		}
	}
	return nil
}

// fillSeq turns a sequence of mappings into repeated children and a
// sequence of scalars into one child holding the items as attributes
// "0", "1", ...
func fillSeq(n *Node, key string, seq *yaml.Node) error {
	var scalars *Node
	for i, item := range seq.Content {
		item = resolve(item)
		switch item.Kind {
		case yaml.MappingNode:
			c := n.AddChild(&Node{Name: key, Line: item.Line, attrs: make(map[string]string)})
			if err := fill(c, item); err != nil {
				return err
			}
		case yaml.ScalarNode:
			if scalars == nil {
				scalars = n.AddChild(&Node{Name: key, Line: seq.Line, attrs: make(map[string]string)})
			}
			scalars.SetAttr(strconv.Itoa(i), item.Value)
		default:
			return fmt.Errorf("line %d: nested sequences are not supported in %q", item.Line, key)
		}
	}
	return nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// Values returns the attribute values of a scalar-sequence node in order.
func (n *Node) Values() []string {
	out := make([]string, 0, len(n.order))
	for _, k := range n.order {
		out = append(out, n.attrs[k])
	}
	return out
}
