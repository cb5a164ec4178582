package data

import (
	"fmt"
	"os"

	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/controller"
	"github.com/swarmsim/racersim/internal/geom"
)

// EntitySpec is one entry of the arena's entities list.
type EntitySpec struct {
	Type string
	Node *conftree.Node
}

// Arena is a parsed experiment description.
type Arena struct {
	Root        *conftree.Node
	Size        geom.Vector3
	Controllers *controller.Library
	Entities    []EntitySpec
}

// LoadArena reads an arena YAML file:
//
//	arena: {size: "10,10,1"}
//	controllers:
//	  - {id: mycntrl, type: lua_controller, actuators: [...], params: {...}}
//	entities:
//	  - {type: deepracer, id: dr0, body: {...}, controller: {config: mycntrl}}
func LoadArena(path string) (*Arena, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read arena: %w", err)
	}
	a, err := ParseArena(raw)
	if err != nil {
		return nil, fmt.Errorf("parse arena %s: %w", path, err)
	}
	return a, nil
}

// ParseArena parses an arena document.
func ParseArena(raw []byte) (*Arena, error) {
	root, err := conftree.Parse(raw, "experiment")
	if err != nil {
		return nil, err
	}
	a := &Arena{Root: root}

	if arena, err := root.Child("arena"); err == nil && arena.HasAttr("size") {
		if a.Size, err = arena.Vector3("size"); err != nil {
			return nil, err
		}
	}

	a.Controllers, err = controller.LoadLibrary(root.Children("controllers"))
	if err != nil {
		return nil, fmt.Errorf("controllers: %w", err)
	}

	for _, n := range root.Children("entities") {
		tag, err := n.Get("type")
		if err != nil {
			return nil, fmt.Errorf("entity at line %d: %w", n.Line, err)
		}
		a.Entities = append(a.Entities, EntitySpec{Type: tag, Node: n})
	}
	return a, nil
}
