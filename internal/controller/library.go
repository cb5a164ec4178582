package controller

import (
	"fmt"
	"slices"

	"github.com/swarmsim/racersim/internal/conftree"
)

// Config is one controller configuration, referenced by id from entities.
type Config struct {
	ID        string
	Type      string
	Actuators []string
	Sensors   []string
	Params    *conftree.Node
}

// Declares reports whether the configuration lists device name.
func (c Config) Declares(name string) bool {
	return slices.Contains(c.Actuators, name) || slices.Contains(c.Sensors, name)
}

// Devices returns actuators then sensors.
func (c Config) Devices() []string {
	out := make([]string, 0, len(c.Actuators)+len(c.Sensors))
	out = append(out, c.Actuators...)
	return append(out, c.Sensors...)
}

// ParseConfig reads a controller configuration node:
//
//	id: mycntrl
//	type: lua_controller
//	actuators: [ackermann_steering]
//	sensors: [lidar, battery]
//	params: {script: straight.lua}
func ParseConfig(n *conftree.Node) (Config, error) {
	var cfg Config
	var err error
	if cfg.ID, err = n.Get("id"); err != nil {
		return cfg, err
	}
	if cfg.Type, err = n.Get("type"); err != nil {
		return cfg, fmt.Errorf("controller %q: %w", cfg.ID, err)
	}
	if acts, err := n.Child("actuators"); err == nil {
		cfg.Actuators = acts.Values()
	}
	if sens, err := n.Child("sensors"); err == nil {
		cfg.Sensors = sens.Values()
	}
	cfg.Params, err = n.Child("params")
	if err != nil {
		cfg.Params = conftree.New("params")
	}
	return cfg, nil
}

// Library holds the controller configurations of one simulation.
type Library struct {
	configs map[string]Config
	order   []string
}

func NewLibrary() *Library {
	return &Library{configs: make(map[string]Config)}
}

// LoadLibrary parses every node into a library.
func LoadLibrary(nodes []*conftree.Node) (*Library, error) {
	lib := NewLibrary()
	for _, n := range nodes {
		cfg, err := ParseConfig(n)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if err := lib.Add(cfg); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// Add registers cfg; ids must be unique.
func (l *Library) Add(cfg Config) error {
	if _, exists := l.configs[cfg.ID]; exists {
		return fmt.Errorf("controller config already defined: %s", cfg.ID)
	}
	if cfg.Params == nil {
		cfg.Params = conftree.New("params")
	}
	l.configs[cfg.ID] = cfg
	l.order = append(l.order, cfg.ID)
	return nil
}

func (l *Library) Get(id string) (Config, bool) {
	if l == nil {
		return Config{}, false
	}
	cfg, ok := l.configs[id]
	return cfg, ok
}

func (l *Library) IDs() []string {
	return slices.Clone(l.order)
}

func (l *Library) Len() int { return len(l.order) }
