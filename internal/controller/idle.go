package controller

// TagIdle is the controller that never commands anything.
const TagIdle = "idle_controller"

func init() {
	Register(TagIdle, Descriptor{
		Brief: "Does nothing. Useful to place passive robots.",
		New:   func(Deps) (Controller, error) { return &Idle{}, nil },
	})
}

// Idle resolves its declared devices and otherwise does nothing.
type Idle struct {
	Steps int
}

func (c *Idle) Init(cfg Config, dev Devices) error {
	for _, name := range cfg.Devices() {
		if _, err := dev.Device(name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Idle) ControlStep() { c.Steps++ }
func (c *Idle) Reset()       { c.Steps = 0 }
func (c *Idle) Destroy()     {}
