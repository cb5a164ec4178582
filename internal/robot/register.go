package robot

import (
	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/core/factory"
)

func init() {
	factory.MustRegister(Tag, factory.Descriptor{
		Author:      "racersim developers",
		Version:     "1.0",
		Brief:       "The AWS DeepRacer robot.",
		Description: description,
		Status:      "Under development",
		New: func(env *factory.Env, node *conftree.Node) (factory.Entity, error) {
			d, err := FromConfig(env, node)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
	})
}

const description = `The AWS DeepRacer is a commercial, extensible robot produced by Amazon. More
information is available at https://aws.amazon.com/deepracer

REQUIRED CONFIGURATION

  entities:
    - type: deepracer
      id: dr0
      body: {position: "0.4,2.3,0.25", orientation: "45,90,0"}
      controller: {config: mycntrl}

The 'id' attribute is necessary and must be unique among the entities. If two
entities share the same id, initialization aborts.
The 'body/position' attribute is the position of the bottom point of the robot,
in X,Y,Z order. The bottom point lies on the floor, halfway between the wheels.
The 'body/orientation' attribute is the orientation of the robot as Z,Y,X
angles in degrees, applied in that order around the bottom point. When
unrotated, the robot faces the X axis.
The 'controller/config' attribute must be the id of a controller defined in the
'controllers' section of the arena.

OPTIONAL CONFIGURATION

By default a range-and-bearing message can be received up to 3m away. The
'rab_range' attribute changes it, e.g. rab_range: 4.
By default a range-and-bearing message is 10 bytes long. The 'rab_data_size'
attribute changes it, e.g. rab_data_size: 100.

By default the battery never depletes. The 'battery' subtree selects a
discharge model:
- time: fixed drain per step (factor)
- motion: drain proportional to distance and rotation (pos_factor, orient_factor)
- time_motion: both of the above (time_factor, pos_factor, orient_factor)

      battery: {model: time_motion, time_factor: 1e-5, pos_factor: 1e-3, orient_factor: 1e-3}

'full_charge' and 'start_charge' set the capacity and the initial charge.
`
