package robot_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/conftree"
	"github.com/swarmsim/racersim/internal/controller"
	"github.com/swarmsim/racersim/internal/core/entity"
	"github.com/swarmsim/racersim/internal/core/factory"
	"github.com/swarmsim/racersim/internal/robot"
)

var _ = Describe("Deepracer lifecycle", func() {
	var env *factory.Env

	BeforeEach(func() {
		env = factory.NewEnv(zap.NewNop())
		Expect(env.Controllers.Add(controller.Config{
			ID:        "mycntrl",
			Type:      controller.TagIdle,
			Actuators: []string{controller.DeviceSteering, controller.DeviceRAB},
			Sensors:   []string{controller.DeviceLidar, controller.DeviceBattery},
		})).To(Succeed())
	})

	config := func(src string) *conftree.Node {
		n, err := conftree.Parse([]byte(src), robot.Tag)
		Expect(err).NotTo(HaveOccurred())
		return n
	}

	Context("when built from configuration", func() {
		var d *robot.Deepracer

		BeforeEach(func() {
			var err error
			d, err = robot.FromConfig(env, config(`
id: eb0
body: {position: "0.4,2.3,0.25", orientation: "45,90,0"}
controller: {config: mycntrl}
`))
			Expect(err).NotTo(HaveOccurred())
		})

		It("registers the six components with control logic last", func() {
			Expect(d.Components()).To(Equal([]string{
				robot.BodyID, robot.WheelsID, robot.LidarID,
				robot.RABID, robot.BatteryID, robot.ControllerID,
			}))
		})

		It("claims its identifier", func() {
			Expect(env.Identifiers.Has("eb0")).To(BeTrue())
			_, err := robot.New(env, robot.DefaultParams("eb0", "mycntrl"))
			Expect(err).To(MatchError(entity.ErrDuplicateIdentifier))
		})

		It("uses the default radio", func() {
			Expect(d.RAB().Range()).To(Equal(3.0))
			Expect(d.RAB().DataSize()).To(Equal(10))
		})

		It("keeps a constant charge without a battery subtree", func() {
			start := d.Battery().AvailableCharge()
			for i := 0; i < 1000; i++ {
				Expect(d.UpdateComponents()).To(Succeed())
			}
			Expect(d.Battery().AvailableCharge()).To(Equal(start))
		})

		It("returns to its constructed state on reset", func() {
			initial := d.Snapshot()
			d.Wheels().SetSteeringAndThrottle(0.4, 1)
			Expect(d.RAB().SetData(0, []byte{0xff})).To(Succeed())
			Expect(d.Reset()).To(Succeed())
			Expect(d.Snapshot()).To(Equal(initial))
		})

		It("can be destroyed exactly once", func() {
			Expect(d.Destroy()).To(Succeed())
			Expect(d.Destroy()).To(MatchError(entity.ErrDestroyed))
			Expect(d.Reset()).To(MatchError(entity.ErrDestroyed))
			Expect(d.UpdateComponents()).To(MatchError(entity.ErrDestroyed))
			Expect(env.Identifiers.Has("eb0")).To(BeFalse())
		})
	})

	Context("when a component fails", func() {
		It("aborts construction and names the entity", func() {
			_, err := robot.FromConfig(env, config(`
id: eb1
body: {position: "0,0,0"}
controller: {config: mycntrl}
battery: {model: nuclear}
`))
			Expect(err).To(MatchError(entity.ErrConstructionAborted))
			Expect(err).To(MatchError(entity.ErrComponentInit))
			Expect(err).To(MatchError(ContainSubstring(`failed to initialize entity "eb1"`)))
			Expect(env.Identifiers.Has("eb1")).To(BeFalse())
		})

		It("fails when the controller needs a device the robot lacks", func() {
			Expect(env.Controllers.Add(controller.Config{
				ID: "camera", Type: controller.TagIdle, Sensors: []string{"camera"},
			})).To(Succeed())
			_, err := robot.New(env, robot.DefaultParams("eb2", "camera"))
			Expect(err).To(MatchError(entity.ErrComponentNotFound))
		})
	})
})
