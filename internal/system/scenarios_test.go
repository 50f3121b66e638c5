package system_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/partsim/internal/constraint"
	"github.com/san-kum/partsim/internal/interaction"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/system"
	"github.com/san-kum/partsim/internal/vecmath"
)

func separation(sys *system.System, a, b particle.Ref) float64 {
	pa, err := sys.Particle(a)
	Expect(err).NotTo(HaveOccurred())
	pb, err := sys.Particle(b)
	Expect(err).NotTo(HaveOccurred())
	return pa.Pos.Sub(pb.Pos).Len()
}

var _ = Describe("System", func() {
	var sys *system.System

	BeforeEach(func() {
		sys = system.New(system.DefaultOptions())
	})

	Describe("two gravitating bodies kept apart", func() {
		var heavy, light particle.Ref

		BeforeEach(func() {
			heavy = sys.AddParticle(particle.New(particle.Config{Mass: 50, Radius: 5, Pos: vecmath.Vec3{100, 0, 0}}))
			light = sys.AddParticle(particle.New(particle.Config{Mass: 10, Radius: 5, Pos: vecmath.Vec3{-100, 0, 0}}))
			sys.AddInteraction(interaction.NewPairwise(&interaction.Gravity{G: 6000}, heavy, light))
			c, err := constraint.NewNonPenetrate(heavy, light, 10, constraint.Options{})
			Expect(err).NotTo(HaveOccurred())
			sys.AddConstraint(c)
		})

		It("is separated by at least the combined radius after a static pass", func() {
			sys.StaticConstraintPass(1)
			Expect(separation(sys, heavy, light)).To(BeNumerically(">=", 10))
			Expect(sys.Time()).To(BeZero())
		})

		It("never interpenetrates while falling together", func() {
			sys.StaticConstraintPass(1)
			closest := math.Inf(1)
			for i := 0; i < 600; i++ {
				sys.StepForward(0.01)
				d := separation(sys, heavy, light)
				Expect(d).To(BeNumerically(">=", 10-1e-9))
				closest = math.Min(closest, d)
			}
			Expect(closest).To(BeNumerically("<", 20), "the bodies should have met")
		})

		It("conserves momentum", func() {
			for i := 0; i < 600; i++ {
				sys.StepForward(0.01)
				p := sys.Diagnostics().Momentum
				Expect(p.Len()).To(BeNumerically("<", 1e-4))
			}
		})
	})

	Describe("a closed gravitating cluster", func() {
		It("conserves momentum within tolerance", func() {
			var refs []particle.Ref
			cfgs := []particle.Config{
				{Mass: 5, Pos: vecmath.Vec3{0, 0, 0}, Vel: vecmath.Vec3{0.3, -0.1, 0}},
				{Mass: 1, Pos: vecmath.Vec3{4, 0, 0}, Vel: vecmath.Vec3{0, 1.2, 0}},
				{Mass: 2, Pos: vecmath.Vec3{-3, 2, 1}, Vel: vecmath.Vec3{0.5, 0, -0.4}},
				{Mass: 0.5, Pos: vecmath.Vec3{1, -5, 0}, Vel: vecmath.Vec3{-1, 0, 0.2}},
			}
			for _, c := range cfgs {
				refs = append(refs, sys.AddParticle(particle.New(c)))
			}
			sys.AddInteraction(interaction.NewPairwise(&interaction.Gravity{G: 10, Softening: 0.5}, refs...))
			lj, err := interaction.NewLennardJones(0.5, 1, 0.1)
			Expect(err).NotTo(HaveOccurred())
			sys.AddInteraction(interaction.NewPairwise(lj, refs...))

			start := sys.Diagnostics().Momentum
			for i := 0; i < 300; i++ {
				sys.StepForward(0.01)
			}
			end := sys.Diagnostics().Momentum
			Expect(end.Sub(start).Len()).To(BeNumerically("<", 1e-6*(1+start.Len())))
		})
	})

	Describe("a single-link pendulum", func() {
		const (
			g      = 200.0
			length = 250.0
			dt     = 1.0 / 1200
		)
		var anchor, bob particle.Ref

		BeforeEach(func() {
			sys.SetSubsteps(1)
			anchor = sys.AddParticle(particle.New(particle.Config{}))
			bob = sys.AddParticle(particle.New(particle.Config{Mass: 15, Pos: vecmath.Vec3{length, 0, 0}}))
			sys.AddInteraction(interaction.NewSimple(&interaction.Falling{G: g}, bob))
			c, err := constraint.NewDistance(anchor, bob, length, constraint.Options{})
			Expect(err).NotTo(HaveOccurred())
			sys.AddConstraint(c)
		})

		It("holds its length and never outruns energy conservation", func() {
			for i := 0; i < 10000; i++ {
				sys.StepForward(dt)

				Expect(math.Abs(separation(sys, anchor, bob) - length)).To(BeNumerically("<", 1e-6))

				p, err := sys.Particle(bob)
				Expect(err).NotTo(HaveOccurred())
				drop := math.Max(0, -p.Pos[1])
				limit := math.Sqrt(2*g*drop)*1.01 + 1e-6
				Expect(p.Vel.Len()).To(BeNumerically("<=", limit), "substep %d", i)
			}
			a, _ := sys.Particle(anchor)
			Expect(a.Pos).To(Equal(vecmath.Vec3{}))
		})
	})

	Describe("a breakable link", func() {
		It("breaks under overload and stays broken once the load is gone", func() {
			anchor := sys.AddParticle(particle.New(particle.Config{}))
			bob := sys.AddParticle(particle.New(particle.Config{Mass: 1, Pos: vecmath.Vec3{0, -10, 0}}))
			load := &interaction.ConstantForce{F: vecmath.Vec3{0, -1000, 0}}
			sys.AddInteraction(interaction.NewSimple(load, bob))
			link, err := constraint.NewDistance(anchor, bob, 10, constraint.Options{MaxForce: 50})
			Expect(err).NotTo(HaveOccurred())
			sys.AddConstraint(link)

			for i := 0; i < 3; i++ {
				sys.StepForward(1.0 / 60)
			}
			Expect(link.Broken()).To(BeTrue())

			load.F = vecmath.Vec3{}
			for i := 0; i < 30; i++ {
				sys.StepForward(1.0 / 60)
				Expect(link.Broken()).To(BeTrue())
			}
			Expect(separation(sys, anchor, bob)).To(BeNumerically(">", 10))
			Expect(sys.Diagnostics().BrokenConstraints).To(Equal(1))
		})

		It("holds under a load below its limit", func() {
			anchor := sys.AddParticle(particle.New(particle.Config{}))
			bob := sys.AddParticle(particle.New(particle.Config{Mass: 1, Pos: vecmath.Vec3{0, -10, 0}}))
			sys.AddInteraction(interaction.NewSimple(&interaction.ConstantForce{F: vecmath.Vec3{0, -10, 0}}, bob))
			link, err := constraint.NewDistance(anchor, bob, 10, constraint.Options{MaxForce: 50})
			Expect(err).NotTo(HaveOccurred())
			sys.AddConstraint(link)

			for i := 0; i < 60; i++ {
				sys.StepForward(1.0 / 60)
			}
			Expect(link.Broken()).To(BeFalse())
			Expect(math.Abs(link.Force())).To(BeNumerically("~", 10, 0.5))
		})
	})
})
