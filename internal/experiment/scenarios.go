package experiment

import (
	"math"
	"math/rand"

	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/constraint"
	"github.com/san-kum/partsim/internal/interaction"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/system"
	"github.com/san-kum/partsim/internal/vecmath"
)

const (
	groupBody uint32 = iota
	groupAnchor
	groupProbe
)

func linkOptions(p config.Params) constraint.Options {
	return constraint.Options{Compliance: p.Compliance, Dissipation: p.Dissipation, MaxForce: p.MaxForce}
}

func count(cfg *config.Config, def int) int {
	if cfg.Count > 0 {
		return cfg.Count
	}
	return def
}

func buildPendulum(cfg *config.Config, opts system.Options) (*system.System, error) {
	p := cfg.Params
	n := count(cfg, 3)
	length := config.Or(p.Length, 80)
	angle := config.Or(p.Angle, math.Pi/2)
	mass := config.Or(p.Mass, 10)

	sys := system.New(opts)
	prev := sys.AddParticle(particle.New(particle.Config{Group: groupAnchor, Radius: 4}))

	var bobs []particle.Ref
	pos := vecmath.Vec3{}
	for k := 0; k < n; k++ {
		a := angle + 0.1*float64(k)
		pos = pos.Add(vecmath.Vec3{math.Sin(a), -math.Cos(a), 0}.Mul(length))
		bob := sys.AddParticle(particle.New(particle.Config{Mass: mass, Radius: 6, Pos: pos}))
		link, err := constraint.NewDistance(prev, bob, length, linkOptions(p))
		if err != nil {
			return nil, err
		}
		sys.AddConstraint(link)
		bobs = append(bobs, bob)
		prev = bob
	}
	sys.AddInteraction(interaction.NewSimple(&interaction.Falling{G: config.Or(p.Gravity, 200), Ground: -length * float64(n)}, bobs...))
	return sys, nil
}

func buildChain(cfg *config.Config, opts system.Options) (*system.System, error) {
	p := cfg.Params
	n := count(cfg, 30)
	radius := config.Or(p.Radius, 3)
	length := config.Or(p.Length, 2*radius)
	linkMass := config.Or(p.Mass, 1)

	sys := system.New(opts)
	refs := make([]particle.Ref, 0, n+2)
	for i := 0; i < n; i++ {
		m := linkMass
		if i == 0 {
			m = 0
		}
		refs = append(refs, sys.AddParticle(particle.New(particle.Config{
			Mass:   m,
			Radius: radius,
			Pos:    vecmath.Vec3{float64(i) * length, 0, 0},
		})))
	}
	for i := 0; i+1 < n; i++ {
		opt := linkOptions(p)
		if p.MaxForce > 0 {
			// links near the anchor carry the whole chain
			opt.MaxForce = p.MaxForce * float64(n) / float64(i+1)
		}
		link, err := constraint.NewDistance(refs[i], refs[i+1], length, opt)
		if err != nil {
			return nil, err
		}
		sys.AddConstraint(link)
	}

	span := float64(n) * length
	for _, x := range []float64{0.3 * span, 0.55 * span} {
		refs = append(refs, sys.AddParticle(particle.New(particle.Config{
			Group:  groupAnchor,
			Radius: 2 * radius,
			Pos:    vecmath.Vec3{x, -0.4 * span, 0},
		})))
	}

	pen, err := constraint.NonPenetrateAll(refs, constraint.Options{})
	if err != nil {
		return nil, err
	}
	sys.AddConstraints(pen...)
	sys.AddInteraction(interaction.NewSimple(&interaction.Falling{G: config.Or(p.Gravity, 200), Ground: -span}, refs[:n]...))
	sys.StaticConstraintPass(1)
	return sys, nil
}

func scatter(rng *rand.Rand, half, margin float64, flat bool) vecmath.Vec3 {
	u := func() float64 { return (rng.Float64()*2 - 1) * (half - margin) }
	v := vecmath.Vec3{u(), u(), 0}
	if !flat {
		v[2] = u()
	}
	return v
}

func buildGas(cfg *config.Config, opts system.Options) (*system.System, error) {
	p := cfg.Params
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := count(cfg, 60)
	half := config.Or(p.Box, 60)
	radius := config.Or(p.Radius, 2)
	mass := config.Or(p.Mass, 1)
	speed := config.Or(p.Speed, 20)

	sys := system.New(opts)
	refs := make([]particle.Ref, n)
	for i := range refs {
		refs[i] = sys.AddParticle(particle.New(particle.Config{
			Mass:   mass,
			Radius: radius,
			Pos:    scatter(rng, half, radius, true),
			Vel:    vecmath.Polar(speed*rng.Float64(), 2*math.Pi*rng.Float64()),
		}))
	}

	pen, err := constraint.NonPenetrateAll(refs, constraint.Options{})
	if err != nil {
		return nil, err
	}
	sys.AddConstraints(pen...)
	// separate overlaps left by random placement
	sys.StaticConstraintPass(cfg.StaticPasses)

	lj, err := interaction.NewLennardJones(config.Or(p.BondEnergy, 50), p.BondLength, config.Or(p.Softening, 0.1))
	if err != nil {
		return nil, err
	}
	sys.AddInteraction(interaction.NewPairwise(lj, refs...))
	box := vecmath.Vec3{half, half, half}
	sys.AddInteraction(interaction.NewField(&interaction.BoxBound{Min: box.Mul(-1), Max: box}, refs...))
	return sys, nil
}

func buildCloud(cfg *config.Config, opts system.Options) (*system.System, error) {
	p := cfg.Params
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := count(cfg, 120)
	half := config.Or(p.Box, 80)
	radius := config.Or(p.Radius, 2)

	sys := system.New(opts)
	refs := make([]particle.Ref, n)
	for i := range refs {
		refs[i] = sys.AddParticle(particle.New(particle.Config{
			Mass:   config.Or(p.Mass, 1),
			Radius: radius,
			Pos:    scatter(rng, half, 0, true),
		}))
	}
	soft := config.Or(p.Softening, 2)
	sys.AddInteraction(interaction.NewField(&interaction.NaiveGravity{G: config.Or(p.G, 50), Softening: soft}, refs...))
	lj, err := interaction.NewLennardJones(config.Or(p.BondEnergy, 20), p.BondLength, soft)
	if err != nil {
		return nil, err
	}
	sys.AddInteraction(interaction.NewPairwise(lj, refs...))
	return sys, nil
}

func buildStar(cfg *config.Config, opts system.Options) (*system.System, error) {
	p := cfg.Params
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := count(cfg, 80)
	half := config.Or(p.Box, 60)
	mass := config.Or(p.Mass, 1)
	radius := config.Or(p.Radius, 0)
	if radius == 0 {
		radius = particle.RadiusFromDensity(mass, 0.01)
	}

	sys := system.New(opts)
	refs := make([]particle.Ref, n)
	for i := range refs {
		refs[i] = sys.AddParticle(particle.New(particle.Config{
			Mass:   mass,
			Radius: radius,
			Pos:    scatter(rng, half, radius, false),
		}))
	}
	sys.AddInteraction(interaction.NewField(&interaction.NaiveGravity{G: config.Or(p.G, 200), Softening: p.Softening}, refs...))
	pen, err := constraint.NonPenetrateAll(refs, constraint.Options{Compliance: p.Compliance, Dissipation: p.Dissipation})
	if err != nil {
		return nil, err
	}
	sys.AddConstraints(pen...)
	sys.StaticConstraintPass(cfg.StaticPasses)
	return sys, nil
}

func buildBlock(cfg *config.Config, opts system.Options) (*system.System, error) {
	p := cfg.Params
	scale := config.Or(p.Length, 10)
	width, height := 2*scale, scale
	rot := vecmath.Rotation(vecmath.ZHat, config.Or(p.Angle, math.Pi/5))
	vel := vecmath.Vec3{1, 0.7, 0}.Mul(scale)
	mass := config.Or(p.Mass, 1)

	corners := []vecmath.Vec3{
		{width / 2, height / 2, 0},
		{-width / 2, height / 2, 0},
		{-width / 2, -height / 2, 0},
		{width / 2, -height / 2, 0},
	}
	sys := system.New(opts)
	refs := make([]particle.Ref, len(corners))
	for i, c := range corners {
		refs[i] = sys.AddParticle(particle.New(particle.Config{
			Mass:   mass,
			Radius: scale / 10,
			Pos:    rot.Mul3x1(c).Add(vecmath.Vec3{0, 3 * scale, 0}),
			Vel:    vel,
		}))
	}

	diag := math.Hypot(width, height)
	edges := []struct {
		a, b int
		l    float64
	}{
		{0, 1, width}, {1, 2, height}, {2, 3, width}, {3, 0, height}, {1, 3, diag}, {2, 0, diag},
	}
	for _, e := range edges {
		c, err := constraint.NewDistance(refs[e.a], refs[e.b], e.l, linkOptions(p))
		if err != nil {
			return nil, err
		}
		sys.AddConstraint(c)
	}

	floor := vecmath.Vec3{0, -height, 0}
	for _, r := range refs {
		c, err := constraint.NewContactPlane(r, floor, vecmath.YHat, scale/10, constraint.Options{AsForce: true})
		if err != nil {
			return nil, err
		}
		sys.AddConstraint(c)
	}
	sys.AddInteraction(interaction.NewSimple(&interaction.Falling{G: config.Or(p.Gravity, 200), Ground: floor[1]}, refs...))
	return sys, nil
}

func buildCharges(cfg *config.Config, opts system.Options) (*system.System, error) {
	p := cfg.Params
	side := int(math.Ceil(math.Sqrt(float64(count(cfg, 36)))))
	spacing := config.Or(p.Length, 10)
	q := config.Or(p.Charge, 1)
	radius := config.Or(p.Radius, 2)

	sys := system.New(opts)
	var refs []particle.Ref
	offset := float64(side-1) * spacing / 2
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			sign := 1.0
			if (i+j)%2 == 1 {
				sign = -1
			}
			refs = append(refs, sys.AddParticle(particle.New(particle.Config{
				Group:  groupBody,
				Mass:   config.Or(p.Mass, 1),
				Charge: sign * q,
				Radius: radius,
				Pos:    vecmath.Vec3{float64(i)*spacing - offset, float64(j)*spacing - offset, 0},
			})))
		}
	}
	sys.AddInteraction(interaction.NewPairwise(&interaction.Electrostatic{K: config.Or(p.Coulomb, 400), Softening: config.Or(p.Softening, 1)}, refs...))
	pen, err := constraint.NonPenetrateAll(refs, constraint.Options{})
	if err != nil {
		return nil, err
	}
	sys.AddConstraints(pen...)
	return sys, nil
}

func buildTwoBody(cfg *config.Config, opts system.Options) (*system.System, error) {
	p := cfg.Params
	sys := system.New(opts)
	heavy := sys.AddParticle(particle.New(particle.Config{Mass: 50, Radius: 5, Pos: vecmath.Vec3{100, 0, 0}}))
	light := sys.AddParticle(particle.New(particle.Config{Group: groupProbe, Mass: 10, Radius: 5, Pos: vecmath.Vec3{-100, 0, 0}}))
	sys.AddInteraction(interaction.NewPairwise(&interaction.Gravity{G: config.Or(p.G, 6000), Softening: p.Softening}, heavy, light))
	c, err := constraint.NewNonPenetrate(heavy, light, 10, constraint.Options{})
	if err != nil {
		return nil, err
	}
	sys.AddConstraint(c)
	sys.StaticConstraintPass(1)
	return sys, nil
}
