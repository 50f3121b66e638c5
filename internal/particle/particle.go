package particle

import (
	"math"

	"github.com/san-kum/partsim/internal/vecmath"
)

type ID uint64

// Config describes a particle to create. Mass 0 gives an immovable particle
// (anchors, walls). Radius 0 is a point.
type Config struct {
	Group  uint32
	Mass   float64
	Charge float64
	Radius float64
	Pos    vecmath.Vec3
	Vel    vecmath.Vec3
}

type Particle struct {
	ID          ID
	Group       uint32
	Mass        float64
	InverseMass float64
	Charge      float64
	Radius      float64
	Pos         vecmath.Vec3
	Vel         vecmath.Vec3
	PrevPos     vecmath.Vec3
}

// New builds a particle from cfg. The ID is assigned when it is inserted
// into a Store.
func New(cfg Config) Particle {
	p := Particle{
		Group:   cfg.Group,
		Charge:  cfg.Charge,
		Radius:  cfg.Radius,
		Pos:     cfg.Pos,
		Vel:     cfg.Vel,
		PrevPos: cfg.Pos,
	}
	p.SetMass(cfg.Mass)
	return p
}

// SetMass keeps InverseMass in sync. Non-positive mass is infinite mass.
func (p *Particle) SetMass(m float64) {
	if m > 0 {
		p.Mass = m
		p.InverseMass = 1 / m
		return
	}
	p.Mass = 0
	p.InverseMass = 0
}

// RadiusFromDensity returns the radius of a uniform sphere of the given mass.
func RadiusFromDensity(mass, density float64) float64 {
	if mass <= 0 || density <= 0 {
		return 0
	}
	return math.Cbrt(3 * mass / (4 * math.Pi * density))
}

func (p *Particle) Immovable() bool { return p.InverseMass == 0 }

// Integrate advances the particle one substep with semi-implicit Euler:
// velocity from the accumulated force and impulse, a PrevPos snapshot, the
// position update, then any queued displacement. Immovable particles ignore
// displacements too.
func (p *Particle) Integrate(acc *Accumulator, dt float64) {
	if acc != nil {
		p.Vel = p.Vel.Add(acc.Force.Mul(p.InverseMass * dt)).Add(acc.Impulse.Mul(p.InverseMass))
	}
	p.PrevPos = p.Pos
	p.Pos = p.Pos.Add(p.Vel.Mul(dt))
	if acc != nil && !p.Immovable() {
		p.Pos = p.Pos.Add(acc.Displacement)
	}
}

// DeriveVelocity reconstructs the velocity from the substep's position delta.
func (p *Particle) DeriveVelocity(dt float64) {
	if dt == 0 {
		return
	}
	p.Vel = p.Pos.Sub(p.PrevPos).Mul(1 / dt)
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.Vel.LenSqr()
}

func (p *Particle) Momentum() vecmath.Vec3 {
	return p.Vel.Mul(p.Mass)
}

// Action is what a field or law asks to apply to one particle.
type Action struct {
	Force        vecmath.Vec3
	Impulse      vecmath.Vec3
	Displacement vecmath.Vec3
}

func (a Action) Finite() bool {
	return vecmath.IsFinite(a.Force) && vecmath.IsFinite(a.Impulse) && vecmath.IsFinite(a.Displacement)
}
