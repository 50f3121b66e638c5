package interaction

import (
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/vecmath"
)

// ConstantForce pushes every coupled particle with the same force.
type ConstantForce struct {
	F vecmath.Vec3
}

func (c *ConstantForce) Force(p *particle.Particle) (vecmath.Vec3, error) {
	return c.F, nil
}

func (c *ConstantForce) Potential(p *particle.Particle) float64 {
	return -c.F.Dot(p.Pos)
}

func (c *ConstantForce) String() string { return "constant" }

// Falling is uniform gravity of strength G along -y. Ground is the height
// of zero potential energy.
type Falling struct {
	G      float64
	Ground float64
}

func (f *Falling) Force(p *particle.Particle) (vecmath.Vec3, error) {
	return vecmath.Vec3{0, -p.Mass * f.G, 0}, nil
}

func (f *Falling) Potential(p *particle.Particle) float64 {
	return p.Mass * f.G * (p.Pos[1] - f.Ground)
}

func (f *Falling) String() string { return "falling" }
