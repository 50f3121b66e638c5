package interaction

import (
	"fmt"
	"math"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/vecmath"
)

type attractor struct {
	id   particle.ID
	mass float64
	pos  vecmath.Vec3
}

// NaiveGravity is a mean-field N-body gravity: particles are folded into a
// list of attractors and each particle then sums the pull of every other
// attractor.
type NaiveGravity struct {
	G         float64
	Softening float64

	attractors []attractor
	totalMass  float64
	center     vecmath.Vec3
}

func (n *NaiveGravity) ParticleToField(p *particle.Particle) {
	if p.Mass <= 0 {
		return
	}
	n.attractors = append(n.attractors, attractor{id: p.ID, mass: p.Mass, pos: p.Pos})
}

// Integrate reduces the attractors to their total mass and center of mass.
func (n *NaiveGravity) Integrate(dt float64) {
	n.totalMass = 0
	var weighted vecmath.Vec3
	for _, a := range n.attractors {
		n.totalMass += a.mass
		weighted = weighted.Add(a.pos.Mul(a.mass))
	}
	if n.totalMass > 0 {
		n.center = weighted.Mul(1 / n.totalMass)
	}
}

func (n *NaiveGravity) FieldToParticle(p *particle.Particle) (particle.Action, error) {
	var force vecmath.Vec3
	eps2 := n.Softening * n.Softening
	for _, a := range n.attractors {
		if a.id == p.ID {
			continue
		}
		r := p.Pos.Sub(a.pos)
		s2 := r.LenSqr() + eps2
		if s2 < vecmath.Epsilon*vecmath.Epsilon {
			return particle.Action{}, fmt.Errorf("attractor %d: %w", a.id, dynamo.ErrDegenerateGeometry)
		}
		force = force.Add(r.Mul(-n.G * p.Mass * a.mass / (s2 * math.Sqrt(s2))))
	}
	return particle.Action{Force: force}, nil
}

func (n *NaiveGravity) Clear() {
	n.attractors = n.attractors[:0]
}

func (n *NaiveGravity) FieldEnergy() float64 {
	eps2 := n.Softening * n.Softening
	var e float64
	for i := range n.attractors {
		for j := i + 1; j < len(n.attractors); j++ {
			s2 := n.attractors[i].pos.Sub(n.attractors[j].pos).LenSqr() + eps2
			if s2 < vecmath.Epsilon*vecmath.Epsilon {
				continue
			}
			e -= n.G * n.attractors[i].mass * n.attractors[j].mass / math.Sqrt(s2)
		}
	}
	return e
}

// Center returns the total mass and center of mass from the last Integrate.
func (n *NaiveGravity) Center() (float64, vecmath.Vec3) {
	return n.totalMass, n.center
}

func (n *NaiveGravity) String() string { return "naive_gravity" }

// BoxBound keeps particles inside the axis-aligned box [Min, Max]: a particle
// poking through a wall is pushed back and its outward velocity reflected.
type BoxBound struct {
	Min vecmath.Vec3
	Max vecmath.Vec3
}

func (b *BoxBound) ParticleToField(p *particle.Particle) {}
func (b *BoxBound) Integrate(dt float64)                 {}
func (b *BoxBound) Clear()                               {}

func (b *BoxBound) FieldToParticle(p *particle.Particle) (particle.Action, error) {
	var act particle.Action
	for k := 0; k < 3; k++ {
		lo := p.Pos[k] - p.Radius
		hi := p.Pos[k] + p.Radius
		switch {
		case lo < b.Min[k]:
			act.Displacement[k] += b.Min[k] - lo
			if p.Vel[k] < 0 {
				act.Impulse[k] -= 2 * p.Vel[k] * p.Mass
			}
		case hi > b.Max[k]:
			act.Displacement[k] -= hi - b.Max[k]
			if p.Vel[k] > 0 {
				act.Impulse[k] -= 2 * p.Vel[k] * p.Mass
			}
		}
	}
	return act, nil
}

func (b *BoxBound) String() string { return "box_bound" }
