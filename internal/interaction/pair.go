package interaction

import (
	"fmt"
	"math"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/vecmath"
)

// softened returns r = p1 - p2 and d^2 + eps^2, or ErrDegenerateGeometry
// when the softened separation vanishes.
func softened(p1, p2 *particle.Particle, eps float64) (vecmath.Vec3, float64, error) {
	r := p1.Pos.Sub(p2.Pos)
	s2 := r.LenSqr() + eps*eps
	if s2 < vecmath.Epsilon*vecmath.Epsilon {
		return r, s2, dynamo.ErrDegenerateGeometry
	}
	return r, s2, nil
}

// Gravity is pairwise Newtonian attraction with softening.
type Gravity struct {
	G         float64
	Softening float64
}

func (g *Gravity) Force(p1, p2 *particle.Particle) (vecmath.Vec3, error) {
	r, s2, err := softened(p1, p2, g.Softening)
	if err != nil {
		return vecmath.Vec3{}, err
	}
	return r.Mul(-g.G * p1.Mass * p2.Mass / (s2 * math.Sqrt(s2))), nil
}

func (g *Gravity) Potential(p1, p2 *particle.Particle) float64 {
	_, s2, err := softened(p1, p2, g.Softening)
	if err != nil {
		return 0
	}
	return -g.G * p1.Mass * p2.Mass / math.Sqrt(s2)
}

func (g *Gravity) String() string { return "gravity" }

// Electrostatic is the Coulomb force. Like charges repel.
type Electrostatic struct {
	K         float64
	Softening float64
}

func (e *Electrostatic) Force(p1, p2 *particle.Particle) (vecmath.Vec3, error) {
	r, s2, err := softened(p1, p2, e.Softening)
	if err != nil {
		return vecmath.Vec3{}, err
	}
	return r.Mul(e.K * p1.Charge * p2.Charge / (s2 * math.Sqrt(s2))), nil
}

func (e *Electrostatic) Potential(p1, p2 *particle.Particle) float64 {
	_, s2, err := softened(p1, p2, e.Softening)
	if err != nil {
		return 0
	}
	return e.K * p1.Charge * p2.Charge / math.Sqrt(s2)
}

func (e *Electrostatic) String() string { return "electrostatic" }

// MieConfig parameterizes the Mie potential
// U(d) = C[(sigma/d)^N - (sigma/d)^M] with C chosen so the well depth is
// Energy. BondLength 0 takes sigma from the summed radii of each pair.
type MieConfig struct {
	Energy     float64
	BondLength float64
	N          float64
	M          float64
	Softening  float64
}

type Mie struct {
	cfg MieConfig
	c   float64
}

func NewMie(cfg MieConfig) (*Mie, error) {
	if cfg.N == 0 && cfg.M == 0 {
		cfg.N, cfg.M = 12, 6
	}
	if cfg.M <= 0 || cfg.N <= cfg.M {
		return nil, fmt.Errorf("mie exponents n=%g m=%g, need n > m > 0: %w", cfg.N, cfg.M, dynamo.ErrInvalidParameter)
	}
	if cfg.BondLength < 0 || cfg.Softening < 0 {
		return nil, fmt.Errorf("mie bond length %g softening %g: %w", cfg.BondLength, cfg.Softening, dynamo.ErrInvalidParameter)
	}
	n, m := cfg.N, cfg.M
	c := (n / (n - m)) * math.Pow(n/m, m/(n-m)) * cfg.Energy
	return &Mie{cfg: cfg, c: c}, nil
}

// NewLennardJones is the 12-6 Mie potential.
func NewLennardJones(energy, bondLength, softening float64) (*Mie, error) {
	return NewMie(MieConfig{Energy: energy, BondLength: bondLength, N: 12, M: 6, Softening: softening})
}

func (l *Mie) sigma(p1, p2 *particle.Particle) float64 {
	if l.cfg.BondLength > 0 {
		return l.cfg.BondLength
	}
	return p1.Radius + p2.Radius
}

func (l *Mie) Force(p1, p2 *particle.Particle) (vecmath.Vec3, error) {
	r, s2, err := softened(p1, p2, l.cfg.Softening)
	if err != nil {
		return vecmath.Vec3{}, err
	}
	sigma := l.sigma(p1, p2)
	n, m := l.cfg.N, l.cfg.M
	k := n*math.Pow(sigma, n)/math.Pow(s2, (n+2)/2) - m*math.Pow(sigma, m)/math.Pow(s2, (m+2)/2)
	return r.Mul(l.c * k), nil
}

func (l *Mie) Potential(p1, p2 *particle.Particle) float64 {
	_, s2, err := softened(p1, p2, l.cfg.Softening)
	if err != nil {
		return 0
	}
	x := l.sigma(p1, p2) / math.Sqrt(s2)
	return l.c * (math.Pow(x, l.cfg.N) - math.Pow(x, l.cfg.M))
}

// Equilibrium is the separation of minimum energy for a pair with the
// given sigma.
func (l *Mie) Equilibrium(sigma float64) float64 {
	return sigma * math.Pow(l.cfg.N/l.cfg.M, 1/(l.cfg.N-l.cfg.M))
}

func (l *Mie) String() string { return "mie" }
