package constraint

import (
	"fmt"
	"math"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/vecmath"
)

type Classification int

const (
	Equation Classification = iota
	Inequality
)

func (c Classification) String() string {
	if c == Inequality {
		return "inequality"
	}
	return "equation"
}

// Satisfied reports whether a constraint value needs no projection.
func (c Classification) Satisfied(value float64) bool {
	if c == Inequality {
		return value >= 0
	}
	return value == 0
}

// Function is the scalar constraint a concrete kind supplies.
type Function interface {
	Value(ps []*particle.Particle) float64
	// Gradient writes dC/dx_i into grads[i].
	Gradient(ps []*particle.Particle, grads []vecmath.Vec3) error
}

type Constraint interface {
	Project(f *particle.Frame, dt float64, static bool)
	Broken() bool
}

// Options are the solver parameters shared by every constraint kind.
// MaxForce 0 means unbreakable. AsForce queues corrections as forces for the
// next substep instead of moving particles directly (dynamic passes only).
type Options struct {
	Compliance  float64
	Dissipation float64
	MaxForce    float64
	AsForce     bool
}

func (o Options) validate() error {
	if o.Compliance < 0 || o.Dissipation < 0 || o.MaxForce < 0 {
		return fmt.Errorf("compliance %g dissipation %g max force %g: %w",
			o.Compliance, o.Dissipation, o.MaxForce, dynamo.ErrInvalidParameter)
	}
	return nil
}

type XPBD struct {
	Name  string
	fn    Function
	class Classification
	opts  Options
	refs  []particle.Ref

	force  float64
	broken bool

	idx   []int
	ps    []*particle.Particle
	grads []vecmath.Vec3
}

func New(name string, fn Function, class Classification, opts Options, refs ...particle.Ref) (*XPBD, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &XPBD{
		Name:  name,
		fn:    fn,
		class: class,
		opts:  opts,
		refs:  refs,
		idx:   make([]int, len(refs)),
		ps:    make([]*particle.Particle, len(refs)),
		grads: make([]vecmath.Vec3, len(refs)),
	}, nil
}

func (x *XPBD) Broken() bool { return x.broken }

// Force is the constraint force estimate from the last dynamic projection.
func (x *XPBD) Force() float64 { return x.force }

func (x *XPBD) Options() Options { return x.opts }

func (x *XPBD) Classification() Classification { return x.class }

func (x *XPBD) Particles() []particle.Ref { return x.refs }

func (x *XPBD) String() string { return x.Name }

// bind resolves every coupled particle. Two refs to the same particle are
// rejected since both would be corrected through one record.
func (x *XPBD) bind(st *particle.Store) error {
	for k, r := range x.refs {
		i, err := st.Index(r)
		if err != nil {
			return err
		}
		for _, prev := range x.idx[:k] {
			if prev == i {
				return fmt.Errorf("%v coupled twice: %w", r, dynamo.ErrDegenerateGeometry)
			}
		}
		x.idx[k] = i
		x.ps[k] = st.At(i)
	}
	return nil
}

// Violation is how far the constraint is from satisfied, zero if it is.
func (x *XPBD) Violation(st *particle.Store) float64 {
	if x.broken || x.bind(st) != nil {
		return 0
	}
	c := x.fn.Value(x.ps)
	if x.class.Satisfied(c) {
		return 0
	}
	return math.Abs(c)
}

func (x *XPBD) Project(f *particle.Frame, dt float64, static bool) {
	if x.broken {
		return
	}
	if err := x.bind(f.Store); err != nil {
		f.Fail(x.Name, err)
		return
	}
	c := x.fn.Value(x.ps)
	if x.class.Satisfied(c) {
		return
	}
	if err := x.fn.Gradient(x.ps, x.grads); err != nil {
		f.Fail(x.Name, err)
		return
	}

	if static {
		dt = math.Inf(1)
	}
	alpha := x.opts.Compliance / (dt * dt)
	gamma := x.opts.Compliance * x.opts.Dissipation / dt

	var damp, scale float64
	for k, p := range x.ps {
		damp += x.grads[k].Dot(p.Pos.Sub(p.PrevPos))
		scale += p.InverseMass * x.grads[k].LenSqr()
	}
	denom := (1+gamma)*scale + alpha
	if denom <= 0 {
		// nothing movable
		return
	}
	dlambda := (-c - gamma*damp) / denom
	if !vecmath.Finite(dlambda) {
		f.Fail(x.Name, fmt.Errorf("lagrange multiplier: %w", dynamo.ErrNonFinite))
		return
	}

	asForce := x.opts.AsForce && !static
	for k, p := range x.ps {
		dx := x.grads[k].Mul(dlambda * p.InverseMass)
		if asForce {
			f.Scratch.AddForce(x.idx[k], dx.Mul(p.Mass/(dt*dt)))
			continue
		}
		p.Pos = p.Pos.Add(dx)
	}

	if static {
		return
	}
	x.force = dlambda / (dt * dt)
	if x.opts.MaxForce > 0 && math.Abs(x.force) > x.opts.MaxForce {
		x.broken = true
	}
}
