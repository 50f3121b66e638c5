package interaction

import (
	"fmt"
	"slices"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/vecmath"
)

type Interaction interface {
	Couple(refs ...particle.Ref)
	Coupled() []particle.Ref
	Apply(f *particle.Frame, dt float64)
	Energy(s *particle.Store) float64
}

type SimpleForce interface {
	Force(p *particle.Particle) (vecmath.Vec3, error)
}

type SimplePotential interface {
	Potential(p *particle.Particle) float64
}

type FieldForce interface {
	ParticleToField(p *particle.Particle)
	Integrate(dt float64)
	FieldToParticle(p *particle.Particle) (particle.Action, error)
	Clear()
}

// FieldPotential is the energy of a field after particles are folded in.
type FieldPotential interface {
	FieldEnergy() float64
}

type PairForce interface {
	// Force returns the force on p1; p2 receives the negation.
	Force(p1, p2 *particle.Particle) (vecmath.Vec3, error)
}

type PairPotential interface {
	Potential(p1, p2 *particle.Particle) float64
}

type coupling struct {
	refs []particle.Ref
}

func (c *coupling) Couple(refs ...particle.Ref) {
	c.refs = append(c.refs, refs...)
}

func (c *coupling) Coupled() []particle.Ref { return c.refs }

// resolve maps the coupled refs to dense indices, reporting and dropping
// stale ones.
func (c *coupling) resolve(f *particle.Frame, source string, buf []int) []int {
	buf = buf[:0]
	for _, r := range c.refs {
		i, err := f.Store.Index(r)
		if err != nil {
			f.Fail(source, err)
			continue
		}
		buf = append(buf, i)
	}
	return buf
}

func lawName(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", v)
}

// Simple applies a SimpleForce to each coupled particle independently.
type Simple struct {
	coupling
	Law SimpleForce
	idx []int
}

func NewSimple(law SimpleForce, refs ...particle.Ref) *Simple {
	s := &Simple{Law: law}
	s.Couple(refs...)
	return s
}

func (s *Simple) Apply(f *particle.Frame, dt float64) {
	name := lawName(s.Law)
	s.idx = s.resolve(f, name, s.idx)
	for _, i := range s.idx {
		force, err := s.Law.Force(f.Store.At(i))
		if err != nil {
			f.Fail(name, err)
			continue
		}
		if !vecmath.IsFinite(force) {
			f.Fail(name, fmt.Errorf("force on %v: %w", f.Store.RefAt(i), dynamo.ErrNonFinite))
			continue
		}
		f.Scratch.AddForce(i, force)
	}
}

func (s *Simple) Energy(st *particle.Store) float64 {
	pot, ok := s.Law.(SimplePotential)
	if !ok {
		return 0
	}
	var e float64
	for _, r := range s.refs {
		if p, err := st.Get(r); err == nil {
			e += pot.Potential(p)
		}
	}
	return e
}

// Field runs the fold, integrate, query, clear cycle of a FieldForce.
type Field struct {
	coupling
	Law FieldForce
	idx []int
}

func NewField(law FieldForce, refs ...particle.Ref) *Field {
	fl := &Field{Law: law}
	fl.Couple(refs...)
	return fl
}

func (fl *Field) Apply(f *particle.Frame, dt float64) {
	name := lawName(fl.Law)
	fl.idx = fl.resolve(f, name, fl.idx)

	for _, i := range fl.idx {
		fl.Law.ParticleToField(f.Store.At(i))
	}
	fl.Law.Integrate(dt)
	for _, i := range fl.idx {
		act, err := fl.Law.FieldToParticle(f.Store.At(i))
		if err != nil {
			f.Fail(name, err)
			continue
		}
		if !act.Finite() {
			f.Fail(name, fmt.Errorf("action on %v: %w", f.Store.RefAt(i), dynamo.ErrNonFinite))
			continue
		}
		f.Scratch.Apply(i, act)
	}
	fl.Law.Clear()
}

// Energy folds the current particle state into the field to read its
// energy, then clears it again.
func (fl *Field) Energy(st *particle.Store) float64 {
	pot, ok := fl.Law.(FieldPotential)
	if !ok {
		return 0
	}
	for _, r := range fl.refs {
		if p, err := st.Get(r); err == nil {
			fl.Law.ParticleToField(p)
		}
	}
	e := pot.FieldEnergy()
	fl.Law.Clear()
	return e
}

// Pairwise visits every unordered pair of coupled particles once.
type Pairwise struct {
	coupling
	Law PairForce
	idx []int
}

func NewPairwise(law PairForce, refs ...particle.Ref) *Pairwise {
	pw := &Pairwise{Law: law}
	pw.Couple(refs...)
	return pw
}

func (pw *Pairwise) Apply(f *particle.Frame, dt float64) {
	name := lawName(pw.Law)
	pw.idx = pw.resolve(f, name, pw.idx)
	// a particle coupled twice is paired once, never with itself
	slices.Sort(pw.idx)
	pw.idx = slices.Compact(pw.idx)

	for a := 0; a < len(pw.idx); a++ {
		i := pw.idx[a]
		for b := a + 1; b < len(pw.idx); b++ {
			j := pw.idx[b]
			force, err := pw.Law.Force(f.Store.At(i), f.Store.At(j))
			if err != nil {
				f.Fail(name, fmt.Errorf("pair (%v, %v): %w", f.Store.RefAt(i), f.Store.RefAt(j), err))
				continue
			}
			if !vecmath.IsFinite(force) {
				f.Fail(name, fmt.Errorf("pair (%v, %v): %w", f.Store.RefAt(i), f.Store.RefAt(j), dynamo.ErrNonFinite))
				continue
			}
			f.Scratch.AddForce(i, force)
			f.Scratch.AddForce(j, force.Mul(-1))
		}
	}
}

func (pw *Pairwise) Energy(st *particle.Store) float64 {
	pot, ok := pw.Law.(PairPotential)
	if !ok {
		return 0
	}
	ps := make([]*particle.Particle, 0, len(pw.refs))
	seen := make(map[particle.ID]bool, len(pw.refs))
	for _, r := range pw.refs {
		p, err := st.Get(r)
		if err != nil || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		ps = append(ps, p)
	}
	var e float64
	for a := range ps {
		for b := a + 1; b < len(ps); b++ {
			e += pot.Potential(ps[a], ps[b])
		}
	}
	return e
}
