package system

import (
	"errors"
	"math"

	"github.com/san-kum/partsim/internal/constraint"
	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/interaction"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/vecmath"
	"github.com/san-kum/partsim/internal/xlog"
	"github.com/uber-go/tally/v4"
)

const DefaultSubsteps = 20

type Options struct {
	Substeps int
	Logger   xlog.Logger
	Scope    tally.Scope
}

func DefaultOptions() Options {
	return Options{Substeps: DefaultSubsteps}
}

type System struct {
	running  bool
	time     float64
	substeps int

	store        *particle.Store
	scratch      particle.Accumulators
	interactions []interaction.Interaction
	constraints  []constraint.Constraint

	log     xlog.Logger
	scope   tally.Scope
	substep int
	broken  int
	resized bool
}

func New(opts Options) *System {
	if opts.Substeps < 1 {
		opts.Substeps = 1
	}
	if opts.Scope == nil {
		opts.Scope = tally.NoopScope
	}
	s := &System{
		running:  true,
		substeps: opts.Substeps,
		store:    particle.NewStore(),
		log:      xlog.OrNop(opts.Logger),
		scope:    opts.Scope,
	}
	// queued forces follow their particles when the store is reordered
	s.store.OnSwap(s.scratch.Swap)
	return s
}

func (s *System) Time() float64       { return s.time }
func (s *System) Running() bool       { return s.running }
func (s *System) Pause()              { s.running = false }
func (s *System) Resume()             { s.running = true }
func (s *System) Substeps() int       { return s.substeps }
func (s *System) Len() int            { return s.store.Len() }
func (s *System) Logger() xlog.Logger { return s.log }

func (s *System) SetSubsteps(n int) {
	if n < 1 {
		n = 1
	}
	s.substeps = n
}

func (s *System) AddParticle(p particle.Particle) particle.Ref {
	ref := s.store.Insert(p)
	s.resized = true
	s.scope.Gauge("particles").Update(float64(s.store.Len()))
	return ref
}

func (s *System) AddParticles(ps []particle.Particle) []particle.Ref {
	refs := make([]particle.Ref, len(ps))
	for i, p := range ps {
		refs[i] = s.AddParticle(p)
	}
	return refs
}

// AddInteraction returns the interaction's index.
func (s *System) AddInteraction(in interaction.Interaction) int {
	s.interactions = append(s.interactions, in)
	return len(s.interactions) - 1
}

func (s *System) AddConstraint(c constraint.Constraint) int {
	s.constraints = append(s.constraints, c)
	return len(s.constraints) - 1
}

func (s *System) AddConstraints(cs ...*constraint.XPBD) {
	for _, c := range cs {
		s.AddConstraint(c)
	}
}

func (s *System) Interactions() []interaction.Interaction { return s.interactions }
func (s *System) Constraints() []constraint.Constraint    { return s.constraints }

func (s *System) AllParticles() []particle.Ref {
	return s.store.Refs()
}

func (s *System) ParticlesInGroup(group uint32) []particle.Ref {
	var out []particle.Ref
	for i := 0; i < s.store.Len(); i++ {
		if s.store.At(i).Group == group {
			out = append(out, s.store.RefAt(i))
		}
	}
	return out
}

func (s *System) Particle(ref particle.Ref) (*particle.Particle, error) {
	return s.store.Get(ref)
}

// RemoveParticle deletes a particle. Interactions and constraints that still
// couple it report dynamo.ErrUnknownEntity and skip it.
func (s *System) RemoveParticle(ref particle.Ref) error {
	if err := s.store.Remove(ref); err != nil {
		return err
	}
	s.resized = true
	s.scope.Gauge("particles").Update(float64(s.store.Len()))
	return nil
}

// Each visits every particle in storage order.
func (s *System) Each(fn func(p *particle.Particle)) {
	s.store.Each(fn)
}

// Store exposes the backing store, mainly for renderers and tests.
func (s *System) Store() *particle.Store { return s.store }

func (s *System) frame() *particle.Frame {
	return &particle.Frame{Store: s.store, Scratch: &s.scratch, Report: s.report}
}

func (s *System) report(source string, err error) {
	serr := &dynamo.SimulationError{Substep: s.substep, Time: s.time, Source: source, Wrapped: err}
	switch {
	case errors.Is(err, dynamo.ErrDegenerateGeometry):
		s.scope.Counter("degenerate_geometry").Inc(1)
		s.log.Debugf("skipped: %v", serr)
	case errors.Is(err, dynamo.ErrUnknownEntity):
		s.scope.Counter("unknown_entity").Inc(1)
		s.log.Warnf("skipped: %v", serr)
	case errors.Is(err, dynamo.ErrNonFinite):
		s.scope.Counter("non_finite").Inc(1)
		s.log.Warnf("dropped: %v", serr)
	default:
		s.scope.Counter("errors").Inc(1)
		s.log.Errorf("%v", serr)
	}
}

// StepForward advances the system by dt in Substeps equal substeps. It does
// nothing while paused or for dt == 0.
func (s *System) StepForward(dt float64) {
	if !s.running || dt == 0 {
		return
	}
	sw := s.scope.Timer("step").Start()
	defer sw.Stop()

	sub := dt / float64(s.substeps)
	f := s.frame()
	// forces queued by as-force constraints carry over from the last call
	// unless the population changed
	if s.resized || s.scratch.Len() != s.store.Len() {
		s.scratch.Reset(s.store.Len())
		s.resized = false
	}

	for k := 0; k < s.substeps; k++ {
		s.substep++

		for _, in := range s.interactions {
			in.Apply(f, sub)
		}

		n := s.store.Len()
		for i := 0; i < n; i++ {
			s.store.At(i).Integrate(s.scratch.At(i), sub)
		}
		s.scratch.Reset(n)

		for _, c := range s.constraints {
			c.Project(f, sub, false)
		}
		s.checkBroken()

		for i := 0; i < n; i++ {
			s.store.At(i).DeriveVelocity(sub)
		}
	}
	s.scope.Counter("substeps").Inc(int64(s.substeps))

	s.time += dt
	s.scope.Gauge("time").Update(s.time)
}

// StaticConstraintPass projects every constraint iterations times with an
// infinite time step. Forces are not evaluated and time does not advance.
func (s *System) StaticConstraintPass(iterations int) {
	f := s.frame()
	for k := 0; k < iterations; k++ {
		for _, c := range s.constraints {
			c.Project(f, math.Inf(1), true)
		}
	}
}

func (s *System) checkBroken() {
	n := 0
	for _, c := range s.constraints {
		if c.Broken() {
			n++
		}
	}
	if n > s.broken {
		s.scope.Counter("constraints_broken").Inc(int64(n - s.broken))
		s.log.Infof("t=%.4f: %d constraint(s) broke, %d broken in total", s.time, n-s.broken, n)
		s.broken = n
	}
}

// Diagnostics samples energy, momentum and constraint state.
func (s *System) Diagnostics() dynamo.Snapshot {
	snap := dynamo.Snapshot{Time: s.time, Particles: s.store.Len()}
	s.store.Each(func(p *particle.Particle) {
		snap.KineticEnergy += p.KineticEnergy()
		mv := p.Momentum()
		snap.Momentum = snap.Momentum.Add(mv)
		snap.AngularMomentum = snap.AngularMomentum.Add(p.Pos.Cross(mv))
	})
	for _, in := range s.interactions {
		snap.PotentialEnergy += in.Energy(s.store)
	}
	for _, c := range s.constraints {
		if c.Broken() {
			snap.BrokenConstraints++
		}
		if v, ok := c.(interface{ Violation(*particle.Store) float64 }); ok {
			snap.MaxViolation = math.Max(snap.MaxViolation, v.Violation(s.store))
		}
	}
	return snap
}

// Bounds returns the axis-aligned box around every particle, radii included.
func (s *System) Bounds() (lo, hi vecmath.Vec3) {
	if s.store.Len() == 0 {
		return
	}
	inf := math.Inf(1)
	lo = vecmath.Vec3{inf, inf, inf}
	hi = vecmath.Vec3{-inf, -inf, -inf}
	s.store.Each(func(p *particle.Particle) {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p.Pos[k]-p.Radius)
			hi[k] = math.Max(hi[k], p.Pos[k]+p.Radius)
		}
	})
	return lo, hi
}
