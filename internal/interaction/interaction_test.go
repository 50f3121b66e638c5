package interaction

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reported struct {
	source string
	err    error
}

func newFrame(cfgs ...particle.Config) (*particle.Frame, []particle.Ref, *[]reported) {
	st := particle.NewStore()
	refs := make([]particle.Ref, len(cfgs))
	for i, c := range cfgs {
		refs[i] = st.Insert(particle.New(c))
	}
	var acc particle.Accumulators
	acc.Reset(st.Len())
	var errs []reported
	f := &particle.Frame{
		Store:   st,
		Scratch: &acc,
		Report:  func(source string, err error) { errs = append(errs, reported{source, err}) },
	}
	return f, refs, &errs
}

func force(t *testing.T, f *particle.Frame, ref particle.Ref) vecmath.Vec3 {
	t.Helper()
	i, err := f.Store.Index(ref)
	require.NoError(t, err)
	return f.Scratch.At(i).Force
}

func TestGravityPair(t *testing.T) {
	f, refs, errs := newFrame(
		particle.Config{Mass: 50, Pos: vecmath.Vec3{100, 0, 0}},
		particle.Config{Mass: 10, Pos: vecmath.Vec3{-100, 0, 0}},
	)
	NewPairwise(&Gravity{G: 6000}, refs...).Apply(f, 0.01)
	assert.Empty(t, *errs)

	// |F| = G m1 m2 / d^2
	want := 6000.0 * 50 * 10 / (200 * 200)
	f1 := force(t, f, refs[0])
	f2 := force(t, f, refs[1])
	assert.InDelta(t, -want, f1[0], 1e-9, "particle 1 is pulled toward particle 2")
	assert.InDelta(t, want, f2[0], 1e-9)
	assert.True(t, f1.Add(f2).ApproxEqualThreshold(vecmath.Vec3{}, 1e-12), "forces must cancel")
}

func TestElectrostaticSign(t *testing.T) {
	tests := []struct {
		name   string
		q1, q2 float64
		repels bool
	}{
		{"like", 1, 2, true},
		{"opposite", 1, -2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, refs, _ := newFrame(
				particle.Config{Mass: 1, Charge: tt.q1, Pos: vecmath.Vec3{1, 0, 0}},
				particle.Config{Mass: 1, Charge: tt.q2, Pos: vecmath.Vec3{-1, 0, 0}},
			)
			NewPairwise(&Electrostatic{K: 1}, refs...).Apply(f, 0.01)
			f1 := force(t, f, refs[0])
			if (f1[0] > 0) != tt.repels {
				t.Errorf("expected repels=%v, got force %v", tt.repels, f1)
			}
			assert.InDelta(t, math.Abs(tt.q1*tt.q2)/4, math.Abs(f1[0]), 1e-12)
		})
	}
}

func TestMie(t *testing.T) {
	lj, err := NewLennardJones(2, 1, 0)
	require.NoError(t, err)

	eq := lj.Equilibrium(1)
	assert.InDelta(t, math.Pow(2, 1.0/6), eq, 1e-12)

	a := particle.New(particle.Config{Mass: 1})
	b := particle.New(particle.Config{Mass: 1, Pos: vecmath.Vec3{eq, 0, 0}})
	fAt, err := lj.Force(&a, &b)
	require.NoError(t, err)
	assert.InDelta(t, 0, fAt.Len(), 1e-9, "no force at the potential minimum")
	assert.InDelta(t, -2, lj.Potential(&a, &b), 1e-9, "well depth equals the dispersion energy")

	b.Pos = vecmath.Vec3{0.9, 0, 0}
	fIn, _ := lj.Force(&a, &b)
	assert.Less(t, fIn[0], 0.0, "inside sigma the pair repels")

	b.Pos = vecmath.Vec3{1.5, 0, 0}
	fOut, _ := lj.Force(&a, &b)
	assert.Greater(t, fOut[0], 0.0, "outside equilibrium the pair attracts")
}

func TestMieSigmaFromRadii(t *testing.T) {
	lj, err := NewLennardJones(1, 0, 0)
	require.NoError(t, err)
	a := particle.New(particle.Config{Mass: 1, Radius: 0.5})
	b := particle.New(particle.Config{Mass: 1, Radius: 0.5, Pos: vecmath.Vec3{lj.Equilibrium(1), 0, 0}})
	got, _ := lj.Force(&a, &b)
	assert.InDelta(t, 0, got.Len(), 1e-9)
}

func TestMieInvalid(t *testing.T) {
	tests := []MieConfig{
		{Energy: 1, N: 6, M: 12},
		{Energy: 1, N: 6, M: 6},
		{Energy: 1, N: 12, M: -1},
		{Energy: 1, BondLength: -1},
	}
	for _, cfg := range tests {
		_, err := NewMie(cfg)
		assert.ErrorIs(t, err, dynamo.ErrInvalidParameter, "%+v", cfg)
	}
}

func TestDegeneratePairSkipped(t *testing.T) {
	f, refs, errs := newFrame(
		particle.Config{Mass: 1},
		particle.Config{Mass: 1},
		particle.Config{Mass: 1, Pos: vecmath.Vec3{2, 0, 0}},
	)
	NewPairwise(&Gravity{G: 1}, refs...).Apply(f, 0.01)

	require.Len(t, *errs, 1)
	assert.True(t, errors.Is((*errs)[0].err, dynamo.ErrDegenerateGeometry))
	assert.Equal(t, "gravity", (*errs)[0].source)

	// the coincident pair contributed nothing, the others still apply
	f3 := force(t, f, refs[2])
	assert.InDelta(t, -0.5, f3[0], 1e-12)
	for _, v := range f3.Add(force(t, f, refs[0])).Add(force(t, f, refs[1])) {
		assert.InDelta(t, 0, v, 1e-12)
	}
}

func TestSofteningAvoidsDegeneracy(t *testing.T) {
	f, refs, errs := newFrame(particle.Config{Mass: 1}, particle.Config{Mass: 1})
	NewPairwise(&Gravity{G: 1, Softening: 0.1}, refs...).Apply(f, 0.01)
	assert.Empty(t, *errs)
	assert.Equal(t, vecmath.Vec3{}, force(t, f, refs[0]))
}

type nanForce struct{}

func (nanForce) Force(p *particle.Particle) (vecmath.Vec3, error) {
	return vecmath.Vec3{math.NaN(), 0, 0}, nil
}

func TestNonFiniteDropped(t *testing.T) {
	f, refs, errs := newFrame(particle.Config{Mass: 1})
	NewSimple(nanForce{}, refs...).Apply(f, 0.01)
	require.Len(t, *errs, 1)
	assert.ErrorIs(t, (*errs)[0].err, dynamo.ErrNonFinite)
	assert.Equal(t, vecmath.Vec3{}, force(t, f, refs[0]))
}

func TestStaleReferenceReported(t *testing.T) {
	f, refs, errs := newFrame(particle.Config{Mass: 2}, particle.Config{Mass: 3})
	require.NoError(t, f.Store.Remove(refs[0]))
	f.Scratch.Reset(f.Store.Len())

	NewSimple(&Falling{G: 10}, refs...).Apply(f, 0.01)
	require.Len(t, *errs, 1)
	assert.ErrorIs(t, (*errs)[0].err, dynamo.ErrUnknownEntity)
	assert.InDelta(t, -30, force(t, f, refs[1])[1], 1e-12)
}

func TestPairwiseAliasing(t *testing.T) {
	f, refs, errs := newFrame(particle.Config{Mass: 1}, particle.Config{Mass: 1, Pos: vecmath.Vec3{1, 0, 0}})
	pw := NewPairwise(&Gravity{G: 1}, refs[0], refs[0], refs[1])
	pw.Apply(f, 0.01)
	assert.Empty(t, *errs, "a particle is never paired with itself")
	assert.InDelta(t, 1, force(t, f, refs[0])[0], 1e-12, "duplicates are paired once")
	assert.InDelta(t, -1, pw.Energy(f.Store), 1e-12)
}

type recordingField struct {
	calls  []string
	folded int
}

func (r *recordingField) ParticleToField(p *particle.Particle) {
	r.calls = append(r.calls, "fold")
	r.folded++
}

func (r *recordingField) Integrate(dt float64) { r.calls = append(r.calls, "integrate") }

func (r *recordingField) FieldToParticle(p *particle.Particle) (particle.Action, error) {
	r.calls = append(r.calls, "query")
	return particle.Action{Force: vecmath.Vec3{float64(r.folded), 0, 0}}, nil
}

func (r *recordingField) Clear() {
	r.calls = append(r.calls, "clear")
	r.folded = 0
}

func TestFieldPhases(t *testing.T) {
	f, refs, _ := newFrame(particle.Config{Mass: 1}, particle.Config{Mass: 1})
	rec := &recordingField{}
	NewField(rec, refs...).Apply(f, 0.01)

	want := []string{"fold", "fold", "integrate", "query", "query", "clear"}
	assert.Equal(t, want, rec.calls)
	assert.InDelta(t, 2, force(t, f, refs[1])[0], 0, "queries see the fully folded field")
	assert.Zero(t, rec.folded)
}

func TestNaiveGravityMatchesPairwise(t *testing.T) {
	cfgs := []particle.Config{
		{Mass: 3, Pos: vecmath.Vec3{0, 0, 0}},
		{Mass: 1, Pos: vecmath.Vec3{2, 1, 0}},
		{Mass: 5, Pos: vecmath.Vec3{-1, 3, 2}},
	}
	fa, ra, _ := newFrame(cfgs...)
	fb, rb, _ := newFrame(cfgs...)

	ng := &NaiveGravity{G: 2, Softening: 0.05}
	field := NewField(ng, ra...)
	field.Apply(fa, 0.01)
	pw := NewPairwise(&Gravity{G: 2, Softening: 0.05}, rb...)
	pw.Apply(fb, 0.01)

	for i := range ra {
		got := force(t, fa, ra[i])
		want := force(t, fb, rb[i])
		if !got.ApproxEqualThreshold(want, 1e-12) {
			t.Errorf("particle %d: expected %v, got %v", i, want, got)
		}
	}
	assert.InDelta(t, pw.Energy(fb.Store), field.Energy(fa.Store), 1e-12)

	ng.ParticleToField(fa.Store.At(0))
	ng.ParticleToField(fa.Store.At(1))
	ng.Integrate(0)
	m, c := ng.Center()
	assert.Equal(t, 4.0, m)
	assert.True(t, c.ApproxEqualThreshold(vecmath.Vec3{0.5, 0.25, 0}, 1e-12))
}

func TestBoxBound(t *testing.T) {
	box := &BoxBound{Min: vecmath.Vec3{-1, -1, -1}, Max: vecmath.Vec3{1, 1, 1}}
	p := particle.New(particle.Config{Mass: 2, Radius: 0.1, Pos: vecmath.Vec3{1.05, 0, -0.95}, Vel: vecmath.Vec3{3, 1, -2}})

	act, err := box.FieldToParticle(&p)
	require.NoError(t, err)
	assert.InDelta(t, -0.15, act.Displacement[0], 1e-12)
	assert.InDelta(t, 0.05, act.Displacement[2], 1e-12)
	assert.Equal(t, 0.0, act.Displacement[1])
	assert.InDelta(t, -12, act.Impulse[0], 1e-12)
	assert.InDelta(t, 8, act.Impulse[2], 1e-12)

	inside := particle.New(particle.Config{Mass: 1, Radius: 0.1, Vel: vecmath.Vec3{5, 5, 5}})
	act, _ = box.FieldToParticle(&inside)
	assert.Equal(t, particle.Action{}, act)
}

func TestSimpleEnergy(t *testing.T) {
	f, refs, _ := newFrame(
		particle.Config{Mass: 2, Pos: vecmath.Vec3{0, 3, 0}},
		particle.Config{Mass: 1, Pos: vecmath.Vec3{0, -1, 0}},
	)
	s := NewSimple(&Falling{G: 10, Ground: -1}, refs...)
	assert.InDelta(t, 80, s.Energy(f.Store), 1e-12)

	c := NewSimple(&ConstantForce{F: vecmath.Vec3{0, 1, 0}}, refs[0])
	c.Apply(f, 0.01)
	assert.Equal(t, vecmath.Vec3{0, 1, 0}, force(t, f, refs[0]))
	assert.InDelta(t, -3, c.Energy(f.Store), 1e-12)
	assert.Len(t, c.Coupled(), 1)
}
