package particle

import "github.com/san-kum/partsim/internal/vecmath"

type Accumulator struct {
	Force        vecmath.Vec3
	Impulse      vecmath.Vec3
	Displacement vecmath.Vec3
}

// Accumulators is the per-substep scratch space, one entry per dense index.
type Accumulators struct {
	entries []Accumulator
}

// Reset clears every entry and sizes the buffer for n particles.
func (a *Accumulators) Reset(n int) {
	if cap(a.entries) < n {
		a.entries = make([]Accumulator, n)
		return
	}
	a.entries = a.entries[:n]
	clear(a.entries)
}

func (a *Accumulators) Len() int { return len(a.entries) }

// Swap exchanges two entries. Out-of-range indices are ignored.
func (a *Accumulators) Swap(i, j int) {
	n := len(a.entries)
	if i < 0 || j < 0 || i >= n || j >= n {
		return
	}
	a.entries[i], a.entries[j] = a.entries[j], a.entries[i]
}

func (a *Accumulators) At(i int) *Accumulator {
	if a == nil || i < 0 || i >= len(a.entries) {
		return nil
	}
	return &a.entries[i]
}

func (a *Accumulators) AddForce(i int, f vecmath.Vec3) {
	if e := a.At(i); e != nil {
		e.Force = e.Force.Add(f)
	}
}

func (a *Accumulators) AddImpulse(i int, j vecmath.Vec3) {
	if e := a.At(i); e != nil {
		e.Impulse = e.Impulse.Add(j)
	}
}

func (a *Accumulators) AddDisplacement(i int, d vecmath.Vec3) {
	if e := a.At(i); e != nil {
		e.Displacement = e.Displacement.Add(d)
	}
}

func (a *Accumulators) Apply(i int, act Action) {
	if e := a.At(i); e != nil {
		e.Force = e.Force.Add(act.Force)
		e.Impulse = e.Impulse.Add(act.Impulse)
		e.Displacement = e.Displacement.Add(act.Displacement)
	}
}

// Frame is what one force or constraint pass operates on. Report receives
// recoverable errors; it may be nil.
type Frame struct {
	Store   *Store
	Scratch *Accumulators
	Report  func(source string, err error)
}

func (f *Frame) Fail(source string, err error) {
	if f.Report != nil && err != nil {
		f.Report(source, err)
	}
}
