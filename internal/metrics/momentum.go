package metrics

import (
	"math"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/vecmath"
)

// MomentumDrift is the largest absolute change of total linear momentum
// from the first sample.
type MomentumDrift struct {
	initial  vecmath.Vec3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(s dynamo.Snapshot) {
	if m.samples == 0 {
		m.initial = s.Momentum
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, s.Momentum.Sub(m.initial).Len())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vecmath.Vec3{}
	m.maxDrift = 0
	m.samples = 0
}

// Broken reports the number of broken constraints at the last sample.
type Broken struct {
	last int
}

func NewBroken() *Broken { return &Broken{} }

func (b *Broken) Name() string              { return "broken_constraints" }
func (b *Broken) Observe(s dynamo.Snapshot) { b.last = s.BrokenConstraints }
func (b *Broken) Value() float64            { return float64(b.last) }
func (b *Broken) Reset()                    { b.last = 0 }

// MaxViolation is the worst constraint violation seen in any sample.
type MaxViolation struct {
	max float64
}

func NewMaxViolation() *MaxViolation { return &MaxViolation{} }

func (v *MaxViolation) Name() string { return "max_violation" }

func (v *MaxViolation) Observe(s dynamo.Snapshot) {
	v.max = math.Max(v.max, s.MaxViolation)
}

func (v *MaxViolation) Value() float64 { return v.max }
func (v *MaxViolation) Reset()         { v.max = 0 }

// Standard is the metric set recorded for every run.
func Standard() []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewMeanKinetic(),
		NewBroken(),
		NewMaxViolation(),
	}
}
