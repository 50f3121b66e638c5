package metrics

import (
	"math"

	"github.com/san-kum/partsim/internal/dynamo"
)

// MeanKinetic is the average kinetic energy over all samples.
type MeanKinetic struct {
	total   float64
	samples int
}

func NewMeanKinetic() *MeanKinetic { return &MeanKinetic{} }

func (e *MeanKinetic) Name() string { return "mean_kinetic" }

func (e *MeanKinetic) Observe(s dynamo.Snapshot) {
	e.total += s.KineticEnergy
	e.samples++
}

func (e *MeanKinetic) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *MeanKinetic) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation of total energy from the
// first sample.
type EnergyDrift struct {
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(s dynamo.Snapshot) {
	energy := s.Energy()
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
