package dynamo

import "github.com/san-kum/partsim/internal/vecmath"

// Snapshot is a diagnostics sample of a system taken between steps.
type Snapshot struct {
	Time              float64
	Particles         int
	KineticEnergy     float64
	PotentialEnergy   float64
	Momentum          vecmath.Vec3
	AngularMomentum   vecmath.Vec3
	BrokenConstraints int
	MaxViolation      float64
}

// Energy is the total mechanical energy.
func (s Snapshot) Energy() float64 {
	return s.KineticEnergy + s.PotentialEnergy
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Snapshot)

func (f ObserverFunc) OnStep(s Snapshot) { f(s) }
