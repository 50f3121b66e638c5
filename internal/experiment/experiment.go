package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/system"
)

type Result struct {
	Snapshots   []dynamo.Snapshot
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Elapsed     time.Duration
	Errors      []error
}

// Times returns the sample times of the recorded snapshots.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Time
	}
	return out
}

// Series extracts one quantity from every snapshot.
func (r *Result) Series(fn func(dynamo.Snapshot) float64) []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = fn(s)
	}
	return out
}

type Experiment struct {
	cfg       *config.Config
	sys       *system.System
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(cfg *config.Config, sys *system.System) *Experiment {
	return &Experiment{cfg: cfg, sys: sys}
}

func (e *Experiment) AddMetric(m dynamo.Metric)     { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

func (e *Experiment) System() *system.System { return e.sys }

// Run steps the system cfg.Steps() times, sampling diagnostics after every
// step. A cancelled context stops the run and returns the partial result.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.sys == nil {
		return nil, fmt.Errorf("experiment has no system")
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	steps := e.cfg.Steps()
	result := &Result{
		Snapshots: make([]dynamo.Snapshot, 0, steps+1),
		Metrics:   make(map[string]float64),
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	start := time.Now()
	first := e.sys.Diagnostics()
	e.record(result, first)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			return result, fmt.Errorf("%w after %d steps: %w", dynamo.ErrContextCanceled, i, ctx.Err())
		default:
		}

		e.sys.StepForward(e.cfg.Dt)
		result.StepsTaken++

		snap := e.sys.Diagnostics()
		if math.IsNaN(snap.Energy()) || math.IsInf(snap.Energy(), 0) {
			result.Errors = append(result.Errors, &dynamo.SimulationError{
				Substep: i * e.sys.Substeps(),
				Time:    snap.Time,
				Source:  "diagnostics",
				Wrapped: dynamo.ErrNonFinite,
			})
			break
		}
		e.record(result, snap)
	}

	last := result.Snapshots[len(result.Snapshots)-1]
	if e0 := first.Energy(); e0 != 0 {
		result.EnergyDrift = math.Abs(last.Energy()-e0) / math.Abs(e0)
	}
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)
	return result, nil
}

func (e *Experiment) record(r *Result, s dynamo.Snapshot) {
	r.Snapshots = append(r.Snapshots, s)
	for _, m := range e.metrics {
		m.Observe(s)
	}
	for _, o := range e.observers {
		o.OnStep(s)
	}
}
