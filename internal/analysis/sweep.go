package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/experiment"
	"github.com/san-kum/partsim/internal/system"
)

// SweepPoint holds the distinct values a quantity settled into for one
// parameter value.
type SweepPoint struct {
	Param  float64
	Values []float64
}

// Sweep reruns a scenario for a range of parameter values, one goroutine per
// value, and records a diagnostic quantity once the transient has passed.
// Set and Quantity are called concurrently.
type Sweep struct {
	Registry  *experiment.Registry
	Base      *config.Config
	Set       func(p *config.Params, v float64)
	Quantity  func(s dynamo.Snapshot) float64
	Transient float64
	// Resolution quantizes recorded values; samples closer than this are merged.
	Resolution float64
	Options    system.Options
}

func (sw *Sweep) Run(ctx context.Context, params []float64) ([]SweepPoint, error) {
	if sw.Registry == nil || sw.Base == nil || sw.Set == nil || sw.Quantity == nil {
		return nil, fmt.Errorf("sweep is missing registry, config, setter or quantity: %w", dynamo.ErrInvalidParameter)
	}
	if sw.Transient >= sw.Base.Duration {
		return nil, fmt.Errorf("transient %v exceeds duration %v: %w", sw.Transient, sw.Base.Duration, dynamo.ErrInvalidParameter)
	}
	res := sw.Resolution
	if res <= 0 {
		res = 1e-3
	}

	out := make([]SweepPoint, len(params))
	errs := make([]error, len(params))

	var wg sync.WaitGroup
	for i, v := range params {
		wg.Add(1)
		go func(idx int, v float64) {
			defer wg.Done()
			out[idx], errs[idx] = sw.runOne(ctx, v, res)
		}(i, v)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep %v: %w", params[i], err)
		}
	}
	return out, nil
}

func (sw *Sweep) runOne(ctx context.Context, v, res float64) (SweepPoint, error) {
	cfg := *sw.Base
	sw.Set(&cfg.Params, v)

	sys, err := sw.Registry.Build(&cfg, sw.Options)
	if err != nil {
		return SweepPoint{}, err
	}
	result, err := experiment.New(&cfg, sys).Run(ctx)
	if err != nil {
		return SweepPoint{}, err
	}

	pt := SweepPoint{Param: v}
	seen := make(map[int64]bool)
	for _, s := range result.Snapshots {
		if s.Time < sw.Transient {
			continue
		}
		q := sw.Quantity(s)
		key := int64(q / res)
		if !seen[key] {
			seen[key] = true
			pt.Values = append(pt.Values, q)
		}
	}
	return pt, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
