package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/system"
)

// Ensemble runs one scenario for consecutive seeds, each in its own
// goroutine with its own system.
type Ensemble struct {
	Registry *Registry
	Base     *config.Config
	Runs     int
	Options  system.Options
	// Metrics returns a fresh metric set per run; nil records none.
	Metrics func() []dynamo.Metric
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if e.Runs < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d: %w", e.Runs, dynamo.ErrInvalidParameter)
	}
	results := make([]*Result, e.Runs)
	errs := make([]error, e.Runs)

	var wg sync.WaitGroup
	for i := 0; i < e.Runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := *e.Base
			cfg.Seed = e.Base.Seed + int64(idx)

			sys, err := e.Registry.Build(&cfg, e.Options)
			if err != nil {
				errs[idx] = err
				return
			}
			exp := New(&cfg, sys)
			if e.Metrics != nil {
				for _, m := range e.Metrics() {
					exp.AddMetric(m)
				}
			}
			results[idx], errs[idx] = exp.Run(ctx)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", e.Base.Seed+int64(i), err)
		}
	}
	return results, nil
}
