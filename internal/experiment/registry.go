package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/system"
)

// Builder assembles a ready-to-run system from a configuration.
type Builder func(cfg *config.Config, opts system.Options) (*system.System, error)

type Scenario struct {
	Name        string
	Description string
	Build       Builder
}

type Registry struct {
	scenarios map[string]Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}

	r.Register(Scenario{"pendulum", "multi-link pendulum on rigid distance links", buildPendulum})
	r.Register(Scenario{"chain", "anchored chain with breakable links falling onto two pegs", buildChain})
	r.Register(Scenario{"gas", "Lennard-Jones gas bouncing in a box", buildGas})
	r.Register(Scenario{"cloud", "cloud collapsing under mean-field gravity", buildCloud})
	r.Register(Scenario{"star", "self-gravitating ball of non-overlapping particles", buildStar})
	r.Register(Scenario{"block", "braced rectangle bouncing on a contact floor", buildBlock})
	r.Register(Scenario{"charges", "lattice of alternating charges", buildCharges})
	r.Register(Scenario{"twobody", "two gravitating bodies that cannot overlap", buildTwoBody})

	return r
}

func (r *Registry) Register(s Scenario) {
	r.scenarios[s.Name] = s
}

func (r *Registry) Get(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownScenario, name)
	}
	return s, nil
}

// Build validates cfg and builds its scenario.
func (r *Registry) Build(cfg *config.Config, opts system.Options) (*system.System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := r.Get(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if opts.Substeps == 0 {
		opts.Substeps = cfg.Substeps
	}
	sys, err := s.Build(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", s.Name, err)
	}
	return sys, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
