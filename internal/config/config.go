package config

import (
	"fmt"
	"os"

	"github.com/san-kum/partsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt           = 1.0 / 60
	DefaultDuration     = 10.0
	DefaultSubsteps     = 20
	DefaultStaticPasses = 20
)

type Config struct {
	Scenario     string  `yaml:"scenario"`
	Dt           float64 `yaml:"dt"`
	Duration     float64 `yaml:"duration"`
	Substeps     int     `yaml:"substeps"`
	Seed         int64   `yaml:"seed"`
	Count        int     `yaml:"count"` // zero selects the scenario default
	StaticPasses int     `yaml:"static_passes"`
	Debug        bool    `yaml:"debug"`
	Params       Params  `yaml:"params"`
}

// Params are scenario knobs. A zero value leaves the scenario's own default
// in place.
type Params struct {
	Gravity     float64 `yaml:"gravity"`
	G           float64 `yaml:"g"`
	Coulomb     float64 `yaml:"coulomb"`
	Softening   float64 `yaml:"softening"`
	BondEnergy  float64 `yaml:"bond_energy"`
	BondLength  float64 `yaml:"bond_length"`
	Radius      float64 `yaml:"radius"`
	Mass        float64 `yaml:"mass"`
	Charge      float64 `yaml:"charge"`
	Compliance  float64 `yaml:"compliance"`
	Dissipation float64 `yaml:"dissipation"`
	MaxForce    float64 `yaml:"max_force"`
	Box         float64 `yaml:"box"`
	Length      float64 `yaml:"length"`
	Angle       float64 `yaml:"angle"`
	Speed       float64 `yaml:"speed"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:     "pendulum",
		Dt:           DefaultDt,
		Duration:     DefaultDuration,
		Substeps:     DefaultSubsteps,
		StaticPasses: DefaultStaticPasses,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrInvalidParameter)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", c.Duration, dynamo.ErrInvalidParameter)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("substeps must be at least 1, got %d: %w", c.Substeps, dynamo.ErrInvalidParameter)
	}
	if c.Count < 0 || c.StaticPasses < 0 {
		return fmt.Errorf("count %d and static_passes %d must not be negative: %w", c.Count, c.StaticPasses, dynamo.ErrInvalidParameter)
	}
	p := c.Params
	if p.Compliance < 0 || p.Dissipation < 0 || p.MaxForce < 0 || p.Softening < 0 || p.Radius < 0 || p.Mass < 0 {
		return fmt.Errorf("negative physical parameter in %+v: %w", p, dynamo.ErrInvalidParameter)
	}
	return nil
}

// Steps is the number of StepForward calls a run makes.
func (c *Config) Steps() int {
	return int(c.Duration/c.Dt + 0.5)
}

// Or returns v, or def when v is zero.
func Or(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
