package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/partsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "pendulum" {
		t.Errorf("expected scenario pendulum, got %s", cfg.Scenario)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Steps() != 600 {
		t.Errorf("expected 600 steps, got %d", cfg.Steps())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"no substeps", func(c *Config) { c.Substeps = 0 }},
		{"negative count", func(c *Config) { c.Count = -3 }},
		{"negative compliance", func(c *Config) { c.Params.Compliance = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum", "swing")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params.Angle != 1.2 {
		t.Errorf("expected angle 1.2, got %f", cfg.Params.Angle)
	}

	cfg.Params.Angle = 3
	if GetPreset("pendulum", "swing").Params.Angle != 1.2 {
		t.Error("mutating a returned preset must not change the table")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("pendulum", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "classic") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("pendulum")
	if len(presets) != 3 {
		t.Errorf("expected 3 pendulum presets, got %v", presets)
	}
	if presets[0] != "classic" {
		t.Errorf("expected sorted names, got %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestPresetsValidate(t *testing.T) {
	for scenario, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", scenario, name, err)
			}
			if cfg.Scenario != scenario {
				t.Errorf("%s/%s: scenario field is %q", scenario, name, cfg.Scenario)
			}
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("gas", "dense")
	cfg.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Seed != 42 || loaded.Count != 150 || loaded.Params.Box != 40 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOr(t *testing.T) {
	if Or(0, 3) != 3 || Or(2, 3) != 2 {
		t.Error("Or should fall back only on zero")
	}
}

func TestParamsByName(t *testing.T) {
	var p Params
	if err := p.Set("bond_energy", 3); err != nil {
		t.Fatal(err)
	}
	if p.BondEnergy != 3 {
		t.Errorf("expected bond energy 3, got %f", p.BondEnergy)
	}
	if v, err := p.Get("bond_energy"); err != nil || v != 3 {
		t.Errorf("get bond_energy = %f, %v", v, err)
	}
	if err := p.Set("warp", 1); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected invalid parameter, got %v", err)
	}
	if len(ParamNames()) != 16 {
		t.Errorf("expected 16 parameter names, got %d", len(ParamNames()))
	}
}

func TestParamsApply(t *testing.T) {
	var p Params
	if err := p.Apply([]string{"gravity=300", " mass = 2.5"}); err != nil {
		t.Fatal(err)
	}
	if p.Gravity != 300 || p.Mass != 2.5 {
		t.Errorf("unexpected params %+v", p)
	}
	for _, bad := range []string{"gravity", "gravity=fast", "nope=1"} {
		if err := p.Apply([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
