package config

import "sort"

func preset(scenario string, dt, duration float64, count int, p Params) *Config {
	return &Config{
		Scenario:     scenario,
		Dt:           dt,
		Duration:     duration,
		Substeps:     DefaultSubsteps,
		Count:        count,
		StaticPasses: DefaultStaticPasses,
		Params:       p,
	}
}

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"classic": preset("pendulum", DefaultDt, 20, 3, Params{Gravity: 200, Length: 80}),
		"swing":   preset("pendulum", DefaultDt, 20, 3, Params{Gravity: 200, Length: 80, Angle: 1.2}),
		"soft":    preset("pendulum", DefaultDt, 20, 3, Params{Gravity: 200, Length: 80, Compliance: 1e-4, Dissipation: 0.5}),
	},
	"chain": {
		"hanging": preset("chain", DefaultDt, 15, 30, Params{Gravity: 200, Length: 8, Radius: 3}),
		"fragile": preset("chain", DefaultDt, 15, 30, Params{Gravity: 400, Length: 8, Radius: 3, MaxForce: 4000}),
	},
	"gas": {
		"dilute": preset("gas", 1.0/120, 10, 60, Params{BondEnergy: 50, Radius: 2, Box: 60, Speed: 20}),
		"dense":  preset("gas", 1.0/120, 10, 150, Params{BondEnergy: 80, Radius: 2, Box: 40}),
	},
	"cloud": {
		"collapse": preset("cloud", 1.0/120, 20, 120, Params{G: 50, Softening: 2, BondEnergy: 20, Radius: 2, Box: 80}),
	},
	"star": {
		"ball": preset("star", DefaultDt, 15, 80, Params{G: 200, Softening: 1, Radius: 3, Box: 60}),
	},
	"block": {
		"drop":   preset("block", DefaultDt, 8, 0, Params{Gravity: 200, Length: 10, Angle: 0.4}),
		"spongy": preset("block", DefaultDt, 8, 0, Params{Gravity: 200, Length: 10, Angle: 0.4, Compliance: 1e-3, Dissipation: 0.2}),
	},
	"charges": {
		"lattice": preset("charges", 1.0/120, 10, 36, Params{Coulomb: 400, Softening: 1, Charge: 1, Radius: 2}),
	},
	"twobody": {
		"contact": preset("twobody", 0.01, 10, 2, Params{G: 6000}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
