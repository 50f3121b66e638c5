package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/partsim/internal/dynamo"
)

func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"gravity":     &p.Gravity,
		"g":           &p.G,
		"coulomb":     &p.Coulomb,
		"softening":   &p.Softening,
		"bond_energy": &p.BondEnergy,
		"bond_length": &p.BondLength,
		"radius":      &p.Radius,
		"mass":        &p.Mass,
		"charge":      &p.Charge,
		"compliance":  &p.Compliance,
		"dissipation": &p.Dissipation,
		"max_force":   &p.MaxForce,
		"box":         &p.Box,
		"length":      &p.Length,
		"angle":       &p.Angle,
		"speed":       &p.Speed,
	}
}

// ParamNames lists the keys accepted by Params.Set.
func ParamNames() []string {
	var p Params
	names := make([]string, 0, 18)
	for name := range p.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set assigns a parameter by its yaml key.
func (p *Params) Set(name string, v float64) error {
	f, ok := p.fields()[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q: %w", name, dynamo.ErrInvalidParameter)
	}
	*f = v
	return nil
}

// Get reads a parameter by its yaml key.
func (p *Params) Get(name string) (float64, error) {
	f, ok := p.fields()[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter %q: %w", name, dynamo.ErrInvalidParameter)
	}
	return *f, nil
}

// Apply parses key=value assignments and sets each one.
func (p *Params) Apply(assignments []string) error {
	for _, a := range assignments {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q: %w", a, dynamo.ErrInvalidParameter)
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", k, err)
		}
		if err := p.Set(strings.TrimSpace(k), val); err != nil {
			return err
		}
	}
	return nil
}
