package main

import (
	"math"

	"github.com/pthm-cable/turmites/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before it is applied
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the parameter set for a strategy. Parameters the
// strategy ignores are left out.
func NewParamVector(strategy string) *ParamVector {
	specs := []ParamSpec{
		{Name: "mutation_rate", Path: "evolution.mutation_rate", Min: 0.001, Max: 0.2, Default: 0.01},
	}
	switch strategy {
	case config.StrategyDominance:
		specs = append(specs,
			ParamSpec{Name: "stagnation_threshold", Path: "evolution.stagnation_threshold", Min: 0, Max: 0.2, Default: 0.01},
		)
	case config.StrategyTournament:
		specs = append(specs,
			ParamSpec{Name: "tournament_size", Path: "evolution.tournament_size", Min: 1, Max: 8, Default: 2, Integer: true},
		)
	}
	return &ParamVector{Specs: specs}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds, rounding integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := min(max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "mutation_rate":
			cfg.Evolution.MutationRate = clamped[i]
		case "stagnation_threshold":
			cfg.Evolution.StagnationThreshold = clamped[i]
		case "tournament_size":
			cfg.Evolution.TournamentSize = int(clamped[i])
		}
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "mutation_rate":
			v[i] = cfg.Evolution.MutationRate
		case "stagnation_threshold":
			v[i] = cfg.Evolution.StagnationThreshold
		case "tournament_size":
			v[i] = float64(cfg.Evolution.TournamentSize)
		}
	}
	return v
}
