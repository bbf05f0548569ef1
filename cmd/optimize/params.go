package main

import (
	"github.com/pthm-cable/critters/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters:
// the structural mutation rates and the selection pressure.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "connection_replace", Path: "mutation.connection_replace_chance", Min: 0, Max: 0.5},
			{Name: "unit_replace", Path: "mutation.unit_replace_chance", Min: 0, Max: 0.5},
			{Name: "sensor_replace", Path: "mutation.sensor_replace_chance", Min: 0, Max: 0.3},
			{Name: "actuator_replace", Path: "mutation.actuator_replace_chance", Min: 0, Max: 0.3},
			{Name: "survivor_fraction", Path: "simulation.survivor_fraction", Min: 0.1, Max: 0.9},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
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

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// fields returns pointers to the config fields, in Specs order.
func (pv *ParamVector) fields(cfg *config.Config) []*float64 {
	return []*float64{
		&cfg.Mutation.ConnectionReplaceChance,
		&cfg.Mutation.UnitReplaceChance,
		&cfg.Mutation.SensorReplaceChance,
		&cfg.Mutation.ActuatorReplaceChance,
		&cfg.Simulation.SurvivorFraction,
	}
}

// ApplyToConfig writes clamped values into cfg and refreshes its derived
// values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	for i, f := range pv.fields(cfg) {
		*f = clamped[i]
	}
	return cfg.Refresh()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	fields := pv.fields(cfg)
	values := make([]float64, len(fields))
	for i, f := range fields {
		values[i] = *f
	}
	return values
}
