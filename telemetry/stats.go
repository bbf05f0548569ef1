package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises one finished run of the population.
type GenerationStats struct {
	Generation int `csv:"generation"`
	Population int `csv:"population"`
	Survivors  int `csv:"survivors"`

	// Fitness distribution
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessStd  float64 `csv:"fitness_std"`
	FitnessMin  float64 `csv:"fitness_min"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessMax  float64 `csv:"fitness_max"`

	// Brain structure
	MeanUnits        float64 `csv:"mean_units"`
	MeanConnections  float64 `csv:"mean_connections"`
	FeedbackCritters int     `csv:"feedback_critters"`

	// Thinking effort
	SignalsPerTick float64 `csv:"signals_per_tick"`
	SaturatedTicks int     `csv:"saturated_ticks"` // critter-ticks that hit the signal cap

	Mutants int `csv:"mutants"`

	// Habitat
	FitnessLayerTotal float64 `csv:"fitness_layer_total"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFitnessStats calculates mean, population std, min, median and max.
func ComputeFitnessStats(values []float64) (mean, std, lo, p50, hi float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return mean, std, floats.Min(sorted), Percentile(sorted, 0.5), floats.Max(sorted)
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("population", s.Population),
		slog.Int("survivors", s.Survivors),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_std", s.FitnessStd),
		slog.Float64("fitness_min", s.FitnessMin),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("fitness_max", s.FitnessMax),
		slog.Float64("mean_units", s.MeanUnits),
		slog.Float64("mean_connections", s.MeanConnections),
		slog.Int("feedback_critters", s.FeedbackCritters),
		slog.Float64("signals_per_tick", s.SignalsPerTick),
		slog.Int("saturated_ticks", s.SaturatedTicks),
		slog.Int("mutants", s.Mutants),
		slog.Float64("fitness_layer_total", s.FitnessLayerTotal),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation", "stats", s)
}
