package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/telemetry"
)

// FitnessEvaluator runs headless evolution runs and scores parameter
// vectors by how good the critters they evolve become.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestRun     telemetry.BestSnapshot
	hasBest     bool
	lastMax     float64 // mean best score from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestRun returns the best template found by any evaluation.
func (fe *FitnessEvaluator) BestRun() (telemetry.BestSnapshot, bool) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRun, fe.hasBest
}

// LastMax returns the mean top score from the most recent evaluation.
func (fe *FitnessEvaluator) LastMax() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMax
}

// runResult holds the results from a single evolution run.
type runResult struct {
	stats []telemetry.GenerationStats
	best  telemetry.BestSnapshot
	ok    bool
	err   error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean top score over the last quarter of each
// run, averaged across seeds. Failed runs score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	bestSeed := -1
	for i, r := range results {
		if r.err != nil {
			return math.Inf(1)
		}
		total += tailMax(r.stats)
		if r.ok && (bestSeed < 0 || r.best.Fitness > results[bestSeed].best.Fitness) {
			bestSeed = i
		}
	}
	mean := total / float64(len(fe.seeds))
	fitness := -mean

	fe.mu.Lock()
	if fitness < fe.bestFitness && bestSeed >= 0 {
		fe.bestFitness = fitness
		fe.bestRun = results[bestSeed].best
		fe.hasBest = true
	}
	fe.lastMax = mean
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless evolution run.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	var result runResult

	cfg, err := fe.configFor(x, seed)
	if err != nil {
		result.err = err
		return result
	}

	g, err := game.NewGame(cfg, game.Options{
		StatsCallback: func(stats telemetry.GenerationStats) {
			result.stats = append(result.stats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer g.Unload()

	for g.Generation() < fe.generations {
		if err := g.RunGeneration(); err != nil {
			result.err = err
			return result
		}
	}
	result.best, result.ok = g.Best()
	return result
}

// configFor copies the base config and applies x and seed. Slices are
// shared with the base; nothing downstream mutates them.
func (fe *FitnessEvaluator) configFor(x []float64, seed int64) (*config.Config, error) {
	cfg := *fe.baseConfig
	cfg.Simulation.Seed = seed
	cfg.Simulation.MaxGenerations = fe.generations
	cfg.Telemetry.OutputDir = ""
	if err := fe.params.ApplyToConfig(&cfg, x); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// tailMax averages FitnessMax over the last quarter of the run.
func tailMax(stats []telemetry.GenerationStats) float64 {
	if len(stats) == 0 {
		return 0
	}
	n := max(len(stats)/4, 1)
	var sum float64
	for _, s := range stats[len(stats)-n:] {
		sum += s.FitnessMax
	}
	return sum / float64(n)
}
