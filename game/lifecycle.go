package game

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/critter"
	"github.com/pthm-cable/critters/neural"
	"github.com/pthm-cable/critters/storage"
	"github.com/pthm-cable/critters/telemetry"
)

// ranked is one organism at the end of a run.
type ranked struct {
	entity  ecs.Entity
	org     components.Organism
	fit     components.Fitness
	lineage components.Lineage
}

// rank returns every organism, best score first. Ties keep spawn order.
func (g *Game) rank() []ranked {
	var out []ranked
	query := g.orgFilter.Query()
	for query.Next() {
		org, fit, lin := query.Get()
		out = append(out, ranked{entity: query.Entity(), org: *org, fit: *fit, lineage: *lin})
	}
	slices.SortStableFunc(out, func(a, b ranked) int {
		if c := cmp.Compare(b.fit.Score, a.fit.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.org.ID, b.org.ID)
	})
	return out
}

// endOfRun judges the population, reports, and replaces it with the
// offspring of the survivors.
func (g *Game) endOfRun() error {
	all := g.rank()
	if len(all) == 0 {
		return errEmptyPopulation
	}
	survivors := all[:min(g.cfg.Derived.Survivors, len(all))]

	for _, r := range all {
		topo := neural.Analyze(r.org.Critter.Brain().ExactTemplate())
		g.collector.Sample(telemetry.CritterSample{
			Score:       float64(r.fit.Score),
			Units:       topo.Units,
			Connections: topo.Connections,
			Feedback:    topo.HasFeedback(),
			Mutant:      r.org.Mutant,
		})
	}
	stats := g.collector.Flush(g.generation, len(survivors), g.fitnessLayer.Sum())
	if err := g.recordBest(survivors[0]); err != nil {
		return err
	}
	g.report(stats)

	offspring, err := g.breed(survivors)
	if err != nil {
		return err
	}

	for _, r := range all {
		g.world.RemoveEntity(r.entity)
	}
	g.entities = g.entities[:0]
	g.parallel.critters = g.parallel.critters[:0]
	for _, o := range offspring {
		g.spawn(o.critter, o.parent.org.ID, o.mutant, components.Lineage{
			Generation: g.generation + 1,
			Founder:    o.parent.lineage.Founder,
		})
	}

	g.generation++
	g.tick = 0
	return nil
}

type child struct {
	critter *critter.Critter
	parent  ranked
	mutant  bool
}

// breed fills the next population in a fresh habitat. Survivors take turns
// producing a mutant and then an exact copy, best survivor first.
func (g *Game) breed(survivors []ranked) ([]child, error) {
	h, err := g.habitatTemplate.Create(g.rng)
	if err != nil {
		return nil, fmt.Errorf("habitat for generation %d: %w", g.generation+1, err)
	}
	if err := g.loadHabitat(h); err != nil {
		return nil, err
	}

	mutating := make([]*critter.MutatingTemplate, len(survivors))
	for i, s := range survivors {
		if mutating[i], err = s.org.Critter.BuildMutatingTemplate(g.provider); err != nil {
			return nil, fmt.Errorf("survivor %d: %w", s.org.ID, err)
		}
	}

	out := make([]child, 0, g.cfg.Simulation.Population)
	for i := range g.cfg.Simulation.Population {
		k := (i / 2) % len(survivors)
		parent := survivors[k]

		var c *critter.Critter
		mutant := i%2 == 0
		if mutant {
			c, err = mutating[k].Create(g.rng, h)
		} else {
			c, err = parent.org.Critter.BuildTemplate().Create(g.rng, h)
		}
		if err != nil {
			return nil, fmt.Errorf("offspring of %d: %w", parent.org.ID, err)
		}
		out = append(out, child{critter: c, parent: parent, mutant: mutant})
	}
	return out, nil
}

// recordBest snapshots the generation winner and persists it.
func (g *Game) recordBest(winner ranked) error {
	score := float64(winner.fit.Score)
	g.history = append(g.history, score)

	spec, err := critter.Encode(winner.org.Critter.BuildTemplate())
	if err != nil {
		return fmt.Errorf("encoding winner: %w", err)
	}

	improved := !g.hasBest || score > g.best.Fitness
	if improved {
		g.best = telemetry.BestSnapshot{Generation: g.generation, Fitness: score, Template: spec}
		g.hasBest = true
		if err := g.opts.Output.WriteBest(g.best); err != nil {
			slog.Error("failed to write best template", "error", err)
		}
	}

	if g.opts.Store == nil {
		return nil
	}
	ctx := context.Background()
	rec := storage.NewTemplateRecord(g.runID, g.generation, score, spec)
	if err := g.opts.Store.SaveTemplate(ctx, rec); err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	if improved {
		g.bestID = rec.ID
	}
	run := storage.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              g.runID,
		Seed:            g.cfg.Simulation.Seed,
		Generations:     g.generation + 1,
		BestFitness:     g.best.Fitness,
		BestID:          g.bestID,
		History:         g.history,
	}
	if err := g.opts.Store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// report logs and writes the generation stats.
func (g *Game) report(stats telemetry.GenerationStats) {
	perfStats := g.perf.Stats()

	if g.opts.StatsCallback != nil {
		g.opts.StatsCallback(stats)
	}

	if g.opts.LogStats && g.generation%g.cfg.Telemetry.LogEvery == 0 {
		slog.Info("generation", "stats", stats, "perf", perfStats)
	}

	if err := g.opts.Output.WriteGeneration(stats); err != nil {
		slog.Error("failed to write generation", "error", err)
	}
	if err := g.opts.Output.WritePerf(perfStats, stats.Generation); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
