// Package game runs the evolution loop: a population of critters thinks
// and grazes in a shared habitat for one run, the best survive, and each
// survivor seeds one mutant and one exact copy into a fresh habitat.
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/critter"
	"github.com/pthm-cable/critters/habitat"
	"github.com/pthm-cable/critters/mutagen"
	"github.com/pthm-cable/critters/storage"
	"github.com/pthm-cable/critters/telemetry"
)

// Options carries optional collaborators. The zero value runs headless
// with no output and no persistence.
type Options struct {
	Output        *telemetry.OutputManager
	Store         storage.Store // must already be initialized
	StatsCallback func(telemetry.GenerationStats)
	LogStats      bool
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	orgMapper *ecs.Map3[components.Organism, components.Fitness, components.Lineage]
	orgFilter *ecs.Filter3[components.Organism, components.Fitness, components.Lineage]
	fitMap    *ecs.Map[components.Fitness]

	habitatTemplate habitat.Template
	habitat         *habitat.Habitat
	fitnessLayer    *habitat.Layer
	provider        *mutagen.Provider

	parallel  *parallelState
	entities  []ecs.Entity // parallel.critters[i] belongs to entities[i]
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	opts      Options

	// State
	tick       int32
	generation int
	nextID     uint32
	runID      string
	history    []float64
	best       telemetry.BestSnapshot
	bestID     string
	hasBest    bool
}

// NewGame builds the founder population from cfg.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	world := ecs.NewWorld()

	g := &Game{
		cfg:       cfg,
		world:     world,
		rng:       rand.New(rand.NewSource(cfg.Simulation.Seed)),
		orgMapper: ecs.NewMap3[components.Organism, components.Fitness, components.Lineage](world),
		orgFilter: ecs.NewFilter3[components.Organism, components.Fitness, components.Lineage](world),
		fitMap:    ecs.NewMap[components.Fitness](world),
		parallel: newParallelState(cfg.Simulation.Workers, cfg.Simulation.ParallelThreshold,
			cfg.Simulation.MaxSignalsPerTick),
		collector: telemetry.NewCollector(cfg.Simulation.MaxSignalsPerTick),
		perf:      telemetry.NewPerfCollector(cfg.Simulation.TicksPerRun),
		opts:      opts,
		nextID:    1,
		runID:     storage.NewRunID(),
	}

	var err error
	if g.habitatTemplate, err = HabitatTemplate(cfg); err != nil {
		return nil, err
	}
	if g.provider, err = MutagenProvider(cfg); err != nil {
		return nil, err
	}
	if err := g.spawnFounders(); err != nil {
		return nil, err
	}
	return g, nil
}

// Update runs a single tick, ending the run when TicksPerRun is reached.
func (g *Game) Update() error {
	g.perf.StartTick()
	defer g.perf.EndTick()

	g.step()
	if int(g.tick) >= g.cfg.Simulation.TicksPerRun {
		g.perf.StartPhase(telemetry.PhaseSelection)
		return g.endOfRun()
	}
	return nil
}

// RunGeneration ticks until the current run ends.
func (g *Game) RunGeneration() error {
	gen := g.generation
	for g.generation == gen {
		if err := g.Update(); err != nil {
			return err
		}
	}
	return nil
}

// step advances every critter by one tick.
func (g *Game) step() {
	dt := g.cfg.Derived.DT32

	g.perf.StartPhase(telemetry.PhaseThink)
	g.parallel.think()

	g.perf.StartPhase(telemetry.PhaseImpel)
	for _, c := range g.parallel.critters {
		c.Impel(dt)
	}

	g.perf.StartPhase(telemetry.PhaseGraze)
	g.graze(dt)

	g.perf.StartPhase(telemetry.PhaseHabitat)
	g.habitat.Step(dt)

	g.collector.RecordTick()
	g.tick++
}

// graze credits each critter with what it eats from the fitness layer.
// Critters graze in spawn order, so earlier critters get first pick of a
// shared cell. With a zero graze rate the layer is only sampled.
func (g *Game) graze(dt float32) {
	sim := g.cfg.Simulation
	want := float32(sim.GrazeRate) * dt

	for i, c := range g.parallel.critters {
		g.collector.RecordThink(g.parallel.dispatched[i])

		fit := g.fitMap.Get(g.entities[i])
		fit.Score += grazeScore(g.fitnessLayer, c, want, sim.GrazeRadius)
		fit.Ticks++
	}
}

func grazeScore(layer *habitat.Layer, c *critter.Critter, want float32, radius int) float32 {
	x, y := int(c.X), int(c.Y)
	if want > 0 {
		return layer.Graze(x, y, want, radius)
	}
	return layer.At(x, y)
}

// loadHabitat swaps in h and resolves the fitness layer.
func (g *Game) loadHabitat(h *habitat.Habitat) error {
	layer, err := h.Layer(g.cfg.Simulation.FitnessLayer)
	if err != nil {
		return fmt.Errorf("fitness layer: %w", err)
	}
	g.habitat = h
	g.fitnessLayer = layer
	return nil
}

// spawn adds c to the world at the habitat centre.
func (g *Game) spawn(c *critter.Critter, parent uint32, mutant bool, lineage components.Lineage) ecs.Entity {
	c.X = float32(g.habitat.Width) / 2
	c.Y = float32(g.habitat.Height) / 2

	id := g.nextID
	g.nextID++
	if lineage.Founder == 0 {
		lineage.Founder = id
	}

	org := components.Organism{ID: id, Critter: c, ParentID: parent, Mutant: mutant}
	fit := components.Fitness{}
	e := g.orgMapper.NewEntity(&org, &fit, &lineage)

	g.entities = append(g.entities, e)
	g.parallel.critters = append(g.parallel.critters, c)
	return e
}

func (g *Game) spawnFounders() error {
	h, err := g.habitatTemplate.Create(g.rng)
	if err != nil {
		return fmt.Errorf("founder habitat: %w", err)
	}
	if err := g.loadHabitat(h); err != nil {
		return err
	}

	founder, err := FounderTemplate(g.cfg)
	if err != nil {
		return err
	}
	for i := range g.cfg.Simulation.Population {
		c, err := founder.Create(g.rng, h)
		if err != nil {
			return fmt.Errorf("founder %d: %w", i, err)
		}
		g.spawn(c, 0, false, components.Lineage{})
	}
	return nil
}

// Tick returns the tick within the current run.
func (g *Game) Tick() int32 { return g.tick }

// Generation returns the number of completed runs.
func (g *Game) Generation() int { return g.generation }

// Habitat returns the habitat of the current run.
func (g *Game) Habitat() *habitat.Habitat { return g.habitat }

// Population returns the number of live critters.
func (g *Game) Population() int { return len(g.entities) }

// RunID identifies this run in the store.
func (g *Game) RunID() string { return g.runID }

// History returns the best score of every completed generation.
func (g *Game) History() []float64 { return g.history }

// Best returns the best template seen so far, if any generation has ended.
func (g *Game) Best() (telemetry.BestSnapshot, bool) { return g.best, g.hasBest }

// Leader returns the live critter with the highest score this run.
func (g *Game) Leader() (components.Organism, components.Fitness, components.Lineage, bool) {
	var (
		bestOrg components.Organism
		bestFit components.Fitness
		bestLin components.Lineage
		found   bool
	)
	query := g.orgFilter.Query()
	for query.Next() {
		org, fit, lin := query.Get()
		if !found || fit.Score > bestFit.Score {
			bestOrg, bestFit, bestLin, found = *org, *fit, *lin, true
		}
	}
	return bestOrg, bestFit, bestLin, found
}

// Unload stops background workers.
func (g *Game) Unload() {
	g.parallel.stopWorkers()
}

var errEmptyPopulation = errors.New("population is empty")
