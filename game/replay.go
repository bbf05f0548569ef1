package game

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/critter"
)

// Replay creates spec alone in a fresh habitat built from cfg and runs it
// for ticks ticks, scoring it the way a generation run does. The returned
// critter keeps its final brain state for inspection.
func Replay(cfg *config.Config, spec critter.Spec, ticks int) (*critter.Critter, components.Fitness, error) {
	var fit components.Fitness

	tmpl, err := critter.Decode(spec)
	if err != nil {
		return nil, fit, fmt.Errorf("decode template: %w", err)
	}
	ht, err := HabitatTemplate(cfg)
	if err != nil {
		return nil, fit, err
	}

	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
	h, err := ht.Create(rng)
	if err != nil {
		return nil, fit, fmt.Errorf("habitat: %w", err)
	}
	layer, err := h.Layer(cfg.Simulation.FitnessLayer)
	if err != nil {
		return nil, fit, fmt.Errorf("fitness layer: %w", err)
	}
	c, err := tmpl.Create(rng, h)
	if err != nil {
		return nil, fit, err
	}
	c.X = float32(h.Width) / 2
	c.Y = float32(h.Height) / 2

	sim := cfg.Simulation
	dt := cfg.Derived.DT32
	want := float32(sim.GrazeRate) * dt
	for range ticks {
		c.Think(sim.MaxSignalsPerTick)
		c.Impel(dt)
		fit.Score += grazeScore(layer, c, want, sim.GrazeRadius)
		fit.Ticks++
		h.Step(dt)
	}
	return c, fit, nil
}
