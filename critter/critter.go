// Package critter composes a neural circuit with sensors and actuators into
// an agent that moves over a habitat.
package critter

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/critters/habitat"
	"github.com/pthm-cable/critters/neural"
)

// BrainID is the boundary id every critter brain is created under.
const BrainID = 0

var (
	ErrNoChoices     = errors.New("no templates to mutate into")
	ErrShapeMismatch = errors.New("brain ports do not match sensors and actuators")
	ErrNotCircuit    = errors.New("brain template does not create a circuit")
)

// Settings are the physical parameters of a critter.
type Settings struct {
	MaxSpeed     float32 `json:"max_speed" yaml:"max_speed"`
	ImpetusDecay float32 `json:"impetus_decay" yaml:"impetus_decay"`
}

// Critter is one agent. Its brain's boundary inputs are its sensors, in
// order, and its boundary outputs are its actuators.
type Critter struct {
	X, Y               float32
	ImpetusX, ImpetusY float32

	settings  Settings
	habitat   *habitat.Habitat
	brain     *neural.Circuit
	sensors   []Sensor
	actuators []Actuator
}

func newCritter(rng *rand.Rand, h *habitat.Habitat, settings Settings, brain neural.Template,
	sensors []SensorTemplate, actuators []ActuatorTemplate) (*Critter, error) {
	c := &Critter{
		settings:  settings,
		habitat:   h,
		sensors:   make([]Sensor, len(sensors)),
		actuators: make([]Actuator, len(actuators)),
	}

	for i, t := range sensors {
		s, err := t.Create(c)
		if err != nil {
			return nil, fmt.Errorf("sensor %d: %w", i, err)
		}
		c.sensors[i] = s
	}
	for i, t := range actuators {
		a, err := t.Create(c)
		if err != nil {
			return nil, fmt.Errorf("actuator %d: %w", i, err)
		}
		c.actuators[i] = a
	}

	b, ok := brain.Create(rng, BrainID, c.onBrainOutput).(*neural.Circuit)
	if !ok {
		return nil, ErrNotCircuit
	}
	if b.InputCount() != len(sensors) || b.OutputCount() != len(actuators) {
		return nil, fmt.Errorf("%w: brain %d/%d, critter %d/%d", ErrShapeMismatch,
			b.InputCount(), b.OutputCount(), len(sensors), len(actuators))
	}
	c.brain = b

	return c, nil
}

func (c *Critter) onBrainOutput(sig neural.Signal) {
	c.actuators[sig.Dest.Port].Actuate(sig.Value)
}

// Brain returns the critter's circuit.
func (c *Critter) Brain() *neural.Circuit { return c.brain }

// Habitat returns the habitat the critter was created in.
func (c *Critter) Habitat() *habitat.Habitat { return c.habitat }

// Settings returns the physical settings.
func (c *Critter) Settings() Settings { return c.settings }

// SensorCount returns the number of sensors.
func (c *Critter) SensorCount() int { return len(c.sensors) }

// ActuatorCount returns the number of actuators.
func (c *Critter) ActuatorCount() int { return len(c.actuators) }

// Think reads every sensor, feeds strictly positive readings into the
// matching brain input, and runs the brain for at most maxSignals
// dispatches (0 = until quiet). It returns the dispatch count.
func (c *Critter) Think(maxSignals int) int {
	for i, s := range c.sensors {
		if v := s.Sense(); v > 0 {
			c.brain.Input(neural.NewSignal(v, c.brain.ID(), i))
		}
	}
	return c.brain.Think(maxSignals)
}

// Impel moves the critter along its impetus, at most MaxSpeed*dt per axis,
// then decays what is left of the impetus. Positions are wrapped onto the
// habitat.
func (c *Critter) Impel(dt float32) {
	limit := c.settings.MaxSpeed * dt

	dx := clampAbs(c.ImpetusX, limit)
	c.X += dx
	c.ImpetusX = (c.ImpetusX - dx) * c.settings.ImpetusDecay

	dy := clampAbs(c.ImpetusY, limit)
	c.Y += dy
	c.ImpetusY = (c.ImpetusY - dy) * c.settings.ImpetusDecay

	c.X = habitat.WrapF(c.X, float32(c.habitat.Width))
	c.Y = habitat.WrapF(c.Y, float32(c.habitat.Height))
}

func clampAbs(v, limit float32) float32 {
	switch {
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	}
	return v
}

// Reset clears the brain, position and impetus.
func (c *Critter) Reset() {
	c.brain.Reset()
	c.X, c.Y = 0, 0
	c.ImpetusX, c.ImpetusY = 0, 0
}

// Copy creates an unmutated critter with the same structure in h.
func (c *Critter) Copy(rng *rand.Rand, h *habitat.Habitat) (*Critter, error) {
	return c.BuildTemplate().Create(rng, h)
}
