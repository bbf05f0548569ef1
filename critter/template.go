package critter

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/pthm-cable/critters/habitat"
	"github.com/pthm-cable/critters/mutagen"
	"github.com/pthm-cable/critters/neural"
)

// Factory creates critters in a habitat.
type Factory interface {
	Create(rng *rand.Rand, h *habitat.Habitat) (*Critter, error)
}

// Template reproduces a critter exactly (brain structure, sensors and
// actuators) without any runtime state.
type Template struct {
	Settings  Settings
	Brain     neural.Template
	Sensors   []SensorTemplate
	Actuators []ActuatorTemplate
}

// Create builds a critter in h.
func (t *Template) Create(rng *rand.Rand, h *habitat.Habitat) (*Critter, error) {
	if t.Brain == nil {
		return nil, fmt.Errorf("critter template has no brain: %w", neural.ErrInvalidTemplate)
	}
	return newCritter(rng, h, t.Settings, t.Brain, t.Sensors, t.Actuators)
}

// BuildTemplate snapshots the critter's structure.
func (c *Critter) BuildTemplate() *Template {
	t := &Template{
		Settings:  c.settings,
		Brain:     c.brain.ExactTemplate(),
		Sensors:   make([]SensorTemplate, len(c.sensors)),
		Actuators: make([]ActuatorTemplate, len(c.actuators)),
	}
	for i, s := range c.sensors {
		t.Sensors[i] = s.BuildTemplate()
	}
	for i, a := range c.actuators {
		t.Actuators[i] = a.BuildTemplate()
	}
	return t
}

// MutatorSettings holds the sensor and actuator replacement rates. Each
// sensor and actuator draws independently.
type MutatorSettings struct {
	SensorReplaceChance   float64
	SensorChoices         []SensorTemplate
	ActuatorReplaceChance float64
	ActuatorChoices       []ActuatorTemplate
}

// Validate reports ErrNoChoices when a positive chance has an empty pool.
func (s MutatorSettings) Validate() error {
	if s.SensorReplaceChance > 0 && len(s.SensorChoices) == 0 {
		return fmt.Errorf("sensors: %w", ErrNoChoices)
	}
	if s.ActuatorReplaceChance > 0 && len(s.ActuatorChoices) == 0 {
		return fmt.Errorf("actuators: %w", ErrNoChoices)
	}
	return nil
}

// Mutator creates mutants of a source template. Brains come from a
// mutating brain template, so each mutant gets its own brain mutation.
type Mutator struct {
	settings MutatorSettings
	brain    neural.Template
}

// NewMutator validates settings and pairs them with a brain template.
func NewMutator(settings MutatorSettings, brain neural.Template) (*Mutator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.SensorChoices = slices.Clone(settings.SensorChoices)
	settings.ActuatorChoices = slices.Clone(settings.ActuatorChoices)
	return &Mutator{settings: settings, brain: brain}, nil
}

// CreateMutant builds one mutant of src in h.
func (m *Mutator) CreateMutant(rng *rand.Rand, src *Template, h *habitat.Habitat) (*Critter, error) {
	sensors := make([]SensorTemplate, len(src.Sensors))
	for i, s := range src.Sensors {
		if rng.Float64() < m.settings.SensorReplaceChance {
			s = m.settings.SensorChoices[rng.Intn(len(m.settings.SensorChoices))]
		}
		sensors[i] = s
	}

	actuators := make([]ActuatorTemplate, len(src.Actuators))
	for i, a := range src.Actuators {
		if rng.Float64() < m.settings.ActuatorReplaceChance {
			a = m.settings.ActuatorChoices[rng.Intn(len(m.settings.ActuatorChoices))]
		}
		actuators[i] = a
	}

	return newCritter(rng, h, src.Settings, m.brain, sensors, actuators)
}

// CreateMutants builds n mutants of src in h.
func (m *Mutator) CreateMutants(rng *rand.Rand, src *Template, h *habitat.Habitat, n int) ([]*Critter, error) {
	out := make([]*Critter, 0, n)
	for i := 0; i < n; i++ {
		c, err := m.CreateMutant(rng, src, h)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MutatingTemplate creates a new mutant on every Create.
type MutatingTemplate struct {
	source  *Template
	mutator *Mutator
}

// Source returns the exact template mutants are derived from.
func (t *MutatingTemplate) Source() *Template { return t.source }

// Create implements Factory.
func (t *MutatingTemplate) Create(rng *rand.Rand, h *habitat.Habitat) (*Critter, error) {
	return t.mutator.CreateMutant(rng, t.source, h)
}

// BuildMutatingTemplate snapshots the critter and looks up both the
// critter and the brain mutator settings in p.
func (c *Critter) BuildMutatingTemplate(p *mutagen.Provider) (*MutatingTemplate, error) {
	settings, err := mutagen.Lookup[MutatorSettings](p)
	if err != nil {
		return nil, fmt.Errorf("critter mutator: %w", err)
	}
	brain, err := c.brain.BuildMutatingTemplate(p)
	if err != nil {
		return nil, err
	}
	m, err := NewMutator(settings, brain)
	if err != nil {
		return nil, err
	}
	return &MutatingTemplate{source: c.BuildTemplate(), mutator: m}, nil
}
