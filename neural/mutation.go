package neural

import (
	"fmt"
	"math/rand"
	"slices"
)

// MutatorSettings holds the structural mutation rates for circuits.
type MutatorSettings struct {
	// ConnectionReplaceChance is split evenly: below half of it a
	// connection is dropped, in the upper half it is rewired.
	ConnectionReplaceChance float64
	// UnitReplaceChance is the chance a unit is replaced by one drawn
	// uniformly from UnitChoices.
	UnitReplaceChance float64
	UnitChoices       []Template
}

// Validate checks rates and that a positive unit replacement chance has
// choices to draw from.
func (s MutatorSettings) Validate() error {
	if s.ConnectionReplaceChance < 0 || s.UnitReplaceChance < 0 {
		return fmt.Errorf("negative mutation chance: %w", ErrInvalidSettings)
	}
	if s.UnitReplaceChance > 0 && len(s.UnitChoices) == 0 {
		return ErrNoUnitChoices
	}
	for i, t := range s.UnitChoices {
		if t == nil {
			return fmt.Errorf("unit choice %d is nil: %w", i, ErrInvalidTemplate)
		}
	}
	return nil
}

// Mutator derives offspring circuits from a source template.
type Mutator struct {
	settings MutatorSettings
}

// NewMutator validates settings and returns a mutator.
func NewMutator(settings MutatorSettings) (*Mutator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.UnitChoices = slices.Clone(settings.UnitChoices)
	return &Mutator{settings: settings}, nil
}

// Settings returns the mutator's settings.
func (m *Mutator) Settings() MutatorSettings { return m.settings }

// Mutate builds an offspring of src bound to newID. src is not modified.
//
// Each unit is either replaced by a random choice or cloned from its own
// template. Each connection is then kept, dropped, or rewired to a random
// input of a random offspring unit that has inputs; connections made stale
// by a unit replacement that shrank the port count are dropped first. A
// rewire keeps the connection as it was only when no offspring unit has
// any inputs. Finally the
// offspring is renumbered from src's boundary id to newID.
func (m *Mutator) Mutate(rng *rand.Rand, src *ExactTemplate, newID int, out OutputFunc) *Circuit {
	units, wiring := m.offspring(rng, src)
	units, wiring = RemapIDs(src.id, newID, units, wiring)
	return newExactCircuit(rng, newID, out, src.settings, units, wiring)
}

// offspring returns the mutated units and wiring still expressed in terms
// of src's boundary id.
func (m *Mutator) offspring(rng *rand.Rand, src *ExactTemplate) (map[int]Template, Wiring) {
	ids := src.UnitIDs()

	// Detached previews supply post-mutation port counts.
	previews := make(map[int]Unit, len(ids))
	units := make(map[int]Template, len(ids))
	for _, id := range ids {
		t := src.units[id]
		if rng.Float64() < m.settings.UnitReplaceChance {
			t = m.settings.UnitChoices[rng.Intn(len(m.settings.UnitChoices))]
		}
		u := t.Create(rng, id, nil)
		previews[id] = u
		units[id] = u.BuildTemplate()
	}

	outputCount := func(id int) int {
		if id == src.id {
			return src.settings.InputCount
		}
		u, ok := previews[id]
		if !ok {
			panic(fmt.Sprintf("neural: wiring references missing unit %d", id))
		}
		return u.OutputCount()
	}
	inputCount := func(id int) int {
		if id == src.id {
			return src.settings.OutputCount
		}
		u, ok := previews[id]
		if !ok {
			panic(fmt.Sprintf("neural: wiring references missing unit %d", id))
		}
		return u.InputCount()
	}

	// Units without inputs can never receive a rewired connection.
	var targets []int
	for _, id := range ids {
		if previews[id].InputCount() > 0 {
			targets = append(targets, id)
		}
	}

	chance := m.settings.ConnectionReplaceChance
	wiring := make(Wiring, len(src.wiring))
	for _, from := range src.wiring.Sources() {
		if from.Port >= outputCount(from.Unit) {
			continue
		}

		var dests []Index
		for _, to := range src.wiring[from] {
			if to.Port >= inputCount(to.Unit) {
				continue
			}

			r := rng.Float64()
			switch {
			case r < chance/2:
				continue
			case r < chance:
				if rewired, ok := rewire(rng, targets, previews); ok {
					to = rewired
				}
			}
			dests = append(dests, to)
		}

		if len(dests) > 0 {
			wiring[from] = dests
		}
	}

	return units, wiring
}

// rewire picks a uniformly random input port on a uniformly random unit
// among targets. It fails only when targets is empty.
func rewire(rng *rand.Rand, targets []int, previews map[int]Unit) (Index, bool) {
	if len(targets) == 0 {
		return Index{}, false
	}
	id := targets[rng.Intn(len(targets))]
	return Index{Unit: id, Port: rng.Intn(previews[id].InputCount())}, true
}
