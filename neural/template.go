package neural

import (
	"fmt"
	"maps"
	"math/rand"
	"slices"

	"github.com/pthm-cable/critters/mutagen"
)

// CircuitTemplate creates circuits with fresh random wiring.
type CircuitTemplate struct {
	settings Settings
	units    []Template
}

// NewCircuitTemplate returns a template for circuits built from units in
// order.
func NewCircuitTemplate(settings Settings, units ...Template) (*CircuitTemplate, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	for i, u := range units {
		if u == nil {
			return nil, fmt.Errorf("unit template %d is nil: %w", i, ErrInvalidTemplate)
		}
	}
	return &CircuitTemplate{settings: settings, units: slices.Clone(units)}, nil
}

// Settings returns the boundary settings.
func (t *CircuitTemplate) Settings() Settings { return t.settings }

// UnitTemplates returns the unit templates in creation order.
func (t *CircuitTemplate) UnitTemplates() []Template { return slices.Clone(t.units) }

func (t *CircuitTemplate) Kind() Kind { return KindCircuit }

// Create implements Template.
func (t *CircuitTemplate) Create(rng *rand.Rand, id int, out OutputFunc) Unit {
	return t.CreateCircuit(rng, id, out)
}

// CreateCircuit is Create with a concrete return type.
func (t *CircuitTemplate) CreateCircuit(rng *rand.Rand, id int, out OutputFunc) *Circuit {
	c, err := NewCircuit(rng, id, out, t.settings, t.units...)
	if err != nil {
		// Settings were validated by NewCircuitTemplate.
		panic(err)
	}
	return c
}

// ExactTemplate reproduces one circuit's units and wiring. Create rebinds
// it to a new boundary id, renumbering a colliding unit if needed.
type ExactTemplate struct {
	id       int
	settings Settings
	units    map[int]Template
	wiring   Wiring
}

// NewExactTemplate returns a template for a circuit whose boundary id is id.
// Wiring must only reference id and keys of units, within their port counts.
func NewExactTemplate(id int, settings Settings, units map[int]Template, wiring Wiring) (*ExactTemplate, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if _, clash := units[id]; clash {
		return nil, fmt.Errorf("boundary id %d is also a unit id: %w", id, ErrInvalidTemplate)
	}

	counts := make(map[int][2]int, len(units)+1)
	counts[id] = [2]int{settings.OutputCount, settings.InputCount}
	for uid, t := range units {
		if t == nil {
			return nil, fmt.Errorf("unit %d template is nil: %w", uid, ErrInvalidTemplate)
		}
		u := t.Create(rand.New(rand.NewSource(0)), uid, nil)
		counts[uid] = [2]int{u.InputCount(), u.OutputCount()}
	}
	for src, dests := range wiring {
		c, ok := counts[src.Unit]
		if !ok || src.Port < 0 || src.Port >= c[1] {
			return nil, fmt.Errorf("wiring source %s: %w", src, ErrInvalidTemplate)
		}
		for _, d := range dests {
			c, ok := counts[d.Unit]
			if !ok || d.Port < 0 || d.Port >= c[0] {
				return nil, fmt.Errorf("wiring %s -> %s: %w", src, d, ErrInvalidTemplate)
			}
		}
	}

	return &ExactTemplate{
		id:       id,
		settings: settings,
		units:    maps.Clone(units),
		wiring:   wiring.Clone(),
	}, nil
}

// ID returns the boundary id the template was captured under.
func (t *ExactTemplate) ID() int { return t.id }

// Settings returns the boundary settings.
func (t *ExactTemplate) Settings() Settings { return t.settings }

// UnitIDs returns unit ids in ascending order.
func (t *ExactTemplate) UnitIDs() []int { return slices.Sorted(maps.Keys(t.units)) }

// UnitTemplate returns the template of one unit.
func (t *ExactTemplate) UnitTemplate(id int) (Template, bool) {
	u, ok := t.units[id]
	return u, ok
}

// Wiring returns a copy of the wiring.
func (t *ExactTemplate) Wiring() Wiring { return t.wiring.Clone() }

func (t *ExactTemplate) Kind() Kind { return KindCircuit }

// Create implements Template.
func (t *ExactTemplate) Create(rng *rand.Rand, id int, out OutputFunc) Unit {
	return t.CreateCircuit(rng, id, out)
}

// CreateCircuit is Create with a concrete return type.
func (t *ExactTemplate) CreateCircuit(rng *rand.Rand, id int, out OutputFunc) *Circuit {
	units, wiring := RemapIDs(t.id, id, t.units, t.wiring)
	return newExactCircuit(rng, id, out, t.settings, units, wiring)
}

// MutatingTemplate creates a freshly mutated offspring of a source circuit
// on every Create. The source is snapshotted when the template is built, so
// later changes to the live circuit do not leak into offspring.
type MutatingTemplate struct {
	source  *ExactTemplate
	mutator *Mutator
}

// NewMutatingTemplate pairs a source snapshot with a mutator.
func NewMutatingTemplate(source *ExactTemplate, mutator *Mutator) *MutatingTemplate {
	return &MutatingTemplate{source: source, mutator: mutator}
}

// BuildMutatingTemplate snapshots c and looks up MutatorSettings in p.
func (c *Circuit) BuildMutatingTemplate(p *mutagen.Provider) (*MutatingTemplate, error) {
	settings, err := mutagen.Lookup[MutatorSettings](p)
	if err != nil {
		return nil, fmt.Errorf("circuit mutator: %w", err)
	}
	m, err := NewMutator(settings)
	if err != nil {
		return nil, err
	}
	return NewMutatingTemplate(c.ExactTemplate(), m), nil
}

// Source returns the snapshot offspring are derived from.
func (t *MutatingTemplate) Source() *ExactTemplate { return t.source }

func (t *MutatingTemplate) Kind() Kind { return KindCircuit }

// Create implements Template.
func (t *MutatingTemplate) Create(rng *rand.Rand, id int, out OutputFunc) Unit {
	return t.mutator.Mutate(rng, t.source, id, out)
}
