package neural

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// TemplateSpec is the serializable form of a Template: a kind tag plus the
// structural parameters of that kind. Runtime state is never included.
type TemplateSpec struct {
	Kind    Kind         `json:"kind"`
	Arity   int          `json:"arity,omitempty"`
	Sign    bool         `json:"sign,omitempty"`
	Circuit *CircuitSpec `json:"circuit,omitempty"`
	Fresh   *FreshSpec   `json:"fresh,omitempty"`
}

// CircuitSpec describes an exact circuit.
type CircuitSpec struct {
	ID       int        `json:"id"`
	Settings Settings   `json:"settings"`
	Units    []UnitSpec `json:"units"`
	Wiring   []WireSpec `json:"wiring"`
}

// FreshSpec describes a circuit that is wired randomly on creation.
type FreshSpec struct {
	Settings Settings       `json:"settings"`
	Units    []TemplateSpec `json:"units"`
}

// UnitSpec is one entry of a circuit's unit table.
type UnitSpec struct {
	ID       int          `json:"id"`
	Template TemplateSpec `json:"template"`
}

// WireSpec is one wiring entry.
type WireSpec struct {
	From Index   `json:"from"`
	To   []Index `json:"to"`
}

// Decoder turns a spec of one kind back into a template.
type Decoder func(spec TemplateSpec) (Template, error)

var kindRegistry = struct {
	mu sync.RWMutex
	m  map[Kind]Decoder
}{
	m: make(map[Kind]Decoder),
}

func init() {
	MustRegisterKind(KindSimple, func(TemplateSpec) (Template, error) { return SimpleTemplate{}, nil })
	MustRegisterKind(KindXor, func(TemplateSpec) (Template, error) { return XorTemplate{}, nil })
	MustRegisterKind(KindInverter, func(TemplateSpec) (Template, error) { return InverterTemplate{}, nil })
	MustRegisterKind(KindDiode, func(s TemplateSpec) (Template, error) { return DiodeTemplate{Sign: s.Sign}, nil })
	MustRegisterKind(KindAnd, func(s TemplateSpec) (Template, error) { return NewAndTemplate(s.Arity) })
	MustRegisterKind(KindCircuit, decodeCircuit)
}

// RegisterKind installs the decoder for a kind.
func RegisterKind(kind Kind, dec Decoder) error {
	if kind == "" || dec == nil {
		return fmt.Errorf("kind and decoder are required: %w", ErrInvalidTemplate)
	}

	kindRegistry.mu.Lock()
	defer kindRegistry.mu.Unlock()

	if _, exists := kindRegistry.m[kind]; exists {
		return fmt.Errorf("%w: %s", ErrKindExists, kind)
	}
	kindRegistry.m[kind] = dec
	return nil
}

// MustRegisterKind is like RegisterKind but panics on error.
func MustRegisterKind(kind Kind, dec Decoder) {
	if err := RegisterKind(kind, dec); err != nil {
		panic(err)
	}
}

// RegisteredKinds lists kinds with a decoder, sorted.
func RegisteredKinds() []Kind {
	kindRegistry.mu.RLock()
	defer kindRegistry.mu.RUnlock()
	return slices.Sorted(maps.Keys(kindRegistry.m))
}

// DecodeTemplate rebuilds a template from its spec.
func DecodeTemplate(spec TemplateSpec) (Template, error) {
	kindRegistry.mu.RLock()
	dec, ok := kindRegistry.m[spec.Kind]
	kindRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
	return dec(spec)
}

// EncodeTemplate captures a template's structure. Mutating templates are
// not serializable; encode their Source instead.
func EncodeTemplate(t Template) (TemplateSpec, error) {
	switch t := t.(type) {
	case SimpleTemplate:
		return TemplateSpec{Kind: KindSimple}, nil
	case XorTemplate:
		return TemplateSpec{Kind: KindXor}, nil
	case InverterTemplate:
		return TemplateSpec{Kind: KindInverter}, nil
	case DiodeTemplate:
		return TemplateSpec{Kind: KindDiode, Sign: t.Sign}, nil
	case AndTemplate:
		return TemplateSpec{Kind: KindAnd, Arity: t.arity}, nil
	case *ExactTemplate:
		return encodeExact(t)
	case *CircuitTemplate:
		fresh := &FreshSpec{Settings: t.settings, Units: make([]TemplateSpec, len(t.units))}
		for i, u := range t.units {
			spec, err := EncodeTemplate(u)
			if err != nil {
				return TemplateSpec{}, fmt.Errorf("unit %d: %w", i, err)
			}
			fresh.Units[i] = spec
		}
		return TemplateSpec{Kind: KindCircuit, Fresh: fresh}, nil
	case *MutatingTemplate:
		return TemplateSpec{}, fmt.Errorf("mutating template: %w", ErrNotSerializable)
	}
	return TemplateSpec{}, fmt.Errorf("%T: %w", t, ErrNotSerializable)
}

func encodeExact(t *ExactTemplate) (TemplateSpec, error) {
	cs := &CircuitSpec{ID: t.id, Settings: t.settings}
	for _, id := range t.UnitIDs() {
		spec, err := EncodeTemplate(t.units[id])
		if err != nil {
			return TemplateSpec{}, fmt.Errorf("unit %d: %w", id, err)
		}
		cs.Units = append(cs.Units, UnitSpec{ID: id, Template: spec})
	}
	for _, from := range t.wiring.Sources() {
		cs.Wiring = append(cs.Wiring, WireSpec{From: from, To: slices.Clone(t.wiring[from])})
	}
	return TemplateSpec{Kind: KindCircuit, Circuit: cs}, nil
}

func decodeCircuit(spec TemplateSpec) (Template, error) {
	switch {
	case spec.Circuit != nil:
		cs := spec.Circuit
		units := make(map[int]Template, len(cs.Units))
		for _, us := range cs.Units {
			if _, dup := units[us.ID]; dup {
				return nil, fmt.Errorf("duplicate unit id %d: %w", us.ID, ErrInvalidTemplate)
			}
			t, err := DecodeTemplate(us.Template)
			if err != nil {
				return nil, fmt.Errorf("unit %d: %w", us.ID, err)
			}
			units[us.ID] = t
		}
		wiring := make(Wiring, len(cs.Wiring))
		for _, w := range cs.Wiring {
			if len(w.To) == 0 {
				continue
			}
			wiring[w.From] = append(wiring[w.From], w.To...)
		}
		return NewExactTemplate(cs.ID, cs.Settings, units, wiring)

	case spec.Fresh != nil:
		units := make([]Template, len(spec.Fresh.Units))
		for i, us := range spec.Fresh.Units {
			t, err := DecodeTemplate(us)
			if err != nil {
				return nil, fmt.Errorf("unit %d: %w", i, err)
			}
			units[i] = t
		}
		return NewCircuitTemplate(spec.Fresh.Settings, units...)
	}
	return nil, fmt.Errorf("circuit spec has no body: %w", ErrInvalidTemplate)
}
