package neural

import (
	"errors"
	"math/rand"
)

// Kind tags a unit variant. The set is closed.
type Kind string

const (
	KindSimple   Kind = "simple"
	KindAnd      Kind = "and"
	KindXor      Kind = "xor"
	KindInverter Kind = "inverter"
	KindDiode    Kind = "diode"
	KindCircuit  Kind = "circuit"
)

var (
	ErrUnsupportedUnit = errors.New("unsupported unit configuration")
	ErrInvalidSettings = errors.New("invalid circuit settings")
	ErrNoUnitChoices   = errors.New("no unit choices to mutate into")
	ErrUnknownKind     = errors.New("unknown unit kind")
	ErrKindExists      = errors.New("unit kind already registered")
	ErrNotSerializable = errors.New("template is not serializable")
	ErrInvalidTemplate = errors.New("invalid template")
)

// Unit is a signal-processing node: a leaf variant or a nested Circuit.
type Unit interface {
	ID() int
	InputCount() int
	OutputCount() int

	// Input delivers a signal to one of the unit's input ports.
	Input(sig Signal)

	// Reset clears accumulator state.
	Reset()

	// BuildTemplate captures the unit's structure, never its state.
	BuildTemplate() Template
}

// Template is an immutable blueprint for a Unit.
type Template interface {
	Kind() Kind

	// Create instantiates a unit bound to id whose emissions go to out.
	// rng is consumed only by templates that make random choices.
	Create(rng *rand.Rand, id int, out OutputFunc) Unit
}
