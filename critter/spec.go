package critter

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/critters/neural"
)

// Spec is the serializable form of a critter Template.
type Spec struct {
	Settings  Settings            `json:"settings"`
	Brain     neural.TemplateSpec `json:"brain"`
	Sensors   []PartSpec          `json:"sensors"`
	Actuators []PartSpec          `json:"actuators"`
}

// PartSpec describes one sensor or actuator.
type PartSpec struct {
	Kind   string  `json:"kind"`
	Layer  string  `json:"layer,omitempty"`
	DX     int     `json:"dx,omitempty"`
	DY     int     `json:"dy,omitempty"`
	Invert bool    `json:"invert,omitempty"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
}

// Encode captures t. The brain must be serializable: encode the Source of
// a MutatingTemplate rather than the mutating template itself.
func Encode(t *Template) (Spec, error) {
	brain, err := neural.EncodeTemplate(t.Brain)
	if err != nil {
		return Spec{}, fmt.Errorf("brain: %w", err)
	}

	s := Spec{Settings: t.Settings, Brain: brain}
	for i, st := range t.Sensors {
		ps, err := encodeSensor(st)
		if err != nil {
			return Spec{}, fmt.Errorf("sensor %d: %w", i, err)
		}
		s.Sensors = append(s.Sensors, ps)
	}
	for i, at := range t.Actuators {
		ps, err := encodeActuator(at)
		if err != nil {
			return Spec{}, fmt.Errorf("actuator %d: %w", i, err)
		}
		s.Actuators = append(s.Actuators, ps)
	}
	return s, nil
}

// Decode rebuilds a Template from s.
func Decode(s Spec) (*Template, error) {
	brain, err := neural.DecodeTemplate(s.Brain)
	if err != nil {
		return nil, fmt.Errorf("brain: %w", err)
	}

	t := &Template{Settings: s.Settings, Brain: brain}
	for i, ps := range s.Sensors {
		st, err := DecodeSensor(ps)
		if err != nil {
			return nil, fmt.Errorf("sensor %d: %w", i, err)
		}
		t.Sensors = append(t.Sensors, st)
	}
	for i, ps := range s.Actuators {
		at, err := DecodeActuator(ps)
		if err != nil {
			return nil, fmt.Errorf("actuator %d: %w", i, err)
		}
		t.Actuators = append(t.Actuators, at)
	}
	return t, nil
}

func encodeSensor(t SensorTemplate) (PartSpec, error) {
	switch t := t.(type) {
	case LayerSensorTemplate:
		return PartSpec{Kind: KindLayerSensor, Layer: t.Layer, DX: t.DX, DY: t.DY, Invert: t.Invert}, nil
	}
	return PartSpec{}, fmt.Errorf("%T: %w", t, neural.ErrNotSerializable)
}

func encodeActuator(t ActuatorTemplate) (PartSpec, error) {
	switch t := t.(type) {
	case MoveActuatorTemplate:
		return PartSpec{Kind: KindMoveActuator, X: t.X, Y: t.Y}, nil
	}
	return PartSpec{}, fmt.Errorf("%T: %w", t, neural.ErrNotSerializable)
}

// DecodeSensor builds a sensor template from its spec.
func DecodeSensor(ps PartSpec) (SensorTemplate, error) {
	switch ps.Kind {
	case KindLayerSensor:
		if ps.Layer == "" {
			return nil, errors.New("layer sensor needs a layer name")
		}
		return LayerSensorTemplate{Layer: ps.Layer, DX: ps.DX, DY: ps.DY, Invert: ps.Invert}, nil
	}
	return nil, fmt.Errorf("%w: sensor %q", neural.ErrUnknownKind, ps.Kind)
}

// DecodeActuator builds an actuator template from its spec.
func DecodeActuator(ps PartSpec) (ActuatorTemplate, error) {
	switch ps.Kind {
	case KindMoveActuator:
		return MoveActuatorTemplate{X: ps.X, Y: ps.Y}, nil
	}
	return nil, fmt.Errorf("%w: actuator %q", neural.ErrUnknownKind, ps.Kind)
}
