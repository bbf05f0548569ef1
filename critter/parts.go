package critter

import (
	"fmt"

	"github.com/pthm-cable/critters/habitat"
)

// Sensor reads one value from the critter's surroundings.
type Sensor interface {
	Sense() float32
	BuildTemplate() SensorTemplate
}

// SensorTemplate creates a sensor bound to a host.
type SensorTemplate interface {
	Kind() string
	Create(host *Critter) (Sensor, error)
}

// Actuator turns a brain output into an effect on the host.
type Actuator interface {
	Actuate(v float32)
	BuildTemplate() ActuatorTemplate
}

// ActuatorTemplate creates an actuator bound to a host.
type ActuatorTemplate interface {
	Kind() string
	Create(host *Critter) (Actuator, error)
}

const (
	KindLayerSensor  = "layer"
	KindMoveActuator = "move"
)

// LayerSensor reads the habitat layer cell at the host's position plus a
// fixed offset.
type LayerSensor struct {
	host  *Critter
	layer *habitat.Layer
	tmpl  LayerSensorTemplate
}

func (s *LayerSensor) Sense() float32 {
	v := s.layer.At(int(s.host.X)+s.tmpl.DX, int(s.host.Y)+s.tmpl.DY)
	if s.tmpl.Invert {
		return 1 - v
	}
	return v
}

func (s *LayerSensor) BuildTemplate() SensorTemplate { return s.tmpl }

// LayerSensorTemplate creates LayerSensors. The layer is resolved when the
// sensor is created, so a missing layer fails there rather than mid-run.
type LayerSensorTemplate struct {
	Layer  string
	DX, DY int
	Invert bool
}

func (LayerSensorTemplate) Kind() string { return KindLayerSensor }

func (t LayerSensorTemplate) Create(host *Critter) (Sensor, error) {
	l, err := host.habitat.Layer(t.Layer)
	if err != nil {
		return nil, fmt.Errorf("layer sensor: %w", err)
	}
	return &LayerSensor{host: host, layer: l, tmpl: t}, nil
}

// MoveActuator adds the scaled signal to the host's impetus.
type MoveActuator struct {
	host *Critter
	tmpl MoveActuatorTemplate
}

func (a *MoveActuator) Actuate(v float32) {
	a.host.ImpetusX += v * a.tmpl.X
	a.host.ImpetusY += v * a.tmpl.Y
}

func (a *MoveActuator) BuildTemplate() ActuatorTemplate { return a.tmpl }

// MoveActuatorTemplate creates MoveActuators with per-axis multipliers.
type MoveActuatorTemplate struct {
	X, Y float32
}

func (MoveActuatorTemplate) Kind() string { return KindMoveActuator }

func (t MoveActuatorTemplate) Create(host *Critter) (Actuator, error) {
	return &MoveActuator{host: host, tmpl: t}, nil
}
