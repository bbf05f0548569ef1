// Package neural implements recurrent circuits of discrete logic-like units.
//
// A Circuit owns a table of units, a wiring map from output ports to input
// ports, and a FIFO signal queue. Units emit signals back into the queue of
// the circuit that owns them; Think drains the queue. A Circuit is itself a
// Unit, so circuits nest.
package neural

import "fmt"

// Index addresses one port of one unit. It is used both for output ports
// (wiring keys, queued signals) and input ports (wiring destinations).
type Index struct {
	Unit int `json:"unit" yaml:"unit"`
	Port int `json:"port" yaml:"port"`
}

// String implements fmt.Stringer.
func (i Index) String() string {
	return fmt.Sprintf("%d:%d", i.Unit, i.Port)
}

// less orders indices by unit then port.
func (i Index) less(o Index) bool {
	if i.Unit != o.Unit {
		return i.Unit < o.Unit
	}
	return i.Port < o.Port
}

// Signal is a value travelling to a port.
type Signal struct {
	Value float32
	Dest  Index
}

// NewSignal creates a signal addressed to (unit, port).
func NewSignal(value float32, unit, port int) Signal {
	return Signal{Value: value, Dest: Index{Unit: unit, Port: port}}
}

// OutputFunc receives every signal a unit emits.
// A nil OutputFunc detaches the unit: emissions are dropped.
type OutputFunc func(Signal)
