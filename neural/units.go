package neural

import (
	"fmt"
	"math/rand"
)

// fireThreshold is the accumulator magnitude a leaf unit must pass to emit.
const fireThreshold float32 = 1

// leaf holds what every leaf variant shares.
type leaf struct {
	id  int
	out OutputFunc
}

func (l *leaf) ID() int { return l.id }

// emit sends value out of port 0. Detached units drop it.
func (l *leaf) emit(value float32) {
	if l.out != nil {
		l.out(NewSignal(value, l.id, 0))
	}
}

// SimpleUnit integrates its input and fires once the sum exceeds 1.
type SimpleUnit struct {
	leaf
	state float32
}

// NewSimpleUnit creates a simple unit.
func NewSimpleUnit(id int, out OutputFunc) *SimpleUnit {
	return &SimpleUnit{leaf: leaf{id: id, out: out}}
}

func (u *SimpleUnit) InputCount() int  { return 1 }
func (u *SimpleUnit) OutputCount() int { return 1 }

// State returns the accumulator.
func (u *SimpleUnit) State() float32 { return u.state }

func (u *SimpleUnit) Input(sig Signal) {
	u.state += sig.Value
	if u.state > fireThreshold {
		u.emit(u.state)
		u.state = 0
	}
}

func (u *SimpleUnit) Reset() { u.state = 0 }

func (u *SimpleUnit) BuildTemplate() Template { return SimpleTemplate{} }

// SimpleTemplate creates SimpleUnits.
type SimpleTemplate struct{}

func (SimpleTemplate) Kind() Kind { return KindSimple }

func (SimpleTemplate) Create(_ *rand.Rand, id int, out OutputFunc) Unit {
	return NewSimpleUnit(id, out)
}

// AndUnit keeps one accumulator per input port and fires only when every
// accumulator has reached magnitude 1 with the sign of the incoming signal.
type AndUnit struct {
	leaf
	state []float32
}

// NewAndUnit creates an AND unit with the given arity.
// Arity is validated by NewAndTemplate; callers constructing units directly
// must pass at least 2.
func NewAndUnit(id int, out OutputFunc, arity int) *AndUnit {
	return &AndUnit{leaf: leaf{id: id, out: out}, state: make([]float32, arity)}
}

func (u *AndUnit) InputCount() int  { return len(u.state) }
func (u *AndUnit) OutputCount() int { return 1 }

// State returns a copy of the per-port accumulators.
func (u *AndUnit) State() []float32 {
	s := make([]float32, len(u.state))
	copy(s, u.state)
	return s
}

func (u *AndUnit) Input(sig Signal) {
	u.state[sig.Dest.Port] += sig.Value

	positive := sig.Value > 0
	var sum float32
	for _, s := range u.state {
		if (s > 0) != positive || (s < fireThreshold && s > -fireThreshold) {
			return
		}
		sum += s
	}

	u.emit(sum)
	clear(u.state)
}

func (u *AndUnit) Reset() { clear(u.state) }

func (u *AndUnit) BuildTemplate() Template { return AndTemplate{arity: len(u.state)} }

// AndTemplate creates AndUnits of a fixed arity.
type AndTemplate struct {
	arity int
}

// NewAndTemplate returns an AND template. Arity must be at least 2.
func NewAndTemplate(arity int) (AndTemplate, error) {
	if arity < 2 {
		return AndTemplate{}, fmt.Errorf("and arity %d: %w", arity, ErrUnsupportedUnit)
	}
	return AndTemplate{arity: arity}, nil
}

// MustAndTemplate is like NewAndTemplate but panics on error.
func MustAndTemplate(arity int) AndTemplate {
	t, err := NewAndTemplate(arity)
	if err != nil {
		panic(err)
	}
	return t
}

// Arity returns the number of input ports.
func (t AndTemplate) Arity() int { return t.arity }

func (AndTemplate) Kind() Kind { return KindAnd }

func (t AndTemplate) Create(_ *rand.Rand, id int, out OutputFunc) Unit {
	return NewAndUnit(id, out, t.arity)
}

// XorUnit fires when its two accumulators sit at opposite extremes:
// one below -1 and the other above +1. It emits state0 - state1.
type XorUnit struct {
	leaf
	state0, state1 float32
}

// NewXorUnit creates an XOR unit.
func NewXorUnit(id int, out OutputFunc) *XorUnit {
	return &XorUnit{leaf: leaf{id: id, out: out}}
}

func (u *XorUnit) InputCount() int  { return 2 }
func (u *XorUnit) OutputCount() int { return 1 }

// State returns both accumulators.
func (u *XorUnit) State() (float32, float32) { return u.state0, u.state1 }

func (u *XorUnit) Input(sig Signal) {
	if sig.Dest.Port == 0 {
		u.state0 += sig.Value
	} else {
		u.state1 += sig.Value
	}

	if (u.state0 < -fireThreshold && fireThreshold < u.state1) ||
		(u.state1 < -fireThreshold && fireThreshold < u.state0) {
		u.emit(u.state0 - u.state1)
		u.state0, u.state1 = 0, 0
	}
}

func (u *XorUnit) Reset() { u.state0, u.state1 = 0, 0 }

func (u *XorUnit) BuildTemplate() Template { return XorTemplate{} }

// XorTemplate creates XorUnits.
type XorTemplate struct{}

func (XorTemplate) Kind() Kind { return KindXor }

func (XorTemplate) Create(_ *rand.Rand, id int, out OutputFunc) Unit {
	return NewXorUnit(id, out)
}

// InverterUnit fires the negated accumulator once its magnitude exceeds 1.
type InverterUnit struct {
	leaf
	state float32
}

// NewInverterUnit creates an inverter.
func NewInverterUnit(id int, out OutputFunc) *InverterUnit {
	return &InverterUnit{leaf: leaf{id: id, out: out}}
}

func (u *InverterUnit) InputCount() int  { return 1 }
func (u *InverterUnit) OutputCount() int { return 1 }

// State returns the accumulator.
func (u *InverterUnit) State() float32 { return u.state }

func (u *InverterUnit) Input(sig Signal) {
	u.state += sig.Value
	if u.state < -fireThreshold || fireThreshold < u.state {
		u.emit(-u.state)
		u.state = 0
	}
}

func (u *InverterUnit) Reset() { u.state = 0 }

func (u *InverterUnit) BuildTemplate() Template { return InverterTemplate{} }

// InverterTemplate creates InverterUnits.
type InverterTemplate struct{}

func (InverterTemplate) Kind() Kind { return KindInverter }

func (InverterTemplate) Create(_ *rand.Rand, id int, out OutputFunc) Unit {
	return NewInverterUnit(id, out)
}

// DiodeUnit only accumulates signals whose sign matches its own
// (true = positive). It fires the accumulator unnegated once its
// magnitude exceeds 1.
type DiodeUnit struct {
	leaf
	sign  bool
	state float32
}

// NewDiodeUnit creates a diode.
func NewDiodeUnit(id int, out OutputFunc, sign bool) *DiodeUnit {
	return &DiodeUnit{leaf: leaf{id: id, out: out}, sign: sign}
}

func (u *DiodeUnit) InputCount() int  { return 1 }
func (u *DiodeUnit) OutputCount() int { return 1 }

// Sign reports the polarity the diode passes.
func (u *DiodeUnit) Sign() bool { return u.sign }

// State returns the accumulator.
func (u *DiodeUnit) State() float32 { return u.state }

func (u *DiodeUnit) Input(sig Signal) {
	if (sig.Value > 0) != u.sign {
		return
	}

	u.state += sig.Value
	if u.state < -fireThreshold || fireThreshold < u.state {
		u.emit(u.state)
		u.state = 0
	}
}

func (u *DiodeUnit) Reset() { u.state = 0 }

func (u *DiodeUnit) BuildTemplate() Template { return DiodeTemplate{Sign: u.sign} }

// DiodeTemplate creates DiodeUnits of one polarity.
type DiodeTemplate struct {
	Sign bool
}

func (DiodeTemplate) Kind() Kind { return KindDiode }

func (t DiodeTemplate) Create(_ *rand.Rand, id int, out OutputFunc) Unit {
	return NewDiodeUnit(id, out, t.Sign)
}
