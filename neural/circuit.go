package neural

import (
	"fmt"
	"maps"
	"math/rand"
	"slices"
)

// Settings fixes the boundary shape of a circuit.
type Settings struct {
	InputCount                  int `json:"input_count" yaml:"input_count"`
	OutputCount                 int `json:"output_count" yaml:"output_count"`
	InitialConnectionsPerOutput int `json:"initial_connections_per_output" yaml:"initial_connections_per_output"`

	// NestedThinkCap bounds how many signals a circuit dispatches each time
	// its parent delivers a signal to it. The parent's remaining Think budget
	// always applies as well (0 = only the parent budget).
	NestedThinkCap int `json:"nested_think_cap,omitempty" yaml:"nested_think_cap"`
}

// Validate checks that all counts are non-negative.
func (s Settings) Validate() error {
	if s.InputCount < 0 || s.OutputCount < 0 || s.InitialConnectionsPerOutput < 0 || s.NestedThinkCap < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidSettings, s)
	}
	return nil
}

// Wiring maps each output port to the input ports it broadcasts to.
type Wiring map[Index][]Index

// Clone returns a deep copy.
func (w Wiring) Clone() Wiring {
	c := make(Wiring, len(w))
	for k, v := range w {
		c[k] = slices.Clone(v)
	}
	return c
}

// Sources returns the wiring keys in (unit, port) order.
func (w Wiring) Sources() []Index {
	keys := slices.Collect(maps.Keys(w))
	slices.SortFunc(keys, func(a, b Index) int {
		switch {
		case a.less(b):
			return -1
		case b.less(a):
			return 1
		}
		return 0
	})
	return keys
}

// Connections counts every (source, destination) pair.
func (w Wiring) Connections() int {
	n := 0
	for _, dests := range w {
		n += len(dests)
	}
	return n
}

// Circuit is a network of units. Its own id addresses its boundary ports:
// (id, p) is boundary input p when used as a wiring source and boundary
// output p when used as a wiring destination.
//
// A Circuit is not safe for concurrent use. Independent circuits may be
// driven from different goroutines.
type Circuit struct {
	id       int
	settings Settings
	units    map[int]Unit
	order    []int
	wiring   Wiring
	queue    signalQueue
	out      OutputFunc
}

// NewCircuit builds a circuit with fresh random wiring. Units are created
// from templates in order and receive ids 0..n-1, skipping id. Every output
// port is then connected to settings.InitialConnectionsPerOutput input
// ports drawn uniformly, with replacement, from all input ports.
func NewCircuit(rng *rand.Rand, id int, out OutputFunc, settings Settings, templates ...Template) (*Circuit, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	c := &Circuit{
		id:       id,
		settings: settings,
		units:    make(map[int]Unit, len(templates)),
		out:      out,
	}

	nextID := 0
	for _, t := range templates {
		if nextID == id {
			nextID++
		}
		c.units[nextID] = t.Create(rng, nextID, c.Input)
		c.order = append(c.order, nextID)
		nextID++
	}

	var inputs, outputs []Index
	for _, uid := range c.order {
		u := c.units[uid]
		for p := 0; p < u.InputCount(); p++ {
			inputs = append(inputs, Index{Unit: uid, Port: p})
		}
		for p := 0; p < u.OutputCount(); p++ {
			outputs = append(outputs, Index{Unit: uid, Port: p})
		}
	}
	for p := 0; p < settings.OutputCount; p++ {
		inputs = append(inputs, Index{Unit: id, Port: p})
	}
	for p := 0; p < settings.InputCount; p++ {
		outputs = append(outputs, Index{Unit: id, Port: p})
	}

	c.wiring = make(Wiring, len(outputs))
	k := settings.InitialConnectionsPerOutput
	if k == 0 || len(inputs) == 0 {
		return c, nil
	}
	for _, src := range outputs {
		dests := make([]Index, k)
		for j := range dests {
			dests[j] = inputs[rng.Intn(len(inputs))]
		}
		c.wiring[src] = dests
	}

	return c, nil
}

// newExactCircuit rebuilds a circuit from units and wiring already expressed
// in terms of id. The caller guarantees no unit key equals id.
func newExactCircuit(rng *rand.Rand, id int, out OutputFunc, settings Settings, units map[int]Template, wiring Wiring) *Circuit {
	if _, clash := units[id]; clash {
		panic(fmt.Sprintf("neural: circuit id %d collides with a unit id", id))
	}

	c := &Circuit{
		id:       id,
		settings: settings,
		units:    make(map[int]Unit, len(units)),
		order:    slices.Sorted(maps.Keys(units)),
		wiring:   wiring,
		out:      out,
	}
	for _, uid := range c.order {
		c.units[uid] = units[uid].Create(rng, uid, c.Input)
	}
	return c
}

func (c *Circuit) ID() int            { return c.id }
func (c *Circuit) InputCount() int    { return c.settings.InputCount }
func (c *Circuit) OutputCount() int   { return c.settings.OutputCount }
func (c *Circuit) Settings() Settings { return c.settings }

// Units returns unit ids in ascending order.
func (c *Circuit) Units() []int { return slices.Clone(c.order) }

// Unit returns the unit with the given id.
func (c *Circuit) Unit(id int) (Unit, bool) {
	u, ok := c.units[id]
	return u, ok
}

// Wiring returns a copy of the wiring map.
func (c *Circuit) Wiring() Wiring { return c.wiring.Clone() }

// Pending returns the number of queued signals.
func (c *Circuit) Pending() int { return c.queue.Len() }

// Input queues a signal addressed to an output port: either a unit's output
// or, for (c.ID(), p), boundary input p.
func (c *Circuit) Input(sig Signal) {
	c.queue.Push(sig)
}

// Think dispatches queued signals oldest first until the queue is empty or
// maxSignals signals have been dispatched, and returns the dispatch count.
// Signals dispatched inside nested circuits count against the same
// maxSignals. maxSignals <= 0 drains the queue. Feedback loops are legal and
// nothing breaks them: a loop whose traffic grows on every pass never
// drains, so callers that cannot rule that out must pass a positive cap.
func (c *Circuit) Think(maxSignals int) int {
	if maxSignals <= 0 {
		return c.think(-1)
	}
	return c.think(maxSignals)
}

// think dispatches at most budget signals, nested ones included.
// A negative budget is unlimited.
func (c *Circuit) think(budget int) int {
	n := 0
	for budget < 0 || n < budget {
		if c.queue.Len() > 0 {
			n++
			n += c.dispatch(c.queue.Pop(), remaining(budget, n))
			continue
		}
		m := c.settle(remaining(budget, n))
		if m == 0 {
			break
		}
		n += m
	}
	return n
}

// dispatch splits a signal evenly across the ports its source is wired to
// and returns how many signals nested circuits dispatched as a result.
func (c *Circuit) dispatch(sig Signal, budget int) int {
	dests := c.wiring[sig.Dest]
	if len(dests) == 0 {
		return 0
	}

	n := 0
	share := sig.Value / float32(len(dests))
	for _, d := range dests {
		s := Signal{Value: share, Dest: d}
		if d.Unit == c.id {
			if c.out != nil {
				c.out(s)
			}
			continue
		}

		u, ok := c.units[d.Unit]
		if !ok {
			panic(fmt.Sprintf("neural: circuit %d wires %s to missing unit %d", c.id, sig.Dest, d.Unit))
		}
		u.Input(s)
		if nested, ok := u.(*Circuit); ok {
			n += nested.think(nested.allowance(remaining(budget, n)))
		}
	}
	return n
}

// settle runs nested circuits that still hold signals once the parent's
// own queue is empty.
func (c *Circuit) settle(budget int) int {
	n := 0
	for _, uid := range c.order {
		nested, ok := c.units[uid].(*Circuit)
		if !ok || !nested.busy() {
			continue
		}
		left := remaining(budget, n)
		if left == 0 {
			break
		}
		n += nested.think(nested.allowance(left))
	}
	return n
}

// busy reports whether c or any circuit nested in it has queued signals.
func (c *Circuit) busy() bool {
	if c.queue.Len() > 0 {
		return true
	}
	for _, u := range c.units {
		if nested, ok := u.(*Circuit); ok && nested.busy() {
			return true
		}
	}
	return false
}

// allowance narrows the parent's remaining budget to NestedThinkCap.
func (c *Circuit) allowance(budget int) int {
	limit := c.settings.NestedThinkCap
	if limit <= 0 || (budget >= 0 && budget < limit) {
		return budget
	}
	return limit
}

func remaining(budget, used int) int {
	if budget < 0 {
		return -1
	}
	return max(budget-used, 0)
}

// Reset clears every unit's state and empties the queue.
// Wiring and ids are untouched.
func (c *Circuit) Reset() {
	for _, u := range c.units {
		u.Reset()
	}
	c.queue.Clear()
}

// BuildTemplate implements Unit.
func (c *Circuit) BuildTemplate() Template { return c.ExactTemplate() }

// ExactTemplate snapshots the circuit's structure.
func (c *Circuit) ExactTemplate() *ExactTemplate {
	units := make(map[int]Template, len(c.units))
	for uid, u := range c.units {
		units[uid] = u.BuildTemplate()
	}
	return &ExactTemplate{
		id:       c.id,
		settings: c.settings,
		units:    units,
		wiring:   c.wiring.Clone(),
	}
}
