package inspector

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pthm-cable/critters/neural"
)

// WriteBrain prints a circuit's units with their current state, its wiring
// and a topology summary. Nested circuits follow their parent, indented.
func WriteBrain(w io.Writer, c *neural.Circuit) error {
	return writeCircuit(w, c, "")
}

func writeCircuit(w io.Writer, c *neural.Circuit, indent string) error {
	p := &printer{w: w}
	top := neural.Analyze(c.ExactTemplate())
	s := c.Settings()

	p.printf("%scircuit %d: %d inputs, %d outputs, %d units, %d connections, %d pending\n",
		indent, c.ID(), s.InputCount, s.OutputCount, top.Units, top.Connections, c.Pending())

	var nested []*neural.Circuit
	if p.err == nil {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "%s  ID\tKIND\tSTATE\n", indent)
		for _, id := range c.Units() {
			u, _ := c.Unit(id)
			kind, state := describeUnit(u)
			fmt.Fprintf(tw, "%s  %d\t%s\t%s\n", indent, id, kind, state)
			if sub, ok := u.(*neural.Circuit); ok {
				nested = append(nested, sub)
			}
		}
		p.err = tw.Flush()
	}

	wiring := c.Wiring()
	for _, src := range wiring.Sources() {
		dests := wiring[src]
		parts := make([]string, len(dests))
		for i, d := range dests {
			parts[i] = d.String()
		}
		p.printf("%s  %s -> %s\n", indent, src, strings.Join(parts, " "))
	}

	if top.HasFeedback() {
		p.printf("%sfeedback: %v\n", indent, top.FeedbackLoops)
	}
	if len(top.Unreachable) > 0 {
		p.printf("%sunreachable: %v\n", indent, top.Unreachable)
	}
	if p.err != nil {
		return p.err
	}

	for _, sub := range nested {
		if err := writeCircuit(w, sub, indent+"    "); err != nil {
			return err
		}
	}
	return nil
}

// describeUnit returns a unit's kind and a short rendering of its
// accumulator state.
func describeUnit(u neural.Unit) (neural.Kind, string) {
	switch u := u.(type) {
	case *neural.SimpleUnit:
		return neural.KindSimple, fmt.Sprintf("%.3f", u.State())
	case *neural.AndUnit:
		st := u.State()
		parts := make([]string, len(st))
		for i, v := range st {
			parts[i] = fmt.Sprintf("%.3f", v)
		}
		return neural.KindAnd, "[" + strings.Join(parts, " ") + "]"
	case *neural.XorUnit:
		a, b := u.State()
		return neural.KindXor, fmt.Sprintf("[%.3f %.3f]", a, b)
	case *neural.InverterUnit:
		return neural.KindInverter, fmt.Sprintf("%.3f", u.State())
	case *neural.DiodeUnit:
		sign := "+"
		if !u.Sign() {
			sign = "-"
		}
		return neural.KindDiode, fmt.Sprintf("%s %.3f", sign, u.State())
	case *neural.Circuit:
		return neural.KindCircuit, fmt.Sprintf("pending=%d", u.Pending())
	default:
		return u.BuildTemplate().Kind(), "?"
	}
}
