// Package inspector renders ECS components and critter brains as text.
package inspector

import (
	"io"

	"github.com/pthm-cable/critters/components"
)

// Inspector writes reports to one destination.
type Inspector struct {
	w io.Writer
}

// NewInspector creates an inspector writing to w.
func NewInspector(w io.Writer) *Inspector {
	return &Inspector{w: w}
}

// WriteComponent prints a section header followed by one line per field.
func (ins *Inspector) WriteComponent(title string, component any) error {
	p := &printer{w: ins.w}
	p.printf("== %s ==\n", title)
	for _, f := range ExtractFields(component) {
		p.printf("  %s\n", RenderField(f))
	}
	return p.err
}

// WriteOrganism prints an organism's components, its position and its
// brain.
func (ins *Inspector) WriteOrganism(org components.Organism, fit components.Fitness, lin components.Lineage) error {
	sections := []struct {
		title     string
		component any
	}{
		{"Organism", org},
		{"Fitness", fit},
		{"Lineage", lin},
	}
	for _, s := range sections {
		if err := ins.WriteComponent(s.title, s.component); err != nil {
			return err
		}
	}

	c := org.Critter
	if c == nil {
		return nil
	}
	p := &printer{w: ins.w}
	p.printf("== Body ==\n")
	p.printf("  position: (%.2f, %.2f)\n", c.X, c.Y)
	p.printf("  impetus: (%.2f, %.2f)\n", c.ImpetusX, c.ImpetusY)
	p.printf("  sensors: %d actuators: %d\n", c.SensorCount(), c.ActuatorCount())
	p.printf("== Brain ==\n")
	if p.err != nil {
		return p.err
	}
	return WriteBrain(ins.w, c.Brain())
}
