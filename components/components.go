// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/critters/critter"

// Organism binds an entity to its critter.
type Organism struct {
	ID       uint32           `inspect:"label"`
	Critter  *critter.Critter `inspect:"skip"`
	ParentID uint32           `inspect:"label"` // 0 for founders
	Mutant   bool             `inspect:"bool"`  // created by the mutator rather than copied
}

// Fitness accumulates an organism's score over one run.
type Fitness struct {
	Score float32 `inspect:"bar,max:50"`
	Ticks int32   `inspect:"label"`
}

// Lineage tracks where an organism came from.
type Lineage struct {
	Generation int    `inspect:"label"`
	Founder    uint32 `inspect:"label"` // founder ID, inherited unchanged
}
