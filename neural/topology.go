package neural

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Topology summarises the unit-level graph of one circuit. Nested circuits
// count as single units.
type Topology struct {
	Units       int
	Connections int
	Kinds       map[Kind]int

	// FeedbackLoops lists the unit ids of every cycle: strongly connected
	// components of two or more units, and units wired to themselves.
	FeedbackLoops [][]int

	// Unreachable lists units no boundary input can reach.
	Unreachable []int
}

// HasFeedback reports whether the circuit contains a cycle.
func (t Topology) HasFeedback() bool { return len(t.FeedbackLoops) > 0 }

// Analyze builds the unit graph of t. Boundary inputs and outputs become
// two separate graph nodes so the boundary never closes a cycle.
func Analyze(t *ExactTemplate) Topology {
	ids := t.UnitIDs()
	top := Topology{
		Units:       len(ids),
		Connections: t.wiring.Connections(),
		Kinds:       make(map[Kind]int),
	}
	for _, id := range ids {
		top.Kinds[t.units[id].Kind()]++
	}

	maxID := t.id
	if len(ids) > 0 && ids[len(ids)-1] > maxID {
		maxID = ids[len(ids)-1]
	}
	boundaryIn := simple.Node(int64(maxID) + 1)
	boundaryOut := simple.Node(int64(maxID) + 2)

	g := simple.NewDirectedGraph()
	g.AddNode(boundaryIn)
	g.AddNode(boundaryOut)
	for _, id := range ids {
		g.AddNode(simple.Node(int64(id)))
	}

	selfLoops := make(map[int]bool)
	for _, src := range t.wiring.Sources() {
		var from graph.Node = simple.Node(int64(src.Unit))
		if src.Unit == t.id {
			from = boundaryIn
		}
		for _, dst := range t.wiring[src] {
			var to graph.Node = simple.Node(int64(dst.Unit))
			if dst.Unit == t.id {
				to = boundaryOut
			}
			// simple graphs reject self edges.
			if from.ID() == to.ID() {
				selfLoops[dst.Unit] = true
				continue
			}
			g.SetEdge(g.NewEdge(from, to))
		}
	}

	inLoop := make(map[int]bool)
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		loop := make([]int, len(scc))
		for i, n := range scc {
			loop[i] = int(n.ID())
			inLoop[loop[i]] = true
		}
		slices.Sort(loop)
		top.FeedbackLoops = append(top.FeedbackLoops, loop)
	}
	for id := range selfLoops {
		if !inLoop[id] {
			top.FeedbackLoops = append(top.FeedbackLoops, []int{id})
		}
	}
	slices.SortFunc(top.FeedbackLoops, func(a, b []int) int { return a[0] - b[0] })

	reached := make(map[int64]bool)
	bfs := traverse.BreadthFirst{
		Visit: func(n graph.Node) { reached[n.ID()] = true },
	}
	bfs.Walk(g, boundaryIn, nil)
	for _, id := range ids {
		if !reached[int64(id)] {
			top.Unreachable = append(top.Unreachable, id)
		}
	}

	return top
}
