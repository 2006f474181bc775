// Package support derives the rests-on graph of a placement record:
// which placements carry which, down to the container floor.
//
// The graph is acyclic by construction. A supporter's top face is
// level with the bottom of what it carries, and its own bottom lies
// strictly below, so no chain of rests-on edges can return to its
// starting placement.
package support

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/cratestack/pkg/pack"
)

// FloorID is the synthetic node representing the container floor.
const FloorID = "floor"

// ErrUnsupportedPlacement is returned by [Graph.Validate] when a
// placement has no support chain reaching the floor.
var ErrUnsupportedPlacement = errors.New("placement has no support path to the floor")

// Edge records that From rests on To.
type Edge struct {
	From string
	To   string
}

// Graph is the rests-on relation of a finished record.
// It is immutable after Build and not safe to build concurrently with
// record mutation.
type Graph struct {
	order      []string            // placement IDs in commit order
	supporters map[string][]string // id -> what it rests on
	supported  map[string][]string // id -> what rests on it
	edges      []Edge
}

// Build derives the graph from a record. A placement rests on the
// floor when its bottom is within tolerance of z=0, and otherwise on
// every placement whose top face is level with its bottom and whose
// footprint overlaps its own. Supporters appear in commit order, so
// the graph is deterministic for a deterministic record.
func Build(rec *pack.Record) *Graph {
	eps := rec.Params.Epsilon
	if eps <= 0 {
		eps = pack.DefaultEpsilon
	}

	g := &Graph{
		supporters: make(map[string][]string, len(rec.Placements)),
		supported:  make(map[string][]string, len(rec.Placements)),
	}

	for _, p := range rec.Placements {
		g.order = append(g.order, p.ID)
		box := p.Box()

		if box.Min.Z <= eps {
			g.addEdge(p.ID, FloorID)
			continue
		}

		for _, q := range rec.Placements {
			if q.ID == p.ID {
				continue
			}
			qb := q.Box()
			if qb.Top() < box.Min.Z-eps || qb.Top() > box.Min.Z+eps {
				continue
			}
			if qb.Footprint().Intersect(box.Footprint()).Area() > 0 {
				g.addEdge(p.ID, q.ID)
			}
		}
	}
	return g
}

func (g *Graph) addEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.supporters[from] = append(g.supporters[from], to)
	g.supported[to] = append(g.supported[to], from)
}

// Nodes returns the floor followed by the placement IDs in commit
// order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.order)+1)
	nodes = append(nodes, FloorID)
	return append(nodes, g.order...)
}

// Edges returns a copy of all rests-on edges, grouped by the resting
// placement in commit order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes including the floor.
func (g *Graph) NodeCount() int { return len(g.order) + 1 }

// EdgeCount returns the number of rests-on edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Supporters returns the IDs the given placement rests on.
// The returned slice should not be modified.
func (g *Graph) Supporters(id string) []string { return g.supporters[id] }

// Supported returns the IDs resting on the given placement (or floor).
// The returned slice should not be modified.
func (g *Graph) Supported(id string) []string { return g.supported[id] }

// Levels assigns each node its stacking level: the floor is 0 and
// every placement sits one above its highest supporter.
func (g *Graph) Levels() map[string]int {
	levels := map[string]int{FloorID: 0}

	var level func(id string) int
	level = func(id string) int {
		if l, ok := levels[id]; ok {
			return l
		}
		highest := 0
		for _, s := range g.supporters[id] {
			if l := level(s) + 1; l > highest {
				highest = l
			}
		}
		levels[id] = highest
		return highest
	}

	for _, id := range g.order {
		level(id)
	}
	return levels
}

// Validate checks that every placement has a support chain reaching
// the floor. A record that passes engine verification always yields a
// valid graph; hand-edited records may not.
func (g *Graph) Validate() error {
	reach := map[string]bool{FloorID: true}

	var reachable func(id string) bool
	reachable = func(id string) bool {
		if r, ok := reach[id]; ok {
			return r
		}
		reach[id] = false
		for _, s := range g.supporters[id] {
			if reachable(s) {
				reach[id] = true
				break
			}
		}
		return reach[id]
	}

	for _, id := range g.order {
		if !reachable(id) {
			return fmt.Errorf("%w: %q", ErrUnsupportedPlacement, id)
		}
	}
	return nil
}
