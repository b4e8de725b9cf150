// Package ggraph implements the grammar graph and its minimum-derivation-
// depth solver (spec.md §3, §4.1). Vertices live in a flat arena keyed by
// stable string id, following internal/ictiobus/automaton's stable-named-
// state convention and internal/ictiobus/translation's pointer-edge
// DirectedGraph -- adapted here to a map-backed arena since vertices are
// looked up by id far more often than walked by pointer.
package ggraph

import (
	"math"

	"github.com/dekarrin/grammarinator/internal/gerrors"
)

// Kind tags what a Vertex represents.
type Kind int

const (
	KindRule Kind = iota
	KindAlternation
	KindAlternative
	KindQuantifier
)

// Vertex is one node of the grammar graph.
type Vertex struct {
	ID   string
	Kind Kind

	// Out holds the ids of vertices this one has an edge to (contains/may
	// invoke).
	Out []string
}

// Graph is the grammar graph: a flat arena of vertices, addressed by id.
// The zero value is ready to use.
type Graph struct {
	vertices map[string]*Vertex
	order    []string // insertion order, for deterministic iteration
}

// AddVertex registers a new vertex. It is an internal error to add a vertex
// whose id already exists.
func (g *Graph) AddVertex(id string, kind Kind) error {
	if g.vertices == nil {
		g.vertices = make(map[string]*Vertex)
	}
	if _, exists := g.vertices[id]; exists {
		return gerrors.Newf(gerrors.KindInternal, "ggraph: vertex %q already exists", id)
	}
	g.vertices[id] = &Vertex{ID: id, Kind: kind}
	g.order = append(g.order, id)
	return nil
}

// AddEdge adds an edge from frm to to. Both endpoints must already exist.
func (g *Graph) AddEdge(frm, to string) error {
	from, ok := g.vertices[frm]
	if !ok {
		return gerrors.Newf(gerrors.KindInternal, "ggraph: edge source %q not in graph", frm)
	}
	if _, ok := g.vertices[to]; !ok {
		return gerrors.Newf(gerrors.KindInternal, "ggraph: edge target %q not in graph", to)
	}
	from.Out = append(from.Out, to)
	return nil
}

// Vertex returns the vertex with the given id, or nil if none exists.
func (g *Graph) Vertex(id string) *Vertex {
	return g.vertices[id]
}

// Len returns the number of vertices in the graph.
func (g *Graph) Len() int {
	return len(g.vertices)
}

// Ids returns every vertex id, in the order they were added.
func (g *Graph) Ids() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// DepthResult holds the solver's output for every non-Alternative vertex: a
// Rule or Quantifier vertex maps to a single scalar depth, and an
// Alternation vertex maps to the per-alternative vector of its Alternative
// children's depths, in edge declaration order. Alternative vertices
// themselves do not appear in the result -- their depth is folded into
// their parent Alternation's vector.
type DepthResult struct {
	Scalar map[string]int
	Vector map[string][]int
}

// Solve runs the classical worklist/iterative fixed point described in
// spec.md §4.1: initialize every vertex to +inf, repeatedly rescan until a
// full pass makes no change. The update is monotone non-increasing and
// bounded below by 0, so convergence is guaranteed.
//
// After convergence, every Rule vertex must have a finite depth; if one
// doesn't, the grammar contains an unreachable or infinitely-recursive rule
// and Solve returns an IllFormedGrammar error naming it.
func (g *Graph) Solve() (*DepthResult, error) {
	const inf = math.MaxInt32

	depth := make(map[string]int, len(g.vertices))
	for _, id := range g.order {
		depth[id] = inf
	}

	changed := true
	for changed {
		changed = false
		for _, id := range g.order {
			v := g.vertices[id]

			var next int
			if v.Kind == KindAlternation {
				next = minOverEdges(v, depth, inf)
			} else {
				next = maxOverEdges(v, g, depth, inf)
			}

			if next < depth[id] {
				depth[id] = next
				changed = true
			}
		}
	}

	result := &DepthResult{
		Scalar: make(map[string]int),
		Vector: make(map[string][]int),
	}

	for _, id := range g.order {
		v := g.vertices[id]
		switch v.Kind {
		case KindAlternation:
			vec := make([]int, 0, len(v.Out))
			for _, childID := range v.Out {
				d := depth[childID]
				if d >= inf {
					return nil, gerrors.Newf(gerrors.KindIllFormed, "alternation %q has an alternative that is not reachable", id)
				}
				vec = append(vec, d)
			}
			result.Vector[id] = vec
		case KindAlternative:
			// folded into the parent Alternation's vector; dropped from
			// the result per spec.md §4.1.
		default:
			if depth[id] >= inf {
				if v.Kind == KindRule {
					return nil, gerrors.Newf(gerrors.KindIllFormed, "rule %q has infinite derivation depth (unreachable or infinitely recursive)", id)
				}
				return nil, gerrors.Newf(gerrors.KindIllFormed, "vertex %q has infinite derivation depth", id)
			}
			result.Scalar[id] = depth[id]
		}
	}

	return result, nil
}

// minOverEdges computes an Alternation's depth: the minimum over its
// outgoing Alternative edges, or inf for an Alternation with no
// alternatives.
func minOverEdges(v *Vertex, depth map[string]int, inf int) int {
	min := inf
	for _, id := range v.Out {
		if depth[id] < min {
			min = depth[id]
		}
	}
	return min
}

// maxOverEdges computes a non-Alternation vertex's depth: the maximum over
// outgoing edges of (child depth + 1 if the child is a Rule, else child
// depth as-is), excluding Quantifier children entirely.
func maxOverEdges(v *Vertex, g *Graph, depth map[string]int, inf int) int {
	max := 0
	any := false
	for _, id := range v.Out {
		child := g.vertices[id]
		if child != nil && child.Kind == KindQuantifier {
			continue
		}
		any = true

		d := depth[id]
		if d < inf && child != nil && child.Kind == KindRule {
			d = d + 1
		}
		if d > max {
			max = d
		}
	}
	if !any {
		return 0
	}
	return max
}
