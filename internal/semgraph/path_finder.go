package semgraph

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmetrics/internal/linkable"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// DefaultMaxEntityLinks is the default bound on entity links of a found item.
const DefaultMaxEntityLinks = 2

// Path is a walk from a start node to an attribute node.
type Path struct {
	Nodes []NodeID
	Edges []Edge
}

// End returns the last node of the path.
func (p Path) End() NodeID {
	return p.Nodes[len(p.Nodes)-1]
}

// PathFinder enumerates bounded paths over a graph. Graph edges are pre-filtered
// by the join evaluator, so the search only enforces the entity link bound and
// never revisits a node already on the current path.
type PathFinder struct {
	graph          *Graph
	maxEntityLinks int
}

// NewPathFinder creates a path finder. maxEntityLinks must be >= 0.
func NewPathFinder(g *Graph, maxEntityLinks int) (*PathFinder, error) {
	if maxEntityLinks < 0 {
		return nil, fmt.Errorf("max entity links must be >= 0, got %d", maxEntityLinks)
	}
	return &PathFinder{graph: g, maxEntityLinks: maxEntityLinks}, nil
}

// MaxEntityLinks returns the entity link bound.
func (f *PathFinder) MaxEntityLinks() int {
	return f.maxEntityLinks
}

type foundPath struct {
	path   Path
	recipe recipe
}

// walk runs a depth-first search from start and calls visit for every path
// reaching an attribute node.
func (f *PathFinder) walk(start NodeID, visit func(foundPath)) {
	onPath := map[NodeID]bool{start: true}
	nodes := []NodeID{start}
	var edges []Edge

	var dfs func(id NodeID, r recipe)
	dfs = func(id NodeID, r recipe) {
		for _, e := range f.graph.OutEdges(id) {
			if onPath[e.To] {
				continue
			}
			next, ok := r.apply(e.Step)
			if !ok || next.links > f.maxEntityLinks {
				continue
			}

			nodes = append(nodes, e.To)
			edges = append(edges, e)
			onPath[e.To] = true

			if f.graph.Node(e.To).Kind.IsAttribute() {
				visit(foundPath{
					path:   Path{Nodes: append([]NodeID(nil), nodes...), Edges: append([]Edge(nil), edges...)},
					recipe: next,
				})
			} else {
				dfs(e.To, next)
			}

			onPath[e.To] = false
			nodes = nodes[:len(nodes)-1]
			edges = edges[:len(edges)-1]
		}
	}
	dfs(start, recipe{})
}

// FindPaths returns every bounded path from start to an attribute node.
func (f *PathFinder) FindPaths(start NodeID) []Path {
	var paths []Path
	f.walk(start, func(fp foundPath) { paths = append(paths, fp.path) })
	return paths
}

// LinkableSet folds every path from start into the set of items reachable from it.
// Items reached by several paths are merged.
func (f *PathFinder) LinkableSet(start NodeID) linkable.Set {
	b := linkable.NewBuilder()
	f.walk(start, func(fp foundPath) {
		for _, item := range f.itemsOf(fp) {
			b.Add(item)
		}
	})
	return b.Build()
}

// Describe renders a path for diagnostics, e.g. "measure(bookings) -> model(bookings_source) -> ...".
func (g *Graph) Describe(p Path) string {
	parts := make([]string, len(p.Nodes))
	for i, id := range p.Nodes {
		parts[i] = g.Node(id).String()
	}
	return strings.Join(parts, " -> ")
}

// itemsOf returns the items a single path yields.
func (f *PathFinder) itemsOf(fp foundPath) []spec.AnnotatedSpec {
	return fp.recipe.emit(f.graph.Node(fp.path.End()), f.graph.customGrains)
}
