package semgraph

import (
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Graph is an immutable semantic graph.
type Graph struct {
	nodes        *arena
	out          [][]Edge
	in           [][]Edge
	customGrains []spec.TimeGrain
	// timeEntityMinGrain is the finest grain with a metric_time attribute node.
	timeEntityMinGrain spec.TimeGrain
	ruleEdges          []RuleStat
}

// RuleStat counts the edges contributed by one construction rule.
type RuleStat struct {
	Rule  string
	Edges int
}

// NodeCount returns the number of interned nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes.keys)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, edges := range g.out {
		count += len(edges)
	}
	return count
}

// Node returns the key of an interned node.
func (g *Graph) Node(id NodeID) NodeKey {
	return g.nodes.keys[id]
}

// Lookup finds the node with the given key.
func (g *Graph) Lookup(key NodeKey) (NodeID, bool) {
	return g.nodes.lookup(key)
}

// MeasureNode returns the start node of a measure.
func (g *Graph) MeasureNode(measure string) (NodeID, bool) {
	return g.nodes.lookup(measureKey(measure))
}

// MetricNode returns the start node of a cumulative metric.
func (g *Graph) MetricNode(metric string) (NodeID, bool) {
	return g.nodes.lookup(metricKey(metric))
}

// ModelNode returns the node reading a semantic model without links.
func (g *Graph) ModelNode(model string) (NodeID, bool) {
	return g.nodes.lookup(modelKey(model))
}

// TimeSpineNode returns the node seeding metric_time from the time spine.
func (g *Graph) TimeSpineNode() (NodeID, bool) {
	return g.nodes.lookup(timeSpineKey())
}

// OutEdges returns the edges leaving a node.
func (g *Graph) OutEdges(id NodeID) []Edge {
	return g.out[id]
}

// InEdges returns the edges entering a node, inverted so From is the node itself.
func (g *Graph) InEdges(id NodeID) []Edge {
	return g.in[id]
}

// TimeEntityMinGrain returns the finest grain offered for metric_time.
func (g *Graph) TimeEntityMinGrain() spec.TimeGrain {
	return g.timeEntityMinGrain
}

// RuleStats returns per-rule edge counts in construction order.
func (g *Graph) RuleStats() []RuleStat {
	return g.ruleEdges
}

func (g *Graph) addEdge(e Edge) {
	for len(g.out) < g.NodeCount() {
		g.out = append(g.out, nil)
		g.in = append(g.in, nil)
	}
	g.out[e.From] = append(g.out[e.From], e)
	g.in[e.To] = append(g.in[e.To], e.Inverse())
}
