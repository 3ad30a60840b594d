package resolver

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapmetrics/internal/dag"
	"github.com/leapstack-labs/leapmetrics/internal/manifest"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// NodeKind is the closed set of resolution DAG node variants.
type NodeKind int

// Node kinds.
const (
	// NodeQuery is the root: the intersection of every requested metric.
	NodeQuery NodeKind = iota
	// NodeMetric is a metric, either requested or an input of another metric.
	NodeMetric
	// NodeMeasureSource is a measure read by a metric.
	NodeMeasureSource
	// NodeNoMetricsSource supplies items for a query without metrics.
	NodeNoMetricsSource
)

func (k NodeKind) String() string {
	switch k {
	case NodeQuery:
		return "Query"
	case NodeMetric:
		return "Metric"
	case NodeMeasureSource:
		return "MeasureSource"
	case NodeNoMetricsSource:
		return "NoMetricsQuerySource"
	default:
		return "Unknown"
	}
}

// Node is a resolution DAG node. Nodes are built per query and never shared.
type Node struct {
	ID   string
	Kind NodeKind
	// Name is the metric or measure name; empty for the query and no-metrics nodes.
	Name string
	// Metric is set on metric nodes.
	Metric *core.Metric
	// Input is set on metric nodes that are inputs of ratio or derived metrics.
	Input *core.MetricInput
	// Filters are where-filter templates applied at this node.
	Filters []string
	Path    ResolutionPath
	inputs  []*Node
}

// Inputs returns the child nodes in definition order.
func (n *Node) Inputs() []*Node {
	return n.inputs
}

// ResolutionDAG is the per-query tree of metric and measure nodes.
type ResolutionDAG struct {
	graph *dag.Graph[*Node]
	root  *Node
	order []*Node
}

// Root returns the query node.
func (d *ResolutionDAG) Root() *Node {
	return d.root
}

// Node returns a node by ID.
func (d *ResolutionDAG) Node(id string) (*Node, bool) {
	n, ok := d.graph.GetNode(id)
	if !ok {
		return nil, false
	}
	return n.Data, true
}

// Nodes returns every node, inputs before the nodes that read them.
func (d *ResolutionDAG) Nodes() []*Node {
	return d.order
}

// NodeCount returns the number of nodes.
func (d *ResolutionDAG) NodeCount() int {
	return d.graph.NodeCount()
}

// dagBuilder assembles a ResolutionDAG from metric names.
type dagBuilder struct {
	idx   *manifest.Index
	graph *dag.Graph[*Node]
}

// buildDAG creates the resolution DAG for the requested metrics. A query without
// metrics reads from the no-metrics source. Unknown metric names are collected
// into the returned error list.
func buildDAG(idx *manifest.Index, metrics []string, where []string) (*ResolutionDAG, []error) {
	b := &dagBuilder{idx: idx, graph: dag.NewGraph[*Node]()}
	root := &Node{
		ID:      "query",
		Kind:    NodeQuery,
		Filters: where,
		Path:    ResolutionPath{{Kind: NodeQuery}},
	}
	b.graph.AddNode(root.ID, root)

	var errs []error
	if len(metrics) == 0 {
		src := &Node{
			ID:   root.ID + "/no_metrics",
			Kind: NodeNoMetricsSource,
			Path: root.Path.Append(NodeNoMetricsSource, ""),
		}
		b.link(root, src)
	}
	for i, name := range metrics {
		metric, ok := idx.Metric(name)
		if !ok {
			errs = append(errs, &UnknownMetricError{Name: name, Suggestions: suggestSimilar(name, idx.MetricNames())})
			continue
		}
		if err := b.addMetric(root, i, metric, nil); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	sorted, err := b.graph.TopologicalSort()
	if err != nil {
		return nil, []error{err}
	}
	order := make([]*Node, len(sorted))
	for i, n := range sorted {
		order[len(sorted)-1-i] = n.Data
	}
	return &ResolutionDAG{graph: b.graph, root: root, order: order}, nil
}

func (b *dagBuilder) link(parent, child *Node) {
	b.graph.AddNode(child.ID, child)
	// Node IDs extend their parent's, so the tree has no cycles.
	_ = b.graph.AddEdge(parent.ID, child.ID)
	parent.inputs = append(parent.inputs, child)
}

func (b *dagBuilder) addMetric(parent *Node, pos int, metric *core.Metric, input *core.MetricInput) error {
	n := &Node{
		ID:      fmt.Sprintf("%s/%d:%s", parent.ID, pos, metric.Name),
		Kind:    NodeMetric,
		Name:    metric.Name,
		Metric:  metric,
		Input:   input,
		Filters: slices.Clone(metric.Filter),
		Path:    parent.Path.Append(NodeMetric, metric.Name),
	}
	if input != nil {
		n.Filters = append(n.Filters, input.Filter...)
	}
	b.link(parent, n)

	for i, m := range metric.InputMeasures() {
		if _, ok := b.idx.MeasureModel(m.Name); !ok {
			return &manifest.InvalidManifestError{Element: metric.Name, Message: fmt.Sprintf("unknown measure %q", m.Name)}
		}
		b.link(n, &Node{
			ID:      fmt.Sprintf("%s/%d:%s", n.ID, i, m.Name),
			Kind:    NodeMeasureSource,
			Name:    m.Name,
			Filters: slices.Clone(m.Filter),
			Path:    n.Path.Append(NodeMeasureSource, m.Name),
		})
	}
	for i, in := range metric.InputMetrics() {
		child, ok := b.idx.Metric(in.Name)
		if !ok {
			return &manifest.InvalidManifestError{Element: metric.Name, Message: fmt.Sprintf("unknown input metric %q", in.Name)}
		}
		if err := b.addMetric(n, i, child, &in); err != nil {
			return err
		}
	}
	return nil
}
