package resolver

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/internal/linkable"
	"github.com/leapstack-labs/leapmetrics/internal/semgraph"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// candidateSets maps node IDs to the items queryable at that node.
type candidateSets map[string]linkable.Set

// computeCandidates fills the candidate set of every node, inputs first.
func computeCandidates(d *ResolutionDAG, sets *semgraph.LinkableSets) (candidateSets, error) {
	out := make(candidateSets, d.NodeCount())
	for _, n := range d.Nodes() {
		set, err := nodeCandidates(n, sets, out)
		if err != nil {
			return nil, err
		}
		out[n.ID] = set
	}
	return out, nil
}

func inputSets(n *Node, computed candidateSets) []linkable.Set {
	inputs := make([]linkable.Set, len(n.inputs))
	for i, in := range n.inputs {
		inputs[i] = computed[in.ID]
	}
	return inputs
}

func nodeCandidates(n *Node, sets *semgraph.LinkableSets, computed candidateSets) (linkable.Set, error) {
	switch n.Kind {
	case NodeMeasureSource:
		set, ok := sets.ForMeasure(n.Name)
		if !ok {
			return linkable.Set{}, fmt.Errorf("no item set for measure %q", n.Name)
		}
		return set, nil

	case NodeNoMetricsSource:
		return sets.NoMetrics(), nil

	case NodeQuery:
		return linkable.Intersection(inputSets(n, computed)...), nil

	case NodeMetric:
		return metricCandidates(n, sets, computed)
	}
	return linkable.Set{}, fmt.Errorf("unknown resolution node kind %d", n.Kind)
}

func metricCandidates(n *Node, sets *semgraph.LinkableSets, computed candidateSets) (linkable.Set, error) {
	inputs := inputSets(n, computed)
	switch n.Metric.Type {
	case core.MetricTypeSimple:
		return linkable.Intersection(inputs...), nil

	case core.MetricTypeCumulative:
		set, ok := sets.ForCumulativeMetric(n.Name)
		if !ok {
			return linkable.Set{}, fmt.Errorf("no item set for cumulative metric %q", n.Name)
		}
		return set, nil

	case core.MetricTypeRatio, core.MetricTypeDerived:
		// An empty intersection is a valid metric that can only be queried ungrouped.
		return linkable.Intersection(inputs...), nil

	case core.MetricTypeConversion:
		entity := n.Metric.TypeParams.Conversion.Entity
		return linkable.Intersection(inputs...).Where(func(item spec.AnnotatedSpec) bool {
			links := item.Spec.Links()
			return len(links) == 0 || links[0].ElementName == entity
		}), nil
	}
	return linkable.Set{}, fmt.Errorf("unknown metric type %s", n.Metric.Type)
}
