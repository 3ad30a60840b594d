package validation

import (
	"github.com/leapstack-labs/leapmetrics/internal/manifest"
	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Context provides a resolved query and its manifest to rules.
type Context struct {
	Resolution *resolver.Resolution
	Index      *manifest.Index
}

// MetricNodes returns every metric node of the resolution DAG, inputs first.
func (c *Context) MetricNodes() []*resolver.Node {
	var nodes []*resolver.Node
	for _, n := range c.Resolution.DAG.Nodes() {
		if n.Kind == resolver.NodeMetric {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// HasMetricTime reports whether the group-by includes metric_time at any grain or date part.
func (c *Context) HasMetricTime() bool {
	for _, s := range c.Resolution.Specs.Specs() {
		if td, ok := s.(spec.TimeDimensionSpec); ok && td.IsMetricTime() {
			return true
		}
	}
	return false
}

// HasAggTimeDimension reports whether the group-by includes the aggregation
// time dimension of measure, linked through its model's primary entity.
func (c *Context) HasAggTimeDimension(measure string) bool {
	model, dim, err := c.Index.AggTimeDimension(measure)
	if err != nil {
		return false
	}
	primary := model.PrimaryEntityName()
	for _, s := range c.Resolution.Specs.Specs() {
		td, ok := s.(spec.TimeDimensionSpec)
		if !ok || td.ElementName != dim.Name {
			continue
		}
		if len(td.EntityLinks) == 1 && td.EntityLinks[0].ElementName == primary {
			return true
		}
	}
	return false
}
