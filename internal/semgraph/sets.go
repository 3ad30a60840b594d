package semgraph

import (
	"log/slog"

	"github.com/leapstack-labs/leapmetrics/internal/linkable"
	"github.com/leapstack-labs/leapmetrics/internal/manifest"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// LinkableSets holds the items reachable from every measure and cumulative metric
// of a manifest. It is computed eagerly and is read-only afterwards.
type LinkableSets struct {
	graph          *Graph
	maxEntityLinks int
	measures       map[string]linkable.Set
	cumulative     map[string]linkable.Set
	noMetrics      linkable.Set
}

// SetsConfig holds options for NewLinkableSets.
type SetsConfig struct {
	MaxEntityLinks int
	Logger         *slog.Logger
}

// NewLinkableSets computes the item sets of every measure and cumulative metric.
func NewLinkableSets(g *Graph, idx *manifest.Index, cfg SetsConfig) (*LinkableSets, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	finder, err := NewPathFinder(g, cfg.MaxEntityLinks)
	if err != nil {
		return nil, err
	}

	s := &LinkableSets{
		graph:          g,
		maxEntityLinks: cfg.MaxEntityLinks,
		measures:       make(map[string]linkable.Set),
		cumulative:     make(map[string]linkable.Set),
	}

	for _, model := range idx.SemanticModels() {
		for _, measure := range model.Measures {
			id, ok := g.MeasureNode(measure.Name)
			if !ok {
				continue
			}
			s.measures[measure.Name] = finder.LinkableSet(id)
			logger.Debug("computed measure items",
				slog.String("measure", measure.Name),
				slog.Int("items", s.measures[measure.Name].Len()))
		}
	}

	for _, metric := range idx.Metrics() {
		if metric.Type != core.MetricTypeCumulative {
			continue
		}
		if id, ok := g.MetricNode(metric.Name); ok {
			s.cumulative[metric.Name] = finder.LinkableSet(id)
		}
	}

	var noMetrics []linkable.Set
	for _, model := range idx.SemanticModels() {
		if id, ok := g.ModelNode(model.Name); ok {
			noMetrics = append(noMetrics, finder.LinkableSet(id))
		}
	}
	if id, ok := g.TimeSpineNode(); ok {
		noMetrics = append(noMetrics, finder.LinkableSet(id))
	}
	s.noMetrics = linkable.Union(noMetrics...)

	return s, nil
}

// Graph returns the graph the sets were computed from.
func (s *LinkableSets) Graph() *Graph {
	return s.graph
}

// MaxEntityLinks returns the entity link bound the sets were computed with.
func (s *LinkableSets) MaxEntityLinks() int {
	return s.maxEntityLinks
}

// ForMeasure returns the items reachable from a measure.
func (s *LinkableSets) ForMeasure(measure string) (linkable.Set, bool) {
	set, ok := s.measures[measure]
	return set, ok
}

// ForCumulativeMetric returns the items reachable from a cumulative metric, which
// exclude date parts.
func (s *LinkableSets) ForCumulativeMetric(metric string) (linkable.Set, bool) {
	set, ok := s.cumulative[metric]
	return set, ok
}

// NoMetrics returns the items queryable without any metric: every model's items
// plus metric_time at time spine grains.
func (s *LinkableSets) NoMetrics() linkable.Set {
	return s.noMetrics
}
