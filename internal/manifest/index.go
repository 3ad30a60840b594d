// Package manifest indexes a semantic manifest for lookups during graph
// construction and query resolution, and loads manifests from YAML files.
package manifest

import (
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapmetrics/internal/dag"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Index is a read-only lookup structure over a manifest.
// It is built once and is safe for concurrent use.
type Index struct {
	manifest *core.Manifest

	// models maps semantic model names to models: "bookings_source" → *SemanticModel
	models     map[string]*core.SemanticModel
	modelOrder []*core.SemanticModel

	// measureModels maps measure names to the model defining them
	measureModels map[string]*core.SemanticModel

	metrics     map[string]*core.Metric
	metricOrder []*core.Metric

	// entityModels maps entity names to every model that configures them
	entityModels map[string][]*core.SemanticModel

	customGrains map[string]core.CustomGranularity

	// metricMeasures holds the transitive leaf measures of each metric
	metricMeasures map[string][]core.MeasureReference
}

// NewIndex builds an index and checks cross references.
// Returns an *InvalidManifestError for duplicate names, dangling references or metric cycles.
func NewIndex(m *core.Manifest) (*Index, error) {
	idx := &Index{
		manifest:       m,
		models:         make(map[string]*core.SemanticModel),
		measureModels:  make(map[string]*core.SemanticModel),
		metrics:        make(map[string]*core.Metric),
		entityModels:   make(map[string][]*core.SemanticModel),
		customGrains:   make(map[string]core.CustomGranularity),
		metricMeasures: make(map[string][]core.MeasureReference),
	}

	for _, model := range m.SemanticModels {
		if _, dup := idx.models[model.Name]; dup {
			return nil, invalidf(model.Name, "duplicate semantic model name")
		}
		idx.models[model.Name] = model
		idx.modelOrder = append(idx.modelOrder, model)

		for _, measure := range model.Measures {
			if other, dup := idx.measureModels[measure.Name]; dup {
				return nil, invalidf(measure.Name, "measure defined in both %q and %q", other.Name, model.Name)
			}
			idx.measureModels[measure.Name] = model
		}
		for _, e := range model.Entities {
			idx.entityModels[e.Name] = append(idx.entityModels[e.Name], model)
		}
		if model.HasVirtualPrimaryEntity() {
			idx.entityModels[model.PrimaryEntity] = append(idx.entityModels[model.PrimaryEntity], model)
		}
	}
	sort.Slice(idx.modelOrder, func(i, j int) bool { return idx.modelOrder[i].Name < idx.modelOrder[j].Name })
	for name := range idx.entityModels {
		models := idx.entityModels[name]
		sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	}

	for _, cg := range m.CustomGranularities() {
		name := strings.ToLower(cg.Name)
		if _, ok := core.ParseTimeGranularity(name); ok {
			return nil, invalidf(cg.Name, "custom granularity shadows a standard granularity")
		}
		idx.customGrains[name] = cg
	}

	for _, metric := range m.Metrics {
		if _, dup := idx.metrics[metric.Name]; dup {
			return nil, invalidf(metric.Name, "duplicate metric name")
		}
		idx.metrics[metric.Name] = metric
		idx.metricOrder = append(idx.metricOrder, metric)
	}
	sort.Slice(idx.metricOrder, func(i, j int) bool { return idx.metricOrder[i].Name < idx.metricOrder[j].Name })

	if err := idx.checkMetricInputs(); err != nil {
		return nil, err
	}
	return idx, nil
}

// checkMetricInputs validates metric references and computes transitive measures
// in dependency order.
func (idx *Index) checkMetricInputs() error {
	g := dag.NewGraph[*core.Metric]()
	for _, metric := range idx.metricOrder {
		g.AddNode(metric.Name, metric)
	}

	for _, metric := range idx.metricOrder {
		for _, input := range metric.InputMeasures() {
			if _, ok := idx.measureModels[input.Name]; !ok {
				return invalidf(metric.Name, "references unknown measure %q", input.Name)
			}
		}
		for _, input := range metric.InputMetrics() {
			if _, ok := idx.metrics[input.Name]; !ok {
				return invalidf(metric.Name, "references unknown metric %q", input.Name)
			}
			if err := g.AddEdge(input.Name, metric.Name); err != nil {
				return invalidf(metric.Name, "%v", err)
			}
		}
		if metric.Type == core.MetricTypeConversion {
			if metric.TypeParams.Conversion == nil || metric.TypeParams.Conversion.Entity == "" {
				return invalidf(metric.Name, "conversion metric requires an entity")
			}
		}
		if len(metric.InputMeasures()) == 0 && len(metric.InputMetrics()) == 0 {
			return invalidf(metric.Name, "%s metric has no inputs", metric.Type)
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return invalidf("", "metric inputs form a cycle: %v", err)
	}

	for _, node := range order {
		metric := node.Data
		var measures []core.MeasureReference
		for _, input := range metric.InputMeasures() {
			measures = append(measures, input.Reference())
		}
		for _, input := range metric.InputMetrics() {
			measures = append(measures, idx.metricMeasures[input.Name]...)
		}
		sort.Slice(measures, func(i, j int) bool { return measures[i].ElementName < measures[j].ElementName })
		idx.metricMeasures[metric.Name] = slices.Compact(measures)
	}
	return nil
}

// Manifest returns the indexed manifest.
func (idx *Index) Manifest() *core.Manifest {
	return idx.manifest
}

// SemanticModels returns all models sorted by name.
func (idx *Index) SemanticModels() []*core.SemanticModel {
	return idx.modelOrder
}

// SemanticModel looks up a model by name.
func (idx *Index) SemanticModel(name string) (*core.SemanticModel, bool) {
	m, ok := idx.models[name]
	return m, ok
}

// Metrics returns all metrics sorted by name.
func (idx *Index) Metrics() []*core.Metric {
	return idx.metricOrder
}

// Metric looks up a metric by name.
func (idx *Index) Metric(name string) (*core.Metric, bool) {
	m, ok := idx.metrics[name]
	return m, ok
}

// MetricNames returns every metric name in sorted order.
func (idx *Index) MetricNames() []string {
	names := make([]string, len(idx.metricOrder))
	for i, m := range idx.metricOrder {
		names[i] = m.Name
	}
	return names
}

// MeasureModel returns the model that defines a measure.
func (idx *Index) MeasureModel(measure string) (*core.SemanticModel, bool) {
	m, ok := idx.measureModels[measure]
	return m, ok
}

// AggTimeDimension returns the aggregation time dimension of a measure and the model
// defining it. Returns an *InvalidManifestError if none is configured or it is not time-typed.
func (idx *Index) AggTimeDimension(measure string) (*core.SemanticModel, core.Dimension, error) {
	model, ok := idx.measureModels[measure]
	if !ok {
		return nil, core.Dimension{}, invalidf(measure, "unknown measure")
	}
	m, _ := model.Measure(measure)
	name := m.AggTimeDimension
	if name == "" {
		name = model.DefaultAggTimeDimension
	}
	if name == "" {
		return nil, core.Dimension{}, invalidf(measure, "measure in %q has no aggregation time dimension", model.Name)
	}
	dim, ok := model.Dimension(name)
	if !ok {
		return nil, core.Dimension{}, invalidf(measure, "aggregation time dimension %q not found in %q", name, model.Name)
	}
	if !dim.IsTime() {
		return nil, core.Dimension{}, invalidf(measure, "aggregation time dimension %q is not a time dimension", name)
	}
	return model, dim, nil
}

// ModelsWithEntity returns the models configuring an entity, sorted by name.
func (idx *Index) ModelsWithEntity(entity string) []*core.SemanticModel {
	return idx.entityModels[entity]
}

// MetricMeasures returns the measures a metric is computed from, following input metrics.
func (idx *Index) MetricMeasures(metric string) []core.MeasureReference {
	return idx.metricMeasures[metric]
}

// MetricDefiningEntities returns the entities a metric can be grouped by in a subquery:
// the entity names shared by every model its measures come from.
func (idx *Index) MetricDefiningEntities(metric string) []string {
	var common []string
	for i, measure := range idx.metricMeasures[metric] {
		model := idx.measureModels[measure.ElementName]
		names := modelEntityNames(model)
		if i == 0 {
			common = names
			continue
		}
		common = slices.DeleteFunc(common, func(n string) bool { return !slices.Contains(names, n) })
	}
	return common
}

func modelEntityNames(model *core.SemanticModel) []string {
	names := make([]string, 0, len(model.Entities)+1)
	for _, e := range model.Entities {
		names = append(names, e.Name)
	}
	if model.HasVirtualPrimaryEntity() {
		names = append(names, model.PrimaryEntity)
	}
	sort.Strings(names)
	return slices.Compact(names)
}

// CustomGranularity looks up a custom granularity by case-insensitive name.
func (idx *Index) CustomGranularity(name string) (core.CustomGranularity, bool) {
	cg, ok := idx.customGrains[strings.ToLower(name)]
	return cg, ok
}

// CustomGranularityNames returns the lowercased custom granularity names, sorted.
func (idx *Index) CustomGranularityNames() []string {
	names := make([]string, 0, len(idx.customGrains))
	for name := range idx.customGrains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseGrain resolves a standard or custom granularity name.
func (idx *Index) ParseGrain(name string) (spec.TimeGrain, bool) {
	lower := strings.ToLower(name)
	if g, ok := core.ParseTimeGranularity(lower); ok {
		return spec.StandardGrain(g), true
	}
	if cg, ok := idx.customGrains[lower]; ok {
		return spec.TimeGrain{Name: lower, Base: cg.BaseGranularity}, true
	}
	return spec.TimeGrain{}, false
}

// IsGranularityName reports whether name is a standard or custom granularity.
func (idx *Index) IsGranularityName(name string) bool {
	_, ok := idx.ParseGrain(name)
	return ok
}

// MinModelTimeGranularity returns the finest defined grain of any time dimension
// in any model. Returns false when no model has a time dimension.
func (idx *Index) MinModelTimeGranularity() (core.TimeGranularity, bool) {
	found := false
	minGrain := core.GranularityYear
	for _, model := range idx.modelOrder {
		for _, d := range model.Dimensions {
			if d.IsTime() {
				minGrain = min(minGrain, d.TimeGranularity)
				found = true
			}
		}
	}
	return minGrain, found
}
