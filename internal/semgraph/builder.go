package semgraph

import (
	"log/slog"

	"github.com/leapstack-labs/leapmetrics/internal/join"
	"github.com/leapstack-labs/leapmetrics/internal/manifest"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Config holds graph construction options.
type Config struct {
	Logger *slog.Logger
}

// rule adds one family of edges to the graph.
type rule struct {
	name  string
	apply func(b *builder) error
}

// rules run in order; each only adds edges.
var rules = []rule{
	{"measure", (*builder).addMeasureEdges},
	{"local_entity", (*builder).addLocalEntityEdges},
	{"local_attribute", (*builder).addLocalAttributeEdges},
	{"join", (*builder).addJoinEdges},
	{"joined_attribute", (*builder).addJoinedAttributeEdges},
	{"time_entity", (*builder).addTimeEntityEdges},
	{"group_by_metric", (*builder).addGroupByMetricEdges},
	{"cumulative_metric", (*builder).addCumulativeMetricEdges},
}

type builder struct {
	idx   *manifest.Index
	graph *Graph
}

// Build constructs the semantic graph of an indexed manifest.
// Returns an *manifest.InvalidManifestError when a measure has no usable aggregation time dimension.
func Build(idx *manifest.Index, cfg Config) (*Graph, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &builder{
		idx: idx,
		graph: &Graph{
			nodes: newArena(),
		},
	}
	for _, name := range idx.CustomGranularityNames() {
		grain, _ := idx.ParseGrain(name)
		b.graph.customGrains = append(b.graph.customGrains, grain)
	}

	for _, r := range rules {
		before := b.graph.EdgeCount()
		if err := r.apply(b); err != nil {
			return nil, err
		}
		added := b.graph.EdgeCount() - before
		b.graph.ruleEdges = append(b.graph.ruleEdges, RuleStat{Rule: r.name, Edges: added})
		logger.Debug("applied graph rule", slog.String("rule", r.name), slog.Int("edges", added))
	}

	// Pad adjacency lists for nodes that only received interned keys.
	for len(b.graph.out) < b.graph.NodeCount() {
		b.graph.out = append(b.graph.out, nil)
		b.graph.in = append(b.graph.in, nil)
	}

	logger.Debug("built semantic graph",
		slog.Int("nodes", b.graph.NodeCount()),
		slog.Int("edges", b.graph.EdgeCount()))
	return b.graph, nil
}

func (b *builder) node(k NodeKey) NodeID {
	return b.graph.nodes.intern(k)
}

func (b *builder) edge(kind EdgeKind, from, to NodeKey, step RecipeStep) {
	b.graph.addEdge(Edge{Kind: kind, From: b.node(from), To: b.node(to), Step: step})
}

func grainPtr(g core.TimeGranularity) *core.TimeGranularity { return &g }

// addMeasureEdges links each measure to its model and to metric_time at the
// grain of its aggregation time dimension.
func (b *builder) addMeasureEdges() error {
	for _, model := range b.idx.SemanticModels() {
		for _, measure := range model.Measures {
			_, aggDim, err := b.idx.AggTimeDimension(measure.Name)
			if err != nil {
				return err
			}
			from := measureKey(measure.Name)
			b.edge(EdgeEntityRelationship, from, modelKey(model.Name), RecipeStep{})
			b.edge(EdgeEntityRelationship, from, timeEntityKey(), RecipeStep{
				DunderNameElement: core.MetricTimeElementName,
				Properties:        spec.NewPropertySet(spec.PropertyMetricTime),
				AddModel:          model.Name,
				TimeGrainAccess:   grainPtr(aggDim.TimeGranularity),
				DatePartAccess:    true,
			})
		}
	}
	return nil
}

// addLocalEntityEdges links each model to its entities, as link prefixes and as
// group-by items.
func (b *builder) addLocalEntityEdges() error {
	for _, model := range b.idx.SemanticModels() {
		from := modelKey(model.Name)
		b.node(from)
		for _, e := range model.Entities {
			b.graph.addEdge(Edge{
				Kind:     EdgeEntityRelationship,
				From:     b.node(from),
				To:       b.node(entityKey(model.Name, e.Name, RoleLocal)),
				JoinKind: cardinalityKind(e.Kind),
				Step:     RecipeStep{DunderNameElement: e.Name, EntityLink: true, AddModel: model.Name},
			})
			b.edge(EdgeAttribute, from, keyAttributeKey(model.Name, e.Name), RecipeStep{
				DunderNameElement: e.Name,
				Properties:        spec.NewPropertySet(spec.PropertyEntity),
				AddModel:          model.Name,
			})
		}
		if model.HasVirtualPrimaryEntity() {
			b.graph.addEdge(Edge{
				Kind:     EdgeEntityRelationship,
				From:     b.node(from),
				To:       b.node(entityKey(model.Name, model.PrimaryEntity, RoleLocal)),
				JoinKind: join.KindOneToOne,
				Step:     RecipeStep{DunderNameElement: model.PrimaryEntity, EntityLink: true, AddModel: model.Name},
			})
		}
	}
	return nil
}

// cardinalityKind is the edge kind between an entity node and another node of its model.
func cardinalityKind(k core.EntityKind) join.Kind {
	if k.IsCardinalityOne() {
		return join.KindOneToOne
	}
	return join.KindManyToOne
}

func keyAttributeKey(model, entity string) NodeKey {
	return NodeKey{Kind: NodeKeyAttribute, Model: model, Name: entity}
}

// attributeEdges links an entity node to every attribute of its model except
// the entity itself.
func (b *builder) attributeEdges(model *core.SemanticModel, from NodeKey) {
	for _, d := range model.Dimensions {
		if d.IsTime() {
			b.edge(EdgeAttribute, from, NodeKey{Kind: NodeTimeDimension, Model: model.Name, Name: d.Name}, RecipeStep{
				DunderNameElement: d.Name,
				TimeGrainAccess:   grainPtr(d.TimeGranularity),
				DatePartAccess:    true,
			})
			continue
		}
		b.edge(EdgeAttribute, from, NodeKey{Kind: NodeDimension, Model: model.Name, Name: d.Name}, RecipeStep{
			DunderNameElement: d.Name,
		})
	}
	for _, e := range model.Entities {
		if e.Name == from.Name {
			continue
		}
		b.edge(EdgeAttribute, from, keyAttributeKey(model.Name, e.Name), RecipeStep{
			DunderNameElement: e.Name,
			Properties:        spec.NewPropertySet(spec.PropertyEntity),
		})
	}
}

// addLocalAttributeEdges links cardinality-one and virtual primary entities to
// the attributes of their own model.
func (b *builder) addLocalAttributeEdges() error {
	for _, model := range b.idx.SemanticModels() {
		for _, e := range model.Entities {
			if e.Kind.IsCardinalityOne() {
				b.attributeEdges(model, entityKey(model.Name, e.Name, RoleLocal))
			}
		}
		if model.HasVirtualPrimaryEntity() {
			b.attributeEdges(model, entityKey(model.Name, model.PrimaryEntity, RoleLocal))
		}
	}
	return nil
}

// addJoinEdges joins local and link entity nodes to the same entity in every other
// model the join evaluator accepts.
func (b *builder) addJoinEdges() error {
	for _, left := range b.idx.SemanticModels() {
		for _, le := range left.Entities {
			for _, right := range b.idx.ModelsWithEntity(le.Name) {
				re, ok := right.Entity(le.Name)
				if !ok {
					continue // virtual primary entity
				}
				kind, valid := join.Evaluate(
					join.Side{Model: left.Reference(), EntityKind: le.Kind, ValidityWindow: left.HasValidityWindow()},
					join.Side{Model: right.Reference(), EntityKind: re.Kind, ValidityWindow: right.HasValidityWindow()},
				)
				if !valid {
					continue
				}
				to := b.node(entityKey(right.Name, le.Name, RoleJoined))
				for _, role := range []EntityRole{RoleLocal, RoleLink} {
					b.graph.addEdge(Edge{
						Kind:       EdgeJoin,
						From:       b.node(entityKey(left.Name, le.Name, role)),
						To:         to,
						JoinKind:   kind,
						RightModel: right.Name,
						Step:       RecipeStep{AddModel: right.Name, Join: true},
					})
				}
			}
		}
	}
	return nil
}

// addJoinedAttributeEdges exposes the attributes of a joined model and links to
// its other entities for further joins.
func (b *builder) addJoinedAttributeEdges() error {
	for _, model := range b.idx.SemanticModels() {
		for _, e := range model.Entities {
			from := entityKey(model.Name, e.Name, RoleJoined)
			if _, ok := b.graph.Lookup(from); !ok {
				continue
			}
			b.attributeEdges(model, from)
			for _, other := range model.Entities {
				if other.Name == e.Name {
					continue
				}
				b.graph.addEdge(Edge{
					Kind:     EdgeEntityRelationship,
					From:     b.node(from),
					To:       b.node(entityKey(model.Name, other.Name, RoleLink)),
					JoinKind: cardinalityKind(other.Kind),
					Step:     RecipeStep{DunderNameElement: other.Name, EntityLink: true},
				})
			}
		}
	}
	return nil
}

// timeEntityMinGrain is the finest grain offered for metric_time: the smaller of the
// finest model time dimension grain and the finest time spine grain. The two sources
// can disagree; the smaller one is kept for output compatibility.
func (b *builder) timeEntityMinGrain() core.TimeGranularity {
	minGrain := core.GranularityDay
	modelMin, hasModel := b.idx.MinModelTimeGranularity()
	spineMin, hasSpine := b.idx.Manifest().MinTimeSpineGranularity()
	switch {
	case hasModel && hasSpine:
		minGrain = min(modelMin, spineMin)
	case hasModel:
		minGrain = modelMin
	case hasSpine:
		minGrain = spineMin
	}
	return minGrain
}

// addTimeEntityEdges links the time entity to every metric_time grain and date part
// at or above the minimum grain, and seeds metric_time from the time spine.
func (b *builder) addTimeEntityEdges() error {
	minGrain := b.timeEntityMinGrain()
	b.graph.timeEntityMinGrain = spec.StandardGrain(minGrain)
	from := timeEntityKey()

	grains := make([]spec.TimeGrain, 0, len(core.AllGranularities())+len(b.graph.customGrains))
	for _, g := range core.AllGranularities() {
		grains = append(grains, spec.StandardGrain(g))
	}
	grains = append(grains, b.graph.customGrains...)
	for _, g := range grains {
		if g.Base.IsFinerThan(minGrain) {
			continue
		}
		grain := g
		b.edge(EdgeAttribute, from, NodeKey{Kind: NodeTimeGrain, Name: g.Name}, RecipeStep{SelectGrain: &grain})
	}
	for _, p := range core.AllDateParts() {
		if p.MinGranularity().IsFinerThan(minGrain) {
			continue
		}
		part := p
		b.edge(EdgeAttribute, from, NodeKey{Kind: NodeDatePart, Name: p.String()}, RecipeStep{
			SelectDatePart: &part,
			Properties:     spec.NewPropertySet(spec.PropertyDatePart),
		})
	}

	if spineMin, ok := b.idx.Manifest().MinTimeSpineGranularity(); ok {
		b.edge(EdgeEntityRelationship, timeSpineKey(), from, RecipeStep{
			DunderNameElement: core.MetricTimeElementName,
			Properties:        spec.NewPropertySet(spec.PropertyMetricTime),
			TimeGrainAccess:   grainPtr(spineMin),
			DatePartAccess:    true,
		})
	}
	return nil
}

// addGroupByMetricEdges links local and joined entity nodes to every metric that can
// be grouped by that entity.
func (b *builder) addGroupByMetricEdges() error {
	for _, metric := range b.idx.Metrics() {
		for _, entity := range b.idx.MetricDefiningEntities(metric.Name) {
			to := groupByMetricKey(metric.Name, entity)
			for _, model := range b.idx.ModelsWithEntity(entity) {
				for _, role := range []EntityRole{RoleLocal, RoleJoined} {
					from := entityKey(model.Name, entity, role)
					if _, ok := b.graph.Lookup(from); !ok {
						continue
					}
					b.edge(EdgeAttribute, from, to, RecipeStep{
						DunderNameElement: metric.Name,
						Properties:        spec.NewPropertySet(spec.PropertyMetric, spec.PropertyJoined),
					})
				}
			}
		}
	}
	return nil
}

// addCumulativeMetricEdges starts each cumulative metric at its measure with date
// parts denied.
func (b *builder) addCumulativeMetricEdges() error {
	for _, metric := range b.idx.Metrics() {
		if metric.Type != core.MetricTypeCumulative {
			continue
		}
		for _, input := range metric.InputMeasures() {
			to := measureKey(input.Name)
			if _, ok := b.graph.Lookup(to); !ok {
				continue
			}
			b.edge(EdgeEntityRelationship, metricKey(metric.Name), to, RecipeStep{DenyDatePart: true})
		}
	}
	return nil
}
