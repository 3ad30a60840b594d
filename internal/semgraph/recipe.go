package semgraph

import (
	"slices"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// RecipeStep describes what traversing an edge contributes to the item being built.
// Every field is optional.
type RecipeStep struct {
	// DunderNameElement is appended to the item's name.
	DunderNameElement string
	// EntityLink marks DunderNameElement as an entity link counted against the hop bound.
	EntityLink bool
	Properties spec.PropertySet
	// AddModel records a semantic model the item is derived from.
	AddModel string
	// Join marks a step that joins AddModel to the path.
	Join bool
	// TimeGrainAccess sets the finest grain at which time attributes may be read.
	TimeGrainAccess *core.TimeGranularity
	// DatePartAccess allows date parts to be extracted from time attributes.
	DatePartAccess bool
	// DenyDatePart forbids date parts for the rest of the path.
	DenyDatePart bool
	// SelectGrain picks the grain of a metric_time item.
	SelectGrain *spec.TimeGrain
	// SelectDatePart picks the date part of a metric_time item.
	SelectDatePart *core.DatePart
}

// recipe is the left fold of the recipe steps along a path.
type recipe struct {
	names          []string
	links          int
	props          spec.PropertySet
	models         []string
	joins          int
	grainAccess    *core.TimeGranularity
	datePartAccess bool
	denyDatePart   bool
	grain          *spec.TimeGrain
	datePart       *core.DatePart
}

// apply folds one step into a copy of the recipe.
// Returns false when the step selects a grain or date part the path cannot provide.
func (r recipe) apply(step RecipeStep) (recipe, bool) {
	if step.DunderNameElement != "" {
		r.names = append(slices.Clip(r.names), step.DunderNameElement)
		if step.EntityLink {
			r.links++
		}
	}
	r.props = r.props.Union(step.Properties)
	if step.AddModel != "" {
		r.models = append(slices.Clip(r.models), step.AddModel)
		if step.Join {
			r.joins++
		}
	}
	if step.TimeGrainAccess != nil {
		r.grainAccess = step.TimeGrainAccess
	}
	if step.DatePartAccess {
		r.datePartAccess = true
	}
	if step.DenyDatePart {
		r.denyDatePart = true
	}
	if g := step.SelectGrain; g != nil {
		if r.grainAccess == nil || g.Base.IsFinerThan(*r.grainAccess) {
			return r, false
		}
		r.grain = g
	}
	if p := step.SelectDatePart; p != nil {
		if !r.allowsDatePart(*p) {
			return r, false
		}
		r.datePart = p
	}
	return r, true
}

func (r recipe) allowsDatePart(p core.DatePart) bool {
	if !r.datePartAccess || r.denyDatePart || r.grainAccess == nil {
		return false
	}
	return !p.MinGranularity().IsFinerThan(*r.grainAccess)
}

// finish derives the path properties and provenance shared by every item the path yields.
func (r recipe) finish(origin string) spec.AnnotatedSpec {
	props := r.props
	switch {
	case r.joins >= 2:
		props = props.With(spec.PropertyJoined, spec.PropertyMultiHop)
	case r.joins == 1:
		props = props.With(spec.PropertyJoined)
	case !props.Intersects(spec.NewPropertySet(spec.PropertyJoined, spec.PropertyMetricTime)):
		props = props.With(spec.PropertyLocal)
		if r.links > 0 {
			props = props.With(spec.PropertyLocalLinked)
		}
	}

	derived := make([]core.SemanticModelReference, len(r.models))
	for i, m := range r.models {
		derived[i] = core.NewSemanticModelReference(m)
	}
	var origins []core.SemanticModelReference
	if origin != "" {
		origins = []core.SemanticModelReference{core.NewSemanticModelReference(origin)}
	}
	return spec.AnnotatedSpec{
		Properties:                props,
		OriginModels:              origins,
		DerivedFromSemanticModels: spec.SortedModelRefs(derived...),
	}
}

// entityLinks returns every name but the last as entity references.
func (r recipe) entityLinks() []core.EntityReference {
	if len(r.names) == 0 {
		return nil
	}
	return core.EntityReferencesFromNames(r.names[:len(r.names)-1])
}

func (r recipe) element() string {
	if len(r.names) == 0 {
		return ""
	}
	return r.names[len(r.names)-1]
}

// emit builds the annotated items yielded by a path ending at node.
func (r recipe) emit(node NodeKey, customGrains []spec.TimeGrain) []spec.AnnotatedSpec {
	base := r.finish(node.Model)
	links := r.entityLinks()

	with := func(s spec.LinkableInstanceSpec, props ...spec.ElementProperty) spec.AnnotatedSpec {
		item := base
		item.Spec = s
		return item.WithProperties(props...)
	}

	switch node.Kind {
	case NodeDimension:
		return []spec.AnnotatedSpec{with(spec.DimensionSpec{ElementName: r.element(), EntityLinks: links})}

	case NodeKeyAttribute:
		return []spec.AnnotatedSpec{with(spec.EntitySpec{ElementName: r.element(), EntityLinks: links})}

	case NodeGroupByMetric:
		return []spec.AnnotatedSpec{with(spec.GroupByMetricSpec{
			ElementName:               r.element(),
			EntityLinks:               links,
			MetricSubqueryEntityLinks: []core.EntityReference{core.NewEntityReference(node.Entity)},
		})}

	case NodeTimeGrain:
		td := spec.TimeDimensionSpec{ElementName: r.element(), EntityLinks: links, Grain: r.grain}
		if r.grain.Name != r.grainAccess.String() {
			return []spec.AnnotatedSpec{with(td, spec.PropertyDerivedTimeGranularity)}
		}
		return []spec.AnnotatedSpec{with(td)}

	case NodeDatePart:
		td := spec.TimeDimensionSpec{ElementName: r.element(), EntityLinks: links, DatePart: r.datePart}
		return []spec.AnnotatedSpec{with(td, spec.PropertyDatePart)}

	case NodeTimeDimension:
		if r.grainAccess == nil {
			return nil
		}
		defined := *r.grainAccess
		var items []spec.AnnotatedSpec
		for _, g := range core.AllGranularities() {
			if g.IsFinerThan(defined) {
				continue
			}
			grain := spec.StandardGrain(g)
			td := spec.TimeDimensionSpec{ElementName: r.element(), EntityLinks: links, Grain: &grain}
			if g == defined {
				items = append(items, with(td))
			} else {
				items = append(items, with(td, spec.PropertyDerivedTimeGranularity))
			}
		}
		for _, cg := range customGrains {
			if cg.Base.IsFinerThan(defined) {
				continue
			}
			grain := cg
			td := spec.TimeDimensionSpec{ElementName: r.element(), EntityLinks: links, Grain: &grain}
			items = append(items, with(td, spec.PropertyDerivedTimeGranularity))
		}
		for _, p := range core.AllDateParts() {
			if !r.allowsDatePart(p) {
				continue
			}
			part := p
			td := spec.TimeDimensionSpec{ElementName: r.element(), EntityLinks: links, DatePart: &part}
			items = append(items, with(td, spec.PropertyDatePart))
		}
		return items
	}
	return nil
}
