package spec

import (
	"slices"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// Kind identifies the variant of a LinkableInstanceSpec.
type Kind int

// Spec kinds.
const (
	KindDimension Kind = iota
	KindTimeDimension
	KindEntity
	KindGroupByMetric
)

func (k Kind) String() string {
	switch k {
	case KindDimension:
		return "dimension"
	case KindTimeDimension:
		return "time_dimension"
	case KindEntity:
		return "entity"
	case KindGroupByMetric:
		return "metric"
	default:
		return "unknown"
	}
}

// LinkableInstanceSpec is a group-by item. The set of implementations is closed.
type LinkableInstanceSpec interface {
	Kind() Kind
	Element() string
	Links() []core.EntityReference
	// QualifiedName is the dunder form and the identity of the item.
	QualifiedName() string
	StructuredName() StructuredName
	isLinkableInstanceSpec()
}

// DimensionSpec is a categorical dimension reached through EntityLinks.
type DimensionSpec struct {
	ElementName string
	EntityLinks []core.EntityReference
}

// TimeGrain is a standard or custom granularity. Standard grains have Name == Base.String().
type TimeGrain struct {
	Name string
	Base core.TimeGranularity
}

// StandardGrain wraps a standard granularity.
func StandardGrain(g core.TimeGranularity) TimeGrain {
	return TimeGrain{Name: g.String(), Base: g}
}

// IsCustom reports whether the grain is a custom granularity.
func (g TimeGrain) IsCustom() bool { return g.Name != g.Base.String() }

// TimeDimensionSpec is a time dimension at a grain, or a date part extracted from it.
// Exactly one of Grain and DatePart is set.
type TimeDimensionSpec struct {
	ElementName string
	EntityLinks []core.EntityReference
	Grain       *TimeGrain
	DatePart    *core.DatePart
}

// EntitySpec is an entity used as a group-by item.
type EntitySpec struct {
	ElementName string
	EntityLinks []core.EntityReference
}

// GroupByMetricSpec is a metric computed in a subquery grouped by MetricSubqueryEntityLinks
// and joined to the outer query through EntityLinks.
type GroupByMetricSpec struct {
	ElementName               string
	EntityLinks               []core.EntityReference
	MetricSubqueryEntityLinks []core.EntityReference
}

func (DimensionSpec) isLinkableInstanceSpec()     {}
func (TimeDimensionSpec) isLinkableInstanceSpec() {}
func (EntitySpec) isLinkableInstanceSpec()        {}
func (GroupByMetricSpec) isLinkableInstanceSpec() {}

func (DimensionSpec) Kind() Kind     { return KindDimension }
func (TimeDimensionSpec) Kind() Kind { return KindTimeDimension }
func (EntitySpec) Kind() Kind        { return KindEntity }
func (GroupByMetricSpec) Kind() Kind { return KindGroupByMetric }

func (s DimensionSpec) Element() string     { return s.ElementName }
func (s TimeDimensionSpec) Element() string { return s.ElementName }
func (s EntitySpec) Element() string        { return s.ElementName }
func (s GroupByMetricSpec) Element() string { return s.ElementName }

func (s DimensionSpec) Links() []core.EntityReference     { return s.EntityLinks }
func (s TimeDimensionSpec) Links() []core.EntityReference { return s.EntityLinks }
func (s EntitySpec) Links() []core.EntityReference        { return s.EntityLinks }
func (s GroupByMetricSpec) Links() []core.EntityReference { return s.EntityLinks }

func (s DimensionSpec) StructuredName() StructuredName {
	return StructuredName{EntityLinkNames: core.EntityReferenceNames(s.EntityLinks), ElementName: s.ElementName}
}

func (s TimeDimensionSpec) StructuredName() StructuredName {
	n := StructuredName{
		EntityLinkNames: core.EntityReferenceNames(s.EntityLinks),
		ElementName:     s.ElementName,
		DatePart:        s.DatePart,
	}
	if s.Grain != nil {
		n.GranularityName = s.Grain.Name
	}
	return n
}

func (s EntitySpec) StructuredName() StructuredName {
	return StructuredName{EntityLinkNames: core.EntityReferenceNames(s.EntityLinks), ElementName: s.ElementName}
}

func (s GroupByMetricSpec) StructuredName() StructuredName {
	return StructuredName{EntityLinkNames: core.EntityReferenceNames(s.EntityLinks), ElementName: s.ElementName}
}

func (s DimensionSpec) QualifiedName() string     { return s.StructuredName().QualifiedName() }
func (s TimeDimensionSpec) QualifiedName() string { return s.StructuredName().QualifiedName() }
func (s EntitySpec) QualifiedName() string        { return s.StructuredName().QualifiedName() }
func (s GroupByMetricSpec) QualifiedName() string { return s.StructuredName().QualifiedName() }

// GranularityName returns the grain name, or "" for date-part specs.
func (s TimeDimensionSpec) GranularityName() string {
	if s.Grain == nil {
		return ""
	}
	return s.Grain.Name
}

// WithGrain returns a copy at the given grain with any date part cleared.
func (s TimeDimensionSpec) WithGrain(g TimeGrain) TimeDimensionSpec {
	return TimeDimensionSpec{ElementName: s.ElementName, EntityLinks: s.EntityLinks, Grain: &g}
}

// IsMetricTime reports whether the spec is the virtual metric_time dimension.
func (s TimeDimensionSpec) IsMetricTime() bool {
	return s.ElementName == core.MetricTimeElementName && len(s.EntityLinks) == 0
}

// Equal compares two specs structurally.
func Equal(a, b LinkableInstanceSpec) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.QualifiedName() != b.QualifiedName() {
		return false
	}
	if am, ok := a.(GroupByMetricSpec); ok {
		bm := b.(GroupByMetricSpec)
		return slices.Equal(am.MetricSubqueryEntityLinks, bm.MetricSubqueryEntityLinks)
	}
	return true
}
