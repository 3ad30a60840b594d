package spec

import "strings"

// ElementProperty tags how a group-by item is reached or what it is.
type ElementProperty uint16

// Element properties. A spec may carry several.
const (
	// PropertyLocal marks items defined on the measure's own semantic model.
	PropertyLocal ElementProperty = 1 << iota
	// PropertyLocalLinked marks local items whose name carries an entity link, e.g. booking__is_instant.
	PropertyLocalLinked
	// PropertyJoined marks items that need at least one join.
	PropertyJoined
	// PropertyMultiHop marks items that need two or more joins.
	PropertyMultiHop
	// PropertyMetricTime marks the metric_time dimension.
	PropertyMetricTime
	// PropertyDatePart marks date parts extracted from a time dimension.
	PropertyDatePart
	// PropertyDerivedTimeGranularity marks time dimensions at a grain coarser than defined.
	PropertyDerivedTimeGranularity
	// PropertyEntity marks entities used as group-by items.
	PropertyEntity
	// PropertyMetric marks group-by metrics.
	PropertyMetric
)

var propertyNames = []struct {
	p    ElementProperty
	name string
}{
	{PropertyLocal, "local"},
	{PropertyLocalLinked, "local_linked"},
	{PropertyJoined, "joined"},
	{PropertyMultiHop, "multi_hop"},
	{PropertyMetricTime, "metric_time"},
	{PropertyDatePart, "date_part"},
	{PropertyDerivedTimeGranularity, "derived_time_granularity"},
	{PropertyEntity, "entity"},
	{PropertyMetric, "metric"},
}

func (p ElementProperty) String() string {
	for _, pn := range propertyNames {
		if pn.p == p {
			return pn.name
		}
	}
	return "unknown"
}

// ParseElementProperty converts a property name to its value.
func ParseElementProperty(s string) (ElementProperty, bool) {
	lower := strings.ToLower(s)
	for _, pn := range propertyNames {
		if pn.name == lower {
			return pn.p, true
		}
	}
	return 0, false
}

// PropertySet is a set of element properties.
type PropertySet uint16

// NewPropertySet builds a set from properties.
func NewPropertySet(props ...ElementProperty) PropertySet {
	var s PropertySet
	for _, p := range props {
		s |= PropertySet(p)
	}
	return s
}

// Has reports whether p is in the set.
func (s PropertySet) Has(p ElementProperty) bool { return s&PropertySet(p) != 0 }

// With returns the set plus the given properties.
func (s PropertySet) With(props ...ElementProperty) PropertySet {
	return s | NewPropertySet(props...)
}

// Union returns the union of two sets.
func (s PropertySet) Union(other PropertySet) PropertySet { return s | other }

// Intersects reports whether the sets share any property.
func (s PropertySet) Intersects(other PropertySet) bool { return s&other != 0 }

// IsEmpty reports whether the set has no properties.
func (s PropertySet) IsEmpty() bool { return s == 0 }

// Properties lists the members in declaration order.
func (s PropertySet) Properties() []ElementProperty {
	var props []ElementProperty
	for _, pn := range propertyNames {
		if s.Has(pn.p) {
			props = append(props, pn.p)
		}
	}
	return props
}

// Names lists the member names in declaration order.
func (s PropertySet) Names() []string {
	props := s.Properties()
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.String()
	}
	return names
}

func (s PropertySet) String() string {
	return "{" + strings.Join(s.Names(), ", ") + "}"
}
