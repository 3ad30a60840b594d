// Package naming parses and renders the two textual forms of a group-by item.
//
// The dunder scheme joins entity links, the element name and an optional grain
// with "__", e.g. "listing__created_at__month". The object-builder scheme uses
// call syntax, e.g.
//
//	TimeDimension('listing__created_at', 'month')
//	Dimension('country', entity_path=['listing'])
//	Metric('bookings', group_by=['listing'])
//	TimeDimension('metric_time').date_part('year').descending(True)
//
// Object-builder input is read by a small recursive-descent parser over a fixed
// grammar of four calls and three chained methods. Nothing is evaluated.
// Both schemes produce a Description, whose Pattern selects the matching specs.
package naming

import (
	"slices"

	"github.com/leapstack-labs/leapmetrics/internal/pattern"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// GrainResolver recognizes standard and custom granularity names.
// *manifest.Index satisfies it.
type GrainResolver interface {
	IsGranularityName(name string) bool
}

// StandardGrains recognizes only the standard granularities.
type StandardGrains struct{}

// IsGranularityName reports whether name is a standard granularity.
func (StandardGrains) IsGranularityName(name string) bool {
	_, ok := core.ParseTimeGranularity(name)
	return ok
}

// ItemKind is the call form an item was written with.
type ItemKind int

// Item kinds.
const (
	// ItemUntyped is a dunder name, which does not say what kind of item it is.
	ItemUntyped ItemKind = iota
	ItemDimension
	ItemTimeDimension
	ItemEntity
	ItemMetric
)

func (k ItemKind) String() string {
	switch k {
	case ItemDimension:
		return "Dimension"
	case ItemTimeDimension:
		return "TimeDimension"
	case ItemEntity:
		return "Entity"
	case ItemMetric:
		return "Metric"
	default:
		return "dunder"
	}
}

// Description is the parsed form of a group-by item reference.
type Description struct {
	Kind        ItemKind
	ElementName string
	EntityLinks []string
	// GrainName is lower-cased; empty when no grain was given.
	GrainName string
	DatePart  *core.DatePart
	// GroupBy holds the entities a group-by metric is computed over.
	GroupBy    []string
	Descending bool
}

// StructuredName returns the name the description refers to. For group-by metrics
// the grouping entities are appended to the entity links.
func (d Description) StructuredName() spec.StructuredName {
	links := slices.Clone(d.EntityLinks)
	if d.Kind == ItemMetric {
		links = append(links, d.GroupBy...)
	}
	return spec.StructuredName{
		EntityLinkNames: links,
		ElementName:     d.ElementName,
		GranularityName: d.GrainName,
		DatePart:        d.DatePart,
	}
}

// Pattern returns the spec pattern selecting the items the description refers to.
func (d Description) Pattern() pattern.EntityLinkPattern {
	name := d.StructuredName()
	switch d.Kind {
	case ItemDimension:
		if d.GrainName != "" || d.DatePart != nil {
			return pattern.TimeDimension(name)
		}
		return pattern.Dimension(name)
	case ItemTimeDimension:
		return pattern.TimeDimension(name)
	case ItemEntity:
		return pattern.Entity(name)
	case ItemMetric:
		return pattern.GroupByMetric(name, core.EntityReferencesFromNames(d.GroupBy))
	default:
		return pattern.Dunder(name)
	}
}

// Scheme is one textual form of group-by items.
type Scheme interface {
	Name() string
	// Accepts reports whether input is written in this scheme.
	Accepts(input string) bool
	Parse(input string) (Description, error)
	// Render returns the input that refers to exactly s, or false when the
	// scheme cannot express s.
	Render(s spec.LinkableInstanceSpec) (string, bool)
}

// Schemes returns every naming scheme, object-builder first.
func Schemes(grains GrainResolver) []Scheme {
	return []Scheme{NewObjectBuilderScheme(grains), NewDunderScheme(grains)}
}

// Parse reads input with the first scheme that accepts it.
func Parse(input string, grains GrainResolver) (Description, error) {
	for _, s := range Schemes(grains) {
		if s.Accepts(input) {
			return s.Parse(input)
		}
	}
	return Description{}, syntaxErrorf(input, "not a dunder name or an object-builder call")
}
