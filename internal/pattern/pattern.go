// Package pattern matches group-by item references against candidate specs.
//
// An EntityLinkPattern compares only the fields it declares. Entity links are
// compared as a suffix and, when several candidates match, only those with the
// fewest entity links survive.
package pattern

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Fields is a set of parameters an EntityLinkPattern compares.
type Fields uint8

// Comparable fields.
const (
	FieldElementName Fields = 1 << iota
	FieldEntityLinks
	FieldTimeGranularity
	FieldDatePart
	FieldMetricSubqueryEntityLinks
)

// Has reports whether f includes every field in other.
func (f Fields) Has(other Fields) bool { return f&other == other }

// EntityLinkPattern matches specs by element name, entity-link suffix and
// optionally grain, date part and group-by-metric subquery links.
type EntityLinkPattern struct {
	ElementName string
	EntityLinks []core.EntityReference
	// TimeGranularityName is compared case-insensitively.
	TimeGranularityName       string
	DatePart                  *core.DatePart
	MetricSubqueryEntityLinks []core.EntityReference
	Compare                   Fields
	// Kinds restricts candidates to these spec kinds. Empty matches every kind.
	Kinds []spec.Kind
}

// Match returns the matching candidates in input order.
func (p EntityLinkPattern) Match(candidates []spec.LinkableInstanceSpec) []spec.LinkableInstanceSpec {
	var matched []spec.LinkableInstanceSpec
	for _, c := range candidates {
		if len(p.Kinds) > 0 && !slices.Contains(p.Kinds, c.Kind()) {
			continue
		}
		if p.matches(c) {
			matched = append(matched, c)
		}
	}
	if p.Compare.Has(FieldEntityLinks) {
		matched = shortestEntityLinks(matched)
	}
	return matched
}

func (p EntityLinkPattern) matches(c spec.LinkableInstanceSpec) bool {
	if p.Compare.Has(FieldElementName) && c.Element() != p.ElementName {
		return false
	}
	if p.Compare.Has(FieldEntityLinks) && !hasLinkSuffix(c.Links(), p.EntityLinks) {
		return false
	}
	grain, datePart := timeParams(c)
	if p.Compare.Has(FieldTimeGranularity) && !strings.EqualFold(grain, p.TimeGranularityName) {
		return false
	}
	if p.Compare.Has(FieldDatePart) && !sameDatePart(datePart, p.DatePart) {
		return false
	}
	if p.Compare.Has(FieldMetricSubqueryEntityLinks) {
		var subquery []core.EntityReference
		if m, ok := c.(spec.GroupByMetricSpec); ok {
			subquery = m.MetricSubqueryEntityLinks
		}
		if !slices.Equal(subquery, p.MetricSubqueryEntityLinks) {
			return false
		}
	}
	return true
}

// hasLinkSuffix reports whether suffix equals the tail of links.
func hasLinkSuffix(links, suffix []core.EntityReference) bool {
	if len(suffix) > len(links) {
		return false
	}
	return slices.Equal(links[len(links)-len(suffix):], suffix)
}

func shortestEntityLinks(specs []spec.LinkableInstanceSpec) []spec.LinkableInstanceSpec {
	if len(specs) == 0 {
		return specs
	}
	shortest := len(specs[0].Links())
	for _, s := range specs[1:] {
		shortest = min(shortest, len(s.Links()))
	}
	return slices.DeleteFunc(specs, func(s spec.LinkableInstanceSpec) bool {
		return len(s.Links()) != shortest
	})
}

func timeParams(s spec.LinkableInstanceSpec) (grain string, datePart *core.DatePart) {
	if td, ok := s.(spec.TimeDimensionSpec); ok {
		return td.GranularityName(), td.DatePart
	}
	return "", nil
}

func sameDatePart(a, b *core.DatePart) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// baseFields are compared by every pattern built from a structured name.
const baseFields = FieldElementName | FieldEntityLinks | FieldDatePart

func fromName(name spec.StructuredName, kinds ...spec.Kind) EntityLinkPattern {
	p := EntityLinkPattern{
		ElementName: name.ElementName,
		EntityLinks: name.EntityLinks(),
		DatePart:    name.DatePart,
		Compare:     baseFields,
		Kinds:       kinds,
	}
	if name.GranularityName != "" {
		p.TimeGranularityName = strings.ToLower(name.GranularityName)
		p.Compare |= FieldTimeGranularity
	}
	return p
}

// Dunder builds the typeless pattern for a parsed dunder name.
func Dunder(name spec.StructuredName) EntityLinkPattern {
	return fromName(name)
}

// Dimension matches categorical and time dimensions.
func Dimension(name spec.StructuredName) EntityLinkPattern {
	return fromName(name, spec.KindDimension, spec.KindTimeDimension)
}

// TimeDimension matches time dimensions only.
func TimeDimension(name spec.StructuredName) EntityLinkPattern {
	return fromName(name, spec.KindTimeDimension)
}

// Entity matches entities only.
func Entity(name spec.StructuredName) EntityLinkPattern {
	return fromName(name, spec.KindEntity)
}

// GroupByMetric matches group-by metrics computed over exactly the given subquery links.
func GroupByMetric(name spec.StructuredName, subqueryLinks []core.EntityReference) EntityLinkPattern {
	p := fromName(name, spec.KindGroupByMetric)
	p.MetricSubqueryEntityLinks = subqueryLinks
	p.Compare |= FieldMetricSubqueryEntityLinks
	return p
}
