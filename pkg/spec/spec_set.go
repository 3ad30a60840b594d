package spec

import (
	"slices"
	"strings"
)

// LinkableSpecSet is a de-duplicated, typed collection of resolved group-by items.
type LinkableSpecSet struct {
	Dimensions     []DimensionSpec
	TimeDimensions []TimeDimensionSpec
	Entities       []EntitySpec
	GroupByMetrics []GroupByMetricSpec
}

// NewLinkableSpecSet buckets specs by kind, dropping later duplicates of a qualified name.
func NewLinkableSpecSet(specs ...LinkableInstanceSpec) LinkableSpecSet {
	var set LinkableSpecSet
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if s == nil || seen[s.QualifiedName()] {
			continue
		}
		seen[s.QualifiedName()] = true
		switch v := s.(type) {
		case DimensionSpec:
			set.Dimensions = append(set.Dimensions, v)
		case TimeDimensionSpec:
			set.TimeDimensions = append(set.TimeDimensions, v)
		case EntitySpec:
			set.Entities = append(set.Entities, v)
		case GroupByMetricSpec:
			set.GroupByMetrics = append(set.GroupByMetrics, v)
		}
	}
	return set
}

// Specs returns every spec: dimensions, time dimensions, entities, then group-by metrics.
func (s LinkableSpecSet) Specs() []LinkableInstanceSpec {
	specs := make([]LinkableInstanceSpec, 0, s.Len())
	for _, d := range s.Dimensions {
		specs = append(specs, d)
	}
	for _, d := range s.TimeDimensions {
		specs = append(specs, d)
	}
	for _, e := range s.Entities {
		specs = append(specs, e)
	}
	for _, m := range s.GroupByMetrics {
		specs = append(specs, m)
	}
	return specs
}

// Len returns the number of specs.
func (s LinkableSpecSet) Len() int {
	return len(s.Dimensions) + len(s.TimeDimensions) + len(s.Entities) + len(s.GroupByMetrics)
}

// Merge returns the de-duplicated union of two sets.
func (s LinkableSpecSet) Merge(other LinkableSpecSet) LinkableSpecSet {
	return NewLinkableSpecSet(append(s.Specs(), other.Specs()...)...)
}

// QualifiedNames returns the sorted qualified names of every spec.
func (s LinkableSpecSet) QualifiedNames() []string {
	names := make([]string, 0, s.Len())
	for _, sp := range s.Specs() {
		names = append(names, sp.QualifiedName())
	}
	slices.SortFunc(names, strings.Compare)
	return names
}

// Contains reports whether a spec with the given qualified name is present.
func (s LinkableSpecSet) Contains(qualifiedName string) bool {
	for _, sp := range s.Specs() {
		if sp.QualifiedName() == qualifiedName {
			return true
		}
	}
	return false
}
