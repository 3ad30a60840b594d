package linkable

import (
	"slices"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Union returns every item present in any operand, merged across operands.
func Union(sets ...Set) Set {
	b := NewBuilder()
	for _, s := range sets {
		b.AddSet(s)
	}
	return b.Build()
}

// Intersection returns the items present in every operand, merged across operands.
// The intersection of no sets, or of any empty set, is empty.
func Intersection(sets ...Set) Set {
	if len(sets) == 0 {
		return Set{}
	}
	for _, s := range sets {
		if s.IsEmpty() {
			return Set{}
		}
	}

	b := NewBuilder()
	for _, k := range sets[0].keys {
		present := true
		for _, other := range sets[1:] {
			if !other.Contains(k) {
				present = false
				break
			}
		}
		if !present {
			continue
		}
		for _, s := range sets {
			b.Add(s.items[k])
		}
	}
	return b.Build()
}

// Filter selects items by their properties and element names.
type Filter struct {
	// WithAnyOf keeps items having at least one of these properties. Empty keeps all.
	WithAnyOf spec.PropertySet
	// WithoutAnyOf drops items having any of these properties.
	WithoutAnyOf spec.PropertySet
	// ElementNames keeps only items with one of these element names. Empty keeps all.
	ElementNames []string
}

// Filter returns the items accepted by f.
func (s Set) Filter(f Filter) Set {
	return s.Where(func(item spec.AnnotatedSpec) bool {
		if !f.WithAnyOf.IsEmpty() && !item.Properties.Intersects(f.WithAnyOf) {
			return false
		}
		if item.Properties.Intersects(f.WithoutAnyOf) {
			return false
		}
		if len(f.ElementNames) > 0 && !slices.Contains(f.ElementNames, item.Spec.Element()) {
			return false
		}
		return true
	})
}

// Where returns the items for which keep returns true.
func (s Set) Where(keep func(spec.AnnotatedSpec) bool) Set {
	b := NewBuilder()
	for _, k := range s.keys {
		if item := s.items[k]; keep(item) {
			b.Add(item)
		}
	}
	return b.Build()
}

// FilterBySpecPatterns narrows the set with each pattern in turn; every pattern
// sees only the survivors of the previous one.
func (s Set) FilterBySpecPatterns(patterns ...Pattern) Set {
	candidates := s.Specs()
	for _, p := range patterns {
		candidates = p.Match(candidates)
		if len(candidates) == 0 {
			break
		}
	}

	keep := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		keep[c.QualifiedName()] = true
	}
	return s.Where(func(item spec.AnnotatedSpec) bool { return keep[item.QualifiedName()] })
}

// WithProperties returns a copy of the set with extra properties on every item.
func (s Set) WithProperties(props ...spec.ElementProperty) Set {
	b := NewBuilder()
	for _, k := range s.keys {
		b.Add(s.items[k].WithProperties(props...))
	}
	return b.Build()
}

func sameRefs(a, b []core.SemanticModelReference) bool {
	return slices.Equal(spec.SortedModelRefs(a...), spec.SortedModelRefs(b...))
}
