// Package linkable implements the set algebra over annotated group-by items.
// A Set is immutable: every operation returns a new Set and never mutates
// its operands.
package linkable

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Set is a collection of annotated specs keyed by qualified name.
type Set struct {
	items map[string]spec.AnnotatedSpec
	keys  []string // sorted
}

// Pattern narrows a list of candidate specs.
type Pattern interface {
	Match(candidates []spec.LinkableInstanceSpec) []spec.LinkableInstanceSpec
}

// NewSet builds a set, merging items that share a qualified name.
func NewSet(items ...spec.AnnotatedSpec) Set {
	b := NewBuilder()
	for _, item := range items {
		b.Add(item)
	}
	return b.Build()
}

// Empty returns the empty set.
func Empty() Set {
	return Set{}
}

// Len returns the number of items.
func (s Set) Len() int { return len(s.keys) }

// IsEmpty reports whether the set has no items.
func (s Set) IsEmpty() bool { return len(s.keys) == 0 }

// Get looks up an item by qualified name.
func (s Set) Get(qualifiedName string) (spec.AnnotatedSpec, bool) {
	item, ok := s.items[qualifiedName]
	return item, ok
}

// Contains reports whether an item with the qualified name is present.
func (s Set) Contains(qualifiedName string) bool {
	_, ok := s.items[qualifiedName]
	return ok
}

// QualifiedNames returns the item keys in sorted order.
func (s Set) QualifiedNames() []string {
	return append([]string(nil), s.keys...)
}

// Items returns the annotated items ordered by qualified name.
func (s Set) Items() []spec.AnnotatedSpec {
	out := make([]spec.AnnotatedSpec, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.items[k]
	}
	return out
}

// Specs returns the bare specs ordered by qualified name.
func (s Set) Specs() []spec.LinkableInstanceSpec {
	out := make([]spec.LinkableInstanceSpec, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.items[k].Spec
	}
	return out
}

// SpecSet converts the set to a typed, de-duplicated spec set.
func (s Set) SpecSet() spec.LinkableSpecSet {
	return spec.NewLinkableSpecSet(s.Specs()...)
}

// Equal reports whether two sets hold the same items with the same annotations.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, k := range s.keys {
		a := s.items[k]
		b, ok := other.items[k]
		if !ok || !spec.Equal(a.Spec, b.Spec) || a.Properties != b.Properties {
			return false
		}
		if !sameRefs(a.OriginModels, b.OriginModels) || !sameRefs(a.DerivedFromSemanticModels, b.DerivedFromSemanticModels) {
			return false
		}
	}
	return true
}

// Builder accumulates items before freezing them into a Set.
type Builder struct {
	items map[string]spec.AnnotatedSpec
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{items: make(map[string]spec.AnnotatedSpec)}
}

// Add inserts an item, merging it into any item with the same qualified name.
func (b *Builder) Add(item spec.AnnotatedSpec) {
	key := item.QualifiedName()
	if existing, ok := b.items[key]; ok {
		merged := existing.Merge(item)
		// Same name reached with different subquery links: keep a canonical spec.
		if !spec.Equal(existing.Spec, item.Spec) && subqueryKey(item.Spec) < subqueryKey(existing.Spec) {
			merged.Spec = item.Spec
		}
		b.items[key] = merged
		return
	}
	b.items[key] = item.Merge(spec.AnnotatedSpec{})
}

// AddSet merges every item of s into the builder.
func (b *Builder) AddSet(s Set) {
	for _, k := range s.keys {
		b.Add(s.items[k])
	}
}

// Build freezes the accumulated items. The builder must not be used afterwards.
func (b *Builder) Build() Set {
	if len(b.items) == 0 {
		return Set{}
	}
	keys := make([]string, 0, len(b.items))
	for k := range b.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := Set{items: b.items, keys: keys}
	b.items = nil
	return s
}

func subqueryKey(s spec.LinkableInstanceSpec) string {
	if m, ok := s.(spec.GroupByMetricSpec); ok {
		return strings.Join(core.EntityReferenceNames(m.MetricSubqueryEntityLinks), ",")
	}
	return ""
}
