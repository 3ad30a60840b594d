package spec

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// AnnotatedSpec is a spec plus the properties and provenance collected along every path
// that reaches it.
type AnnotatedSpec struct {
	Spec       LinkableInstanceSpec
	Properties PropertySet
	// OriginModels are the semantic models that define the element.
	OriginModels []core.SemanticModelReference
	// DerivedFromSemanticModels are the models joined (or read locally) to compute the item.
	DerivedFromSemanticModels []core.SemanticModelReference
}

// QualifiedName is the identity of the annotated item.
func (a AnnotatedSpec) QualifiedName() string { return a.Spec.QualifiedName() }

// Merge combines two annotations of the same logical item. The receiver's spec is kept;
// properties and provenance are unioned so nothing present in either input is lost.
func (a AnnotatedSpec) Merge(other AnnotatedSpec) AnnotatedSpec {
	return AnnotatedSpec{
		Spec:                      a.Spec,
		Properties:                a.Properties.Union(other.Properties),
		OriginModels:              unionModelRefs(a.OriginModels, other.OriginModels),
		DerivedFromSemanticModels: unionModelRefs(a.DerivedFromSemanticModels, other.DerivedFromSemanticModels),
	}
}

// WithProperties returns a copy with additional properties.
func (a AnnotatedSpec) WithProperties(props ...ElementProperty) AnnotatedSpec {
	a.Properties = a.Properties.With(props...)
	return a
}

// unionModelRefs returns the sorted, de-duplicated union of two reference lists.
func unionModelRefs(a, b []core.SemanticModelReference) []core.SemanticModelReference {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	merged := make([]core.SemanticModelReference, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	slices.SortFunc(merged, func(x, y core.SemanticModelReference) int {
		return strings.Compare(x.Name, y.Name)
	})
	return slices.Compact(merged)
}

// SortedModelRefs returns a sorted, de-duplicated copy of refs.
func SortedModelRefs(refs ...core.SemanticModelReference) []core.SemanticModelReference {
	return unionModelRefs(refs, nil)
}
