package core

// ElementReference is the common shape of every named manifest element.
type ElementReference struct {
	ElementName string
}

// EntityReference names an entity (join key).
type EntityReference struct {
	ElementName string
}

// DimensionReference names a dimension.
type DimensionReference struct {
	ElementName string
}

// TimeDimensionReference names a time-typed dimension.
type TimeDimensionReference struct {
	ElementName string
}

// MeasureReference names a measure.
type MeasureReference struct {
	ElementName string
}

// MetricReference names a metric.
type MetricReference struct {
	ElementName string
}

// SemanticModelReference names a semantic model.
type SemanticModelReference struct {
	Name string
}

// NewEntityReference is a shorthand constructor.
func NewEntityReference(name string) EntityReference { return EntityReference{ElementName: name} }

// NewMetricReference is a shorthand constructor.
func NewMetricReference(name string) MetricReference { return MetricReference{ElementName: name} }

// NewMeasureReference is a shorthand constructor.
func NewMeasureReference(name string) MeasureReference { return MeasureReference{ElementName: name} }

// NewSemanticModelReference is a shorthand constructor.
func NewSemanticModelReference(name string) SemanticModelReference {
	return SemanticModelReference{Name: name}
}

func (r EntityReference) String() string        { return r.ElementName }
func (r DimensionReference) String() string     { return r.ElementName }
func (r TimeDimensionReference) String() string { return r.ElementName }
func (r MeasureReference) String() string       { return r.ElementName }
func (r MetricReference) String() string        { return r.ElementName }
func (r SemanticModelReference) String() string { return r.Name }

// EntityReferenceNames returns the element names of the given references in order.
func EntityReferenceNames(refs []EntityReference) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.ElementName
	}
	return names
}

// EntityReferencesFromNames builds references from element names.
func EntityReferencesFromNames(names []string) []EntityReference {
	refs := make([]EntityReference, len(names))
	for i, n := range names {
		refs[i] = EntityReference{ElementName: n}
	}
	return refs
}

// MetricTimeElementName is the name of the virtual time dimension shared by all metrics.
const MetricTimeElementName = "metric_time"
