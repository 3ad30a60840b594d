package core

// EntityKind is the role an entity plays inside its semantic model.
type EntityKind int

// Entity kinds.
const (
	EntityKindPrimary EntityKind = iota
	EntityKindUnique
	EntityKindForeign
	EntityKindNatural
)

// AllEntityKinds lists every entity kind.
func AllEntityKinds() []EntityKind {
	return []EntityKind{EntityKindPrimary, EntityKindUnique, EntityKindForeign, EntityKindNatural}
}

func (k EntityKind) String() string {
	switch k {
	case EntityKindPrimary:
		return "primary"
	case EntityKindUnique:
		return "unique"
	case EntityKindForeign:
		return "foreign"
	case EntityKindNatural:
		return "natural"
	default:
		return "unknown"
	}
}

// ParseEntityKind converts a manifest string to an EntityKind.
func ParseEntityKind(s string) (EntityKind, bool) {
	for _, k := range AllEntityKinds() {
		if k.String() == s {
			return k, true
		}
	}
	return EntityKindForeign, false
}

// IsCardinalityOne reports whether a row of the model is uniquely identified by this entity.
// Natural keys count as one because a validity window selects a single row per key.
func (k EntityKind) IsCardinalityOne() bool {
	return k == EntityKindPrimary || k == EntityKindUnique || k == EntityKindNatural
}

// Entity is a join key configured on a semantic model.
type Entity struct {
	Name string
	Kind EntityKind
	Expr string
}

// Reference returns the entity reference.
func (e Entity) Reference() EntityReference { return EntityReference{ElementName: e.Name} }

// DimensionType distinguishes categorical and time dimensions.
type DimensionType int

// Dimension types.
const (
	DimensionTypeCategorical DimensionType = iota
	DimensionTypeTime
)

func (t DimensionType) String() string {
	if t == DimensionTypeTime {
		return "time"
	}
	return "categorical"
}

// ValidityParams marks a time dimension as the start or end of an SCD validity window.
type ValidityParams struct {
	IsStart bool
	IsEnd   bool
}

// Dimension is a queryable attribute of a semantic model.
type Dimension struct {
	Name string
	Type DimensionType
	// TimeGranularity is the defined grain of a time dimension; ignored for categorical dimensions.
	TimeGranularity TimeGranularity
	Validity        *ValidityParams
	Expr            string
}

// IsTime reports whether the dimension is time-typed.
func (d Dimension) IsTime() bool { return d.Type == DimensionTypeTime }

// AggregationType is how a measure is aggregated.
type AggregationType string

// Aggregation types.
const (
	AggSum           AggregationType = "sum"
	AggCount         AggregationType = "count"
	AggCountDistinct AggregationType = "count_distinct"
	AggMin           AggregationType = "min"
	AggMax           AggregationType = "max"
	AggAverage       AggregationType = "average"
)

// Measure is an aggregatable column of a semantic model.
type Measure struct {
	Name        string
	Aggregation AggregationType
	// AggTimeDimension overrides the model default aggregation time dimension.
	AggTimeDimension string
	Expr             string
}

// Reference returns the measure reference.
func (m Measure) Reference() MeasureReference { return MeasureReference{ElementName: m.Name} }

// SemanticModel is a named table plus its entities, dimensions and measures.
type SemanticModel struct {
	Name        string
	Description string
	// PrimaryEntity names a virtual primary entity for models without a primary key.
	PrimaryEntity string
	// DefaultAggTimeDimension applies to measures that do not set their own.
	DefaultAggTimeDimension string
	Entities                []Entity
	Dimensions              []Dimension
	Measures                []Measure
}

// Reference returns the model reference.
func (m *SemanticModel) Reference() SemanticModelReference {
	return SemanticModelReference{Name: m.Name}
}

// ConfiguredPrimaryEntity returns the name of the model's primary entity, or "" if none.
func (m *SemanticModel) ConfiguredPrimaryEntity() string {
	for _, e := range m.Entities {
		if e.Kind == EntityKindPrimary {
			return e.Name
		}
	}
	return ""
}

// PrimaryEntityName returns the configured primary entity, falling back to the virtual one.
func (m *SemanticModel) PrimaryEntityName() string {
	if name := m.ConfiguredPrimaryEntity(); name != "" {
		return name
	}
	return m.PrimaryEntity
}

// HasVirtualPrimaryEntity reports whether the model relies on primary_entity instead of a key.
func (m *SemanticModel) HasVirtualPrimaryEntity() bool {
	return m.ConfiguredPrimaryEntity() == "" && m.PrimaryEntity != ""
}

// HasValidityWindow reports whether the model carries SCD validity dimensions.
func (m *SemanticModel) HasValidityWindow() bool {
	for _, d := range m.Dimensions {
		if d.Validity != nil && (d.Validity.IsStart || d.Validity.IsEnd) {
			return true
		}
	}
	return false
}

// Entity finds an entity by name.
func (m *SemanticModel) Entity(name string) (Entity, bool) {
	for _, e := range m.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Dimension finds a dimension by name.
func (m *SemanticModel) Dimension(name string) (Dimension, bool) {
	for _, d := range m.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Measure finds a measure by name.
func (m *SemanticModel) Measure(name string) (Measure, bool) {
	for _, ms := range m.Measures {
		if ms.Name == name {
			return ms, true
		}
	}
	return Measure{}, false
}
