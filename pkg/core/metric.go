package core

// MetricType is the closed set of metric kinds.
type MetricType int

// Metric types.
const (
	MetricTypeSimple MetricType = iota
	MetricTypeRatio
	MetricTypeCumulative
	MetricTypeDerived
	MetricTypeConversion
)

func (t MetricType) String() string {
	switch t {
	case MetricTypeSimple:
		return "simple"
	case MetricTypeRatio:
		return "ratio"
	case MetricTypeCumulative:
		return "cumulative"
	case MetricTypeDerived:
		return "derived"
	case MetricTypeConversion:
		return "conversion"
	default:
		return "unknown"
	}
}

// ParseMetricType converts a manifest string to a MetricType.
func ParseMetricType(s string) (MetricType, bool) {
	types := []MetricType{MetricTypeSimple, MetricTypeRatio, MetricTypeCumulative, MetricTypeDerived, MetricTypeConversion}
	for _, t := range types {
		if t.String() == s {
			return t, true
		}
	}
	return MetricTypeSimple, false
}

// MetricTimeWindow is a count of granularity periods, e.g. "7 days".
type MetricTimeWindow struct {
	Count       int
	Granularity TimeGranularity
}

// MetricInputMeasure references a measure used as a metric input.
type MetricInputMeasure struct {
	Name            string
	Filter          []string
	JoinToTimespine bool
}

// Reference returns the measure reference.
func (m MetricInputMeasure) Reference() MeasureReference {
	return MeasureReference{ElementName: m.Name}
}

// MetricInput references a metric used as an input of a ratio or derived metric.
type MetricInput struct {
	Name          string
	Alias         string
	Filter        []string
	OffsetWindow  *MetricTimeWindow
	OffsetToGrain *TimeGranularity
}

// Reference returns the metric reference.
func (m MetricInput) Reference() MetricReference { return MetricReference{ElementName: m.Name} }

// HasOffset reports whether the input is time-shifted.
func (m MetricInput) HasOffset() bool {
	return m.OffsetWindow != nil || m.OffsetToGrain != nil
}

// ConversionTypeParams configures a conversion metric.
type ConversionTypeParams struct {
	BaseMeasure       MetricInputMeasure
	ConversionMeasure MetricInputMeasure
	// Entity is the entity on which base and conversion events are joined.
	Entity string
	Window *MetricTimeWindow
}

// MetricTypeParams holds the type-specific parameters of a metric.
type MetricTypeParams struct {
	// Measure is used by simple and cumulative metrics.
	Measure *MetricInputMeasure
	// Numerator and Denominator are used by ratio metrics.
	Numerator   *MetricInput
	Denominator *MetricInput
	// Metrics and Expr are used by derived metrics.
	Metrics []MetricInput
	Expr    string
	// Window and GrainToDate are used by cumulative metrics.
	Window      *MetricTimeWindow
	GrainToDate *TimeGranularity
	Conversion  *ConversionTypeParams
}

// Metric is a named, typed computation over measures or other metrics.
type Metric struct {
	Name        string
	Description string
	Type        MetricType
	TypeParams  MetricTypeParams
	// Filter holds where-filter templates applied to the metric's inputs.
	Filter []string
}

// Reference returns the metric reference.
func (m *Metric) Reference() MetricReference { return MetricReference{ElementName: m.Name} }

// InputMeasures returns the measures referenced directly by this metric.
func (m *Metric) InputMeasures() []MetricInputMeasure {
	switch m.Type {
	case MetricTypeSimple, MetricTypeCumulative:
		if m.TypeParams.Measure != nil {
			return []MetricInputMeasure{*m.TypeParams.Measure}
		}
	case MetricTypeConversion:
		if c := m.TypeParams.Conversion; c != nil {
			return []MetricInputMeasure{c.BaseMeasure, c.ConversionMeasure}
		}
	}
	return nil
}

// InputMetrics returns the metrics referenced directly by this metric.
func (m *Metric) InputMetrics() []MetricInput {
	switch m.Type {
	case MetricTypeRatio:
		var inputs []MetricInput
		if m.TypeParams.Numerator != nil {
			inputs = append(inputs, *m.TypeParams.Numerator)
		}
		if m.TypeParams.Denominator != nil {
			inputs = append(inputs, *m.TypeParams.Denominator)
		}
		return inputs
	case MetricTypeDerived:
		return m.TypeParams.Metrics
	}
	return nil
}

// HasCumulativeBound reports whether a cumulative metric is bounded by a window or grain-to-date.
func (m *Metric) HasCumulativeBound() bool {
	return m.Type == MetricTypeCumulative && (m.TypeParams.Window != nil || m.TypeParams.GrainToDate != nil)
}
