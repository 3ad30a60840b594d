package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"gopkg.in/yaml.v3"
)

// manifestYAML is an internal type for YAML unmarshaling.
type manifestYAML struct {
	SemanticModels       []semanticModelYAML      `yaml:"semantic_models"`
	Metrics              []metricYAML             `yaml:"metrics"`
	ProjectConfiguration projectConfigurationYAML `yaml:"project_configuration"`
}

type projectConfigurationYAML struct {
	TimeSpines []timeSpineYAML `yaml:"time_spines"`
}

type timeSpineYAML struct {
	Name                string                  `yaml:"name"`
	PrimaryGranularity  string                  `yaml:"primary_granularity"`
	CustomGranularities []customGranularityYAML `yaml:"custom_granularities"`
}

type customGranularityYAML struct {
	Name string `yaml:"name"`
	// Base defaults to the spine's primary granularity.
	Base string `yaml:"base_granularity"`
}

type semanticModelYAML struct {
	Name          string          `yaml:"name"`
	Description   string          `yaml:"description"`
	PrimaryEntity string          `yaml:"primary_entity"`
	Defaults      modelDefaults   `yaml:"defaults"`
	Entities      []entityYAML    `yaml:"entities"`
	Dimensions    []dimensionYAML `yaml:"dimensions"`
	Measures      []measureYAML   `yaml:"measures"`
}

type modelDefaults struct {
	AggTimeDimension string `yaml:"agg_time_dimension"`
}

type entityYAML struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Expr string `yaml:"expr"`
}

type dimensionYAML struct {
	Name       string              `yaml:"name"`
	Type       string              `yaml:"type"`
	Expr       string              `yaml:"expr"`
	TypeParams *dimensionParamYAML `yaml:"type_params"`
}

type dimensionParamYAML struct {
	TimeGranularity string          `yaml:"time_granularity"`
	ValidityParams  *validityParams `yaml:"validity_params"`
}

type validityParams struct {
	IsStart bool `yaml:"is_start"`
	IsEnd   bool `yaml:"is_end"`
}

type measureYAML struct {
	Name             string `yaml:"name"`
	Agg              string `yaml:"agg"`
	Expr             string `yaml:"expr"`
	AggTimeDimension string `yaml:"agg_time_dimension"`
}

type metricYAML struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Type        string           `yaml:"type"`
	Filter      filterYAML       `yaml:"filter"`
	TypeParams  metricParamsYAML `yaml:"type_params"`
}

type metricParamsYAML struct {
	Measure     *measureInputYAML     `yaml:"measure"`
	Numerator   *metricInputYAML      `yaml:"numerator"`
	Denominator *metricInputYAML      `yaml:"denominator"`
	Metrics     []metricInputYAML     `yaml:"metrics"`
	Expr        string                `yaml:"expr"`
	Window      string                `yaml:"window"`
	GrainToDate string                `yaml:"grain_to_date"`
	Conversion  *conversionParamsYAML `yaml:"conversion_type_params"`
}

type conversionParamsYAML struct {
	BaseMeasure       measureInputYAML `yaml:"base_measure"`
	ConversionMeasure measureInputYAML `yaml:"conversion_measure"`
	Entity            string           `yaml:"entity"`
	Window            string           `yaml:"window"`
}

// measureInputYAML accepts either a bare measure name or a mapping.
type measureInputYAML struct {
	Name            string     `yaml:"name"`
	Filter          filterYAML `yaml:"filter"`
	JoinToTimespine bool       `yaml:"join_to_timespine"`
}

func (m *measureInputYAML) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&m.Name)
	}
	type plain measureInputYAML
	return decodeStrict(node, (*plain)(m))
}

// metricInputYAML accepts either a bare metric name or a mapping.
type metricInputYAML struct {
	Name          string     `yaml:"name"`
	Alias         string     `yaml:"alias"`
	Filter        filterYAML `yaml:"filter"`
	OffsetWindow  string     `yaml:"offset_window"`
	OffsetToGrain string     `yaml:"offset_to_grain"`
}

func (m *metricInputYAML) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&m.Name)
	}
	type plain metricInputYAML
	return decodeStrict(node, (*plain)(m))
}

// filterYAML accepts a single where-filter string or a list of them.
type filterYAML []string

func (f *filterYAML) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*f = filterYAML{s}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*f = list
	return nil
}

// decodeStrict re-encodes a node and decodes it rejecting unknown fields.
// Custom unmarshalers bypass the outer decoder's KnownFields setting.
func decodeStrict(node *yaml.Node, out any) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// LoadFile reads and parses a manifest YAML file.
func LoadFile(path string) (*core.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, err
	}
	return m, nil
}

// Parse decodes manifest YAML with strict field validation.
// Returns a *ParseError for malformed YAML, unknown fields or invalid enum values.
func Parse(data []byte) (*core.Manifest, error) {
	var raw manifestYAML
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ParseError{Message: fmt.Sprintf("invalid manifest YAML: %v", err)}
	}

	m := &core.Manifest{}
	for _, sm := range raw.SemanticModels {
		model, err := convertModel(sm)
		if err != nil {
			return nil, err
		}
		m.SemanticModels = append(m.SemanticModels, model)
	}
	for _, mt := range raw.Metrics {
		metric, err := convertMetric(mt)
		if err != nil {
			return nil, err
		}
		m.Metrics = append(m.Metrics, metric)
	}
	for _, ts := range raw.ProjectConfiguration.TimeSpines {
		spine, err := convertTimeSpine(ts)
		if err != nil {
			return nil, err
		}
		m.ProjectConfiguration.TimeSpines = append(m.ProjectConfiguration.TimeSpines, spine)
	}
	return m, nil
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

func convertModel(sm semanticModelYAML) (*core.SemanticModel, error) {
	if sm.Name == "" {
		return nil, parseErrorf("semantic model without a name")
	}
	model := &core.SemanticModel{
		Name:                    sm.Name,
		Description:             sm.Description,
		PrimaryEntity:           sm.PrimaryEntity,
		DefaultAggTimeDimension: sm.Defaults.AggTimeDimension,
	}

	for _, e := range sm.Entities {
		kind, ok := core.ParseEntityKind(strings.ToLower(e.Type))
		if !ok {
			return nil, parseErrorf("%s: entity %q has invalid type %q", sm.Name, e.Name, e.Type)
		}
		model.Entities = append(model.Entities, core.Entity{Name: e.Name, Kind: kind, Expr: e.Expr})
	}

	for _, d := range sm.Dimensions {
		dim := core.Dimension{Name: d.Name, Expr: d.Expr}
		switch strings.ToLower(d.Type) {
		case "categorical":
			dim.Type = core.DimensionTypeCategorical
		case "time":
			dim.Type = core.DimensionTypeTime
			if d.TypeParams == nil || d.TypeParams.TimeGranularity == "" {
				return nil, parseErrorf("%s: time dimension %q requires type_params.time_granularity", sm.Name, d.Name)
			}
			grain, ok := core.ParseTimeGranularity(d.TypeParams.TimeGranularity)
			if !ok {
				return nil, parseErrorf("%s: dimension %q has invalid time_granularity %q", sm.Name, d.Name, d.TypeParams.TimeGranularity)
			}
			dim.TimeGranularity = grain
			if v := d.TypeParams.ValidityParams; v != nil {
				dim.Validity = &core.ValidityParams{IsStart: v.IsStart, IsEnd: v.IsEnd}
			}
		default:
			return nil, parseErrorf("%s: dimension %q has invalid type %q, must be one of: categorical, time", sm.Name, d.Name, d.Type)
		}
		model.Dimensions = append(model.Dimensions, dim)
	}

	for _, ms := range sm.Measures {
		model.Measures = append(model.Measures, core.Measure{
			Name:             ms.Name,
			Aggregation:      core.AggregationType(strings.ToLower(ms.Agg)),
			AggTimeDimension: ms.AggTimeDimension,
			Expr:             ms.Expr,
		})
	}
	return model, nil
}

func convertMetric(mt metricYAML) (*core.Metric, error) {
	typ, ok := core.ParseMetricType(strings.ToLower(mt.Type))
	if !ok {
		return nil, parseErrorf("metric %q has invalid type %q", mt.Name, mt.Type)
	}
	metric := &core.Metric{
		Name:        mt.Name,
		Description: mt.Description,
		Type:        typ,
		Filter:      mt.Filter,
	}

	p := mt.TypeParams
	if p.Measure != nil {
		in := convertMeasureInput(*p.Measure)
		metric.TypeParams.Measure = &in
	}
	var err error
	if p.Numerator != nil {
		if metric.TypeParams.Numerator, err = convertMetricInputPtr(mt.Name, *p.Numerator); err != nil {
			return nil, err
		}
	}
	if p.Denominator != nil {
		if metric.TypeParams.Denominator, err = convertMetricInputPtr(mt.Name, *p.Denominator); err != nil {
			return nil, err
		}
	}
	for _, in := range p.Metrics {
		input, err := convertMetricInput(mt.Name, in)
		if err != nil {
			return nil, err
		}
		metric.TypeParams.Metrics = append(metric.TypeParams.Metrics, input)
	}
	metric.TypeParams.Expr = p.Expr
	if p.Window != "" {
		if metric.TypeParams.Window, err = ParseWindow(p.Window); err != nil {
			return nil, parseErrorf("metric %q: %v", mt.Name, err)
		}
	}
	if p.GrainToDate != "" {
		grain, ok := core.ParseTimeGranularity(p.GrainToDate)
		if !ok {
			return nil, parseErrorf("metric %q has invalid grain_to_date %q", mt.Name, p.GrainToDate)
		}
		metric.TypeParams.GrainToDate = &grain
	}
	if c := p.Conversion; c != nil {
		conv := &core.ConversionTypeParams{
			BaseMeasure:       convertMeasureInput(c.BaseMeasure),
			ConversionMeasure: convertMeasureInput(c.ConversionMeasure),
			Entity:            c.Entity,
		}
		if c.Window != "" {
			if conv.Window, err = ParseWindow(c.Window); err != nil {
				return nil, parseErrorf("metric %q: %v", mt.Name, err)
			}
		}
		metric.TypeParams.Conversion = conv
	}
	return metric, nil
}

func convertMeasureInput(in measureInputYAML) core.MetricInputMeasure {
	return core.MetricInputMeasure{Name: in.Name, Filter: in.Filter, JoinToTimespine: in.JoinToTimespine}
}

func convertMetricInputPtr(metric string, in metricInputYAML) (*core.MetricInput, error) {
	input, err := convertMetricInput(metric, in)
	if err != nil {
		return nil, err
	}
	return &input, nil
}

func convertMetricInput(metric string, in metricInputYAML) (core.MetricInput, error) {
	input := core.MetricInput{Name: in.Name, Alias: in.Alias, Filter: in.Filter}
	if in.OffsetWindow != "" {
		w, err := ParseWindow(in.OffsetWindow)
		if err != nil {
			return input, parseErrorf("metric %q: input %q: %v", metric, in.Name, err)
		}
		input.OffsetWindow = w
	}
	if in.OffsetToGrain != "" {
		grain, ok := core.ParseTimeGranularity(in.OffsetToGrain)
		if !ok {
			return input, parseErrorf("metric %q: input %q has invalid offset_to_grain %q", metric, in.Name, in.OffsetToGrain)
		}
		input.OffsetToGrain = &grain
	}
	return input, nil
}

func convertTimeSpine(ts timeSpineYAML) (core.TimeSpine, error) {
	primary, ok := core.ParseTimeGranularity(ts.PrimaryGranularity)
	if !ok {
		return core.TimeSpine{}, parseErrorf("time spine %q has invalid primary_granularity %q", ts.Name, ts.PrimaryGranularity)
	}
	spine := core.TimeSpine{Name: ts.Name, PrimaryGranularity: primary}
	for _, cg := range ts.CustomGranularities {
		base := primary
		if cg.Base != "" {
			if base, ok = core.ParseTimeGranularity(cg.Base); !ok {
				return core.TimeSpine{}, parseErrorf("custom granularity %q has invalid base_granularity %q", cg.Name, cg.Base)
			}
		}
		spine.CustomGranularities = append(spine.CustomGranularities, core.CustomGranularity{Name: cg.Name, BaseGranularity: base})
	}
	return spine, nil
}

// ParseWindow parses a window such as "7 days" or "1 month".
func ParseWindow(s string) (*core.MetricTimeWindow, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return nil, fmt.Errorf("invalid window %q, expected \"<count> <granularity>\"", s)
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("invalid window count in %q", s)
	}
	unit := strings.TrimSuffix(strings.ToLower(fields[1]), "s")
	grain, ok := core.ParseTimeGranularity(unit)
	if !ok {
		return nil, fmt.Errorf("invalid window granularity in %q", s)
	}
	return &core.MetricTimeWindow{Count: count, Granularity: grain}, nil
}
