package manifest

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	m, err := LoadFile("testdata/bookings.yaml")
	require.NoError(t, err)

	require.Len(t, m.SemanticModels, 2)
	bookings := m.SemanticModels[0]
	assert.Equal(t, "bookings_source", bookings.Name)
	assert.Equal(t, "ds", bookings.DefaultAggTimeDimension)
	assert.Equal(t, core.EntityKindForeign, bookings.Entities[1].Kind)
	assert.Equal(t, "listing_id", bookings.Entities[1].Expr)

	scd := m.SemanticModels[1]
	assert.True(t, scd.HasValidityWindow())
	assert.Equal(t, core.EntityKindNatural, scd.Entities[0].Kind)

	require.Len(t, m.Metrics, 3)
	assert.Equal(t, []string{"{{ Dimension('booking__is_instant') }}"}, m.Metrics[0].Filter)
	assert.Equal(t, "bookings", m.Metrics[0].TypeParams.Measure.Name)

	cumulative := m.Metrics[1]
	assert.True(t, cumulative.TypeParams.Measure.JoinToTimespine)
	assert.Equal(t, &core.MetricTimeWindow{Count: 7, Granularity: core.GranularityDay}, cumulative.TypeParams.Window)

	derived := m.Metrics[2]
	require.Len(t, derived.TypeParams.Metrics, 2)
	assert.Equal(t, "bookings", derived.TypeParams.Metrics[0].Name)
	assert.True(t, derived.TypeParams.Metrics[1].HasOffset())

	grains := m.CustomGranularities()
	require.Len(t, grains, 1)
	assert.Equal(t, core.GranularityDay, grains[0].BaseGranularity)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "unknown top-level field",
			input:   "semantic_modelz: []\n",
			wantMsg: "semantic_modelz",
		},
		{
			name: "unknown nested field",
			input: `semantic_models:
  - name: m
    entities:
      - name: e
        type: primary
        cardinality: one
`,
			wantMsg: "cardinality",
		},
		{
			name: "unknown field in measure input mapping",
			input: `metrics:
  - name: x
    type: simple
    type_params:
      measure:
        name: m
        fill_nulls: 0
`,
			wantMsg: "fill_nulls",
		},
		{
			name: "invalid entity type",
			input: `semantic_models:
  - name: m
    entities:
      - name: e
        type: surrogate
`,
			wantMsg: "invalid type",
		},
		{
			name: "time dimension without granularity",
			input: `semantic_models:
  - name: m
    dimensions:
      - name: ds
        type: time
`,
			wantMsg: "time_granularity",
		},
		{
			name: "invalid metric type",
			input: `metrics:
  - name: x
    type: weird
`,
			wantMsg: "invalid type",
		},
		{
			name: "bad window",
			input: `metrics:
  - name: x
    type: cumulative
    type_params:
      measure: m
      window: seven days
`,
			wantMsg: "window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	m, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, m.SemanticModels)
	assert.Empty(t, m.Metrics)
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		input string
		want  core.MetricTimeWindow
		ok    bool
	}{
		{"7 days", core.MetricTimeWindow{Count: 7, Granularity: core.GranularityDay}, true},
		{"1 month", core.MetricTimeWindow{Count: 1, Granularity: core.GranularityMonth}, true},
		{"2 Weeks", core.MetricTimeWindow{Count: 2, Granularity: core.GranularityWeek}, true},
		{"days", core.MetricTimeWindow{}, false},
		{"3 fortnights", core.MetricTimeWindow{}, false},
		{"-1 day", core.MetricTimeWindow{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			w, err := ParseWindow(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *w)
		})
	}
}
