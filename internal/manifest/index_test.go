package manifest_test

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapmetrics/internal/manifest"
	"github.com/leapstack-labs/leapmetrics/internal/testutil"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *manifest.Index {
	t.Helper()
	idx, err := manifest.NewIndex(testutil.BookingsManifest())
	require.NoError(t, err)
	return idx
}

func TestIndex_Lookups(t *testing.T) {
	idx := newIndex(t)

	model, ok := idx.MeasureModel("bookings")
	require.True(t, ok)
	assert.Equal(t, "bookings_source", model.Name)

	_, ok = idx.MeasureModel("nope")
	assert.False(t, ok)

	names := make([]string, 0)
	for _, m := range idx.ModelsWithEntity("user") {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"buys_source", "listings_latest", "users_ds_source", "visits_source"}, names)

	assert.Equal(t, []string{
		"booking_value",
		"booking_value_per_booking",
		"bookings",
		"bookings_growth_2_weeks",
		"bookings_mtd",
		"bookings_per_listing",
		"listings",
		"trailing_7_days_bookings",
		"visit_buy_conversion_rate",
		"visits",
	}, idx.MetricNames())
	_, ok = idx.Metric("bookings_per_listing")
	assert.True(t, ok)
}

func TestIndex_AggTimeDimension(t *testing.T) {
	idx := newIndex(t)

	model, dim, err := idx.AggTimeDimension("listings")
	require.NoError(t, err)
	assert.Equal(t, "listings_latest", model.Name)
	assert.Equal(t, "created_at", dim.Name)

	m := testutil.BookingsManifest()
	m.SemanticModels[0].DefaultAggTimeDimension = ""
	idx, err = manifest.NewIndex(m)
	require.NoError(t, err)

	_, _, err = idx.AggTimeDimension("bookings")
	var invalid *manifest.InvalidManifestError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "bookings", invalid.Element)
}

func TestIndex_MetricMeasures(t *testing.T) {
	idx := newIndex(t)

	tests := []struct {
		metric string
		want   []string
	}{
		{"bookings", []string{"bookings"}},
		{"bookings_per_listing", []string{"bookings", "listings"}},
		{"booking_value_per_booking", []string{"booking_value", "bookings"}},
		{"bookings_growth_2_weeks", []string{"bookings"}},
		{"visit_buy_conversion_rate", []string{"buys", "visits"}},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			var got []string
			for _, ref := range idx.MetricMeasures(tt.metric) {
				got = append(got, ref.ElementName)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_MetricDefiningEntities(t *testing.T) {
	idx := newIndex(t)

	assert.Equal(t, []string{"booking", "listing"}, idx.MetricDefiningEntities("bookings"))
	assert.Equal(t, []string{"listing"}, idx.MetricDefiningEntities("bookings_per_listing"))
	assert.Equal(t, []string{"user"}, idx.MetricDefiningEntities("visit_buy_conversion_rate"))
}

func TestIndex_Granularities(t *testing.T) {
	idx := newIndex(t)

	grain, ok := idx.ParseGrain("MONTH")
	require.True(t, ok)
	assert.Equal(t, "month", grain.Name)
	assert.False(t, grain.IsCustom())

	grain, ok = idx.ParseGrain("martian_day")
	require.True(t, ok)
	assert.True(t, grain.IsCustom())
	assert.Equal(t, core.GranularityDay, grain.Base)

	assert.False(t, idx.IsGranularityName("fortnight"))
	assert.Equal(t, []string{"martian_day"}, idx.CustomGranularityNames())

	minGrain, ok := idx.MinModelTimeGranularity()
	require.True(t, ok)
	assert.Equal(t, core.GranularityDay, minGrain)
}

func TestNewIndex_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *core.Manifest)
	}{
		{
			name: "duplicate model",
			mutate: func(m *core.Manifest) {
				m.SemanticModels = append(m.SemanticModels, &core.SemanticModel{Name: "bookings_source"})
			},
		},
		{
			name: "duplicate measure",
			mutate: func(m *core.Manifest) {
				m.SemanticModels[1].Measures = append(m.SemanticModels[1].Measures, core.Measure{Name: "bookings"})
			},
		},
		{
			name: "unknown measure",
			mutate: func(m *core.Manifest) {
				m.Metrics[0].TypeParams.Measure.Name = "missing"
			},
		},
		{
			name: "unknown input metric",
			mutate: func(m *core.Manifest) {
				m.Metrics[4].TypeParams.Numerator.Name = "missing"
			},
		},
		{
			name: "metric cycle",
			mutate: func(m *core.Manifest) {
				m.Metrics = append(m.Metrics,
					&core.Metric{Name: "a", Type: core.MetricTypeDerived, TypeParams: core.MetricTypeParams{Metrics: []core.MetricInput{{Name: "b"}}}},
					&core.Metric{Name: "b", Type: core.MetricTypeDerived, TypeParams: core.MetricTypeParams{Metrics: []core.MetricInput{{Name: "a"}}}},
				)
			},
		},
		{
			name: "custom granularity shadows standard",
			mutate: func(m *core.Manifest) {
				m.ProjectConfiguration.TimeSpines[0].CustomGranularities = append(
					m.ProjectConfiguration.TimeSpines[0].CustomGranularities,
					core.CustomGranularity{Name: "Day", BaseGranularity: core.GranularityDay},
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testutil.BookingsManifest()
			tt.mutate(m)
			_, err := manifest.NewIndex(m)
			var invalid *manifest.InvalidManifestError
			assert.True(t, errors.As(err, &invalid), "expected *InvalidManifestError, got %v", err)
		})
	}
}
