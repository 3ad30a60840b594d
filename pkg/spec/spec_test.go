package spec

import (
	"testing"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func links(names ...string) []core.EntityReference {
	return core.EntityReferencesFromNames(names)
}

func TestQualifiedName(t *testing.T) {
	year := core.DatePartYear
	month := StandardGrain(core.GranularityMonth)

	tests := []struct {
		name string
		spec LinkableInstanceSpec
		want string
	}{
		{
			name: "local dimension",
			spec: DimensionSpec{ElementName: "is_instant", EntityLinks: links("booking")},
			want: "booking__is_instant",
		},
		{
			name: "multi hop dimension",
			spec: DimensionSpec{ElementName: "country", EntityLinks: links("listing", "user")},
			want: "listing__user__country",
		},
		{
			name: "metric time at grain",
			spec: TimeDimensionSpec{ElementName: "metric_time", Grain: &month},
			want: "metric_time__month",
		},
		{
			name: "date part",
			spec: TimeDimensionSpec{ElementName: "metric_time", DatePart: &year},
			want: "metric_time__extract_year",
		},
		{
			name: "custom grain",
			spec: TimeDimensionSpec{
				ElementName: "ds",
				EntityLinks: links("booking"),
				Grain:       &TimeGrain{Name: "fiscal_quarter", Base: core.GranularityDay},
			},
			want: "booking__ds__fiscal_quarter",
		},
		{
			name: "entity without links",
			spec: EntitySpec{ElementName: "listing"},
			want: "listing",
		},
		{
			name: "group by metric",
			spec: GroupByMetricSpec{
				ElementName:               "bookings",
				EntityLinks:               links("listing"),
				MetricSubqueryEntityLinks: links("listing"),
			},
			want: "listing__bookings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.QualifiedName())
		})
	}
}

func TestPropertySet(t *testing.T) {
	s := NewPropertySet(PropertyLocal, PropertyEntity)

	assert.True(t, s.Has(PropertyLocal))
	assert.True(t, s.Has(PropertyEntity))
	assert.False(t, s.Has(PropertyJoined))
	assert.True(t, s.Intersects(NewPropertySet(PropertyJoined, PropertyEntity)))
	assert.False(t, s.Intersects(NewPropertySet(PropertyJoined)))
	assert.Equal(t, []string{"local", "entity"}, s.Names())

	p, ok := ParseElementProperty("MULTI_HOP")
	require.True(t, ok)
	assert.Equal(t, PropertyMultiHop, p)
}

func TestAnnotatedSpec_MergeKeepsEverything(t *testing.T) {
	listings := core.NewSemanticModelReference("listings_source")
	bookings := core.NewSemanticModelReference("bookings_source")
	users := core.NewSemanticModelReference("users_source")

	a := AnnotatedSpec{
		Spec:                      DimensionSpec{ElementName: "country", EntityLinks: links("listing")},
		Properties:                NewPropertySet(PropertyJoined),
		OriginModels:              []core.SemanticModelReference{listings},
		DerivedFromSemanticModels: []core.SemanticModelReference{bookings, listings},
	}
	b := AnnotatedSpec{
		Spec:                      DimensionSpec{ElementName: "country", EntityLinks: links("listing")},
		Properties:                NewPropertySet(PropertyLocal),
		OriginModels:              []core.SemanticModelReference{listings},
		DerivedFromSemanticModels: []core.SemanticModelReference{users},
	}

	for _, merged := range []AnnotatedSpec{a.Merge(b), b.Merge(a)} {
		assert.True(t, merged.Properties.Has(PropertyJoined))
		assert.True(t, merged.Properties.Has(PropertyLocal))
		assert.Equal(t, []core.SemanticModelReference{listings}, merged.OriginModels)
		assert.Equal(t, []core.SemanticModelReference{bookings, listings, users}, merged.DerivedFromSemanticModels)
	}
}

func TestLinkableSpecSet_Dedupes(t *testing.T) {
	day := StandardGrain(core.GranularityDay)
	set := NewLinkableSpecSet(
		DimensionSpec{ElementName: "country", EntityLinks: links("listing")},
		TimeDimensionSpec{ElementName: "metric_time", Grain: &day},
		DimensionSpec{ElementName: "country", EntityLinks: links("listing")},
		EntitySpec{ElementName: "listing"},
	)

	assert.Equal(t, 3, set.Len())
	assert.Len(t, set.Dimensions, 1)
	assert.Equal(t, []string{"listing", "listing__country", "metric_time__day"}, set.QualifiedNames())
	assert.True(t, set.Contains("metric_time__day"))

	merged := set.Merge(NewLinkableSpecSet(EntitySpec{ElementName: "user"}))
	assert.Equal(t, 4, merged.Len())
}

func TestEqual(t *testing.T) {
	a := GroupByMetricSpec{ElementName: "bookings", EntityLinks: links("listing"), MetricSubqueryEntityLinks: links("listing")}
	b := GroupByMetricSpec{ElementName: "bookings", EntityLinks: links("listing"), MetricSubqueryEntityLinks: links("user")}

	assert.True(t, Equal(a, a))
	assert.False(t, Equal(a, b))
	assert.False(t, Equal(a, DimensionSpec{ElementName: "bookings", EntityLinks: links("listing")}))
}
