package pattern

import (
	"testing"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
	"github.com/stretchr/testify/assert"
)

func links(names ...string) []core.EntityReference {
	return core.EntityReferencesFromNames(names)
}

func timeDim(element string, g core.TimeGranularity, entityLinks ...string) spec.TimeDimensionSpec {
	grain := spec.StandardGrain(g)
	return spec.TimeDimensionSpec{ElementName: element, EntityLinks: links(entityLinks...), Grain: &grain}
}

func datePart(element string, p core.DatePart, entityLinks ...string) spec.TimeDimensionSpec {
	return spec.TimeDimensionSpec{ElementName: element, EntityLinks: links(entityLinks...), DatePart: &p}
}

func qualifiedNames(specs []spec.LinkableInstanceSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.QualifiedName()
	}
	return names
}

func TestDunder_ShortestSuffix(t *testing.T) {
	candidates := []spec.LinkableInstanceSpec{
		spec.DimensionSpec{ElementName: "country", EntityLinks: links("listing", "user")},
		spec.DimensionSpec{ElementName: "country", EntityLinks: links("listing")},
	}

	p := Dunder(spec.StructuredName{EntityLinkNames: []string{"listing"}, ElementName: "country"})
	assert.Equal(t, []string{"listing__country"}, qualifiedNames(p.Match(candidates)))
}

func TestDunder_SuffixNotPrefix(t *testing.T) {
	candidates := []spec.LinkableInstanceSpec{
		spec.DimensionSpec{ElementName: "home_state", EntityLinks: links("listing", "user")},
		spec.DimensionSpec{ElementName: "home_state", EntityLinks: links("user", "listing")},
	}

	p := Dunder(spec.StructuredName{EntityLinkNames: []string{"user"}, ElementName: "home_state"})
	assert.Equal(t, []string{"listing__user__home_state"}, qualifiedNames(p.Match(candidates)))
}

func TestDunder_MetricTimeGrains(t *testing.T) {
	candidates := []spec.LinkableInstanceSpec{
		timeDim("metric_time", core.GranularityWeek),
		timeDim("metric_time", core.GranularityMonth),
		timeDim("metric_time", core.GranularityYear),
		datePart("metric_time", core.DatePartYear),
	}

	all := Dunder(spec.StructuredName{ElementName: "metric_time"})
	assert.Equal(t,
		[]string{"metric_time__week", "metric_time__month", "metric_time__year"},
		qualifiedNames(all.Match(candidates)),
	)

	month := Dunder(spec.StructuredName{ElementName: "metric_time", GranularityName: "MONTH"})
	assert.Equal(t, []string{"metric_time__month"}, qualifiedNames(month.Match(candidates)))
}

func TestTypedPatterns(t *testing.T) {
	year := core.DatePartYear
	candidates := []spec.LinkableInstanceSpec{
		spec.DimensionSpec{ElementName: "listing", EntityLinks: links("booking")},
		spec.EntitySpec{ElementName: "listing", EntityLinks: links("booking")},
		timeDim("ds", core.GranularityDay, "booking"),
		timeDim("ds", core.GranularityMonth, "booking"),
		datePart("ds", core.DatePartYear, "booking"),
		spec.GroupByMetricSpec{ElementName: "bookings", EntityLinks: links("listing"), MetricSubqueryEntityLinks: links("listing")},
		spec.GroupByMetricSpec{ElementName: "bookings", EntityLinks: links("listing", "user"), MetricSubqueryEntityLinks: links("user")},
	}

	tests := []struct {
		name    string
		pattern EntityLinkPattern
		want    []string
	}{
		{
			name:    "entity excludes dimension of same name",
			pattern: Entity(spec.StructuredName{EntityLinkNames: []string{"booking"}, ElementName: "listing"}),
			want:    []string{"booking__listing"},
		},
		{
			name:    "dimension matches time dimensions without date parts",
			pattern: Dimension(spec.StructuredName{EntityLinkNames: []string{"booking"}, ElementName: "ds"}),
			want:    []string{"booking__ds__day", "booking__ds__month"},
		},
		{
			name:    "time dimension with grain",
			pattern: TimeDimension(spec.StructuredName{EntityLinkNames: []string{"booking"}, ElementName: "ds", GranularityName: "month"}),
			want:    []string{"booking__ds__month"},
		},
		{
			name:    "time dimension with date part",
			pattern: TimeDimension(spec.StructuredName{EntityLinkNames: []string{"booking"}, ElementName: "ds", DatePart: &year}),
			want:    []string{"booking__ds__extract_year"},
		},
		{
			name:    "group-by metric subquery links are exact",
			pattern: GroupByMetric(spec.StructuredName{ElementName: "bookings"}, links("user")),
			want:    []string{"listing__user__bookings"},
		},
		{
			name:    "group-by metric with entity path",
			pattern: GroupByMetric(spec.StructuredName{EntityLinkNames: []string{"listing"}, ElementName: "bookings"}, links("listing")),
			want:    []string{"listing__bookings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, qualifiedNames(tt.pattern.Match(candidates)))
		})
	}
}

func TestEntityLinkPattern_OnlyComparedFields(t *testing.T) {
	candidates := []spec.LinkableInstanceSpec{
		spec.DimensionSpec{ElementName: "country", EntityLinks: links("listing", "user")},
		spec.DimensionSpec{ElementName: "country", EntityLinks: links("listing")},
		spec.DimensionSpec{ElementName: "capacity", EntityLinks: links("listing")},
	}

	p := EntityLinkPattern{ElementName: "country", Compare: FieldElementName}
	assert.Len(t, p.Match(candidates), 2, "links are ignored unless compared, so no shortest tie-break")
}

func TestMinimumTimeGrain(t *testing.T) {
	martian := spec.TimeGrain{Name: "martian_day", Base: core.GranularityDay}
	candidates := []spec.LinkableInstanceSpec{
		timeDim("metric_time", core.GranularityMonth),
		spec.TimeDimensionSpec{ElementName: "metric_time", Grain: &martian},
		timeDim("metric_time", core.GranularityDay),
		timeDim("ds", core.GranularityWeek, "booking"),
		timeDim("ds", core.GranularityYear, "booking"),
		datePart("metric_time", core.DatePartMonth),
		spec.DimensionSpec{ElementName: "country", EntityLinks: links("listing")},
	}

	got := MinimumTimeGrain{}.Match(candidates)
	assert.Equal(t,
		[]string{"metric_time__day", "booking__ds__week", "metric_time__extract_month", "listing__country"},
		qualifiedNames(got),
	)
}
