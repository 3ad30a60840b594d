package testutil

import "github.com/leapstack-labs/leapmetrics/pkg/core"

func grainPtr(g core.TimeGranularity) *core.TimeGranularity { return &g }

func timeDim(name string, grain core.TimeGranularity) core.Dimension {
	return core.Dimension{Name: name, Type: core.DimensionTypeTime, TimeGranularity: grain}
}

func categoricalDim(name string) core.Dimension {
	return core.Dimension{Name: name, Type: core.DimensionTypeCategorical}
}

func simpleMetric(name, measure string) *core.Metric {
	return &core.Metric{
		Name:       name,
		Type:       core.MetricTypeSimple,
		TypeParams: core.MetricTypeParams{Measure: &core.MetricInputMeasure{Name: measure}},
	}
}

// BookingsManifest returns a small rental marketplace manifest:
//
//	bookings_source  booking(primary) listing(foreign)   ds, is_instant
//	listings_latest  listing(primary) user(foreign)      created_at, country, capacity
//	users_ds_source  user(primary)                       ds, home_state
//	visits_source    visit(primary) user(foreign)        ds, referrer_id
//	buys_source      buy(primary) user(foreign)          ds
//
// Every model has day-grain time dimensions and the single time spine is daily
// with a "martian_day" custom granularity.
func BookingsManifest() *core.Manifest {
	return &core.Manifest{
		SemanticModels: []*core.SemanticModel{
			{
				Name:                    "bookings_source",
				DefaultAggTimeDimension: "ds",
				Entities: []core.Entity{
					{Name: "booking", Kind: core.EntityKindPrimary},
					{Name: "listing", Kind: core.EntityKindForeign},
				},
				Dimensions: []core.Dimension{
					timeDim("ds", core.GranularityDay),
					categoricalDim("is_instant"),
				},
				Measures: []core.Measure{
					{Name: "bookings", Aggregation: core.AggSum},
					{Name: "booking_value", Aggregation: core.AggSum},
				},
			},
			{
				Name:                    "listings_latest",
				DefaultAggTimeDimension: "created_at",
				Entities: []core.Entity{
					{Name: "listing", Kind: core.EntityKindPrimary},
					{Name: "user", Kind: core.EntityKindForeign},
				},
				Dimensions: []core.Dimension{
					timeDim("created_at", core.GranularityDay),
					categoricalDim("country"),
					categoricalDim("capacity"),
				},
				Measures: []core.Measure{
					{Name: "listings", Aggregation: core.AggSum},
				},
			},
			{
				Name: "users_ds_source",
				Entities: []core.Entity{
					{Name: "user", Kind: core.EntityKindPrimary},
				},
				Dimensions: []core.Dimension{
					timeDim("ds", core.GranularityDay),
					categoricalDim("home_state"),
				},
			},
			{
				Name:                    "visits_source",
				DefaultAggTimeDimension: "ds",
				Entities: []core.Entity{
					{Name: "visit", Kind: core.EntityKindPrimary},
					{Name: "user", Kind: core.EntityKindForeign},
				},
				Dimensions: []core.Dimension{
					timeDim("ds", core.GranularityDay),
					categoricalDim("referrer_id"),
				},
				Measures: []core.Measure{
					{Name: "visits", Aggregation: core.AggSum},
				},
			},
			{
				Name:                    "buys_source",
				DefaultAggTimeDimension: "ds",
				Entities: []core.Entity{
					{Name: "buy", Kind: core.EntityKindPrimary},
					{Name: "user", Kind: core.EntityKindForeign},
				},
				Dimensions: []core.Dimension{
					timeDim("ds", core.GranularityDay),
				},
				Measures: []core.Measure{
					{Name: "buys", Aggregation: core.AggSum},
				},
			},
		},
		Metrics: []*core.Metric{
			simpleMetric("bookings", "bookings"),
			simpleMetric("booking_value", "booking_value"),
			simpleMetric("listings", "listings"),
			simpleMetric("visits", "visits"),
			{
				Name: "bookings_per_listing",
				Type: core.MetricTypeRatio,
				TypeParams: core.MetricTypeParams{
					Numerator:   &core.MetricInput{Name: "bookings"},
					Denominator: &core.MetricInput{Name: "listings"},
				},
			},
			{
				Name: "booking_value_per_booking",
				Type: core.MetricTypeDerived,
				TypeParams: core.MetricTypeParams{
					Expr:    "booking_value / bookings",
					Metrics: []core.MetricInput{{Name: "booking_value"}, {Name: "bookings"}},
				},
			},
			{
				Name: "bookings_growth_2_weeks",
				Type: core.MetricTypeDerived,
				TypeParams: core.MetricTypeParams{
					Expr: "bookings - bookings_2_weeks_ago",
					Metrics: []core.MetricInput{
						{Name: "bookings"},
						{
							Name:         "bookings",
							Alias:        "bookings_2_weeks_ago",
							OffsetWindow: &core.MetricTimeWindow{Count: 14, Granularity: core.GranularityDay},
						},
					},
				},
			},
			{
				Name: "bookings_mtd",
				Type: core.MetricTypeCumulative,
				TypeParams: core.MetricTypeParams{
					Measure:     &core.MetricInputMeasure{Name: "bookings"},
					GrainToDate: grainPtr(core.GranularityMonth),
				},
			},
			{
				Name: "trailing_7_days_bookings",
				Type: core.MetricTypeCumulative,
				TypeParams: core.MetricTypeParams{
					Measure: &core.MetricInputMeasure{Name: "bookings"},
					Window:  &core.MetricTimeWindow{Count: 7, Granularity: core.GranularityDay},
				},
			},
			{
				Name: "visit_buy_conversion_rate",
				Type: core.MetricTypeConversion,
				TypeParams: core.MetricTypeParams{
					Conversion: &core.ConversionTypeParams{
						BaseMeasure:       core.MetricInputMeasure{Name: "visits"},
						ConversionMeasure: core.MetricInputMeasure{Name: "buys"},
						Entity:            "user",
						Window:            &core.MetricTimeWindow{Count: 7, Granularity: core.GranularityDay},
					},
				},
			},
		},
		ProjectConfiguration: core.ProjectConfiguration{
			TimeSpines: []core.TimeSpine{
				{
					Name:               "time_spine_day",
					PrimaryGranularity: core.GranularityDay,
					CustomGranularities: []core.CustomGranularity{
						{Name: "martian_day", BaseGranularity: core.GranularityDay},
					},
				},
			},
		},
	}
}
