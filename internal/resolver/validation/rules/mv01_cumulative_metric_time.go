package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/internal/resolver/validation"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

func init() {
	validation.Register(validation.RuleDef{
		ID:          "MV01",
		Name:        "CumulativeMetricRequiresMetricTime",
		Description: "Windowed or grain-to-date cumulative metric queried without metric_time",
		Severity:    core.SeverityError,
		Check:       checkCumulativeMetricTime,

		Rationale: `A cumulative metric with a window or grain-to-date accumulates over time.
Without metric_time (or the measure's aggregation time dimension) in the group-by
there is no time axis to accumulate along.`,

		Fix: "Add metric_time at any grain, or the measure's aggregation time dimension, to the group-by.",
	})
}

// checkCumulativeMetricTime flags bounded cumulative metrics when neither
// metric_time nor their measure's aggregation time dimension is grouped by.
func checkCumulativeMetricTime(ctx *validation.Context) []resolver.Issue {
	if ctx.HasMetricTime() {
		return nil
	}

	var issues []resolver.Issue
	for _, n := range ctx.MetricNodes() {
		if !n.Metric.HasCumulativeBound() {
			continue
		}
		if m := n.Metric.TypeParams.Measure; m != nil && ctx.HasAggTimeDimension(m.Name) {
			continue
		}
		issues = append(issues, resolver.Issue{
			RuleID:   "MV01",
			Name:     "CumulativeMetricRequiresMetricTime",
			Severity: core.SeverityError,
			Message:  fmt.Sprintf("cumulative metric %q must be queried with metric_time or its aggregation time dimension", n.Name),
			Path:     n.Path,
		})
	}
	return issues
}
