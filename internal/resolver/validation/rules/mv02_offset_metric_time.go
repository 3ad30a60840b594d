package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/internal/resolver/validation"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

func init() {
	validation.Register(validation.RuleDef{
		ID:          "MV02",
		Name:        "OffsetMetricRequiresMetricTime",
		Description: "Derived metric with a time-offset input queried without metric_time",
		Severity:    core.SeverityError,
		Check:       checkOffsetMetricTime,

		Rationale: `An offset input is shifted along metric_time before it is joined back to
the other inputs. Without a time dimension in the group-by the shift has nothing to align on.`,

		Fix: "Add metric_time at any grain, or the aggregation time dimension of every input measure, to the group-by.",
	})
}

// checkOffsetMetricTime flags derived metrics with an offset input. The issue is
// attributed to the derived metric, not the shifted input.
func checkOffsetMetricTime(ctx *validation.Context) []resolver.Issue {
	if ctx.HasMetricTime() {
		return nil
	}

	var issues []resolver.Issue
	for _, n := range ctx.MetricNodes() {
		if n.Metric.Type != core.MetricTypeDerived || !hasOffsetInput(n.Metric) {
			continue
		}
		if groupsByAllAggTimeDimensions(ctx, n) {
			continue
		}
		issues = append(issues, resolver.Issue{
			RuleID:   "MV02",
			Name:     "OffsetMetricRequiresMetricTime",
			Severity: core.SeverityError,
			Message:  fmt.Sprintf("metric %q has an offset input and must be queried with metric_time", n.Name),
			Path:     n.Path,
		})
	}
	return issues
}

func hasOffsetInput(m *core.Metric) bool {
	for _, in := range m.InputMetrics() {
		if in.HasOffset() {
			return true
		}
	}
	return false
}

// groupsByAllAggTimeDimensions reports whether every measure below n has its
// aggregation time dimension in the group-by.
func groupsByAllAggTimeDimensions(ctx *validation.Context, n *resolver.Node) bool {
	measures := measuresUnder(n)
	if len(measures) == 0 {
		return false
	}
	for _, m := range measures {
		if !ctx.HasAggTimeDimension(m) {
			return false
		}
	}
	return true
}

func measuresUnder(n *resolver.Node) []string {
	if n.Kind == resolver.NodeMeasureSource {
		return []string{n.Name}
	}
	var out []string
	for _, in := range n.Inputs() {
		out = append(out, measuresUnder(in)...)
	}
	return out
}
