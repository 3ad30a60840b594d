package validation

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/internal/testutil"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveWith(t *testing.T, analyzer func(*resolver.Resolver) *Analyzer, q resolver.Query) *resolver.Resolution {
	t.Helper()
	base, err := resolver.NewForManifest(testutil.BookingsManifest(), resolver.Options{MaxEntityLinks: 2})
	require.NoError(t, err)

	r, err := resolver.New(resolver.Config{
		Index:      base.Index(),
		Sets:       base.Sets(),
		Validators: []resolver.Validator{analyzer(base)},
	})
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)
	return res
}

func registerTestRule() {
	Register(RuleDef{
		ID:       "TEST01",
		Name:     "TestRule",
		Severity: core.SeverityWarning,
		Check: func(ctx *Context) []resolver.Issue {
			var issues []resolver.Issue
			for _, n := range ctx.MetricNodes() {
				issues = append(issues, resolver.Issue{
					RuleID:   "TEST01",
					Name:     "TestRule",
					Severity: core.SeverityWarning,
					Message:  "metric " + n.Name,
					Path:     n.Path,
				})
			}
			return issues
		},
	})
}

func TestAnalyzer_NoRules(t *testing.T) {
	Clear()

	res := resolveWith(t, func(r *resolver.Resolver) *Analyzer {
		return NewAnalyzer(r.Index(), nil)
	}, resolver.Query{Metrics: []string{"bookings"}})
	assert.Empty(t, res.Issues)
}

func TestAnalyzer_NilResolution(t *testing.T) {
	assert.Nil(t, NewAnalyzer(nil, nil).Validate(nil))
}

func TestAnalyzer_DisableRule(t *testing.T) {
	Clear()
	registerTestRule()
	q := resolver.Query{Metrics: []string{"booking_value_per_booking"}}

	res := resolveWith(t, func(r *resolver.Resolver) *Analyzer {
		return NewAnalyzer(r.Index(), nil)
	}, q)
	// derived metric plus both inputs
	require.Len(t, res.Issues, 3)
	paths := make([]string, len(res.Issues))
	for i, issue := range res.Issues {
		paths[i] = issue.Path.String()
	}
	assert.Contains(t, paths, "Query -> Metric(booking_value_per_booking) -> Metric(booking_value)")

	res = resolveWith(t, func(r *resolver.Resolver) *Analyzer {
		a := NewAnalyzer(r.Index(), nil)
		a.Disable("TEST01")
		return a
	}, q)
	assert.Empty(t, res.Issues)
}

func TestAnalyzer_SeverityOverride(t *testing.T) {
	Clear()
	registerTestRule()

	cfg := NewAnalyzerConfig()
	cfg.SeverityOverrides["TEST01"] = core.SeverityError
	res := resolveWith(t, func(r *resolver.Resolver) *Analyzer {
		return NewAnalyzer(r.Index(), cfg)
	}, resolver.Query{Metrics: []string{"bookings"}})

	require.Len(t, res.Issues, 1)
	assert.Equal(t, core.SeverityError, res.Issues[0].Severity)
	assert.True(t, res.Issues.HasErrors())
}

func TestRegistry(t *testing.T) {
	Clear()
	Register(RuleDef{ID: "B01", Name: "b"})
	Register(RuleDef{ID: "A01", Name: "a"})

	assert.Equal(t, 2, Count())
	all := GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "A01", all[0].ID)

	rule, ok := GetByID("B01")
	require.True(t, ok)
	assert.Equal(t, "b", rule.Name)

	_, ok = GetByID("missing")
	assert.False(t, ok)
}

func TestContext_TimeChecks(t *testing.T) {
	Clear()
	var seen []bool
	Register(RuleDef{
		ID: "TEST02",
		Check: func(ctx *Context) []resolver.Issue {
			seen = append(seen, ctx.HasMetricTime(), ctx.HasAggTimeDimension("bookings"))
			return nil
		},
	})
	newAnalyzer := func(r *resolver.Resolver) *Analyzer { return NewAnalyzer(r.Index(), nil) }

	resolveWith(t, newAnalyzer, resolver.Query{Metrics: []string{"bookings"}, GroupBy: []string{"TimeDimension('metric_time', date_part_name='year')"}})
	resolveWith(t, newAnalyzer, resolver.Query{Metrics: []string{"bookings"}, GroupBy: []string{"booking__ds__month"}})
	resolveWith(t, newAnalyzer, resolver.Query{Metrics: []string{"bookings"}, GroupBy: []string{"listing__created_at"}})

	assert.Equal(t, []bool{true, false, false, true, false, false}, seen)
}
