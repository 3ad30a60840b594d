package pattern

import (
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// MinimumTimeGrain keeps, for each time dimension, only the candidate at the finest
// grain. Date-part specs and non-time specs pass through unchanged.
type MinimumTimeGrain struct{}

// Match applies the tie-break, preserving input order.
func (MinimumTimeGrain) Match(candidates []spec.LinkableInstanceSpec) []spec.LinkableInstanceSpec {
	finest := make(map[string]spec.TimeDimensionSpec)
	for _, c := range candidates {
		td, ok := c.(spec.TimeDimensionSpec)
		if !ok || td.DatePart != nil || td.Grain == nil {
			continue
		}
		key := grainlessName(td)
		best, seen := finest[key]
		if !seen || finerThan(*td.Grain, *best.Grain) {
			finest[key] = td
		}
	}

	var out []spec.LinkableInstanceSpec
	for _, c := range candidates {
		td, ok := c.(spec.TimeDimensionSpec)
		if !ok || td.DatePart != nil || td.Grain == nil {
			out = append(out, c)
			continue
		}
		if best := finest[grainlessName(td)]; best.Grain.Name == td.Grain.Name {
			out = append(out, c)
		}
	}
	return out
}

func grainlessName(td spec.TimeDimensionSpec) string {
	n := td.StructuredName()
	n.GranularityName = ""
	return n.QualifiedName()
}

// finerThan orders grains by base granularity; a standard grain beats a custom
// grain with the same base.
func finerThan(a, b spec.TimeGrain) bool {
	if a.Base != b.Base {
		return a.Base.IsFinerThan(b.Base)
	}
	return !a.IsCustom() && b.IsCustom()
}
