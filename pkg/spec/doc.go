// Package spec defines the typed group-by items a query can request.
//
// A LinkableInstanceSpec is one of DimensionSpec, TimeDimensionSpec, EntitySpec
// or GroupByMetricSpec. Each carries an element name and the ordered entity
// links (join path, outermost first) used to reach it, and has a qualified
// dunder name such as "listing__user__country" or "metric_time__month".
// Specs with the same qualified name denote the same logical item.
package spec
