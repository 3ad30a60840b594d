// Package rules registers the metric-semantics validation rules.
// Import this package to register them with the validation registry:
//
//   - MV01: Cumulative metric requires metric_time
//   - MV02: Offset metric requires metric_time
package rules
