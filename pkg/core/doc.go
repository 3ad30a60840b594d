// Package core defines the shared language of the leapmetrics system.
//
// This package contains:
//   - References (entity, dimension, measure, metric, semantic model)
//   - Semantic manifest data (SemanticModel, Entity, Dimension, Measure, Metric)
//   - Time vocabulary (TimeGranularity, DatePart)
//   - Issue severity
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
