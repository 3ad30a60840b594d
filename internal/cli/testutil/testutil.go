// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ManifestYAML is a two-model marketplace manifest with simple, cumulative and
// derived metrics.
const ManifestYAML = `semantic_models:
  - name: bookings_source
    defaults:
      agg_time_dimension: ds
    entities:
      - name: booking
        type: primary
      - name: listing
        type: foreign
    dimensions:
      - name: ds
        type: time
        type_params:
          time_granularity: day
      - name: is_instant
        type: categorical
    measures:
      - name: bookings
        agg: sum
        expr: "1"
  - name: listings_latest
    defaults:
      agg_time_dimension: created_at
    entities:
      - name: listing
        type: primary
    dimensions:
      - name: created_at
        type: time
        type_params:
          time_granularity: day
      - name: country
        type: categorical
    measures:
      - name: listings
        agg: sum
        expr: "1"
metrics:
  - name: bookings
    type: simple
    type_params:
      measure: bookings
  - name: listings
    type: simple
    type_params:
      measure: listings
  - name: bookings_7d
    type: cumulative
    type_params:
      measure: bookings
      window: 7 days
  - name: bookings_wow
    type: derived
    type_params:
      expr: bookings - bookings_last_week
      metrics:
        - bookings
        - name: bookings
          alias: bookings_last_week
          offset_window: 1 week
project_configuration:
  time_spines:
    - name: time_spine_day
      primary_granularity: day
`

// QueriesYAML is a query suite that resolves cleanly against ManifestYAML.
const QueriesYAML = `queries:
  - name: bookings_by_country
    metrics: [bookings]
    group_by: [listing__country, metric_time__week]
    order_by: [-bookings]
  - name: rolling_bookings
    metrics: [bookings_7d]
    group_by: [metric_time__day]
  - name: common_items
    metrics: [bookings, listings]
    group_by: ["Dimension('listing__country')"]
    where: ["{{ Dimension('listing__country') }} = 'US'"]
`

// ConfigYAML points at the files written by SetupTestProject.
const ConfigYAML = `manifest: semantic_manifest.yaml
queries: queries.yaml
catalog_path: .leapmetrics/catalog.db
`

// SetupTestProject creates a temporary project with a config, manifest and query suite.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	WriteFile(t, tmpDir, "leapmetrics.yaml", ConfigYAML)
	WriteFile(t, tmpDir, "semantic_manifest.yaml", ManifestYAML)
	WriteFile(t, tmpDir, "queries.yaml", QueriesYAML)
	return tmpDir
}

// WriteFile writes content to dir/name, failing the test on error.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
