package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"), testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func collect(t *testing.T) []MetricItems {
	t.Helper()
	r, err := resolver.NewForManifest(testutil.BookingsManifest(), resolver.Options{MaxEntityLinks: 2})
	require.NoError(t, err)
	metrics, err := Collect(r)
	require.NoError(t, err)
	return metrics
}

func TestStore_OpenMigrates(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"exports", "metrics", "group_by_items"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s", table)
		require.NoError(t, rows.Close())
	}
}

func TestStore_InMemory(t *testing.T) {
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.LatestExport(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog exports")
}

func TestStore_Export(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	metrics := collect(t)

	exp, err := store.Export(ctx, "manifest.yaml", 2, metrics)
	require.NoError(t, err)
	assert.NotEmpty(t, exp.ID)
	assert.Equal(t, len(metrics), exp.MetricCount)
	assert.Positive(t, exp.ItemCount)

	latest, err := store.LatestExport(ctx)
	require.NoError(t, err)
	assert.Equal(t, exp.ID, latest.ID)
	assert.Equal(t, exp.ItemCount, latest.ItemCount)
	assert.Equal(t, "manifest.yaml", latest.ManifestPath)

	items, err := store.ItemsForMetric(ctx, exp.ID, "bookings")
	require.NoError(t, err)
	byName := make(map[string]Item, len(items))
	for _, item := range items {
		byName[item.QualifiedName] = item
	}

	country, ok := byName["listing__country"]
	require.True(t, ok)
	assert.Equal(t, "country", country.ElementName)
	assert.Equal(t, []string{"listing"}, country.EntityLinks)
	assert.Contains(t, country.Properties, "joined")

	month, ok := byName["metric_time__month"]
	require.True(t, ok)
	assert.Equal(t, "month", month.Grain)
	assert.Empty(t, month.EntityLinks)

	year, ok := byName["metric_time__extract_year"]
	require.True(t, ok)
	assert.Equal(t, "year", year.DatePart)

	mtd, err := store.ItemsForMetric(ctx, exp.ID, "bookings_mtd")
	require.NoError(t, err)
	for _, item := range mtd {
		assert.Empty(t, item.DatePart, item.QualifiedName)
	}
}

func TestStore_MetricsWithItem(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	exp, err := store.Export(ctx, "manifest.yaml", 2, collect(t))
	require.NoError(t, err)

	names, err := store.MetricsWithItem(ctx, exp.ID, "listing__country")
	require.NoError(t, err)
	assert.Contains(t, names, "bookings")
	assert.Contains(t, names, "bookings_per_listing")
	assert.NotContains(t, names, "visits")
}

func TestStore_DeleteExport(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	exp, err := store.Export(ctx, "manifest.yaml", 2, collect(t))
	require.NoError(t, err)
	require.NoError(t, store.DeleteExport(ctx, exp.ID))

	items, err := store.ItemsForMetric(ctx, exp.ID, "bookings")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = store.LatestExport(ctx)
	require.Error(t, err)
}
