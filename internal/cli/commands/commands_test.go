package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmetrics/internal/cli/testutil"
	"github.com/leapstack-labs/leapmetrics/internal/config"
)

// setupProject writes a test project, changes into it and returns a context
// carrying its loaded config.
func setupProject(t *testing.T) (string, *config.Config, context.Context) {
	t.Helper()

	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	return dir, cfg, config.WithConfig(context.Background(), cfg)
}

func execute(ctx context.Context, cmd *cobra.Command, args ...string) (string, string, error) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		name  string
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{"resolve", NewResolveCommand(), "resolve", []string{"metrics", "group-by", "where", "order-by"}},
		{"dimensions", NewDimensionsCommand(), "dimensions", []string{"metrics", "with", "without", "prefix"}},
		{"check", NewCheckCommand(), "check [queries-file]", []string{"concurrency"}},
		{"watch", NewWatchCommand(), "watch", []string{"concurrency"}},
		{"catalog", NewCatalogCommand(), "catalog", nil},
		{"rules", NewRulesCommand(), "rules [rule-id]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestResolveCommand(t *testing.T) {
	_, _, ctx := setupProject(t)

	out, _, err := execute(ctx, NewResolveCommand(),
		"--metrics", "bookings",
		"--group-by", "listing__country,metric_time__week",
		"--order-by", "-bookings")
	require.NoError(t, err)

	assert.Contains(t, out, "listing__country")
	assert.Contains(t, out, "metric_time__week")
	assert.Contains(t, out, "time_dimension")
}

func TestResolveCommand_JSON(t *testing.T) {
	_, cfg, ctx := setupProject(t)
	cfg.OutputFormat = "json"

	out, _, err := execute(ctx, NewResolveCommand(),
		"-m", "bookings,listings",
		"-g", "Dimension('listing__country')",
		"-w", "{{ Dimension('listing__country') }} = 'US'")
	require.NoError(t, err)

	var v resolutionView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.NotEmpty(t, v.RequestID)
	require.Len(t, v.GroupBy, 1)
	assert.Equal(t, "listing__country", v.GroupBy[0].Item)
	assert.Equal(t, "Dimension('listing__country')", v.GroupBy[0].Input)
	require.Len(t, v.Filters, 1)
	assert.Equal(t, []string{"listing__country"}, v.Filters[0].Items)
}

func TestResolveCommand_Failures(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantErr   string
		wantInOut string
		wantInErr string
	}{
		{
			name:      "no match",
			args:      []string{"-m", "bookings", "-g", "listing__nope"},
			wantErr:   "query failed to resolve",
			wantInErr: "listing__nope",
		},
		{
			name:      "unknown metric",
			args:      []string{"-m", "bokings"},
			wantErr:   "query failed to resolve",
			wantInErr: "bookings",
		},
		{
			name:      "offset metric without metric_time",
			args:      []string{"-m", "bookings_wow", "-g", "listing__country"},
			wantErr:   "validation error",
			wantInOut: "MV02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ctx := setupProject(t)

			out, errOut, err := execute(ctx, NewResolveCommand(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.wantInOut != "" {
				assert.Contains(t, out, tt.wantInOut)
			}
			if tt.wantInErr != "" {
				assert.Contains(t, errOut, tt.wantInErr)
			}
		})
	}
}

func TestResolveCommand_MissingManifest(t *testing.T) {
	dir, cfg, ctx := setupProject(t)
	cfg.ManifestPath = dir + "/missing.yaml"

	_, _, err := execute(ctx, NewResolveCommand(), "-m", "bookings")
	require.Error(t, err)
}

func TestDimensionsCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "entities only",
			args:    []string{"-m", "bookings", "--with", "entity"},
			want:    []string{"booking", "listing"},
			notWant: []string{"listing__country", "metric_time__day"},
		},
		{
			name:    "without joins",
			args:    []string{"-m", "bookings", "--without", "joined"},
			want:    []string{"booking__is_instant", "metric_time__day"},
			notWant: []string{"listing__country"},
		},
		{
			name:    "common to two metrics",
			args:    []string{"-m", "bookings,listings", "--prefix", "listing__"},
			want:    []string{"listing__country"},
			notWant: []string{"booking__is_instant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cfg, ctx := setupProject(t)
			cfg.OutputFormat = "json"

			out, _, err := execute(ctx, NewDimensionsCommand(), tt.args...)
			require.NoError(t, err)

			var views []itemView
			require.NoError(t, json.Unmarshal([]byte(out), &views))
			names := make([]string, len(views))
			for i, v := range views {
				names[i] = v.Name
			}
			for _, want := range tt.want {
				assert.Contains(t, names, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, names, notWant)
			}
		})
	}
}

func TestDimensionsCommand_DerivedFrom(t *testing.T) {
	_, cfg, ctx := setupProject(t)
	cfg.OutputFormat = "json"

	out, _, err := execute(ctx, NewDimensionsCommand(), "-m", "bookings", "--prefix", "listing__country")
	require.NoError(t, err)

	var views []itemView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "listing__country", views[0].Name)
	assert.Equal(t, []string{"bookings_source", "listings_latest"}, views[0].DerivedFrom)
	assert.Contains(t, views[0].Properties, "joined")
}

func TestDimensionsCommand_UnknownProperty(t *testing.T) {
	_, _, ctx := setupProject(t)

	_, _, err := execute(ctx, NewDimensionsCommand(), "--with", "sparkly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown property "sparkly"`)
}

func TestDimensionsCommand_Text(t *testing.T) {
	_, _, ctx := setupProject(t)

	out, _, err := execute(ctx, NewDimensionsCommand(), "-m", "listings")
	require.NoError(t, err)
	assert.Contains(t, out, "listing__country")
	assert.Contains(t, out, "items)")
}

func TestRulesCommand(t *testing.T) {
	_, _, ctx := setupProject(t)

	out, _, err := execute(ctx, NewRulesCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "MV01")
	assert.Contains(t, out, "MV02")

	out, _, err = execute(ctx, NewRulesCommand(), "MV01")
	require.NoError(t, err)
	assert.Contains(t, out, "CumulativeMetricRequiresMetricTime")

	_, _, err = execute(ctx, NewRulesCommand(), "XX99")
	require.Error(t, err)
}
