package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmetrics/internal/cli/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "leapmetrics", cmd.Use)

	for _, name := range []string{"version", "resolve", "dimensions", "check", "watch", "catalog", "rules", "completion"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}

	for _, flag := range []string{"config", "manifest", "max-entity-links", "output", "log-level", "catalog-path", "queries"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRoot_ConfigAndFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr string
	}{
		{
			name: "config file is found",
			args: []string{"dimensions", "-m", "listings"},
			want: []string{"listing__country"},
		},
		{
			name: "output flag",
			args: []string{"-o", "json", "dimensions", "-m", "listings"},
			want: []string{`"name": "listing__country"`},
		},
		{
			name:    "entity link bound",
			args:    []string{"--max-entity-links", "0", "resolve", "-m", "bookings", "-g", "listing__country"},
			wantErr: "query failed to resolve",
		},
		{
			name:    "invalid entity link bound",
			args:    []string{"--max-entity-links", "-1", "version"},
			wantErr: "max_entity_links",
		},
		{
			name:    "invalid output format",
			args:    []string{"-o", "yaml", "version"},
			wantErr: "output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(testutil.SetupTestProject(t))

			out, err := run(t, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRoot_EnvOverride(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))
	t.Setenv("LEAPMETRICS_OUTPUT", "json")

	out, err := run(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "MV01"`)
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapmetrics")

	_, err = run(t, "completion", "tcsh")
	require.Error(t, err)
}
