package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("manifest", "", "")
	flags.Int("max-entity-links", 0, "")
	flags.String("output", "", "")
	flags.String("log-level", "", "")
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxEntityLinks, cfg.MaxEntityLinks)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, DefaultManifestPath), cfg.ManifestPath)
	assert.Equal(t, filepath.Join(dir, DefaultCatalogPath), cfg.CatalogPath)
	assert.Empty(t, cfg.QueriesPath)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
manifest: manifests/semantic.yaml
max_entity_links: 3
output: json
queries: queries.yaml
validation:
  disabled: [MV02]
  severity:
    MV01: warning
`)
	sub := filepath.Join(dir, "nested", "deeper")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	tests := []struct {
		name      string
		env       map[string]string
		args      []string
		wantLinks int
		wantOut   string
		wantLevel string
	}{
		{
			name:      "file over defaults",
			wantLinks: 3,
			wantOut:   "json",
			wantLevel: DefaultLogLevel,
		},
		{
			name:      "env over file",
			env:       map[string]string{"LEAPMETRICS_MAX_ENTITY_LINKS": "1", "LEAPMETRICS_LOG_LEVEL": "debug"},
			wantLinks: 1,
			wantOut:   "json",
			wantLevel: "debug",
		},
		{
			name:      "flags over env",
			env:       map[string]string{"LEAPMETRICS_MAX_ENTITY_LINKS": "1"},
			args:      []string{"--max-entity-links=0", "--output=text"},
			wantLinks: 0,
			wantOut:   "text",
			wantLevel: DefaultLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(sub)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			flags := testFlags()
			require.NoError(t, flags.Parse(tt.args))

			cfg, err := Load("", flags)
			require.NoError(t, err)

			assert.Equal(t, tt.wantLinks, cfg.MaxEntityLinks)
			assert.Equal(t, tt.wantOut, cfg.OutputFormat)
			assert.Equal(t, tt.wantLevel, cfg.LogLevel)
			assert.Equal(t, dir, cfg.ProjectRoot)
			assert.Equal(t, filepath.Join(dir, "manifests", "semantic.yaml"), cfg.ManifestPath)
			assert.Equal(t, filepath.Join(dir, "queries.yaml"), cfg.QueriesPath)
			assert.Equal(t, map[string]bool{"MV02": true}, cfg.Validation.DisabledRules())

			overrides, err := cfg.Validation.SeverityOverrides()
			require.NoError(t, err)
			assert.Equal(t, core.SeverityWarning, overrides["MV01"])
		})
	}
}

func TestLoad_FlagPathsResolveAgainstWorkingDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "manifest: from_file.yaml\n")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--manifest=local.yaml"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sub, "local.yaml"), cfg.ManifestPath)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "max_entity_links: 4\n")
	t.Chdir(t.TempDir())

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxEntityLinks)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "negative links", content: "max_entity_links: -1\n", wantErr: "max_entity_links"},
		{name: "output", content: "output: xml\n", wantErr: "unknown output format"},
		{name: "log level", content: "log_level: loud\n", wantErr: "unknown log level"},
		{name: "severity", content: "validation:\n  severity:\n    MV01: fatal\n", wantErr: "unknown severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			t.Chdir(dir)

			_, err := Load("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.ManifestPath = filepath.Join(dir, "missing.yaml")
	require.Error(t, cfg.ValidateManifest())

	require.NoError(t, os.WriteFile(cfg.ManifestPath, []byte("{}"), 0o600))
	require.NoError(t, cfg.ValidateManifest())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("").String())
	assert.Equal(t, "ERROR", parseLevel("ERROR").String())
}

func TestLoad_ValidationFromEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "validation:\n  severity:\n    MV01: warning\n")
	t.Chdir(dir)
	t.Setenv("LEAPMETRICS_VALIDATION__DISABLED", "MV01,MV02")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"MV01", "MV02"}, cfg.Validation.Disabled)
	assert.Equal(t, map[string]bool{"MV01": true, "MV02": true}, cfg.Validation.DisabledRules())

	overrides, err := cfg.Validation.SeverityOverrides()
	require.NoError(t, err)
	assert.Equal(t, core.SeverityWarning, overrides["MV01"])
}
