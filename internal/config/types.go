// Package config provides layered configuration for leapmetrics.
//
// Values are loaded, lowest precedence first, from built-in defaults, a
// leapmetrics.yaml or leapmetrics.yml file, LEAPMETRICS_ environment variables
// and explicitly set command-line flags.
package config

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// Config holds all configuration options.
type Config struct {
	ManifestPath   string           `koanf:"manifest"`
	MaxEntityLinks int              `koanf:"max_entity_links"`
	OutputFormat   string           `koanf:"output"`
	LogLevel       string           `koanf:"log_level"`
	CatalogPath    string           `koanf:"catalog_path"`
	QueriesPath    string           `koanf:"queries"`
	Validation     ValidationConfig `koanf:"validation"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the config file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// ValidationConfig holds validation rule configuration.
type ValidationConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info)
	Severity map[string]string `koanf:"severity"`
}

// DisabledRules returns the disabled rule IDs as a set.
func (c ValidationConfig) DisabledRules() map[string]bool {
	out := make(map[string]bool, len(c.Disabled))
	for _, id := range c.Disabled {
		out[id] = true
	}
	return out
}

// SeverityOverrides parses the severity overrides.
func (c ValidationConfig) SeverityOverrides() (map[string]core.Severity, error) {
	out := make(map[string]core.Severity, len(c.Severity))
	for id, name := range c.Severity {
		sev, ok := core.ParseSeverity(name)
		if !ok {
			return nil, fmt.Errorf("validation.severity.%s: unknown severity %q", id, name)
		}
		out[id] = sev
	}
	return out, nil
}
