package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxEntityLinks < 0 {
		return fmt.Errorf("max_entity_links must be >= 0, got %d", c.MaxEntityLinks)
	}
	if !slices.Contains(OutputFormats, strings.ToLower(c.OutputFormat)) {
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if !slices.Contains(LogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("unknown log level %q (expected one of %s)", c.LogLevel, strings.Join(LogLevels, ", "))
	}
	if _, err := c.Validation.SeverityOverrides(); err != nil {
		return err
	}
	return nil
}

// ValidateManifest checks that the manifest file exists.
func (c *Config) ValidateManifest() error {
	if c.ManifestPath == "" {
		return fmt.Errorf("manifest is required")
	}
	if _, err := os.Stat(c.ManifestPath); err != nil {
		return fmt.Errorf("manifest does not exist: %s\nHint: set manifest in %s or pass --manifest", c.ManifestPath, ConfigFileName)
	}
	return nil
}
