package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapmetrics/internal/config"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Flag        string
	EnvVar      string
	Description string
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/config/types.go Config.
func getConfigSchema() []ConfigField {
	field := func(name, typ, def, flag, desc string) ConfigField {
		return ConfigField{
			Name:        name,
			Type:        typ,
			Default:     def,
			Flag:        flag,
			EnvVar:      config.EnvPrefix + strings.ToUpper(name),
			Description: desc,
		}
	}
	return []ConfigField{
		field("manifest", "string", config.DefaultManifestPath, "--manifest", "Path to the semantic manifest YAML"),
		field("max_entity_links", "int", strconv.Itoa(config.DefaultMaxEntityLinks), "--max-entity-links", "Maximum entity links in a group-by item"),
		field("output", "string", config.DefaultOutput, "--output", "Output format: "+strings.Join(config.OutputFormats, ", ")),
		field("log_level", "string", config.DefaultLogLevel, "--log-level", "Log level: "+strings.Join(config.LogLevels, ", ")),
		field("catalog_path", "string", config.DefaultCatalogPath, "--catalog-path", "Path to the SQLite catalog database"),
		field("queries", "string", "", "--queries", "Path to the query suite used by check and watch"),
		{Name: "validation.disabled", Type: "[]string", Description: "Validation rule IDs to skip"},
		{Name: "validation.severity", Type: "map[string]string", Description: "Severity override per rule ID: error, warning, info"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "leapmetrics configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("leapmetrics reads %s (or %s) from the project root, searched upward from the working directory.",
		InlineCode(config.ConfigFileName), InlineCode(config.ConfigFileNameAlt)))

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Built-in defaults",
		"Config file",
		"Environment variables (" + InlineCode(config.EnvPrefix+"*") + ")",
		"Command-line flags",
	})

	w.Header(2, "Fields")
	var rows [][]string
	for _, f := range getConfigSchema() {
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		} else {
			defVal = InlineCode(defVal)
		}
		flag := "-"
		if f.Flag != "" {
			flag = InlineCode(f.Flag)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, flag, f.Description})
	}
	w.Table([]string{"Field", "Type", "Default", "Flag", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `manifest: target/semantic_manifest.yaml
max_entity_links: 3
queries: queries.yaml
validation:
  disabled: [MV02]
  severity:
    MV01: warning`)

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
