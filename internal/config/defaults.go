package config

// Config file names, in lookup order.
const (
	ConfigFileName    = "leapmetrics.yaml"
	ConfigFileNameAlt = "leapmetrics.yml"
)

// EnvPrefix prefixes environment variables read into the config.
const EnvPrefix = "LEAPMETRICS_"

// Default configuration values.
const (
	DefaultManifestPath   = "semantic_manifest.yaml"
	DefaultMaxEntityLinks = 2
	DefaultOutput         = "text"
	DefaultLogLevel       = "warn"
	DefaultCatalogPath    = ".leapmetrics/catalog.db"
)

// OutputFormats lists the accepted output formats.
var OutputFormats = []string{"text", "json"}

// LogLevels lists the accepted log levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Default returns a Config holding only default values.
func Default() *Config {
	return &Config{
		ManifestPath:   DefaultManifestPath,
		MaxEntityLinks: DefaultMaxEntityLinks,
		OutputFormat:   DefaultOutput,
		LogLevel:       DefaultLogLevel,
		CatalogPath:    DefaultCatalogPath,
	}
}

func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"manifest":         d.ManifestPath,
		"max_entity_links": d.MaxEntityLinks,
		"output":           d.OutputFormat,
		"log_level":        d.LogLevel,
		"catalog_path":     d.CatalogPath,
	}
}
