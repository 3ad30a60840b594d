// Package commands implements the leapmetrics subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/leapmetrics/internal/config"
	"github.com/leapstack-labs/leapmetrics/internal/manifest"
	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/internal/resolver/validation"
	_ "github.com/leapstack-labs/leapmetrics/internal/resolver/validation/rules" // register validation rules
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Resolver *resolver.Resolver
	Out      io.Writer
}

// NewCommandContext loads the manifest and builds a resolver for it.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	r, err := BuildResolver(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Resolver: r,
		Out:      cmd.OutOrStdout(),
	}, nil
}

// BuildResolver loads the configured manifest and wires the validation analyzer.
func BuildResolver(cfg *config.Config, logger *slog.Logger) (*resolver.Resolver, error) {
	if err := cfg.ValidateManifest(); err != nil {
		return nil, err
	}

	m, err := manifest.LoadFile(cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	base, err := resolver.NewForManifest(m, resolver.Options{
		MaxEntityLinks: cfg.MaxEntityLinks,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build semantic graph: %w", err)
	}

	overrides, err := cfg.Validation.SeverityOverrides()
	if err != nil {
		return nil, err
	}
	analyzer := validation.NewAnalyzer(base.Index(), &validation.AnalyzerConfig{
		DisabledRules:     cfg.Validation.DisabledRules(),
		SeverityOverrides: overrides,
		Logger:            logger,
	})

	return resolver.New(resolver.Config{
		Index:      base.Index(),
		Sets:       base.Sets(),
		Validators: []resolver.Validator{analyzer},
		Logger:     logger,
	})
}
