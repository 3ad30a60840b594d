package validation

import (
	"log/slog"

	"github.com/leapstack-labs/leapmetrics/internal/manifest"
	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// Analyzer runs registered validation rules against resolved queries.
type Analyzer struct {
	idx    *manifest.Index
	config *AnalyzerConfig
	logger *slog.Logger
}

// AnalyzerConfig holds configuration for the analyzer.
type AnalyzerConfig struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]core.Severity

	Logger *slog.Logger
}

// NewAnalyzerConfig creates a default configuration.
func NewAnalyzerConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
	}
}

// NewAnalyzer creates an analyzer over one manifest with optional configuration.
func NewAnalyzer(idx *manifest.Index, config *AnalyzerConfig) *Analyzer {
	if config == nil {
		config = NewAnalyzerConfig()
	}
	if config.DisabledRules == nil {
		config.DisabledRules = make(map[string]bool)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{idx: idx, config: config, logger: logger}
}

// Validate implements resolver.Validator.
func (a *Analyzer) Validate(res *resolver.Resolution) []resolver.Issue {
	if res == nil || res.DAG == nil {
		return nil
	}
	ctx := &Context{Resolution: res, Index: a.idx}

	var issues []resolver.Issue
	for _, rule := range GetAll() {
		if a.isDisabled(rule.ID) {
			continue
		}

		found := rule.Check(ctx)
		for i := range found {
			found[i].Severity = a.getSeverity(rule.ID, found[i].Severity)
		}
		if len(found) > 0 {
			a.logger.Debug("validation rule raised issues",
				slog.String("request_id", res.RequestID),
				slog.String("rule", rule.ID),
				slog.Int("count", len(found)))
		}
		issues = append(issues, found...)
	}
	return issues
}

func (a *Analyzer) isDisabled(ruleID string) bool {
	return a.config.DisabledRules[ruleID]
}

func (a *Analyzer) getSeverity(ruleID string, defaultSev core.Severity) core.Severity {
	if sev, ok := a.config.SeverityOverrides[ruleID]; ok {
		return sev
	}
	return defaultSev
}

// Disable disables a rule by ID.
func (a *Analyzer) Disable(ruleID string) {
	a.config.DisabledRules[ruleID] = true
}

// Enable enables a previously disabled rule.
func (a *Analyzer) Enable(ruleID string) {
	delete(a.config.DisabledRules, ruleID)
}
