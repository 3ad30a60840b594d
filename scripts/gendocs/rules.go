package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapmetrics/internal/resolver/validation"
	_ "github.com/leapstack-labs/leapmetrics/internal/resolver/validation/rules"
)

// generateRulesDocs generates the validation rules page.
func generateRulesDocs(outDir string) error {
	log.Printf("Generating validation rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rules := validation.GetAll()

	w := NewMarkdownWriter()

	w.Frontmatter("Validation Rules", "Metric-semantics checks run on every resolved query")
	w.GeneratedMarker()

	w.Header(1, "Validation Rules")
	w.Paragraph(fmt.Sprintf("leapmetrics runs %d validation rules over every query that resolves. "+
		"Issues with error severity fail the query.", len(rules)))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "The query fails"},
			{InlineCode("warning"), "Reported, the query still succeeds"},
			{InlineCode("info"), "Informational feedback"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `leapmetrics.yaml`:")
	w.CodeBlock("yaml", `validation:
  disabled: [MV02]     # skip rule
  severity:
    MV01: warning      # override severity`)

	w.Header(2, "Rules")
	for _, rule := range rules {
		writeRuleDoc(w, rule)
	}

	if err := os.WriteFile(filepath.Join(outDir, "rules.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated rules.md")
	return nil
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule validation.RuleDef) {
	// Rule header with anchor: ### MV01 - CumulativeMetricRequiresMetricTime {#MV01}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", rule.ID, rule.Name, rule.ID))
	w.Newline()

	w.Line(fmt.Sprintf("%s %s", Bold("Severity:"), InlineCode(rule.Severity.String())))
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description))

	if rationale := rule.Rationale; rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rationale))
	}

	if fix := rule.Fix; fix != "" {
		w.Header(4, "How to Fix")
		w.Paragraph(strings.TrimSpace(fix))
	}

	w.Line("---")
	w.Newline()
}
