package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmetrics/internal/cli/output"
	"github.com/leapstack-labs/leapmetrics/internal/config"
	"github.com/leapstack-labs/leapmetrics/internal/resolver/validation"
)

type ruleView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Rationale   string `json:"rationale,omitempty"`
	Fix         string `json:"fix,omitempty"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List validation rules",
		Long: `List the metric-semantics rules run against every resolved query.
Rules can be disabled or have their severity changed under 'validation' in
leapmetrics.yaml.`,
		Example: `  # List all rules
  leapmetrics rules

  # Show one rule
  leapmetrics rules MV01`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			w := cmd.OutOrStdout()

			if len(args) > 0 {
				rule, ok := validation.GetByID(args[0])
				if !ok {
					return fmt.Errorf("unknown rule %q", args[0])
				}
				v := newRuleView(rule)
				if cfg.OutputFormat == "json" {
					return renderJSON(w, v)
				}
				styles := output.NewStyles(w)
				_, _ = fmt.Fprintf(w, "%s %s (%s)\n\n%s\n", styles.Header.Render(v.ID), v.Name,
					styles.Severity(rule.Severity).Render(v.Severity), v.Description)
				if v.Rationale != "" {
					_, _ = fmt.Fprintf(w, "\nRationale:\n  %s\n", v.Rationale)
				}
				if v.Fix != "" {
					_, _ = fmt.Fprintf(w, "\nFix:\n  %s\n", v.Fix)
				}
				return nil
			}

			rules := validation.GetAll()
			views := make([]ruleView, len(rules))
			for i, r := range rules {
				views[i] = newRuleView(r)
			}
			if cfg.OutputFormat == "json" {
				return renderJSON(w, views)
			}
			t := newTable(w)
			t.AppendHeader(table.Row{"ID", "Name", "Severity", "Description"})
			for _, v := range views {
				t.AppendRow(table.Row{v.ID, v.Name, v.Severity, v.Description})
			}
			t.Render()
			return nil
		},
	}
}

func newRuleView(r validation.RuleDef) ruleView {
	return ruleView{
		ID:          r.ID,
		Name:        r.Name,
		Severity:    r.Severity.String(),
		Description: r.Description,
		Rationale:   r.Rationale,
		Fix:         r.Fix,
	}
}
