package commands

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapmetrics/internal/cli/output"
	"github.com/leapstack-labs/leapmetrics/internal/resolver"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Concurrency int
}

// CheckResult is the outcome of one suite query.
type CheckResult struct {
	Name       string
	Resolution *resolver.Resolution
	Err        error
}

// Failed reports whether the query failed to resolve or has error issues.
func (r CheckResult) Failed() bool {
	return r.Err != nil || (r.Resolution != nil && r.Resolution.Issues.HasErrors())
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [queries-file]",
		Short: "Resolve a suite of named queries",
		Long: `Resolve every query in a query suite file and report failures and
validation issues. The suite file defaults to the configured queries path.

Suite format:

  queries:
    - name: weekly_bookings
      metrics: [bookings]
      group_by: [metric_time__week, listing__country_latest]
      where: ["{{ Dimension('listing__is_lux_latest') }}"]
      order_by: [-metric_time__week]`,
		Example: `  # Check the configured suite
  leapmetrics check

  # Check a specific file with 4 workers
  leapmetrics check queries.yaml -j 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", runtime.NumCPU(), "Queries resolved in parallel")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	path := cmdCtx.Cfg.QueriesPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no query suite given: pass a file or set 'queries' in leapmetrics.yaml")
	}

	suite, err := LoadSuite(path)
	if err != nil {
		return err
	}

	results, err := CheckSuite(cmd.Context(), cmdCtx.Resolver, suite, opts.Concurrency)
	if err != nil {
		return err
	}

	if err := reportResults(cmdCtx.Out, results, cmdCtx.Cfg.OutputFormat); err != nil {
		return err
	}
	if n := countFailed(results); n > 0 {
		return fmt.Errorf("%d of %d queries failed", n, len(results))
	}
	return nil
}

// CheckSuite resolves every suite query with at most limit in flight. Results keep
// suite order. Only cancellation is returned as an error.
func CheckSuite(ctx context.Context, r *resolver.Resolver, suite *Suite, limit int) ([]CheckResult, error) {
	if limit < 1 {
		limit = 1
	}
	results := make([]CheckResult, len(suite.Queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, q := range suite.Queries {
		g.Go(func() error {
			res, err := r.Resolve(gctx, q.Query)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			results[i] = CheckResult{Name: q.Name, Resolution: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func countFailed(results []CheckResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}

type checkView struct {
	Name   string     `json:"name"`
	Status string     `json:"status"`
	Errors []string   `json:"errors,omitempty"`
	Issues []issueRow `json:"issues,omitempty"`
}

func reportResults(w io.Writer, results []CheckResult, format string) error {
	if format == "json" {
		views := make([]checkView, len(results))
		for i, r := range results {
			v := checkView{Name: r.Name, Status: "pass"}
			if r.Failed() {
				v.Status = "fail"
			}
			if r.Err != nil {
				v.Errors = errorLines(r.Err)
			}
			if r.Resolution != nil {
				v.Issues = issueRows(r.Resolution.Issues)
			}
			views[i] = v
		}
		return renderJSON(w, views)
	}

	styles := output.NewStyles(w)
	for _, r := range results {
		status := styles.Success.Render("PASS")
		if r.Failed() {
			status = styles.Error.Render("FAIL")
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", status, r.Name)
		if r.Err != nil {
			for _, line := range errorLines(r.Err) {
				_, _ = fmt.Fprintf(w, "    %s\n", line)
			}
		}
		if r.Resolution != nil {
			renderIssues(w, styles, r.Resolution.Issues)
		}
	}

	failed := countFailed(results)
	_, _ = fmt.Fprintf(w, "\n%s\n", styles.Header.Render(
		fmt.Sprintf("%d passed, %d failed", len(results)-failed, failed)))
	return nil
}
