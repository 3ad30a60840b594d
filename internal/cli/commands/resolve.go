package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// ResolveOptions holds options for the resolve command.
type ResolveOptions struct {
	Metrics []string
	GroupBy []string
	Where   []string
	OrderBy []string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	opts := &ResolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the group-by items of a metric query",
		Long: `Resolve a metric query against the semantic manifest.

Group-by items may be written as dunder names (listing__country_latest,
metric_time__month) or as object-builder calls (Dimension('listing__country_latest'),
TimeDimension('metric_time', 'month'), Entity('listing'), Metric('bookings', group_by=['listing'])).

Where filters reference items with {{ ... }} templates. Order-by entries name a
metric or a group-by item; a leading "-" sorts descending.`,
		Example: `  # Group bookings by listing country
  leapmetrics resolve --metrics bookings --group-by listing__country_latest

  # Several metrics with a time grain and filter
  leapmetrics resolve -m bookings,views -g metric_time__week \
    --where "{{ Dimension('listing__is_lux_latest') }}"

  # JSON output
  leapmetrics resolve -m bookings -g metric_time -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Metrics, "metrics", "m", nil, "Metrics to query")
	cmd.Flags().StringSliceVarP(&opts.GroupBy, "group-by", "g", nil, "Group-by items")
	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "Where filter template (repeatable)")
	cmd.Flags().StringSliceVar(&opts.OrderBy, "order-by", nil, "Order-by items")

	return cmd
}

func runResolve(cmd *cobra.Command, opts *ResolveOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	res, err := cmdCtx.Resolver.Resolve(cmd.Context(), resolver.Query{
		Metrics: opts.Metrics,
		GroupBy: opts.GroupBy,
		Where:   opts.Where,
		OrderBy: opts.OrderBy,
	})
	if err != nil {
		for _, line := range errorLines(err) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		return fmt.Errorf("query failed to resolve")
	}

	if err := renderResolution(cmdCtx.Out, res, cmdCtx.Cfg.OutputFormat); err != nil {
		return err
	}
	if res.Issues.HasErrors() {
		return fmt.Errorf("query has %d validation error(s)", len(res.Issues.BySeverity(core.SeverityError)))
	}
	return nil
}
