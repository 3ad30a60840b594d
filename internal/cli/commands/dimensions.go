package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmetrics/internal/linkable"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// DimensionsOptions holds options for the dimensions command.
type DimensionsOptions struct {
	Metrics    []string
	With       []string
	Without    []string
	NamePrefix string
}

// NewDimensionsCommand creates the dimensions command.
func NewDimensionsCommand() *cobra.Command {
	opts := &DimensionsOptions{}

	cmd := &cobra.Command{
		Use:     "dimensions",
		Aliases: []string{"dims"},
		Short:   "List the items a set of metrics can be grouped by",
		Long: `List every group-by item available to all of the given metrics.

With no metrics, the items of every semantic model plus metric_time are listed.
Items can be filtered by element property: local, local_linked, joined,
multi_hop, metric_time, date_part, derived_time_granularity, entity, metric.`,
		Example: `  # Items for one metric
  leapmetrics dimensions --metrics bookings

  # Items common to two metrics, excluding multi-hop joins
  leapmetrics dimensions -m bookings,views --without multi_hop

  # Only entities
  leapmetrics dimensions -m bookings --with entity`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDimensions(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Metrics, "metrics", "m", nil, "Metrics whose common items to list")
	cmd.Flags().StringSliceVar(&opts.With, "with", nil, "Keep items having any of these properties")
	cmd.Flags().StringSliceVar(&opts.Without, "without", nil, "Drop items having any of these properties")
	cmd.Flags().StringVar(&opts.NamePrefix, "prefix", "", "Keep items whose qualified name starts with this prefix")

	_ = cmd.RegisterFlagCompletionFunc("with", completeProperties)
	_ = cmd.RegisterFlagCompletionFunc("without", completeProperties)

	return cmd
}

func completeProperties(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, p := range spec.NewPropertySet(
		spec.PropertyLocal, spec.PropertyLocalLinked, spec.PropertyJoined, spec.PropertyMultiHop,
		spec.PropertyMetricTime, spec.PropertyDatePart, spec.PropertyDerivedTimeGranularity,
		spec.PropertyEntity, spec.PropertyMetric,
	).Properties() {
		names = append(names, p.String())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func parseProperties(names []string) ([]spec.ElementProperty, error) {
	props := make([]spec.ElementProperty, 0, len(names))
	for _, name := range names {
		p, ok := spec.ParseElementProperty(name)
		if !ok {
			return nil, fmt.Errorf("unknown property %q", name)
		}
		props = append(props, p)
	}
	return props, nil
}

func runDimensions(cmd *cobra.Command, opts *DimensionsOptions) error {
	with, err := parseProperties(opts.With)
	if err != nil {
		return err
	}
	without, err := parseProperties(opts.Without)
	if err != nil {
		return err
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	set, err := cmdCtx.Resolver.Available(opts.Metrics)
	if err != nil {
		return err
	}

	set = set.Filter(linkable.Filter{
		WithAnyOf:    spec.NewPropertySet(with...),
		WithoutAnyOf: spec.NewPropertySet(without...),
	})
	if opts.NamePrefix != "" {
		set = set.Where(func(item spec.AnnotatedSpec) bool {
			return strings.HasPrefix(item.QualifiedName(), opts.NamePrefix)
		})
	}

	return renderItems(cmdCtx.Out, set, cmdCtx.Cfg.OutputFormat)
}
