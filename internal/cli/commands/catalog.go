package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmetrics/internal/catalog"
	"github.com/leapstack-labs/leapmetrics/internal/config"
)

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Export and query the group-by item catalog",
		Long: `The catalog is a SQLite database holding, for every metric, each item it can
be grouped by. Discovery tools read it without loading the manifest.`,
	}

	cmd.AddCommand(newCatalogExportCommand())
	cmd.AddCommand(newCatalogShowCommand())
	cmd.AddCommand(newCatalogFindCommand())

	return cmd
}

func openCatalog(cfg *config.Config, cmd *cobra.Command) (*catalog.Store, error) {
	dir := filepath.Dir(cfg.CatalogPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}
	return catalog.Open(cfg.CatalogPath, config.GetLogger(cmd.Context()))
}

func newCatalogExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "export",
		Short:   "Write the items of every metric to the catalog",
		Example: `  leapmetrics catalog export --catalog-path catalog.db`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			metrics, err := catalog.Collect(cmdCtx.Resolver)
			if err != nil {
				return err
			}

			store, err := openCatalog(cmdCtx.Cfg, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			exp, err := store.Export(cmd.Context(), cmdCtx.Cfg.ManifestPath, cmdCtx.Cfg.MaxEntityLinks, metrics)
			if err != nil {
				return err
			}

			if cmdCtx.Cfg.OutputFormat == "json" {
				return renderJSON(cmdCtx.Out, exp)
			}
			_, _ = fmt.Fprintf(cmdCtx.Out, "Exported %d metrics and %d items to %s (export %s)\n",
				exp.MetricCount, exp.ItemCount, store.Path(), exp.ID)
			return nil
		},
	}
}

func newCatalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "show <metric>",
		Short:   "Show the catalogued items of a metric",
		Example: `  leapmetrics catalog show bookings`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			store, err := openCatalog(cfg, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			exp, err := store.LatestExport(cmd.Context())
			if err != nil {
				return err
			}
			items, err := store.ItemsForMetric(cmd.Context(), exp.ID, args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("metric %q is not in the catalog", args[0])
			}

			w := cmd.OutOrStdout()
			if cfg.OutputFormat == "json" {
				return renderJSON(w, items)
			}
			t := newTable(w)
			t.AppendHeader(table.Row{"Name", "Type", "Grain", "Date Part", "Properties"})
			for _, item := range items {
				t.AppendRow(table.Row{item.QualifiedName, item.Kind, item.Grain, item.DatePart, strings.Join(item.Properties, ", ")})
			}
			t.Render()
			_, _ = fmt.Fprintf(w, "(%d items)\n", len(items))
			return nil
		},
	}
}

func newCatalogFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "find <item>",
		Short:   "List the metrics that can be grouped by an item",
		Example: `  leapmetrics catalog find listing__country_latest`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			store, err := openCatalog(cfg, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			exp, err := store.LatestExport(cmd.Context())
			if err != nil {
				return err
			}
			metrics, err := store.MetricsWithItem(cmd.Context(), exp.ID, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if cfg.OutputFormat == "json" {
				if metrics == nil {
					metrics = []string{}
				}
				return renderJSON(w, metrics)
			}
			for _, m := range metrics {
				_, _ = fmt.Fprintln(w, m)
			}
			_, _ = fmt.Fprintf(w, "(%d metrics)\n", len(metrics))
			return nil
		},
	}
}
