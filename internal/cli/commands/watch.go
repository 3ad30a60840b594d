package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmetrics/internal/config"
)

// DefaultDebounce is the quiet period before a change triggers a re-check.
const DefaultDebounce = 100 * time.Millisecond

// Watcher re-checks a query suite whenever the manifest or suite file changes.
type Watcher struct {
	Cfg         *config.Config
	Logger      *slog.Logger
	Out         io.Writer
	Debounce    time.Duration
	Concurrency int
	// OnCycle is called after every check cycle with its error, if any.
	OnCycle func(error)
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check the query suite when the manifest changes",
		Long: `Watch the semantic manifest and the query suite file. On every change the
manifest is reloaded, the semantic graph rebuilt and the suite checked again.
Press Ctrl+C to stop.`,
		Example: `  leapmetrics watch --queries queries.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg.QueriesPath == "" {
				return fmt.Errorf("no query suite given: set --queries or 'queries' in leapmetrics.yaml")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := &Watcher{
				Cfg:         cfg,
				Logger:      config.GetLogger(cmd.Context()),
				Out:         cmd.OutOrStdout(),
				Concurrency: opts.Concurrency,
			}
			return w.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 4, "Queries resolved in parallel")

	return cmd
}

// Run performs an initial check and then re-checks on change until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Debounce <= 0 {
		w.Debounce = DefaultDebounce
	}
	if w.Logger == nil {
		w.Logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	targets := map[string]bool{
		filepath.Clean(w.Cfg.ManifestPath): true,
		filepath.Clean(w.Cfg.QueriesPath):  true,
	}
	dirs := make(map[string]bool)
	for path := range targets {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.cycle(ctx)
	_, _ = fmt.Fprintln(w.Out, "Watching for changes. Press Ctrl+C to stop.")

	return w.loop(ctx, watcher, targets)
}

// loop runs debounced cycles itself, so none outlives Run.
func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher, targets map[string]bool) error {
	changed := make(chan string, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case name := <-changed:
			w.Logger.Info("change detected", slog.String("file", name))
			w.cycle(ctx)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := filepath.Base(event.Name)
			debounceTimer = time.AfterFunc(w.Debounce, func() {
				select {
				case changed <- name:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// cycle rebuilds the resolver and checks the suite.
func (w *Watcher) cycle(ctx context.Context) {
	err := w.check(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(w.Out, "Error: %v\n", err)
	}
	if w.OnCycle != nil {
		w.OnCycle(err)
	}
}

func (w *Watcher) check(ctx context.Context) error {
	r, err := BuildResolver(w.Cfg, w.Logger)
	if err != nil {
		return err
	}
	suite, err := LoadSuite(w.Cfg.QueriesPath)
	if err != nil {
		return err
	}
	results, err := CheckSuite(ctx, r, suite, w.Concurrency)
	if err != nil {
		return err
	}
	if err := reportResults(w.Out, results, w.Cfg.OutputFormat); err != nil {
		return err
	}
	if n := countFailed(results); n > 0 {
		return fmt.Errorf("%d of %d queries failed", n, len(results))
	}
	return nil
}
