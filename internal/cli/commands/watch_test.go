package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmetrics/internal/cli/testutil"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitCycle(t *testing.T, cycles <-chan error) error {
	t.Helper()
	select {
	case err := <-cycles:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for check cycle")
		return nil
	}
}

func TestWatcher_RechecksOnChange(t *testing.T) {
	dir, cfg, _ := setupProject(t)

	out := &syncBuffer{}
	cycles := make(chan error, 4)
	w := &Watcher{
		Cfg:         cfg,
		Out:         out,
		Debounce:    10 * time.Millisecond,
		Concurrency: 2,
		OnCycle:     func(err error) { cycles <- err },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, waitCycle(t, cycles), "initial check")
	assert.Contains(t, out.String(), "3 passed, 0 failed")

	testutil.WriteFile(t, dir, filepath.Base(cfg.QueriesPath), failingQueries)
	err := waitCycle(t, cycles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 queries failed")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_ReportsBrokenManifest(t *testing.T) {
	dir, cfg, _ := setupProject(t)

	cycles := make(chan error, 4)
	w := &Watcher{
		Cfg:      cfg,
		Out:      &syncBuffer{},
		Debounce: 10 * time.Millisecond,
		OnCycle:  func(err error) { cycles <- err },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, waitCycle(t, cycles))

	testutil.WriteFile(t, dir, filepath.Base(cfg.ManifestPath), "semantic_models: [")
	err := waitCycle(t, cycles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load manifest")
}

func TestWatcher_NoOutputAfterStop(t *testing.T) {
	dir, cfg, _ := setupProject(t)

	out := &syncBuffer{}
	cycles := make(chan error, 8)
	w := &Watcher{
		Cfg:      cfg,
		Out:      out,
		Debounce: 20 * time.Millisecond,
		OnCycle:  func(err error) { cycles <- err },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, waitCycle(t, cycles), "initial check")

	testutil.WriteFile(t, dir, filepath.Base(cfg.QueriesPath), failingQueries)
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	for len(cycles) > 0 {
		<-cycles
	}
	stopped := out.String()

	time.Sleep(5 * w.Debounce)
	assert.Equal(t, stopped, out.String())
	assert.Empty(t, cycles)
}
