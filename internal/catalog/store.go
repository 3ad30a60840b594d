// Package catalog stores, per metric, every group-by item it can be queried
// with, in a SQLite database for discovery tooling.
package catalog

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Export is one snapshot of a manifest's queryable items.
type Export struct {
	ID             string
	CreatedAt      time.Time
	ManifestPath   string
	MaxEntityLinks int
	MetricCount    int
	ItemCount      int
}

// Item is a group-by item available for a metric.
type Item struct {
	Metric        string
	QualifiedName string
	Kind          string
	ElementName   string
	EntityLinks   []string
	Grain         string
	DatePart      string
	Properties    []string
}

// Store is the SQLite-backed catalog.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens the catalog at path, creating the file if needed, and runs
// pending migrations. Use ":memory:" for an in-memory catalog.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("catalog opened", slog.String("path", path))
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

func generateID() string {
	return uuid.New().String()
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
