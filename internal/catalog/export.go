package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapmetrics/internal/linkable"
	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// MetricItems is a metric and the items it can be grouped by.
type MetricItems struct {
	Name        string
	Type        string
	Description string
	Items       linkable.Set
}

// Collect computes the available items of every metric known to r.
func Collect(r *resolver.Resolver) ([]MetricItems, error) {
	metrics := r.Index().Metrics()
	out := make([]MetricItems, 0, len(metrics))
	for _, m := range metrics {
		set, err := r.Available([]string{m.Name})
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", m.Name, err)
		}
		out = append(out, MetricItems{
			Name:        m.Name,
			Type:        m.Type.String(),
			Description: m.Description,
			Items:       set,
		})
	}
	return out, nil
}

// itemRow flattens a spec into catalog columns.
func itemRow(metric string, item spec.AnnotatedSpec) Item {
	s := item.Spec
	links := make([]string, len(s.Links()))
	for i, l := range s.Links() {
		links[i] = l.ElementName
	}
	row := Item{
		Metric:        metric,
		QualifiedName: s.QualifiedName(),
		Kind:          s.Kind().String(),
		ElementName:   s.Element(),
		EntityLinks:   links,
		Properties:    item.Properties.Names(),
	}
	if td, ok := s.(spec.TimeDimensionSpec); ok {
		row.Grain = td.GranularityName()
		if td.DatePart != nil {
			row.DatePart = td.DatePart.String()
		}
	}
	return row
}

// Export writes a new snapshot of metrics in one transaction.
func (s *Store) Export(ctx context.Context, manifestPath string, maxEntityLinks int, metrics []MetricItems) (*Export, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	exp := &Export{
		ID:             generateID(),
		CreatedAt:      time.Now().UTC(),
		ManifestPath:   manifestPath,
		MaxEntityLinks: maxEntityLinks,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exports (id, created_at, manifest_path, max_entity_links) VALUES (?, ?, ?, ?)`,
		exp.ID, exp.CreatedAt, exp.ManifestPath, exp.MaxEntityLinks,
	); err != nil {
		return nil, fmt.Errorf("failed to create export: %w", err)
	}

	itemStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO group_by_items
			(export_id, metric_name, qualified_name, kind, element_name, entity_links, grain, date_part, properties)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer itemStmt.Close()

	for _, m := range metrics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO metrics (export_id, name, type, description) VALUES (?, ?, ?, ?)`,
			exp.ID, m.Name, m.Type, m.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to insert metric %s: %w", m.Name, err)
		}
		for _, item := range m.Items.Items() {
			row := itemRow(m.Name, item)
			if _, err := itemStmt.ExecContext(ctx,
				exp.ID, row.Metric, row.QualifiedName, row.Kind, row.ElementName,
				joinList(row.EntityLinks), row.Grain, row.DatePart, joinList(row.Properties),
			); err != nil {
				return nil, fmt.Errorf("failed to insert item %s for metric %s: %w", row.QualifiedName, m.Name, err)
			}
			exp.ItemCount++
		}
		exp.MetricCount++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit export: %w", err)
	}

	s.logger.Debug("catalog export written",
		slog.String("export_id", exp.ID),
		slog.Int("metrics", exp.MetricCount),
		slog.Int("items", exp.ItemCount))
	return exp, nil
}

// LatestExport returns the most recent export.
func (s *Store) LatestExport(ctx context.Context) (*Export, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	exp := &Export{}
	err := s.db.QueryRowContext(ctx, `
		SELECT e.id, e.created_at, e.manifest_path, e.max_entity_links,
			(SELECT COUNT(*) FROM metrics m WHERE m.export_id = e.id),
			(SELECT COUNT(*) FROM group_by_items i WHERE i.export_id = e.id)
		FROM exports e
		ORDER BY e.created_at DESC, e.rowid DESC
		LIMIT 1`,
	).Scan(&exp.ID, &exp.CreatedAt, &exp.ManifestPath, &exp.MaxEntityLinks, &exp.MetricCount, &exp.ItemCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no catalog exports found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest export: %w", err)
	}
	return exp, nil
}

// ItemsForMetric returns the items of one metric in an export, ordered by name.
func (s *Store) ItemsForMetric(ctx context.Context, exportID, metric string) ([]Item, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT metric_name, qualified_name, kind, element_name, entity_links, grain, date_part, properties
		FROM group_by_items
		WHERE export_id = ? AND metric_name = ?
		ORDER BY qualified_name`,
		exportID, metric,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var links, props string
		if err := rows.Scan(&item.Metric, &item.QualifiedName, &item.Kind, &item.ElementName,
			&links, &item.Grain, &item.DatePart, &props); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.EntityLinks = splitList(links)
		item.Properties = splitList(props)
		items = append(items, item)
	}
	return items, rows.Err()
}

// MetricsWithItem returns the metrics of an export that can be grouped by qualifiedName.
func (s *Store) MetricsWithItem(ctx context.Context, exportID, qualifiedName string) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT metric_name FROM group_by_items
		WHERE export_id = ? AND qualified_name = ?
		ORDER BY metric_name`,
		exportID, qualifiedName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteExport removes an export and its items.
func (s *Store) DeleteExport(ctx context.Context, exportID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exports WHERE id = ?`, exportID); err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	return nil
}
