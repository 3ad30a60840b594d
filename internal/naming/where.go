package naming

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/internal/template"
)

// FilterItem is an item referenced by a where filter.
type FilterItem struct {
	// Expr is the expression source between the braces.
	Expr        string
	Position    template.Position
	Description Description
}

// ParseWhereFilter extracts every {{ ... }} item reference from a where filter.
// Text outside the braces is not interpreted.
func ParseWhereFilter(where string, grains GrainResolver) ([]FilterItem, error) {
	tmpl, err := template.Parse(where, "")
	if err != nil {
		return nil, fmt.Errorf("where filter: %w", err)
	}
	scheme := NewObjectBuilderScheme(grains)

	var items []FilterItem
	for _, expr := range tmpl.Exprs() {
		d, err := scheme.Parse(expr.Expr)
		if err != nil {
			return nil, fmt.Errorf("where filter at line %d, column %d: %w", expr.Pos().Line, expr.Pos().Column, err)
		}
		items = append(items, FilterItem{Expr: expr.Expr, Position: expr.Pos(), Description: d})
	}
	return items, nil
}
