package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapmetrics/internal/cli/output"
	"github.com/leapstack-labs/leapmetrics/internal/linkable"
	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// itemView is the output form of one group-by item.
type itemView struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Properties  []string `json:"properties,omitempty"`
	DerivedFrom []string `json:"derived_from,omitempty"`
}

func newItemView(item spec.AnnotatedSpec) itemView {
	derived := make([]string, len(item.DerivedFromSemanticModels))
	for i, m := range item.DerivedFromSemanticModels {
		derived[i] = m.Name
	}
	return itemView{
		Name:        item.QualifiedName(),
		Type:        item.Spec.Kind().String(),
		Properties:  item.Properties.Names(),
		DerivedFrom: derived,
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderItems(w io.Writer, set linkable.Set, format string) error {
	views := make([]itemView, 0, set.Len())
	for _, item := range set.Items() {
		views = append(views, newItemView(item))
	}

	if format == "json" {
		return renderJSON(w, views)
	}

	if len(views) == 0 {
		_, _ = fmt.Fprintln(w, "(0 items)")
		return nil
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Type", "Properties", "Derived From"})
	for _, v := range views {
		t.AppendRow(table.Row{v.Name, v.Type, strings.Join(v.Properties, ", "), strings.Join(v.DerivedFrom, ", ")})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d items)\n", len(views))
	return nil
}

// resolutionView is the output form of a resolved query.
type resolutionView struct {
	RequestID string       `json:"request_id"`
	GroupBy   []groupByRow `json:"group_by"`
	Filters   []filterRow  `json:"filters,omitempty"`
	OrderBy   []orderByRow `json:"order_by,omitempty"`
	Issues    []issueRow   `json:"issues,omitempty"`
}

type groupByRow struct {
	Input string `json:"input"`
	Item  string `json:"item"`
	Type  string `json:"type"`
}

type filterRow struct {
	Path  string   `json:"path"`
	Where string   `json:"where"`
	Items []string `json:"items"`
}

type orderByRow struct {
	Input      string `json:"input"`
	Target     string `json:"target"`
	Descending bool   `json:"descending"`
}

type issueRow struct {
	Rule     string `json:"rule"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Path     string `json:"path"`
}

func newResolutionView(res *resolver.Resolution) resolutionView {
	v := resolutionView{RequestID: res.RequestID}
	for _, g := range res.GroupBy {
		v.GroupBy = append(v.GroupBy, groupByRow{Input: g.Input, Item: g.Spec.QualifiedName(), Type: g.Spec.Kind().String()})
	}
	for _, f := range res.Filters {
		row := filterRow{Path: f.Path.String(), Where: f.Where}
		for _, item := range f.Items {
			row.Items = append(row.Items, item.Spec.QualifiedName())
		}
		v.Filters = append(v.Filters, row)
	}
	for _, o := range res.OrderBy {
		target := o.Metric
		if o.Spec != nil {
			target = o.Spec.QualifiedName()
		}
		v.OrderBy = append(v.OrderBy, orderByRow{Input: o.Input, Target: target, Descending: o.Descending})
	}
	v.Issues = issueRows(res.Issues)
	return v
}

func issueRows(issues resolver.IssueSet) []issueRow {
	rows := make([]issueRow, 0, len(issues))
	for _, i := range issues {
		rows = append(rows, issueRow{
			Rule:     i.RuleID,
			Name:     i.Name,
			Severity: i.Severity.String(),
			Message:  i.Message,
			Path:     i.Path.String(),
		})
	}
	return rows
}

func renderResolution(w io.Writer, res *resolver.Resolution, format string) error {
	v := newResolutionView(res)
	if format == "json" {
		return renderJSON(w, v)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Input", "Item", "Type"})
	for _, g := range v.GroupBy {
		t.AppendRow(table.Row{g.Input, g.Item, g.Type})
	}
	t.Render()

	if len(v.Filters) > 0 {
		ft := newTable(w)
		ft.AppendHeader(table.Row{"Filter", "Applied At", "Items"})
		for _, f := range v.Filters {
			ft.AppendRow(table.Row{f.Where, f.Path, strings.Join(f.Items, ", ")})
		}
		ft.Render()
	}

	if len(v.OrderBy) > 0 {
		ot := newTable(w)
		ot.AppendHeader(table.Row{"Order By", "Target", "Descending"})
		for _, o := range v.OrderBy {
			ot.AppendRow(table.Row{o.Input, o.Target, o.Descending})
		}
		ot.Render()
	}

	renderIssues(w, output.NewStyles(w), res.Issues)
	return nil
}

func renderIssues(w io.Writer, styles *output.Styles, issues resolver.IssueSet) {
	for _, i := range issues {
		label := styles.Severity(i.Severity).Render(i.Severity.String())
		_, _ = fmt.Fprintf(w, "%s [%s] %s\n    %s\n", label, i.RuleID, i.Message, styles.Muted.Render("at "+i.Path.String()))
	}
}

// errorLines flattens a resolution failure into one line per error.
func errorLines(err error) []string {
	var qErr *resolver.QueryResolutionError
	if errors.As(err, &qErr) {
		lines := make([]string, len(qErr.Errors))
		for i, e := range qErr.Errors {
			lines[i] = e.Error()
		}
		return lines
	}
	return []string{err.Error()}
}
