package resolver

import (
	"fmt"
	"strings"
)

// NoMatchFoundError reports a group-by, filter or order-by item that matches no
// available item. Path points at the deepest node lacking the item.
type NoMatchFoundError struct {
	Input       string
	Path        ResolutionPath
	Suggestions []string
}

func (e *NoMatchFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no group-by item matches %q", e.Input)
	if len(e.Path) > 0 {
		fmt.Fprintf(&sb, " at %s", e.Path)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&sb, "; suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return sb.String()
}

// AmbiguousResolutionError reports an item matching more than one available item.
type AmbiguousResolutionError struct {
	Input   string
	Matches []string
	Path    ResolutionPath
}

func (e *AmbiguousResolutionError) Error() string {
	return fmt.Sprintf("%q is ambiguous at %s; it matches %s", e.Input, e.Path, strings.Join(e.Matches, ", "))
}

// UnknownMetricError reports a query metric missing from the manifest.
type UnknownMetricError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownMetricError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown metric %q", e.Name)
	}
	return fmt.Sprintf("unknown metric %q; suggestions: %s", e.Name, strings.Join(e.Suggestions, ", "))
}

// QueryResolutionError collects every failure of one query.
type QueryResolutionError struct {
	RequestID string
	Errors    []error
}

func (e *QueryResolutionError) Error() string {
	if len(e.Errors) == 1 {
		return "query resolution failed: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("query resolution failed with %d errors:\n  %s", len(e.Errors), strings.Join(msgs, "\n  "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *QueryResolutionError) Unwrap() []error {
	return e.Errors
}
