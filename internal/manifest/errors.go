package manifest

import "fmt"

// InvalidManifestError reports a manifest that cannot back query resolution,
// e.g. a measure without an aggregation time dimension or a metric cycle.
type InvalidManifestError struct {
	// Element names the offending model, measure or metric.
	Element string
	Message string
}

func (e *InvalidManifestError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("invalid manifest: %s: %s", e.Element, e.Message)
	}
	return "invalid manifest: " + e.Message
}

func invalidf(element, format string, args ...any) *InvalidManifestError {
	return &InvalidManifestError{Element: element, Message: fmt.Sprintf(format, args...)}
}

// ParseError represents a manifest file that could not be decoded.
type ParseError struct {
	File    string
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}
