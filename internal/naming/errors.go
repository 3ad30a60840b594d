package naming

import "fmt"

// InvalidQuerySyntaxError reports a group-by string that no naming scheme accepts.
type InvalidQuerySyntaxError struct {
	Input   string
	Message string
}

func (e *InvalidQuerySyntaxError) Error() string {
	return fmt.Sprintf("invalid query syntax %q: %s", e.Input, e.Message)
}

func syntaxErrorf(input, format string, args ...any) *InvalidQuerySyntaxError {
	return &InvalidQuerySyntaxError{Input: input, Message: fmt.Sprintf(format, args...)}
}

// ParseTemplateError reports an object-builder expression that uses a call,
// method or token outside the permitted grammar.
type ParseTemplateError struct {
	Input string
	// Offset is the byte offset of the offending token.
	Offset  int
	Message string
}

func (e *ParseTemplateError) Error() string {
	return fmt.Sprintf("parse error in %q at offset %d: %s", e.Input, e.Offset, e.Message)
}

// Common error messages
const (
	errUnexpectedToken    = "unexpected %s, expected %s"
	errUnterminatedString = "unterminated string literal"
	errUnknownCall        = "unknown call %q, expected one of Dimension, TimeDimension, Entity, Metric"
	errUnknownMethod      = "unknown method %q, expected one of grain, date_part, descending"
	errUnknownArgument    = "%s() got an unexpected argument %q"
)
