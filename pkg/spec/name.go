package spec

import (
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// DunderSeparator joins the elements of a qualified name.
const DunderSeparator = "__"

// DatePartPrefix marks a date-part suffix in a qualified name, e.g. "extract_year".
const DatePartPrefix = "extract_"

// StructuredName is the decomposed form of a dunder-qualified name.
type StructuredName struct {
	EntityLinkNames []string
	ElementName     string
	// GranularityName is empty when no grain is part of the name.
	GranularityName string
	DatePart        *core.DatePart
}

// QualifiedName renders the structured name in dunder form.
func (n StructuredName) QualifiedName() string {
	parts := make([]string, 0, len(n.EntityLinkNames)+2)
	parts = append(parts, n.EntityLinkNames...)
	parts = append(parts, n.ElementName)
	if n.DatePart != nil {
		parts = append(parts, DatePartPrefix+n.DatePart.String())
	} else if n.GranularityName != "" {
		parts = append(parts, n.GranularityName)
	}
	return strings.Join(parts, DunderSeparator)
}

// EntityLinks converts the link names to references.
func (n StructuredName) EntityLinks() []core.EntityReference {
	return core.EntityReferencesFromNames(n.EntityLinkNames)
}

// DunderJoin joins name elements with the dunder separator.
func DunderJoin(elements ...string) string {
	return strings.Join(elements, DunderSeparator)
}
