package naming

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Render writes the object-builder call referring to exactly item.
func (s *ObjectBuilderScheme) Render(item spec.LinkableInstanceSpec) (string, bool) {
	switch v := item.(type) {
	case spec.DimensionSpec:
		return fmt.Sprintf("Dimension(%s)", quote(v.QualifiedName())), true

	case spec.EntitySpec:
		return fmt.Sprintf("Entity(%s)", quote(v.QualifiedName())), true

	case spec.TimeDimensionSpec:
		name := spec.StructuredName{
			EntityLinkNames: core.EntityReferenceNames(v.EntityLinks),
			ElementName:     v.ElementName,
		}.QualifiedName()
		if v.DatePart != nil {
			return fmt.Sprintf("TimeDimension(%s, date_part_name=%s)", quote(name), quote(v.DatePart.String())), true
		}
		if v.Grain != nil {
			return fmt.Sprintf("TimeDimension(%s, %s)", quote(name), quote(v.Grain.Name)), true
		}
		return fmt.Sprintf("TimeDimension(%s)", quote(name)), true

	case spec.GroupByMetricSpec:
		// The outer entity links end with the subquery links, which group_by supplies.
		outer := core.EntityReferenceNames(v.EntityLinks)
		groupBy := core.EntityReferenceNames(v.MetricSubqueryEntityLinks)
		if len(groupBy) == 0 || len(groupBy) > len(outer) || !slices.Equal(outer[len(outer)-len(groupBy):], groupBy) {
			return "", false
		}
		name := spec.StructuredName{
			EntityLinkNames: outer[:len(outer)-len(groupBy)],
			ElementName:     v.ElementName,
		}.QualifiedName()
		quoted := make([]string, len(groupBy))
		for i, g := range groupBy {
			quoted[i] = quote(g)
		}
		return fmt.Sprintf("Metric(%s, group_by=[%s])", quote(name), strings.Join(quoted, ", ")), true
	}
	return "", false
}

func quote(s string) string {
	return "'" + s + "'"
}
