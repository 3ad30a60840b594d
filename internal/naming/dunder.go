package naming

import (
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// DunderScheme reads and writes names such as "listing__created_at__month".
type DunderScheme struct {
	grains GrainResolver
}

// NewDunderScheme creates the dunder scheme. A nil resolver knows standard grains only.
func NewDunderScheme(grains GrainResolver) *DunderScheme {
	if grains == nil {
		grains = StandardGrains{}
	}
	return &DunderScheme{grains: grains}
}

// Name returns "dunder".
func (s *DunderScheme) Name() string { return "dunder" }

// Accepts reports whether input consists only of identifier characters.
func (s *DunderScheme) Accepts(input string) bool {
	if input == "" {
		return false
	}
	for i := 0; i < len(input); i++ {
		if !isIdentChar(input[i]) {
			return false
		}
	}
	return true
}

// Parse splits a dunder name into entity links, element and grain.
// A trailing token naming a known grain becomes the grain. Date parts cannot be
// written in dunder form.
func (s *DunderScheme) Parse(input string) (Description, error) {
	if !s.Accepts(input) {
		return Description{}, syntaxErrorf(input, "dunder names may only contain letters, digits and underscores")
	}
	name, err := splitDunder(input, input, s.grains)
	if err != nil {
		return Description{}, err
	}
	return Description{
		Kind:        ItemUntyped,
		ElementName: name.ElementName,
		EntityLinks: name.EntityLinkNames,
		GrainName:   name.GranularityName,
	}, nil
}

// Render returns the qualified name of s. Date-part specs have no dunder form.
func (s *DunderScheme) Render(item spec.LinkableInstanceSpec) (string, bool) {
	if td, ok := item.(spec.TimeDimensionSpec); ok && td.DatePart != nil {
		return "", false
	}
	return item.QualifiedName(), true
}

// splitDunder parses a dunder name, lower-cased. Errors quote input, which is the
// whole item when the name is an object-builder argument.
func splitDunder(input, dunder string, grains GrainResolver) (spec.StructuredName, error) {
	tokens := strings.Split(strings.ToLower(dunder), spec.DunderSeparator)
	for _, tok := range tokens {
		if tok == "" {
			return spec.StructuredName{}, syntaxErrorf(input, "empty name element")
		}
	}

	var name spec.StructuredName
	if len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		switch {
		case strings.HasPrefix(last, spec.DatePartPrefix):
			return spec.StructuredName{}, syntaxErrorf(input,
				"date parts cannot be written as a dunder suffix; use TimeDimension(name, date_part_name=%q) instead",
				strings.TrimPrefix(last, spec.DatePartPrefix))
		case grains.IsGranularityName(last):
			name.GranularityName = last
			tokens = tokens[:len(tokens)-1]
		}
	}

	name.ElementName = tokens[len(tokens)-1]
	if len(tokens) > 1 {
		name.EntityLinkNames = tokens[:len(tokens)-1]
	}
	return name, nil
}
