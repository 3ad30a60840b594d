package resolver

import "strings"

// PathStep is one node visit on a resolution path.
type PathStep struct {
	Kind NodeKind
	Name string
}

func (s PathStep) String() string {
	if s.Name == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + "(" + s.Name + ")"
}

// ResolutionPath is the sequence of node visits from the query root to a node.
// Errors and issues carry it to name the metric or measure responsible.
type ResolutionPath []PathStep

// Append returns a new path extended by one step.
func (p ResolutionPath) Append(kind NodeKind, name string) ResolutionPath {
	out := make(ResolutionPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathStep{Kind: kind, Name: name})
}

// Last returns the final step, or the zero step for an empty path.
func (p ResolutionPath) Last() PathStep {
	if len(p) == 0 {
		return PathStep{}
	}
	return p[len(p)-1]
}

// String renders the path, e.g. "Query -> Metric(bookings) -> MeasureSource(bookings)".
func (p ResolutionPath) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}
