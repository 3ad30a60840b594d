package semgraph

import (
	"github.com/leapstack-labs/leapmetrics/internal/join"
)

// EdgeKind is the closed set of semantic graph edge variants.
type EdgeKind int

// Edge kinds.
const (
	// EdgeJoin joins an entity to the same entity in another model.
	EdgeJoin EdgeKind = iota
	// EdgeAttribute leads to an attribute node.
	EdgeAttribute
	// EdgeEntityRelationship links nodes within one model or to synthetic nodes.
	EdgeEntityRelationship
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeJoin:
		return "join"
	case EdgeAttribute:
		return "attribute"
	case EdgeEntityRelationship:
		return "entity_relationship"
	default:
		return "unknown"
	}
}

// Edge is a directed semantic graph edge carrying the recipe step applied when
// a path traverses it.
type Edge struct {
	Kind EdgeKind
	From NodeID
	To   NodeID
	// JoinKind is set on join and entity relationship edges.
	JoinKind join.Kind
	// RightModel is the model joined by a join edge.
	RightModel string
	Step       RecipeStep
	// inverted is set on edges returned by Inverse.
	inverted bool
}

// Inverse returns the edge with its endpoints swapped, used to walk the graph backwards.
func (e Edge) Inverse() Edge {
	e.From, e.To = e.To, e.From
	e.inverted = !e.inverted
	return e
}

// IsInverse reports whether the edge points against its construction direction.
func (e Edge) IsInverse() bool {
	return e.inverted
}
