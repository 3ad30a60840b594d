// Package join decides whether two semantic models may be joined on a shared entity.
//
// The rules are a fixed table over the 4x4 entity-kind matrix plus two
// validity-window constraints. The result decides which dimensions become
// queryable, so the table is reproduced exactly and tested exhaustively.
package join

import "github.com/leapstack-labs/leapmetrics/pkg/core"

// Kind is the cardinality of a valid join.
type Kind int

// Join kinds.
const (
	// KindOneToOne joins at most one right row to each left row, and vice versa.
	KindOneToOne Kind = iota
	// KindManyToOne joins many left rows to a single right row.
	KindManyToOne
)

func (k Kind) String() string {
	if k == KindOneToOne {
		return "one_to_one"
	}
	return "many_to_one"
}

// Side describes one side of a candidate join.
type Side struct {
	Model          core.SemanticModelReference
	EntityKind     core.EntityKind
	ValidityWindow bool
}

// validEntityJoins lists every (left, right) kind pair that may be joined. Anything ending in
// Foreign is fan-out, and Natural to Natural has no row-selection rule.
var validEntityJoins = map[[2]core.EntityKind]bool{
	{core.EntityKindPrimary, core.EntityKindNatural}: true,
	{core.EntityKindPrimary, core.EntityKindPrimary}: true,
	{core.EntityKindPrimary, core.EntityKindUnique}:  true,
	{core.EntityKindUnique, core.EntityKindNatural}:  true,
	{core.EntityKindUnique, core.EntityKindPrimary}:  true,
	{core.EntityKindUnique, core.EntityKindUnique}:   true,
	{core.EntityKindForeign, core.EntityKindNatural}: true,
	{core.EntityKindForeign, core.EntityKindPrimary}: true,
	{core.EntityKindForeign, core.EntityKindUnique}:  true,
	{core.EntityKindNatural, core.EntityKindPrimary}: true,
	{core.EntityKindNatural, core.EntityKindUnique}:  true,
}

// Evaluate returns the join kind for joining left to right on a shared entity, or false when
// the join is not allowed.
func Evaluate(left, right Side) (Kind, bool) {
	if left.Model == right.Model {
		return 0, false
	}
	if !validEntityJoins[[2]core.EntityKind{left.EntityKind, right.EntityKind}] {
		return 0, false
	}
	// Two windows cannot be aligned without fanning out.
	if left.ValidityWindow && right.ValidityWindow {
		return 0, false
	}
	// A natural key only selects one row through a validity window.
	if right.EntityKind == core.EntityKindNatural && !right.ValidityWindow {
		return 0, false
	}
	return kindFor(left.EntityKind), true
}

// IsValid is Evaluate without the kind.
func IsValid(left, right Side) bool {
	_, ok := Evaluate(left, right)
	return ok
}

func kindFor(left core.EntityKind) Kind {
	if left == core.EntityKindForeign || left == core.EntityKindNatural {
		return KindManyToOne
	}
	return KindOneToOne
}
