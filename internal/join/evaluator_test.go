package join

import (
	"fmt"
	"testing"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/stretchr/testify/assert"
)

var (
	bookings = core.NewSemanticModelReference("bookings_source")
	listings = core.NewSemanticModelReference("listings_source")
)

// expectedKindTable is the base kind matrix, before validity-window rules.
var expectedKindTable = map[core.EntityKind]map[core.EntityKind]bool{
	core.EntityKindPrimary: {core.EntityKindPrimary: true, core.EntityKindUnique: true, core.EntityKindForeign: false, core.EntityKindNatural: true},
	core.EntityKindUnique:  {core.EntityKindPrimary: true, core.EntityKindUnique: true, core.EntityKindForeign: false, core.EntityKindNatural: true},
	core.EntityKindForeign: {core.EntityKindPrimary: true, core.EntityKindUnique: true, core.EntityKindForeign: false, core.EntityKindNatural: true},
	core.EntityKindNatural: {core.EntityKindPrimary: true, core.EntityKindUnique: true, core.EntityKindForeign: false, core.EntityKindNatural: false},
}

func TestEvaluate_ExhaustiveTable(t *testing.T) {
	for _, left := range core.AllEntityKinds() {
		for _, right := range core.AllEntityKinds() {
			for _, leftWindow := range []bool{false, true} {
				for _, rightWindow := range []bool{false, true} {
					name := fmt.Sprintf("%s(window=%t)->%s(window=%t)", left, leftWindow, right, rightWindow)
					t.Run(name, func(t *testing.T) {
						want := expectedKindTable[left][right]
						if leftWindow && rightWindow {
							want = false
						}
						if right == core.EntityKindNatural && !rightWindow {
							want = false
						}

						kind, ok := Evaluate(
							Side{Model: bookings, EntityKind: left, ValidityWindow: leftWindow},
							Side{Model: listings, EntityKind: right, ValidityWindow: rightWindow},
						)
						assert.Equal(t, want, ok)
						if ok {
							wantKind := KindOneToOne
							if left == core.EntityKindForeign || left == core.EntityKindNatural {
								wantKind = KindManyToOne
							}
							assert.Equal(t, wantKind, kind)
						}
					})
				}
			}
		}
	}
}

func TestEvaluate_SelfJoinInvalid(t *testing.T) {
	for _, left := range core.AllEntityKinds() {
		for _, right := range core.AllEntityKinds() {
			assert.False(t, IsValid(
				Side{Model: bookings, EntityKind: left},
				Side{Model: bookings, EntityKind: right},
			), "%s->%s on the same model", left, right)
		}
	}
}

func TestEvaluate_ForeignToPrimary(t *testing.T) {
	kind, ok := Evaluate(
		Side{Model: bookings, EntityKind: core.EntityKindForeign},
		Side{Model: listings, EntityKind: core.EntityKindPrimary},
	)
	assert.True(t, ok)
	assert.Equal(t, KindManyToOne, kind)
	assert.Equal(t, "many_to_one", kind.String())
}
