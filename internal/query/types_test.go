package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sightline/internal/value"
)

func TestCombinatorHelpers(t *testing.T) {
	eq := Leaf{Column: "status", Operator: OpEQ, Operand: value.Str("active")}
	in := Leaf{Column: "count", Operator: OpIn, Operand: value.Longs(1, 2, 3)}

	and := And(eq, in)
	assert.Equal(t, LogicalAnd, and.Operator)
	// Child order is preserved exactly as given.
	assert.Equal(t, []Filter{eq, in}, and.Children)

	or := Or(eq)
	assert.Equal(t, LogicalOr, or.Operator)

	not := Not(eq)
	assert.Equal(t, LogicalNot, not.Operator)

	empty := And()
	assert.Empty(t, empty.Children)
}
