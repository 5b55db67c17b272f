package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sightline/internal/docstore"
	"github.com/roach88/sightline/internal/query"
	"github.com/roach88/sightline/internal/value"
)

func newConverter() *FilterConverter {
	return NewFilterConverter(NewRegistry())
}

func TestConvertLeafEquality(t *testing.T) {
	converted, err := newConverter().ConvertFilter(query.Leaf{
		Column:   "status",
		Operator: query.OpEQ,
		Operand:  value.Str("active"),
	})
	require.NoError(t, err)

	assert.Equal(t, docstore.Relational{
		LHS:      docstore.FieldPath{Path: "attributes.status"},
		Operator: docstore.OpEQ,
		RHS:      docstore.Constant{Value: "active"},
	}, converted)
}

func TestConvertAndPreservesChildOrder(t *testing.T) {
	converted, err := newConverter().ConvertFilter(query.And(
		query.Leaf{Column: "status", Operator: query.OpEQ, Operand: value.Str("active")},
		query.Leaf{Column: "count", Operator: query.OpIn, Operand: value.Longs(1, 2, 3)},
	))
	require.NoError(t, err)

	logical, ok := converted.(docstore.Logical)
	require.True(t, ok)
	assert.Equal(t, docstore.LogicalAnd, logical.Operator)
	require.Len(t, logical.Children, 2)

	first, ok := logical.Children[0].(docstore.Relational)
	require.True(t, ok)
	assert.Equal(t, docstore.OpEQ, first.Operator)

	second, ok := logical.Children[1].(docstore.Relational)
	require.True(t, ok)
	assert.Equal(t, docstore.OpIn, second.Operator)
	assert.Equal(t, docstore.ConstantList{Values: []any{int64(1), int64(2), int64(3)}}, second.RHS)
}

func TestConvertEmptyCombinatorMatchesAll(t *testing.T) {
	converted, err := newConverter().ConvertFilter(query.And())
	require.NoError(t, err)
	assert.Equal(t, docstore.MatchAll{}, converted)
}

func TestConvertNilFilterMatchesAll(t *testing.T) {
	converted, err := newConverter().ConvertFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, docstore.MatchAll{}, converted)
}

func TestConversionFailureAbortsWholeTree(t *testing.T) {
	// A map operand at an equality leaf poisons the whole tree even though
	// the sibling leaf is valid.
	_, err := newConverter().ConvertFilter(query.And(
		query.Leaf{Column: "status", Operator: query.OpEQ, Operand: value.Str("active")},
		query.Leaf{Column: "labels", Operator: query.OpEQ, Operand: value.StrMap(map[string]string{"a": "x"})},
	))
	require.Error(t, err)
	assert.True(t, IsUnsupportedKind(err), "originating error must survive: %v", err)
}

func TestMembershipRequiresArrayOperand(t *testing.T) {
	_, err := newConverter().ConvertFilter(query.Leaf{
		Column:   "count",
		Operator: query.OpIn,
		Operand:  value.Long(1),
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeConversionFailed))
}

func TestExistenceLeafTakesNoOperand(t *testing.T) {
	converted, err := newConverter().ConvertFilter(query.Leaf{
		Column:   "status",
		Operator: query.OpExists,
	})
	require.NoError(t, err)

	relational, ok := converted.(docstore.Relational)
	require.True(t, ok)
	assert.Equal(t, docstore.OpExists, relational.Operator)
	assert.Nil(t, relational.RHS)
}

func TestConvertNullLeaf(t *testing.T) {
	converted, err := newConverter().ConvertFilter(query.Leaf{
		Column:   "status",
		Operator: query.OpNEQ,
		Operand:  value.Null(),
	})
	require.NoError(t, err)

	relational, ok := converted.(docstore.Relational)
	require.True(t, ok)
	assert.Equal(t, docstore.Constant{Value: nil}, relational.RHS)
}

func TestConvertExpression(t *testing.T) {
	conv := newConverter()

	col, err := conv.ConvertExpression(query.ColumnRef{Name: "entity_id"})
	require.NoError(t, err)
	assert.Equal(t, docstore.FieldPath{Path: "entity_id"}, col)

	fn, err := conv.ConvertExpression(query.FunctionCall{
		Function:  "COUNT",
		Arguments: []query.Expression{query.ColumnRef{Name: "status"}},
	})
	require.NoError(t, err)
	assert.Equal(t, docstore.FunctionExpr{
		Name: "COUNT",
		Args: []docstore.Expression{docstore.FieldPath{Path: "attributes.status"}},
	}, fn)
}

func TestConvertQueryScopesTenantAndType(t *testing.T) {
	converted, err := newConverter().ConvertQuery("tenant-1", query.Query{
		EntityType: "API",
		Filter:     query.Leaf{Column: "status", Operator: query.OpEQ, Operand: value.Str("active")},
	})
	require.NoError(t, err)

	logical, ok := converted.Filter.(docstore.Logical)
	require.True(t, ok)
	require.Len(t, logical.Children, 3)

	tenant := logical.Children[0].(docstore.Relational)
	assert.Equal(t, docstore.FieldPath{Path: "tenant_id"}, tenant.LHS)
	assert.Equal(t, docstore.Constant{Value: "tenant-1"}, tenant.RHS)

	entityType := logical.Children[1].(docstore.Relational)
	assert.Equal(t, docstore.FieldPath{Path: "entity_type"}, entityType.LHS)
}
