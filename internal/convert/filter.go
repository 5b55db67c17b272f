package convert

import (
	"strings"

	"github.com/roach88/sightline/internal/docstore"
	"github.com/roach88/sightline/internal/query"
	"github.com/roach88/sightline/internal/value"
)

var operatorMap = map[query.Operator]docstore.RelationalOperator{
	query.OpEQ:        docstore.OpEQ,
	query.OpNEQ:       docstore.OpNEQ,
	query.OpLT:        docstore.OpLT,
	query.OpLTE:       docstore.OpLTE,
	query.OpGT:        docstore.OpGT,
	query.OpGTE:       docstore.OpGTE,
	query.OpIn:        docstore.OpIn,
	query.OpNotIn:     docstore.OpNotIn,
	query.OpExists:    docstore.OpExists,
	query.OpNotExists: docstore.OpNotExists,
	query.OpLike:      docstore.OpLike,
}

var logicalMap = map[query.LogicalOperator]docstore.LogicalOperator{
	query.LogicalAnd: docstore.LogicalAnd,
	query.LogicalOr:  docstore.LogicalOr,
	query.LogicalNot: docstore.LogicalNot,
}

// FilterConverter lowers generic filter and expression trees to the
// store-native representation. Construct once with a registry and share;
// it holds no mutable state.
type FilterConverter struct {
	registry *Registry
}

// NewFilterConverter builds a converter over the given registry.
func NewFilterConverter(registry *Registry) *FilterConverter {
	return &FilterConverter{registry: registry}
}

// ConvertFilter lowers a filter tree. Children convert in order; the
// first failure aborts the whole conversion and is returned as-is, so the
// originating ConversionError survives to the caller.
func (c *FilterConverter) ConvertFilter(f query.Filter) (docstore.Filter, error) {
	switch node := f.(type) {
	case query.Leaf:
		return c.convertLeaf(node)
	case *query.Leaf:
		return c.convertLeaf(*node)
	case query.Composite:
		return c.convertComposite(node)
	case *query.Composite:
		return c.convertComposite(*node)
	case nil:
		return docstore.MatchAll{}, nil
	default:
		return nil, errConversion(value.KindUnspecified, "unknown filter node")
	}
}

func (c *FilterConverter) convertComposite(node query.Composite) (docstore.Filter, error) {
	// An empty combinator matches everything; the algebra stays total.
	if len(node.Children) == 0 {
		return docstore.MatchAll{}, nil
	}

	operator, ok := logicalMap[node.Operator]
	if !ok {
		return nil, errConversion(value.KindUnspecified, "unknown logical operator "+string(node.Operator))
	}

	children := make([]docstore.Filter, len(node.Children))
	for i, child := range node.Children {
		converted, err := c.ConvertFilter(child)
		if err != nil {
			return nil, err
		}
		children[i] = converted
	}
	return docstore.Logical{Operator: operator, Children: children}, nil
}

func (c *FilterConverter) convertLeaf(leaf query.Leaf) (docstore.Filter, error) {
	operator, ok := operatorMap[leaf.Operator]
	if !ok {
		return nil, errConversion(leaf.Operand.Kind, "unknown operator "+string(leaf.Operator))
	}

	relational := docstore.Relational{
		LHS:      docstore.FieldPath{Path: ResolveColumn(leaf.Column)},
		Operator: operator,
	}

	// Existence operators take no operand.
	if operator == docstore.OpExists || operator == docstore.OpNotExists {
		return relational, nil
	}

	operand, err := c.registry.Operand(leaf.Operand)
	if err != nil {
		return nil, err
	}

	// Membership requires an array operand; a scalar here is a malformed
	// request, not something to coerce.
	if operator == docstore.OpIn || operator == docstore.OpNotIn {
		if _, isList := operand.(docstore.ConstantList); !isList {
			return nil, errConversion(leaf.Operand.Kind, "membership operator requires an array operand")
		}
	}

	relational.RHS = operand
	return relational, nil
}

// ConvertExpression lowers a projection / grouping / ordering expression.
func (c *FilterConverter) ConvertExpression(e query.Expression) (docstore.Expression, error) {
	switch expr := e.(type) {
	case query.ColumnRef:
		return docstore.FieldPath{Path: ResolveColumn(expr.Name)}, nil
	case *query.ColumnRef:
		return docstore.FieldPath{Path: ResolveColumn(expr.Name)}, nil
	case query.Literal:
		return c.registry.Operand(expr.Value)
	case *query.Literal:
		return c.registry.Operand(expr.Value)
	case query.FunctionCall:
		return c.convertFunction(expr)
	case *query.FunctionCall:
		return c.convertFunction(*expr)
	default:
		return nil, errConversion(value.KindUnspecified, "unknown expression node")
	}
}

func (c *FilterConverter) convertFunction(fn query.FunctionCall) (docstore.Expression, error) {
	args := make([]docstore.Expression, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		converted, err := c.ConvertExpression(arg)
		if err != nil {
			return nil, err
		}
		args[i] = converted
	}
	return docstore.FunctionExpr{Name: fn.Function, Args: args}, nil
}

// ConvertQuery lowers a full entity query and scopes it to the tenant
// (and entity type, when the query names one).
func (c *FilterConverter) ConvertQuery(tenantID string, q query.Query) (docstore.Query, error) {
	scope := []docstore.Filter{
		docstore.Relational{
			LHS:      docstore.FieldPath{Path: "tenant_id"},
			Operator: docstore.OpEQ,
			RHS:      docstore.Constant{Value: tenantID},
		},
	}
	if q.EntityType != "" {
		scope = append(scope, docstore.Relational{
			LHS:      docstore.FieldPath{Path: "entity_type"},
			Operator: docstore.OpEQ,
			RHS:      docstore.Constant{Value: q.EntityType},
		})
	}

	if q.Filter != nil {
		converted, err := c.ConvertFilter(q.Filter)
		if err != nil {
			return docstore.Query{}, err
		}
		if _, matchAll := converted.(docstore.MatchAll); !matchAll {
			scope = append(scope, converted)
		}
	}

	out := docstore.Query{
		Filter: docstore.Logical{Operator: docstore.LogicalAnd, Children: scope},
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	var err error
	if out.Selections, err = c.convertExpressions(q.Selections); err != nil {
		return docstore.Query{}, err
	}
	if out.GroupBys, err = c.convertExpressions(q.GroupBy); err != nil {
		return docstore.Query{}, err
	}
	for _, ob := range q.OrderBy {
		converted, err := c.ConvertExpression(ob.Expression)
		if err != nil {
			return docstore.Query{}, err
		}
		out.OrderBys = append(out.OrderBys, docstore.OrderBy{Expression: converted, Descending: ob.Descending})
	}

	return out, nil
}

func (c *FilterConverter) convertExpressions(in []query.Expression) ([]docstore.Expression, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]docstore.Expression, len(in))
	for i, e := range in {
		converted, err := c.ConvertExpression(e)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

// ResolveColumn maps a request column name to a store field path. Known
// top-level columns and already-prefixed paths pass through; bare names
// address the attribute payload.
func ResolveColumn(name string) string {
	if docstore.IsColumnField(name) || strings.HasPrefix(name, docstore.AttributePrefix) {
		return name
	}
	return docstore.AttributePrefix + name
}
