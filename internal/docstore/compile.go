package docstore

import (
	"fmt"
	"strings"
)

// Compiler lowers store-native filters and expressions to parameterized
// SQLite. Values are always bound as parameters, never interpolated.
//
// Every compiled query ends with ORDER BY doc_key COLLATE BINARY ASC
// (after any caller ordering) so result order is reproducible across runs
// and SQLite versions.
type Compiler struct{}

// columnFields maps top-level field paths to table columns. Anything not
// listed here must be an "attributes." path.
var columnFields = map[string]string{
	"tenant_id":   "tenant_id",
	"entity_type": "entity_type",
	"entity_id":   "entity_id",
	"doc_key":     "doc_key",
	"name":        "name",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// AttributePrefix marks field paths addressing the attribute payload
// rather than a table column.
const AttributePrefix = "attributes."

const attributePrefix = AttributePrefix

// IsColumnField reports whether a field path names a top-level table
// column. Anything else must use the attribute prefix.
func IsColumnField(path string) bool {
	_, ok := columnFields[path]
	return ok
}

var relationalSQL = map[RelationalOperator]string{
	OpEQ:   "=",
	OpNEQ:  "!=",
	OpLT:   "<",
	OpLTE:  "<=",
	OpGT:   ">",
	OpGTE:  ">=",
	OpLike: "LIKE",
}

// CompileQuery assembles a complete SELECT over the entities table.
func (c Compiler) CompileQuery(q Query) (string, []any, error) {
	selectClause, err := c.compileSelections(q.Selections)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	var params []any

	sb.WriteString("SELECT ")
	sb.WriteString(selectClause)
	sb.WriteString(" FROM entities")

	if q.Filter != nil {
		whereSQL, whereParams, err := c.CompileFilter(q.Filter)
		if err != nil {
			return "", nil, err
		}
		if whereSQL != "" {
			sb.WriteString(" WHERE ")
			sb.WriteString(whereSQL)
			params = append(params, whereParams...)
		}
	}

	if len(q.GroupBys) > 0 {
		groups := make([]string, len(q.GroupBys))
		for i, g := range q.GroupBys {
			groups[i], err = c.CompileExpression(g)
			if err != nil {
				return "", nil, err
			}
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(groups, ", "))
	}

	sb.WriteString(" ORDER BY ")
	for _, o := range q.OrderBys {
		expr, err := c.CompileExpression(o.Expression)
		if err != nil {
			return "", nil, err
		}
		dir := "ASC"
		if o.Descending {
			dir = "DESC"
		}
		sb.WriteString(expr + " " + dir + ", ")
	}
	// Trailing tiebreaker keeps results deterministic regardless of caller
	// ordering. The collation must precede the direction in an ordering
	// term.
	sb.WriteString("doc_key COLLATE BINARY ASC")

	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}

	return sb.String(), params, nil
}

func (c Compiler) compileSelections(selections []Expression) (string, error) {
	if len(selections) == 0 {
		return "doc_key, tenant_id, entity_type, entity_id, name, attrs, created_at, updated_at", nil
	}
	parts := make([]string, len(selections))
	for i, sel := range selections {
		compiled, err := c.CompileExpression(sel)
		if err != nil {
			return "", err
		}
		parts[i] = compiled
	}
	return strings.Join(parts, ", "), nil
}

// CompileFilter lowers a filter tree to a WHERE fragment plus bound
// parameters. An empty fragment means match-all.
func (c Compiler) CompileFilter(f Filter) (string, []any, error) {
	switch node := f.(type) {
	case MatchAll:
		return "", nil, nil
	case Relational:
		return c.compileRelational(node)
	case Logical:
		return c.compileLogical(node)
	case *Relational:
		return c.compileRelational(*node)
	case *Logical:
		return c.compileLogical(*node)
	default:
		return "", nil, fmt.Errorf("unsupported filter type: %T", f)
	}
}

func (c Compiler) compileLogical(node Logical) (string, []any, error) {
	// Empty combinators match everything rather than erroring; the filter
	// algebra is total.
	if len(node.Children) == 0 {
		return "", nil, nil
	}

	var parts []string
	var params []any
	for _, child := range node.Children {
		sql, childParams, err := c.CompileFilter(child)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			sql = "1 = 1"
		}
		parts = append(parts, "("+sql+")")
		params = append(params, childParams...)
	}

	switch node.Operator {
	case LogicalAnd:
		return strings.Join(parts, " AND "), params, nil
	case LogicalOr:
		return strings.Join(parts, " OR "), params, nil
	case LogicalNot:
		return "NOT (" + strings.Join(parts, " AND ") + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported logical operator: %s", node.Operator)
	}
}

func (c Compiler) compileRelational(node Relational) (string, []any, error) {
	lhs, err := c.CompileExpression(node.LHS)
	if err != nil {
		return "", nil, err
	}

	switch node.Operator {
	case OpExists, OpNotExists:
		// Existence tests the attribute node itself, not its scalar
		// payload, so array and map attributes count as present too.
		if fp, ok := node.LHS.(FieldPath); ok {
			if name, isAttr := strings.CutPrefix(fp.Path, attributePrefix); isAttr && name != "" {
				if strings.ContainsAny(name, "'\"`[]") {
					return "", nil, fmt.Errorf("invalid attribute path: %q", fp.Path)
				}
				lhs = fmt.Sprintf("json_extract(attrs, '$.%s')", name)
			}
		}
		if node.Operator == OpExists {
			return lhs + " IS NOT NULL", nil, nil
		}
		return lhs + " IS NULL", nil, nil
	case OpIn, OpNotIn:
		list, ok := node.RHS.(ConstantList)
		if !ok {
			return "", nil, fmt.Errorf("%s requires a constant list operand, got %T", node.Operator, node.RHS)
		}
		if len(list.Values) == 0 {
			// IN () is a SQL syntax error; an empty membership set matches
			// nothing (or everything, negated).
			if node.Operator == OpIn {
				return "1 = 0", nil, nil
			}
			return "1 = 1", nil, nil
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(list.Values)), ", ")
		op := "IN"
		if node.Operator == OpNotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", lhs, op, placeholders), list.Values, nil
	}

	symbol, ok := relationalSQL[node.Operator]
	if !ok {
		return "", nil, fmt.Errorf("unsupported relational operator: %s", node.Operator)
	}

	// Null constants compare with IS / IS NOT; SQL equality never matches
	// NULL.
	if constant, ok := node.RHS.(Constant); ok && constant.Value == nil {
		switch node.Operator {
		case OpEQ:
			return lhs + " IS NULL", nil, nil
		case OpNEQ:
			return lhs + " IS NOT NULL", nil, nil
		default:
			return "", nil, fmt.Errorf("operator %s not valid against null", node.Operator)
		}
	}

	rhs, params, err := c.compileOperand(node.RHS)
	if err != nil {
		return "", nil, err
	}
	return lhs + " " + symbol + " " + rhs, params, nil
}

// compileOperand compiles the right-hand side of a relational node.
// Constants become placeholders; field paths and functions compile to SQL
// so field-to-field comparisons keep working.
func (c Compiler) compileOperand(e Expression) (string, []any, error) {
	switch operand := e.(type) {
	case Constant:
		return "?", []any{operand.Value}, nil
	case ConstantList:
		return "", nil, fmt.Errorf("constant list only valid with IN / NOT_IN")
	default:
		sql, err := c.CompileExpression(e)
		if err != nil {
			return "", nil, err
		}
		return sql, nil, nil
	}
}

// CompileExpression lowers an expression to a SQL fragment. Constants are
// not allowed here (they must be parameterized); use compileOperand for
// operand positions.
func (c Compiler) CompileExpression(e Expression) (string, error) {
	switch expr := e.(type) {
	case FieldPath:
		return c.compileFieldPath(expr.Path)
	case *FieldPath:
		return c.compileFieldPath(expr.Path)
	case FunctionExpr:
		return c.compileFunction(expr)
	case *FunctionExpr:
		return c.compileFunction(*expr)
	case Constant, ConstantList, *Constant, *ConstantList:
		return "", fmt.Errorf("constants cannot appear outside operand position")
	default:
		return "", fmt.Errorf("unsupported expression type: %T", e)
	}
}

func (c Compiler) compileFunction(fn FunctionExpr) (string, error) {
	if !isSQLIdentifier(fn.Name) {
		return "", fmt.Errorf("invalid function name: %q", fn.Name)
	}
	args := make([]string, len(fn.Args))
	for i, arg := range fn.Args {
		compiled, err := c.CompileExpression(arg)
		if err != nil {
			return "", err
		}
		args[i] = compiled
	}
	return fn.Name + "(" + strings.Join(args, ", ") + ")", nil
}

// isSQLIdentifier reports whether s is a plain unquoted identifier.
// Function names land in SQL text verbatim, so anything else is rejected.
func isSQLIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compileFieldPath resolves a logical field path to a column reference or
// a json_extract over the attribute payload.
//
// Attribute scalars live under "$.<name>.value" in the kind-tagged JSON
// encoding, so that is where comparisons point.
func (c Compiler) compileFieldPath(path string) (string, error) {
	if column, ok := columnFields[path]; ok {
		return column, nil
	}
	if name, ok := strings.CutPrefix(path, attributePrefix); ok && name != "" {
		if strings.ContainsAny(name, "'\"`[]") {
			return "", fmt.Errorf("invalid attribute path: %q", path)
		}
		return fmt.Sprintf("json_extract(attrs, '$.%s.value')", name), nil
	}
	return "", fmt.Errorf("unknown field path: %q", path)
}
