package query

import "github.com/roach88/sightline/internal/value"

// Operator enumerates the comparison and membership operators a filter
// leaf may carry. Each maps 1:1 to a docstore relational operator.
type Operator string

const (
	OpEQ        Operator = "EQ"
	OpNEQ       Operator = "NEQ"
	OpLT        Operator = "LT"
	OpLTE       Operator = "LTE"
	OpGT        Operator = "GT"
	OpGTE       Operator = "GTE"
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT_IN"
	OpExists    Operator = "EXISTS"
	OpNotExists Operator = "NOT_EXISTS"
	OpLike      Operator = "LIKE"
)

// LogicalOperator combines child filters in a Composite node.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
	LogicalNot LogicalOperator = "NOT"
)

// Filter is the sealed filter-tree interface. Implementations: Leaf,
// Composite.
type Filter interface {
	filterNode() // Marker method - seals interface to this package
}

// Leaf is a single predicate: <column> <operator> <operand>.
//
// Operand category must be compatible with the operator; IN and NOT_IN
// require an array operand. Compatibility is enforced during conversion,
// not at construction.
type Leaf struct {
	Column   string
	Operator Operator
	Operand  value.Value
}

func (Leaf) filterNode() {}

// Composite combines child filters with a logical operator. Children keep
// their order through conversion. Zero children converts to match-all.
type Composite struct {
	Operator LogicalOperator
	Children []Filter
}

func (Composite) filterNode() {}

// And builds an AND composite over the given children.
func And(children ...Filter) Composite {
	return Composite{Operator: LogicalAnd, Children: children}
}

// Or builds an OR composite over the given children.
func Or(children ...Filter) Composite {
	return Composite{Operator: LogicalOr, Children: children}
}

// Not builds a NOT composite over the given children.
func Not(children ...Filter) Composite {
	return Composite{Operator: LogicalNot, Children: children}
}

// Expression is the sealed expression interface. Implementations:
// ColumnRef, Literal, FunctionCall.
type Expression interface {
	expressionNode() // Marker method - seals interface to this package
}

// ColumnRef references an entity column or attribute path, e.g.
// "attributes.status".
type ColumnRef struct {
	Name string
}

func (ColumnRef) expressionNode() {}

// Literal wraps a typed value used directly in an expression position.
type Literal struct {
	Value value.Value
}

func (Literal) expressionNode() {}

// FunctionCall applies a named aggregation or transform to its arguments,
// in order. Function names pass through to the backend untranslated.
type FunctionCall struct {
	Function  string
	Arguments []Expression
}

func (FunctionCall) expressionNode() {}

// OrderBy pairs an expression with a sort direction.
type OrderBy struct {
	Expression Expression
	Descending bool
}

// Query is a complete entity query: a filter plus optional projection,
// grouping, and ordering expressions.
type Query struct {
	EntityType string
	Filter     Filter
	Selections []Expression
	GroupBy    []Expression
	OrderBy    []OrderBy
	Limit      int
	Offset     int
}
