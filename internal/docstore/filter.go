package docstore

// RelationalOperator enumerates the comparison operators the store
// understands natively.
type RelationalOperator string

const (
	OpEQ        RelationalOperator = "EQ"
	OpNEQ       RelationalOperator = "NEQ"
	OpLT        RelationalOperator = "LT"
	OpLTE       RelationalOperator = "LTE"
	OpGT        RelationalOperator = "GT"
	OpGTE       RelationalOperator = "GTE"
	OpIn        RelationalOperator = "IN"
	OpNotIn     RelationalOperator = "NOT_IN"
	OpExists    RelationalOperator = "EXISTS"
	OpNotExists RelationalOperator = "NOT_EXISTS"
	OpLike      RelationalOperator = "LIKE"
)

// LogicalOperator combines child filters.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
	LogicalNot LogicalOperator = "NOT"
)

// Filter is the sealed store-native filter interface. Implementations:
// Relational, Logical, MatchAll.
type Filter interface {
	docFilter() // Marker method - seals interface to this package
}

// Relational compares two expressions. LHS is normally a FieldPath and RHS
// a Constant or ConstantList; the compiler accepts any expression on
// either side.
type Relational struct {
	LHS      Expression
	Operator RelationalOperator
	RHS      Expression
}

func (Relational) docFilter() {}

// Logical combines children in order with one logical operator.
type Logical struct {
	Operator LogicalOperator
	Children []Filter
}

func (Logical) docFilter() {}

// MatchAll matches every document. Empty combinators lower to it so the
// filter algebra stays total.
type MatchAll struct{}

func (MatchAll) docFilter() {}

// Expression is the sealed store-native expression interface.
// Implementations: FieldPath, Constant, ConstantList, FunctionExpr.
type Expression interface {
	docExpression() // Marker method - seals interface to this package
}

// FieldPath names a document field. Top-level names (tenant_id,
// entity_type, entity_id, doc_key, name, created_at, updated_at) address
// table columns; "attributes.<name>" addresses the attribute payload.
type FieldPath struct {
	Path string
}

func (FieldPath) docExpression() {}

// Constant is a scalar literal. Value is one of string, int32, int64,
// float32, float64, bool, or nil (the null constant).
type Constant struct {
	Value any
}

func (Constant) docExpression() {}

// ConstantList is a homogeneous list literal, the operand shape required
// by IN and NOT_IN.
type ConstantList struct {
	Values []any
}

func (ConstantList) docExpression() {}

// FunctionExpr applies a named function (aggregations, transforms) to its
// arguments in order.
type FunctionExpr struct {
	Name string
	Args []Expression
}

func (FunctionExpr) docExpression() {}

// OrderBy pairs an expression with a direction.
type OrderBy struct {
	Expression Expression
	Descending bool
}

// Query is a complete store query over the entities table.
type Query struct {
	Selections []Expression
	Filter     Filter
	GroupBys   []Expression
	OrderBys   []OrderBy
	Limit      int
	Offset     int
}
