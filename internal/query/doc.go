// Package query defines the backend-independent filter and expression
// trees carried by entity queries.
//
// The model is the abstraction boundary between the request surface and
// the document-store backend: requests are expressed against it, and
// package convert lowers it to the docstore representation.
//
// # Filters
//
// Filter is a sealed interface with two shapes:
//
//   - Leaf: operator + column + typed operand(s)
//   - Composite: AND / OR / NOT over an ordered child list
//
// A composite with zero children means "match everything" — the algebra is
// total, and conversion never errors on an empty combinator.
//
// # Expressions
//
// Expression is a sealed interface with three shapes: a column reference,
// a literal typed value, and a function application over sub-expressions
// (projections, group-by, order-by).
//
// Both interfaces use the marker method pattern: only types in this
// package implement them, so backend converters can type-switch
// exhaustively.
package query
