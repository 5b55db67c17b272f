// Package docstore is the document-store backend: the native filter and
// expression representation that conversion targets, a compiler lowering
// that representation to parameterized SQLite, and the store itself.
//
// # Native representation
//
// Filter and Expression are sealed interfaces (marker method pattern), so
// the compiler can type-switch exhaustively:
//
//   - Relational: <expression> <operator> <expression>
//   - Logical: AND / OR / NOT over ordered children
//   - MatchAll: the empty filter, produced by empty combinators
//   - FieldPath, Constant, ConstantList, FunctionExpr
//
// # Storage model
//
// Entities live in a single table keyed by the canonical identity string
// "tenant:type:id". Attribute payloads are stored as a JSON object of
// kind-tagged values and queried through SQLite's json_extract. Every
// query carries ORDER BY doc_key COLLATE BINARY ASC; result order is part
// of the store's contract.
//
// # Concurrency
//
// The store holds a single write connection (SQLite allows one writer);
// WAL mode keeps readers unblocked during writes. Bulk upserts returning
// superseded documents run in one transaction so the before-images and the
// write are atomic.
package docstore
