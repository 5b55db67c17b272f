// Package convert lowers the generic query model to the document-store
// representation.
//
// Conversion of operand values is strategy-dispatched: every typed value
// classifies into one of four categories (null, primitive, array, map),
// and the Registry holds exactly one converter per category. Selection is
// a pure lookup on the classification, never an inspection chain over the
// payload.
//
// The filter converter walks the query filter tree recursively, resolving
// each leaf's column to a field path and its operand through the registry.
// Conversion is all-or-nothing: the first failure anywhere in the tree
// aborts the whole conversion and surfaces the originating error
// untouched.
//
// The package also carries the static kind lookup tables used by schema
// and validation code — kind to canonical type name, primitive kind to
// array kind, canonical name to primitive kind. They are plain package
// maps built once at init and never mutated.
package convert
