// Package value defines the typed value model shared by filters, query
// expressions, and entity attributes.
//
// A Value is a kind-tagged union over a closed set of shapes:
//
//   - primitives: string, long, int, float, double, bytes, bool, timestamp
//   - arrays: one per primitive kind (booleans share a single boolean array)
//   - maps: string → string
//
// Every Value is classified into exactly one Category (NULL, PRIMITIVE,
// ARRAY, MAP) by Classify. The null check runs first and is a string
// comparison against the literal "null" (case-insensitive) on the scalar
// string payload — a convention inherited from the upstream wire format,
// where callers signal "no value" by sending the sentinel string.
//
// The kind enumeration is closed. Classify is total over it: any kind
// outside the three category sets (including KindUnspecified) reports an
// unknown-kind classification, which converters reject.
package value
