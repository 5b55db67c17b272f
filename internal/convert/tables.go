package convert

import (
	"fmt"

	"github.com/roach88/sightline/internal/value"
)

// Static kind lookup tables. Built once here, never mutated; accessors
// return the shared entries by value.

// typeNames maps every kind to its canonical type name. Array and map
// kinds map to their element name.
var typeNames = map[value.Kind]string{
	// Primitives
	value.KindString:    "string",
	value.KindLong:      "long",
	value.KindInt:       "int",
	value.KindFloat:     "float",
	value.KindDouble:    "double",
	value.KindBytes:     "bytes",
	value.KindBool:      "boolean",
	value.KindTimestamp: "timestamp",

	// Arrays
	value.KindStringArray:  "string",
	value.KindLongArray:    "long",
	value.KindIntArray:     "int",
	value.KindFloatArray:   "float",
	value.KindDoubleArray:  "double",
	value.KindBytesArray:   "bytes",
	value.KindBooleanArray: "boolean",

	// Maps
	value.KindStringMap: "string",
}

// arrayKinds maps each primitive kind to its array counterpart. There is
// no timestamp array kind; timestamps travel in long arrays.
var arrayKinds = map[value.Kind]value.Kind{
	value.KindString:    value.KindStringArray,
	value.KindLong:      value.KindLongArray,
	value.KindInt:       value.KindIntArray,
	value.KindFloat:     value.KindFloatArray,
	value.KindDouble:    value.KindDoubleArray,
	value.KindBytes:     value.KindBytesArray,
	value.KindBool:      value.KindBooleanArray,
	value.KindTimestamp: value.KindLongArray,
}

// primitiveKinds is the inverse of typeNames restricted to primitives.
var primitiveKinds = map[string]value.Kind{
	"string":    value.KindString,
	"long":      value.KindLong,
	"int":       value.KindInt,
	"float":     value.KindFloat,
	"double":    value.KindDouble,
	"bytes":     value.KindBytes,
	"boolean":   value.KindBool,
	"timestamp": value.KindTimestamp,
}

// TypeName returns the canonical type name for a kind.
func TypeName(k value.Kind) (string, error) {
	name, ok := typeNames[k]
	if !ok {
		return "", errConversion(k, "no canonical type name")
	}
	return name, nil
}

// ArrayKindOf returns the array kind carrying elements of the given
// primitive kind.
func ArrayKindOf(primitive value.Kind) (value.Kind, error) {
	arrayKind, ok := arrayKinds[primitive]
	if !ok {
		return value.KindUnspecified, errConversion(primitive, "no array kind")
	}
	return arrayKind, nil
}

// PrimitiveKindFor resolves a canonical type name back to its primitive
// kind.
func PrimitiveKindFor(name string) (value.Kind, error) {
	k, ok := primitiveKinds[name]
	if !ok {
		return value.KindUnspecified, &ConversionError{
			Code:    CodeConversionFailed,
			Kind:    value.KindUnspecified,
			Message: fmt.Sprintf("no primitive kind for type name %q", name),
		}
	}
	return k, nil
}
