package value

import "strings"

// Category is the shape classification of a Value. Every Value falls into
// exactly one category; classification drives converter selection.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNull
	CategoryPrimitive
	CategoryArray
	CategoryMap
)

func (c Category) String() string {
	switch c {
	case CategoryNull:
		return "NULL"
	case CategoryPrimitive:
		return "PRIMITIVE"
	case CategoryArray:
		return "ARRAY"
	case CategoryMap:
		return "MAP"
	default:
		return "UNKNOWN"
	}
}

// nullSentinel is the literal string payload that marks a value as null.
const nullSentinel = "null"

var primitiveKinds = map[Kind]bool{
	KindString:    true,
	KindLong:      true,
	KindInt:       true,
	KindFloat:     true,
	KindDouble:    true,
	KindBytes:     true,
	KindBool:      true,
	KindTimestamp: true,
}

var arrayKinds = map[Kind]bool{
	KindStringArray:  true,
	KindLongArray:    true,
	KindIntArray:     true,
	KindFloatArray:   true,
	KindDoubleArray:  true,
	KindBytesArray:   true,
	KindBooleanArray: true,
}

var mapKinds = map[Kind]bool{
	KindStringMap: true,
}

// IsNull reports whether the value is the null sentinel. The check reads
// the scalar string payload regardless of the declared kind and compares
// case-insensitively, so "NULL" and "NuLl" are null but "nulls" is not.
func IsNull(v Value) bool {
	return strings.EqualFold(v.String, nullSentinel)
}

// IsPrimitive reports membership in the primitive kind set.
func IsPrimitive(k Kind) bool { return primitiveKinds[k] }

// IsArray reports membership in the array kind set.
func IsArray(k Kind) bool { return arrayKinds[k] }

// IsMap reports membership in the map kind set.
func IsMap(k Kind) bool { return mapKinds[k] }

// Classify places a value in exactly one category.
//
// Order is fixed: the null sentinel check runs before any kind membership
// test, so a string value carrying "null" is NULL no matter what else its
// payload would classify as. Kinds outside all three sets (including
// KindUnspecified) return CategoryUnknown; callers treat that as an
// unsupported-kind failure.
func Classify(v Value) Category {
	if IsNull(v) {
		return CategoryNull
	}
	switch {
	case IsPrimitive(v.Kind):
		return CategoryPrimitive
	case IsArray(v.Kind):
		return CategoryArray
	case IsMap(v.Kind):
		return CategoryMap
	default:
		return CategoryUnknown
	}
}
