package value

// Kind identifies the declared type of a Value.
//
// The zero value is KindUnspecified, which classifies as unknown. The
// enumeration is closed: converters type-switch exhaustively over it and
// reject anything they do not recognize.
type Kind int

const (
	KindUnspecified Kind = iota

	// Primitive kinds.
	KindString
	KindLong
	KindInt
	KindFloat
	KindDouble
	KindBytes
	KindBool
	KindTimestamp

	// Array kinds. There is no timestamp array; timestamps are carried in
	// long arrays (see convert.ArrayKindOf).
	KindStringArray
	KindLongArray
	KindIntArray
	KindFloatArray
	KindDoubleArray
	KindBytesArray
	KindBooleanArray

	// Map kinds.
	KindStringMap
)

var kindNames = map[Kind]string{
	KindUnspecified:  "UNSPECIFIED",
	KindString:       "STRING",
	KindLong:         "LONG",
	KindInt:          "INT",
	KindFloat:        "FLOAT",
	KindDouble:       "DOUBLE",
	KindBytes:        "BYTES",
	KindBool:         "BOOL",
	KindTimestamp:    "TIMESTAMP",
	KindStringArray:  "STRING_ARRAY",
	KindLongArray:    "LONG_ARRAY",
	KindIntArray:     "INT_ARRAY",
	KindFloatArray:   "FLOAT_ARRAY",
	KindDoubleArray:  "DOUBLE_ARRAY",
	KindBytesArray:   "BYTES_ARRAY",
	KindBooleanArray: "BOOLEAN_ARRAY",
	KindStringMap:    "STRING_MAP",
}

// String returns the wire name of the kind, or "UNKNOWN(n)" for values
// outside the enumeration.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// KindFromName resolves a wire name ("LONG", "STRING_ARRAY", ...) back to
// its Kind. Returns KindUnspecified and false for unrecognized names.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnspecified, false
}

// Value is a kind-tagged union. The Kind tag and the populated payload
// field must agree: constructors below are the supported way to build one.
//
// Only the payload field matching the Kind is meaningful; the rest stay at
// their zero values. Converters never inspect payload fields other than the
// one selected by the tag.
type Value struct {
	Kind Kind

	String    string
	Long      int64
	Int       int32
	Float     float32
	Double    float64
	Bytes     []byte
	Bool      bool
	Timestamp int64

	StringArray  []string
	LongArray    []int64
	IntArray     []int32
	FloatArray   []float32
	DoubleArray  []float64
	BytesArray   [][]byte
	BooleanArray []bool

	StringMap map[string]string
}

// Null returns the null sentinel value: a string value whose payload is the
// literal "null".
func Null() Value { return Value{Kind: KindString, String: "null"} }

func Str(s string) Value        { return Value{Kind: KindString, String: s} }
func Long(v int64) Value        { return Value{Kind: KindLong, Long: v} }
func Int(v int32) Value         { return Value{Kind: KindInt, Int: v} }
func Float(v float32) Value     { return Value{Kind: KindFloat, Float: v} }
func Double(v float64) Value    { return Value{Kind: KindDouble, Double: v} }
func BytesOf(b []byte) Value    { return Value{Kind: KindBytes, Bytes: b} }
func BoolOf(b bool) Value       { return Value{Kind: KindBool, Bool: b} }
func Timestamp(ms int64) Value  { return Value{Kind: KindTimestamp, Timestamp: ms} }
func Strings(s ...string) Value { return Value{Kind: KindStringArray, StringArray: s} }
func Longs(v ...int64) Value    { return Value{Kind: KindLongArray, LongArray: v} }
func Ints(v ...int32) Value     { return Value{Kind: KindIntArray, IntArray: v} }
func Floats(v ...float32) Value { return Value{Kind: KindFloatArray, FloatArray: v} }
func Doubles(v ...float64) Value {
	return Value{Kind: KindDoubleArray, DoubleArray: v}
}
func BytesList(b ...[]byte) Value { return Value{Kind: KindBytesArray, BytesArray: b} }
func Bools(v ...bool) Value       { return Value{Kind: KindBooleanArray, BooleanArray: v} }

// StrMap builds a string-map value. The map is used as-is; callers must not
// mutate it afterwards.
func StrMap(m map[string]string) Value { return Value{Kind: KindStringMap, StringMap: m} }

// Len returns the element count for array values and the entry count for
// map values. Returns 0 for every other kind.
func (v Value) Len() int {
	switch v.Kind {
	case KindStringArray:
		return len(v.StringArray)
	case KindLongArray:
		return len(v.LongArray)
	case KindIntArray:
		return len(v.IntArray)
	case KindFloatArray:
		return len(v.FloatArray)
	case KindDoubleArray:
		return len(v.DoubleArray)
	case KindBytesArray:
		return len(v.BytesArray)
	case KindBooleanArray:
		return len(v.BooleanArray)
	case KindStringMap:
		return len(v.StringMap)
	default:
		return 0
	}
}

// Equal reports payload equality between two values of the same kind.
// Values of different kinds are never equal, even when their payloads
// would coerce to the same number.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.String == o.String
	case KindLong:
		return v.Long == o.Long
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindDouble:
		return v.Double == o.Double
	case KindBytes:
		return string(v.Bytes) == string(o.Bytes)
	case KindBool:
		return v.Bool == o.Bool
	case KindTimestamp:
		return v.Timestamp == o.Timestamp
	case KindStringArray:
		return equalSlices(v.StringArray, o.StringArray)
	case KindLongArray:
		return equalSlices(v.LongArray, o.LongArray)
	case KindIntArray:
		return equalSlices(v.IntArray, o.IntArray)
	case KindFloatArray:
		return equalSlices(v.FloatArray, o.FloatArray)
	case KindDoubleArray:
		return equalSlices(v.DoubleArray, o.DoubleArray)
	case KindBytesArray:
		if len(v.BytesArray) != len(o.BytesArray) {
			return false
		}
		for i := range v.BytesArray {
			if string(v.BytesArray[i]) != string(o.BytesArray[i]) {
				return false
			}
		}
		return true
	case KindBooleanArray:
		return equalSlices(v.BooleanArray, o.BooleanArray)
	case KindStringMap:
		if len(v.StringMap) != len(o.StringMap) {
			return false
		}
		for k, val := range v.StringMap {
			if ov, ok := o.StringMap[k]; !ok || ov != val {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
