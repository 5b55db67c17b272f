package convert

import (
	"github.com/roach88/sightline/internal/docstore"
	"github.com/roach88/sightline/internal/value"
)

// Converter turns typed values into store-native operands. One strategy
// exists per value category; all strategies implement the full interface
// and fail category-mismatched calls with the matching typed error.
type Converter interface {
	// Operand converts the whole value to a store operand.
	Operand(v value.Value) (docstore.Expression, error)

	// OperandAt extracts one element of an array value by index.
	OperandAt(v value.Value, index int) (docstore.Expression, error)

	// OperandKey extracts one entry of a map value by key.
	OperandKey(v value.Value, key string) (docstore.Expression, error)
}

// Registry holds exactly one converter per value category. Build it once
// with NewRegistry and share it; it is immutable and safe for concurrent
// use.
type Registry struct {
	null      Converter
	primitive Converter
	array     Converter
	mapConv   Converter
}

// NewRegistry constructs the registry with the four category strategies.
func NewRegistry() *Registry {
	return &Registry{
		null:      nullConverter{},
		primitive: primitiveConverter{},
		array:     arrayConverter{},
		mapConv:   mapConverter{},
	}
}

// ConverterFor selects the strategy for a value by classification.
// Classification order matters: the null check always runs first.
func (r *Registry) ConverterFor(v value.Value) (Converter, error) {
	switch value.Classify(v) {
	case value.CategoryNull:
		return r.null, nil
	case value.CategoryPrimitive:
		return r.primitive, nil
	case value.CategoryArray:
		return r.array, nil
	case value.CategoryMap:
		return r.mapConv, nil
	default:
		return nil, errUnsupportedKind(v.Kind)
	}
}

// Operand is a convenience combining selection and conversion.
func (r *Registry) Operand(v value.Value) (docstore.Expression, error) {
	conv, err := r.ConverterFor(v)
	if err != nil {
		return nil, err
	}
	return conv.Operand(v)
}

// nullConverter handles the null sentinel. Its operand is the null
// constant, which the backend compiles to IS NULL / IS NOT NULL.
type nullConverter struct{}

func (nullConverter) Operand(value.Value) (docstore.Expression, error) {
	return docstore.Constant{Value: nil}, nil
}

func (nullConverter) OperandAt(v value.Value, _ int) (docstore.Expression, error) {
	return nil, errNotAList(v.Kind)
}

func (nullConverter) OperandKey(v value.Value, _ string) (docstore.Expression, error) {
	return nil, errNotAMap(v.Kind)
}

// primitiveConverter maps each primitive kind to its native scalar. Bytes
// convert to their textual form; every other kind passes through.
type primitiveConverter struct{}

func (primitiveConverter) Operand(v value.Value) (docstore.Expression, error) {
	switch v.Kind {
	case value.KindString:
		return docstore.Constant{Value: v.String}, nil
	case value.KindLong:
		return docstore.Constant{Value: v.Long}, nil
	case value.KindInt:
		return docstore.Constant{Value: v.Int}, nil
	case value.KindFloat:
		return docstore.Constant{Value: v.Float}, nil
	case value.KindDouble:
		return docstore.Constant{Value: v.Double}, nil
	case value.KindBytes:
		return docstore.Constant{Value: string(v.Bytes)}, nil
	case value.KindBool:
		return docstore.Constant{Value: v.Bool}, nil
	case value.KindTimestamp:
		return docstore.Constant{Value: v.Timestamp}, nil
	default:
		return nil, errUnsupportedKind(v.Kind)
	}
}

func (primitiveConverter) OperandAt(v value.Value, _ int) (docstore.Expression, error) {
	return nil, errNotAList(v.Kind)
}

func (primitiveConverter) OperandKey(v value.Value, _ string) (docstore.Expression, error) {
	return nil, errNotAMap(v.Kind)
}

// arrayConverter produces homogeneous list operands. Element conversion
// follows the same scalar rules as the primitive converter — byte-array
// elements become text, not a re-encoded form.
type arrayConverter struct{}

func (arrayConverter) Operand(v value.Value) (docstore.Expression, error) {
	switch v.Kind {
	case value.KindStringArray:
		return docstore.ConstantList{Values: toAnySlice(v.StringArray)}, nil
	case value.KindLongArray:
		return docstore.ConstantList{Values: toAnySlice(v.LongArray)}, nil
	case value.KindIntArray:
		return docstore.ConstantList{Values: toAnySlice(v.IntArray)}, nil
	case value.KindFloatArray:
		return docstore.ConstantList{Values: toAnySlice(v.FloatArray)}, nil
	case value.KindDoubleArray:
		return docstore.ConstantList{Values: toAnySlice(v.DoubleArray)}, nil
	case value.KindBytesArray:
		values := make([]any, len(v.BytesArray))
		for i, b := range v.BytesArray {
			values[i] = string(b)
		}
		return docstore.ConstantList{Values: values}, nil
	case value.KindBooleanArray:
		return docstore.ConstantList{Values: toAnySlice(v.BooleanArray)}, nil
	default:
		return nil, errNotAList(v.Kind)
	}
}

func (arrayConverter) OperandAt(v value.Value, index int) (docstore.Expression, error) {
	if !value.IsArray(v.Kind) {
		return nil, errNotAList(v.Kind)
	}
	if index < 0 || index >= v.Len() {
		return nil, errIndexOutOfRange(v.Kind, index, v.Len())
	}

	switch v.Kind {
	case value.KindStringArray:
		return docstore.Constant{Value: v.StringArray[index]}, nil
	case value.KindLongArray:
		return docstore.Constant{Value: v.LongArray[index]}, nil
	case value.KindIntArray:
		return docstore.Constant{Value: v.IntArray[index]}, nil
	case value.KindFloatArray:
		return docstore.Constant{Value: v.FloatArray[index]}, nil
	case value.KindDoubleArray:
		return docstore.Constant{Value: v.DoubleArray[index]}, nil
	case value.KindBytesArray:
		return docstore.Constant{Value: string(v.BytesArray[index])}, nil
	case value.KindBooleanArray:
		return docstore.Constant{Value: v.BooleanArray[index]}, nil
	default:
		return nil, errNotAList(v.Kind)
	}
}

func (arrayConverter) OperandKey(v value.Value, _ string) (docstore.Expression, error) {
	return nil, errNotAMap(v.Kind)
}

// mapConverter handles map-valued access. A whole map is not a valid
// scalar operand, so Operand fails with the unsupported-kind error.
type mapConverter struct{}

func (mapConverter) Operand(v value.Value) (docstore.Expression, error) {
	return nil, errUnsupportedKind(v.Kind)
}

func (mapConverter) OperandAt(v value.Value, _ int) (docstore.Expression, error) {
	return nil, errNotAList(v.Kind)
}

func (mapConverter) OperandKey(v value.Value, key string) (docstore.Expression, error) {
	if !value.IsMap(v.Kind) {
		return nil, errNotAMap(v.Kind)
	}
	entry, ok := v.StringMap[key]
	if !ok {
		return nil, errMissingKey(v.Kind, key)
	}
	return docstore.Constant{Value: entry}, nil
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
