package value

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// JSON encoding of a Value is an object with an explicit kind tag:
//
//	{"kind":"LONG","value":42}
//	{"kind":"STRING_ARRAY","values":["a","b"]}
//	{"kind":"STRING_MAP","values":{"k":"v"}}
//
// Scalars use the "value" key, arrays and maps use "values". Bytes payloads
// are base64-encoded. The explicit tag keeps round-trips lossless: a LONG
// stays a LONG instead of decaying to a float64.

const (
	jsonKindKey   = "kind"
	jsonValueKey  = "value"
	jsonValuesKey = "values"
)

type jsonValue struct {
	Kind   string          `json:"kind"`
	Value  json.RawMessage `json:"value,omitempty"`
	Values json.RawMessage `json:"values,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Kind: v.Kind.String()}

	var payload any
	scalar := true
	switch v.Kind {
	case KindString:
		payload = v.String
	case KindLong:
		payload = v.Long
	case KindInt:
		payload = v.Int
	case KindFloat:
		payload = v.Float
	case KindDouble:
		payload = v.Double
	case KindBytes:
		payload = base64.StdEncoding.EncodeToString(v.Bytes)
	case KindBool:
		payload = v.Bool
	case KindTimestamp:
		payload = v.Timestamp
	case KindStringArray:
		payload, scalar = v.StringArray, false
	case KindLongArray:
		payload, scalar = v.LongArray, false
	case KindIntArray:
		payload, scalar = v.IntArray, false
	case KindFloatArray:
		payload, scalar = v.FloatArray, false
	case KindDoubleArray:
		payload, scalar = v.DoubleArray, false
	case KindBytesArray:
		encoded := make([]string, len(v.BytesArray))
		for i, b := range v.BytesArray {
			encoded[i] = base64.StdEncoding.EncodeToString(b)
		}
		payload, scalar = encoded, false
	case KindBooleanArray:
		payload, scalar = v.BooleanArray, false
	case KindStringMap:
		payload, scalar = v.StringMap, false
	default:
		return nil, fmt.Errorf("marshal value: unknown kind %s", v.Kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", v.Kind, err)
	}
	if scalar {
		out.Value = raw
	} else {
		out.Values = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in jsonValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	kind, ok := KindFromName(in.Kind)
	if !ok {
		return fmt.Errorf("unmarshal value: unknown kind %q", in.Kind)
	}

	decoded := Value{Kind: kind}
	var err error
	switch kind {
	case KindString:
		err = json.Unmarshal(in.Value, &decoded.String)
	case KindLong:
		err = json.Unmarshal(in.Value, &decoded.Long)
	case KindInt:
		err = json.Unmarshal(in.Value, &decoded.Int)
	case KindFloat:
		err = json.Unmarshal(in.Value, &decoded.Float)
	case KindDouble:
		err = json.Unmarshal(in.Value, &decoded.Double)
	case KindBytes:
		var s string
		if err = json.Unmarshal(in.Value, &s); err == nil {
			decoded.Bytes, err = base64.StdEncoding.DecodeString(s)
		}
	case KindBool:
		err = json.Unmarshal(in.Value, &decoded.Bool)
	case KindTimestamp:
		err = json.Unmarshal(in.Value, &decoded.Timestamp)
	case KindStringArray:
		err = json.Unmarshal(in.Values, &decoded.StringArray)
	case KindLongArray:
		err = json.Unmarshal(in.Values, &decoded.LongArray)
	case KindIntArray:
		err = json.Unmarshal(in.Values, &decoded.IntArray)
	case KindFloatArray:
		err = json.Unmarshal(in.Values, &decoded.FloatArray)
	case KindDoubleArray:
		err = json.Unmarshal(in.Values, &decoded.DoubleArray)
	case KindBytesArray:
		var encoded []string
		if err = json.Unmarshal(in.Values, &encoded); err == nil {
			decoded.BytesArray = make([][]byte, len(encoded))
			for i, s := range encoded {
				decoded.BytesArray[i], err = base64.StdEncoding.DecodeString(s)
				if err != nil {
					break
				}
			}
		}
	case KindBooleanArray:
		err = json.Unmarshal(in.Values, &decoded.BooleanArray)
	case KindStringMap:
		err = json.Unmarshal(in.Values, &decoded.StringMap)
	default:
		return fmt.Errorf("unmarshal value: unsupported kind %q", in.Kind)
	}
	if err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", kind, err)
	}

	*v = decoded
	return nil
}
