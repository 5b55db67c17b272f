package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sightline/internal/entity"
	"github.com/roach88/sightline/internal/value"
)

// entityPayload is the YAML document the upsert command accepts:
//
//	entities:
//	  - type: API
//	    name: checkout
//	    attributes:
//	      FQN:  { kind: STRING, value: checkout.example.com }
//	      PORT: { kind: LONG, value: 8080 }
//	      TAGS: { kind: STRING_ARRAY, values: [edge, payments] }
type entityPayload struct {
	Entities []entitySpec `yaml:"entities"`
}

type entitySpec struct {
	Type       string              `yaml:"type"`
	ID         string              `yaml:"id"`
	Name       string              `yaml:"name"`
	Attributes map[string]attrSpec `yaml:"attributes"`
	Labels     map[string]string   `yaml:"labels"`
}

type attrSpec struct {
	Kind   string `yaml:"kind"`
	Value  any    `yaml:"value"`
	Values []any  `yaml:"values"`
}

// loadEntities parses the listed payload files into entities for one
// tenant, in file-then-document order.
func loadEntities(tenantID string, paths []string) ([]entity.Entity, error) {
	var out []entity.Entity
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "read payload", err)
		}

		var payload entityPayload
		if err := yaml.Unmarshal(raw, &payload); err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("parse %s", path), err)
		}

		for i, spec := range payload.Entities {
			e, err := spec.toEntity(tenantID)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, fmt.Sprintf("%s entity %d", path, i), err)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (s entitySpec) toEntity(tenantID string) (entity.Entity, error) {
	if s.Type == "" {
		return entity.Entity{}, fmt.Errorf("type is required")
	}

	attrs := make(map[string]value.Value, len(s.Attributes)+1)
	for name, spec := range s.Attributes {
		v, err := spec.toValue()
		if err != nil {
			return entity.Entity{}, fmt.Errorf("attribute %q: %w", name, err)
		}
		attrs[name] = v
	}
	if len(s.Labels) > 0 {
		attrs["labels"] = value.StrMap(s.Labels)
	}

	return entity.Entity{
		TenantID:   tenantID,
		EntityType: s.Type,
		EntityID:   s.ID,
		Name:       s.Name,
		Attributes: attrs,
	}, nil
}

func (s attrSpec) toValue() (value.Value, error) {
	kind, ok := value.KindFromName(s.Kind)
	if !ok || kind == value.KindUnspecified {
		return value.Value{}, fmt.Errorf("unknown kind %q", s.Kind)
	}

	switch kind {
	case value.KindString:
		return value.Str(fmt.Sprint(s.Value)), nil
	case value.KindLong:
		n, err := toInt64(s.Value)
		if err != nil {
			return value.Value{}, err
		}
		return value.Long(n), nil
	case value.KindInt:
		n, err := toInt64(s.Value)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(int32(n)), nil
	case value.KindDouble:
		f, err := toFloat64(s.Value)
		if err != nil {
			return value.Value{}, err
		}
		return value.Double(f), nil
	case value.KindFloat:
		f, err := toFloat64(s.Value)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(float32(f)), nil
	case value.KindBool:
		b, ok := s.Value.(bool)
		if !ok {
			return value.Value{}, fmt.Errorf("value %v is not a bool", s.Value)
		}
		return value.BoolOf(b), nil
	case value.KindTimestamp:
		n, err := toInt64(s.Value)
		if err != nil {
			return value.Value{}, err
		}
		return value.Timestamp(n), nil
	case value.KindBytes:
		return value.BytesOf([]byte(fmt.Sprint(s.Value))), nil
	case value.KindStringArray:
		items := make([]string, len(s.Values))
		for i, raw := range s.Values {
			items[i] = fmt.Sprint(raw)
		}
		return value.Strings(items...), nil
	case value.KindLongArray:
		items := make([]int64, len(s.Values))
		for i, raw := range s.Values {
			n, err := toInt64(raw)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = n
		}
		return value.Longs(items...), nil
	case value.KindStringMap:
		m := map[string]string{}
		raw, ok := s.Value.(map[string]any)
		if !ok {
			return value.Value{}, fmt.Errorf("value %v is not a map", s.Value)
		}
		for k, v := range raw {
			m[k] = fmt.Sprint(v)
		}
		return value.StrMap(m), nil
	default:
		return value.Value{}, fmt.Errorf("kind %s is not supported in payload files", kind)
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("value %v is not an integer", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value %v is not a number", v)
	}
}
