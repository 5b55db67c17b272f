package docstore

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/roach88/sightline/internal/entity"
	"github.com/roach88/sightline/internal/value"
)

// marshalAttrs encodes an attribute map to the kind-tagged JSON object
// stored in the attrs column.
func marshalAttrs(attrs map[string]value.Value) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return "", errors.Wrap(err, "marshal attributes")
	}
	return string(raw), nil
}

func unmarshalAttrs(raw string) (map[string]value.Value, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var attrs map[string]value.Value
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, errors.Wrap(err, "unmarshal attributes")
	}
	return attrs, nil
}

// scanEntity reads one row of the default selection column set.
func scanEntity(scan func(dest ...any) error) (entity.Entity, error) {
	var (
		e       entity.Entity
		docKey  string
		rawAttr string
	)
	if err := scan(&docKey, &e.TenantID, &e.EntityType, &e.EntityID, &e.Name, &rawAttr, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return entity.Entity{}, errors.Wrap(err, "scan entity row")
	}

	attrs, err := unmarshalAttrs(rawAttr)
	if err != nil {
		return entity.Entity{}, errors.Wrapf(err, "entity %s", docKey)
	}
	e.Attributes = attrs
	return e, nil
}
