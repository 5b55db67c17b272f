package docstore

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/sightline/internal/entity"
)

// ErrNotFound reports a lookup that matched no document.
var ErrNotFound = errors.New("entity not found")

const entityColumns = "doc_key, tenant_id, entity_type, entity_id, name, attrs, created_at, updated_at"

// Get returns the entity stored under the given key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key entity.Key) (entity.Entity, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE doc_key = ?", key.String())

	e, err := scanEntity(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Entity{}, errors.Wrapf(ErrNotFound, "key %s", key)
	}
	if err != nil {
		return entity.Entity{}, err
	}
	return e, nil
}

// GetMany returns the entities stored under the given keys, in doc_key
// order. Missing keys are skipped, not errors.
func (s *Store) GetMany(ctx context.Context, keys []entity.Key) ([]entity.Entity, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k.String()
	}

	filter := Relational{
		LHS:      FieldPath{Path: "doc_key"},
		Operator: OpIn,
		RHS:      ConstantList{Values: values},
	}
	return s.Search(ctx, Query{Filter: filter})
}

// Search executes a store query and returns all matching entities
// materialized. Results follow the query's compiled ORDER BY, so the same
// query against the same data always returns the same sequence.
func (s *Store) Search(ctx context.Context, q Query) ([]entity.Entity, error) {
	// Entity materialization needs the full column set; callers wanting
	// projections go through SearchRaw.
	q.Selections = nil

	sqlText, params, err := Compiler{}.CompileQuery(q)
	if err != nil {
		return nil, errors.Wrap(err, "compile query")
	}
	s.log.Debug("search", zap.String("sql", sqlText))

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, errors.Wrap(err, "execute query")
	}
	defer rows.Close()

	var out []entity.Entity
	for rows.Next() {
		e, err := scanEntity(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "iterate rows")
}

// SearchRaw executes a query with caller-supplied selections (projections,
// aggregations) and hands back the raw rows. Callers own closing them.
func (s *Store) SearchRaw(ctx context.Context, q Query) (*sql.Rows, error) {
	sqlText, params, err := Compiler{}.CompileQuery(q)
	if err != nil {
		return nil, errors.Wrap(err, "compile query")
	}
	s.log.Debug("search raw", zap.String("sql", sqlText))
	return s.db.QueryContext(ctx, sqlText, params...)
}
