package docstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/sightline/internal/entity"
)

// ErrIdentityCollision reports that a write derived the same document key
// from a different canonical identifying encoding than the one stored.
// This is an integrity failure, not a conflict to retry: two distinct
// identifying-attribute sets hashed to one id.
var ErrIdentityCollision = errors.New("identity collision")

// Doc pairs an entity with the canonical identifying encoding its id was
// derived from. IdentityEnc is empty for caller-supplied ids, which are
// trusted and exempt from collision checking.
type Doc struct {
	Entity      entity.Entity
	IdentityEnc string
}

// nowMillis is replaced in tests for deterministic timestamps.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// Upsert writes one entity and returns the stored result (timestamps
// populated). The superseded document, if any, is returned alongside.
func (s *Store) Upsert(ctx context.Context, doc Doc) (stored entity.Entity, previous *entity.Entity, err error) {
	previousDocs, err := s.BulkUpsertReturningPrevious(ctx, []Doc{doc})
	if err != nil {
		return entity.Entity{}, nil, err
	}

	stored, err = s.Get(ctx, doc.Entity.Key())
	if err != nil {
		return entity.Entity{}, nil, err
	}
	if len(previousDocs) > 0 {
		previous = &previousDocs[0]
	}
	return stored, previous, nil
}

// BulkUpsertReturningPrevious writes all documents in one transaction and
// returns the superseded images of those that already existed, in input
// order. The read of the before-images and the write are atomic, so the
// returned set is an exact "before" snapshot for reconciliation.
//
// created_at is preserved across updates; updated_at is set to the write
// time.
func (s *Store) BulkUpsertReturningPrevious(ctx context.Context, docs []Doc) ([]entity.Entity, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin bulk upsert")
	}
	defer tx.Rollback()

	now := nowMillis()
	var previous []entity.Entity

	for _, doc := range docs {
		if err := doc.Entity.Validate(); err != nil {
			return nil, err
		}
		key := doc.Entity.Key()

		before, found, err := readForUpdate(ctx, tx, key)
		if err != nil {
			return nil, err
		}
		if found {
			if before.identityEnc != "" && doc.IdentityEnc != "" && before.identityEnc != doc.IdentityEnc {
				s.log.Error("identity collision",
					zap.String("key", key.String()),
					zap.String("stored_encoding", before.identityEnc),
					zap.String("incoming_encoding", doc.IdentityEnc))
				return nil, errors.Wrapf(ErrIdentityCollision, "key %s", key)
			}
			previous = append(previous, before.entity)
		}

		attrs, err := marshalAttrs(doc.Entity.Attributes)
		if err != nil {
			return nil, errors.Wrapf(err, "entity %s", key)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO entities
			(doc_key, tenant_id, entity_type, entity_id, name, attrs, identity_enc, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(doc_key) DO UPDATE SET
				name = excluded.name,
				attrs = excluded.attrs,
				identity_enc = excluded.identity_enc,
				updated_at = excluded.updated_at
		`,
			key.String(),
			doc.Entity.TenantID,
			doc.Entity.EntityType,
			doc.Entity.EntityID,
			doc.Entity.Name,
			attrs,
			doc.IdentityEnc,
			now,
			now,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "upsert %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit bulk upsert")
	}

	s.log.Debug("bulk upsert", zap.Int("docs", len(docs)), zap.Int("superseded", len(previous)))
	return previous, nil
}

// Delete removes the document under the given key. Returns ErrNotFound
// when nothing was stored there.
func (s *Store) Delete(ctx context.Context, key entity.Key) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entities WHERE doc_key = ?", key.String())
	if err != nil {
		return errors.Wrapf(err, "delete %s", key)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrapf(ErrNotFound, "key %s", key)
	}
	return nil
}

type storedRow struct {
	entity      entity.Entity
	identityEnc string
}

func readForUpdate(ctx context.Context, tx *sql.Tx, key entity.Key) (storedRow, bool, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+entityColumns+", identity_enc FROM entities WHERE doc_key = ?", key.String())

	var (
		e       entity.Entity
		docKey  string
		rawAttr string
		enc     string
	)
	err := row.Scan(&docKey, &e.TenantID, &e.EntityType, &e.EntityID, &e.Name, &rawAttr, &e.CreatedAt, &e.UpdatedAt, &enc)
	if errors.Is(err, sql.ErrNoRows) {
		return storedRow{}, false, nil
	}
	if err != nil {
		return storedRow{}, false, errors.Wrapf(err, "read %s", key)
	}

	attrs, err := unmarshalAttrs(rawAttr)
	if err != nil {
		return storedRow{}, false, errors.Wrapf(err, "entity %s", docKey)
	}
	e.Attributes = attrs
	return storedRow{entity: e, identityEnc: enc}, true, nil
}
