package service

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/sightline/internal/change"
	"github.com/roach88/sightline/internal/convert"
	"github.com/roach88/sightline/internal/docstore"
	"github.com/roach88/sightline/internal/entity"
	"github.com/roach88/sightline/internal/identity"
	"github.com/roach88/sightline/internal/query"
	"github.com/roach88/sightline/internal/schema"
	"github.com/roach88/sightline/internal/value"
)

// ErrInvalidRequest reports a request that fails validation before it
// reaches storage.
var ErrInvalidRequest = errors.New("invalid request")

// Service is the entity data API. All operations are tenant-scoped.
type Service struct {
	store      *docstore.Store
	schemas    schema.Provider
	normalizer *identity.Normalizer
	converter  *convert.FilterConverter
	reconciler *change.Reconciler
	log        *zap.Logger
}

// New wires a service over its collaborators.
func New(store *docstore.Store, schemas schema.Provider, reconciler *change.Reconciler, log *zap.Logger) *Service {
	return &Service{
		store:      store,
		schemas:    schemas,
		normalizer: identity.NewNormalizer(schemas),
		converter:  convert.NewFilterConverter(convert.NewRegistry()),
		reconciler: reconciler,
		log:        log,
	}
}

// Upsert writes one entity, deriving its id when none is supplied, and
// reconciles change events against the superseded image. Returns the
// stored entity with timestamps and id populated.
func (s *Service) Upsert(ctx context.Context, tenantID string, e entity.Entity) (entity.Entity, error) {
	stored, err := s.UpsertBulk(ctx, tenantID, []entity.Entity{e})
	if err != nil {
		return entity.Entity{}, err
	}
	return stored[0], nil
}

// UpsertBulk writes a batch of entities in one transaction and reconciles
// one change-event batch covering all of them. Results come back in input
// order.
func (s *Service) UpsertBulk(ctx context.Context, tenantID string, entities []entity.Entity) ([]entity.Entity, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	// Entities that normalize to the same key collapse to one write,
	// last occurrence wins. Without this a later duplicate would see an
	// earlier one from the same batch as a stored previous image.
	docs := make([]docstore.Doc, 0, len(entities))
	seen := make(map[string]int, len(entities))
	for i := range entities {
		doc, err := s.prepare(tenantID, entities[i])
		if err != nil {
			return nil, err
		}
		key := doc.Entity.Key().String()
		if at, ok := seen[key]; ok {
			docs[at] = doc
			continue
		}
		seen[key] = len(docs)
		docs = append(docs, doc)
	}

	before, err := s.store.BulkUpsertReturningPrevious(ctx, docs)
	if err != nil {
		return nil, err
	}

	keys := make([]entity.Key, len(docs))
	for i, doc := range docs {
		keys[i] = doc.Entity.Key()
	}
	after, err := s.store.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	// Change events are advisory; a publish failure does not undo the
	// committed write.
	if _, err := s.reconciler.Reconcile(ctx, tenantID, before, after); err != nil {
		s.log.Warn("change reconciliation failed after upsert",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}

	return orderByKeys(keys, after), nil
}

// GetAndUpsert writes an entity and returns both the image it replaced
// (nil when the entity is new) and the written latest image.
func (s *Service) GetAndUpsert(ctx context.Context, tenantID string, e entity.Entity) (previous *entity.Entity, latest entity.Entity, err error) {
	doc, err := s.prepare(tenantID, e)
	if err != nil {
		return nil, entity.Entity{}, err
	}

	latest, previous, err = s.store.Upsert(ctx, doc)
	if err != nil {
		return nil, entity.Entity{}, err
	}

	var before []entity.Entity
	if previous != nil {
		before = []entity.Entity{*previous}
	}
	if _, err := s.reconciler.Reconcile(ctx, tenantID, before, []entity.Entity{latest}); err != nil {
		s.log.Warn("change reconciliation failed after upsert",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}

	return previous, latest, nil
}

// GetByID fetches one entity by its id.
func (s *Service) GetByID(ctx context.Context, tenantID, entityType, entityID string) (entity.Entity, error) {
	if err := requireNonEmpty(tenantID, entityType); err != nil {
		return entity.Entity{}, err
	}
	if entityID == "" {
		return entity.Entity{}, errors.Wrap(ErrInvalidRequest, "Entity ID is empty")
	}
	return s.store.Get(ctx, entity.Key{TenantID: tenantID, EntityType: entityType, EntityID: entityID})
}

// GetByTypeAndIdentifyingAttributes resolves the entity whose identifying
// attributes match the given values. The attribute set must cover every
// identifying attribute of the type.
func (s *Service) GetByTypeAndIdentifyingAttributes(ctx context.Context, tenantID, entityType string, attrs map[string]value.Value) (entity.Entity, error) {
	if err := requireNonEmpty(tenantID, entityType); err != nil {
		return entity.Entity{}, err
	}

	lookup := entity.Entity{TenantID: tenantID, EntityType: entityType, Attributes: attrs}
	normalized, err := s.normalizer.Normalize(tenantID, &lookup)
	if err != nil {
		return entity.Entity{}, err
	}
	return s.store.Get(ctx, entity.Key{TenantID: tenantID, EntityType: entityType, EntityID: normalized.EntityID})
}

// Query converts a typed query to its storage form and runs it.
func (s *Service) Query(ctx context.Context, tenantID string, q query.Query) ([]entity.Entity, error) {
	if err := requireNonEmpty(tenantID, q.EntityType); err != nil {
		return nil, err
	}

	dq, err := s.converter.ConvertQuery(tenantID, q)
	if err != nil {
		return nil, err
	}
	return s.store.Search(ctx, dq)
}

// Count reports how many entities match a query, without materializing
// them. Limit and offset are ignored.
func (s *Service) Count(ctx context.Context, tenantID string, q query.Query) (int64, error) {
	if err := requireNonEmpty(tenantID, q.EntityType); err != nil {
		return 0, err
	}

	dq, err := s.converter.ConvertQuery(tenantID, q)
	if err != nil {
		return 0, err
	}
	dq.Selections = []docstore.Expression{docstore.FunctionExpr{
		Name: "COUNT",
		Args: []docstore.Expression{docstore.FieldPath{Path: "doc_key"}},
	}}
	dq.Limit = 0
	dq.Offset = 0

	rows, err := s.store.SearchRaw(ctx, dq)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, errors.Wrap(err, "scan count")
		}
	}
	return count, rows.Err()
}

// Delete removes one entity and reconciles a Deleted event carrying its
// last stored image.
func (s *Service) Delete(ctx context.Context, tenantID, entityType, entityID string) error {
	stored, err := s.GetByID(ctx, tenantID, entityType, entityID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, stored.Key()); err != nil {
		return err
	}

	if _, err := s.reconciler.Reconcile(ctx, tenantID, []entity.Entity{stored}, nil); err != nil {
		s.log.Warn("change reconciliation failed after delete",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}
	return nil
}

// prepare validates and normalizes one inbound entity into a storable doc.
func (s *Service) prepare(tenantID string, e entity.Entity) (docstore.Doc, error) {
	if err := requireNonEmpty(tenantID, e.EntityType); err != nil {
		return docstore.Doc{}, err
	}
	if e.TenantID == "" {
		e.TenantID = tenantID
	}
	if e.TenantID != tenantID {
		return docstore.Doc{}, errors.Wrap(ErrInvalidRequest, "Tenant ID mismatch")
	}

	// Reject types the registry has never heard of before touching
	// identity derivation, so explicit-id writes get the same check.
	if _, err := s.schemas.Definition(e.EntityType); err != nil {
		return docstore.Doc{}, err
	}

	normalized, err := s.normalizer.Normalize(tenantID, &e)
	if err != nil {
		return docstore.Doc{}, err
	}
	e.EntityID = normalized.EntityID

	if err := e.Validate(); err != nil {
		return docstore.Doc{}, errors.Wrap(ErrInvalidRequest, err.Error())
	}

	return docstore.Doc{Entity: e, IdentityEnc: normalized.Encoding}, nil
}

func requireNonEmpty(tenantID, entityType string) error {
	if tenantID == "" {
		return errors.Wrap(ErrInvalidRequest, "Tenant ID is empty")
	}
	if entityType == "" {
		return errors.Wrap(ErrInvalidRequest, "Entity Type is empty")
	}
	return nil
}

// orderByKeys re-sorts fetched entities into the caller's input order.
func orderByKeys(keys []entity.Key, fetched []entity.Entity) []entity.Entity {
	byKey := make(map[string]entity.Entity, len(fetched))
	for _, e := range fetched {
		byKey[e.Key().String()] = e
	}
	out := make([]entity.Entity, 0, len(keys))
	for _, k := range keys {
		if e, ok := byKey[k.String()]; ok {
			out = append(out, e)
		}
	}
	return out
}
