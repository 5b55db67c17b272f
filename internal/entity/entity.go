// Package entity defines the entity record and its identity key, shared by
// the normalizer, the document store, the reconciler, and the service.
package entity

import (
	"fmt"

	"github.com/roach88/sightline/internal/value"
)

// keySeparator joins the identity tuple into the canonical storage key.
//
// The canonical form doubles as the document store's primary key. Changing
// it is a breaking schema migration: every stored document would need to be
// re-keyed.
const keySeparator = ":"

// Key is the identity tuple addressing one entity within a tenant.
type Key struct {
	TenantID   string
	EntityType string
	EntityID   string
}

// String returns the canonical form "tenantId:entityType:entityId".
func (k Key) String() string {
	return k.TenantID + keySeparator + k.EntityType + keySeparator + k.EntityID
}

// Entity is a tenant-scoped typed record. Attributes hold every attribute,
// identifying ones included; which names are identifying is the schema
// registry's call, not the record's.
//
// Entities are treated as immutable snapshots: the service constructs a new
// record for every write and never mutates one it has handed out.
type Entity struct {
	TenantID   string
	EntityType string
	EntityID   string
	Name       string
	Attributes map[string]value.Value

	// CreatedAt and UpdatedAt are unix milliseconds, maintained by the
	// document store on write.
	CreatedAt int64
	UpdatedAt int64
}

// Key returns the identity tuple of the entity.
func (e Entity) Key() Key {
	return Key{TenantID: e.TenantID, EntityType: e.EntityType, EntityID: e.EntityID}
}

// Equal reports whether two entities carry the same identity, name, and
// attribute payload. Timestamps are excluded: they are storage metadata,
// not entity state.
func (e Entity) Equal(o Entity) bool {
	if e.Key() != o.Key() || e.Name != o.Name {
		return false
	}
	if len(e.Attributes) != len(o.Attributes) {
		return false
	}
	for name, v := range e.Attributes {
		ov, ok := o.Attributes[name]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Validate checks the fields every persisted entity must carry.
func (e Entity) Validate() error {
	if e.TenantID == "" {
		return fmt.Errorf("entity %s: tenant id is empty", e.EntityID)
	}
	if e.EntityType == "" {
		return fmt.Errorf("entity %s: entity type is empty", e.EntityID)
	}
	if e.EntityID == "" {
		return fmt.Errorf("entity of type %s: entity id is empty", e.EntityType)
	}
	return nil
}
