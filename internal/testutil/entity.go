package testutil

import (
	"github.com/roach88/sightline/internal/entity"
	"github.com/roach88/sightline/internal/value"
)

// EntityBuilder assembles test entities with fluent defaults.
type EntityBuilder struct {
	e entity.Entity
}

// NewEntity starts a builder for the given tenant and type.
func NewEntity(tenantID, entityType string) *EntityBuilder {
	return &EntityBuilder{e: entity.Entity{
		TenantID:   tenantID,
		EntityType: entityType,
		Attributes: map[string]value.Value{},
	}}
}

// WithID sets an explicit entity id.
func (b *EntityBuilder) WithID(id string) *EntityBuilder {
	b.e.EntityID = id
	return b
}

// WithName sets the display name.
func (b *EntityBuilder) WithName(name string) *EntityBuilder {
	b.e.Name = name
	return b
}

// WithAttr sets one attribute.
func (b *EntityBuilder) WithAttr(name string, v value.Value) *EntityBuilder {
	b.e.Attributes[name] = v
	return b
}

// Build returns the assembled entity by value.
func (b *EntityBuilder) Build() entity.Entity {
	return b.e
}
