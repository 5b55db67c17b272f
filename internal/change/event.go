package change

import "github.com/roach88/sightline/internal/entity"

// Event is a sealed interface over the three change event types. The
// changeEvent marker keeps the set closed so consumers can type-switch
// exhaustively.
type Event interface {
	changeEvent()

	// TenantID returns the tenant the change belongs to.
	TenantID() string

	// EventTimeMillis returns the reconciliation timestamp. All events
	// from one reconciliation share it.
	EventTimeMillis() int64
}

// Created reports an entity that exists after but not before.
type Created struct {
	Tenant     string
	Entity     entity.Entity
	TimeMillis int64
}

// Updated reports an entity present on both sides. It carries both
// images; whether an unchanged pair is reported depends on the
// reconciler's SkipUnchanged option.
type Updated struct {
	Tenant     string
	Previous   entity.Entity
	Latest     entity.Entity
	TimeMillis int64
}

// Deleted reports an entity that exists before but not after.
type Deleted struct {
	Tenant     string
	Entity     entity.Entity
	TimeMillis int64
}

func (Created) changeEvent() {}
func (Updated) changeEvent() {}
func (Deleted) changeEvent() {}

func (e Created) TenantID() string { return e.Tenant }
func (e Updated) TenantID() string { return e.Tenant }
func (e Deleted) TenantID() string { return e.Tenant }

func (e Created) EventTimeMillis() int64 { return e.TimeMillis }
func (e Updated) EventTimeMillis() int64 { return e.TimeMillis }
func (e Deleted) EventTimeMillis() int64 { return e.TimeMillis }
