package change

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/sightline/internal/entity"
)

// Publisher receives the events of one reconciliation, already ordered.
type Publisher interface {
	Publish(ctx context.Context, events []Event) error
}

// Reconciler diffs entity snapshots and hands the resulting events to a
// publisher.
type Reconciler struct {
	clock Clock
	pub   Publisher
	log   *zap.Logger

	// skipUnchanged suppresses Updated events whose before and after
	// images are equal. Off by default: consumers that track upsert
	// activity want the event even when nothing changed.
	skipUnchanged bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(r *Reconciler) { r.clock = c }
}

// WithSkipUnchanged suppresses Updated events for identical images.
func WithSkipUnchanged() Option {
	return func(r *Reconciler) { r.skipUnchanged = true }
}

// NewReconciler builds a reconciler publishing to pub.
func NewReconciler(pub Publisher, log *zap.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		clock: SystemClock{},
		pub:   pub,
		log:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile diffs the before and after snapshots and publishes the
// resulting events. Entities are matched by id; an id only in after is
// Created, on both sides Updated, only in before Deleted. Events are
// published created first, then updated, then deleted — created and
// updated in after order, deleted in before order. The clock is read once
// and stamped on every event.
func (r *Reconciler) Reconcile(ctx context.Context, tenantID string, before, after []entity.Entity) ([]Event, error) {
	events := r.diff(tenantID, before, after)
	if len(events) == 0 {
		return nil, nil
	}

	if err := r.pub.Publish(ctx, events); err != nil {
		// Change events are best-effort; the write they describe has
		// already committed.
		r.log.Error("publish change events failed",
			zap.String("tenant_id", tenantID),
			zap.Int("events", len(events)),
			zap.Error(err))
		return events, err
	}
	return events, nil
}

func (r *Reconciler) diff(tenantID string, before, after []entity.Entity) []Event {
	now := r.clock.NowMillis()

	prev := make(map[string]entity.Entity, len(before))
	for _, e := range before {
		prev[e.EntityID] = e
	}
	next := make(map[string]entity.Entity, len(after))
	for _, e := range after {
		next[e.EntityID] = e
	}

	var created, updated, deleted []Event
	for _, e := range after {
		old, existed := prev[e.EntityID]
		switch {
		case !existed:
			created = append(created, Created{Tenant: tenantID, Entity: e, TimeMillis: now})
		case r.skipUnchanged && old.Equal(e):
		default:
			updated = append(updated, Updated{Tenant: tenantID, Previous: old, Latest: e, TimeMillis: now})
		}
	}
	for _, e := range before {
		if _, exists := next[e.EntityID]; !exists {
			deleted = append(deleted, Deleted{Tenant: tenantID, Entity: e, TimeMillis: now})
		}
	}

	events := make([]Event, 0, len(created)+len(updated)+len(deleted))
	events = append(events, created...)
	events = append(events, updated...)
	events = append(events, deleted...)
	return events
}
