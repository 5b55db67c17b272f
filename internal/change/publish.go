package change

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LogPublisher writes events to the structured log. It is the default
// sink when no external consumer is wired up.
type LogPublisher struct {
	log *zap.Logger
}

// NewLogPublisher builds a publisher logging at info level.
func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(_ context.Context, events []Event) error {
	for _, ev := range events {
		switch e := ev.(type) {
		case Created:
			p.log.Info("entity created",
				zap.String("tenant_id", e.Tenant),
				zap.String("entity_type", e.Entity.EntityType),
				zap.String("entity_id", e.Entity.EntityID),
				zap.Int64("event_time_ms", e.TimeMillis))
		case Updated:
			p.log.Info("entity updated",
				zap.String("tenant_id", e.Tenant),
				zap.String("entity_type", e.Latest.EntityType),
				zap.String("entity_id", e.Latest.EntityID),
				zap.Int64("event_time_ms", e.TimeMillis))
		case Deleted:
			p.log.Info("entity deleted",
				zap.String("tenant_id", e.Tenant),
				zap.String("entity_type", e.Entity.EntityType),
				zap.String("entity_id", e.Entity.EntityID),
				zap.Int64("event_time_ms", e.TimeMillis))
		}
	}
	return nil
}

// Buffer collects published events in memory. Tests and the CLI use it to
// inspect what a call produced.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (b *Buffer) Publish(_ context.Context, events []Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

// Events returns a copy of everything published so far.
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

// Reset discards buffered events.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
