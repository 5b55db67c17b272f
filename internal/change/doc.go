// Package change reconciles before/after snapshots of an entity set into
// ordered change events.
//
// A reconciliation compares the entities that existed before an operation
// with the entities that exist after it, keyed by entity id, and emits
// Created, Updated, and Deleted events — created first, then updated, then
// deleted. Every event from one reconciliation carries the same timestamp,
// taken once per call from an injectable clock, so downstream consumers
// can group a batch by time.
package change
