// Package testutil provides deterministic clocks and entity builders for
// tests.
package testutil

import "sync"

// FixedClock reports a configurable wall time in unix milliseconds.
//
// Unlike the system clock it never moves on its own; tests advance it
// explicitly, so event timestamps are exact and assertions stay stable.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu     sync.Mutex
	millis int64
}

// NewFixedClock creates a clock pinned at the given unix-millisecond time.
func NewFixedClock(millis int64) *FixedClock {
	return &FixedClock{millis: millis}
}

// NowMillis returns the pinned time.
func (c *FixedClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.millis
}

// Advance moves the clock forward by delta milliseconds.
func (c *FixedClock) Advance(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.millis += delta
}

// Set pins the clock to an absolute time.
func (c *FixedClock) Set(millis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.millis = millis
}
