package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_ReturnsPinnedTime(t *testing.T) {
	clock := NewFixedClock(1700000000000)
	assert.Equal(t, int64(1700000000000), clock.NowMillis())

	// Repeated reads never drift.
	assert.Equal(t, clock.NowMillis(), clock.NowMillis())
}

func TestFixedClock_Advance(t *testing.T) {
	clock := NewFixedClock(1000)

	clock.Advance(500)
	assert.Equal(t, int64(1500), clock.NowMillis())

	clock.Advance(500)
	assert.Equal(t, int64(2000), clock.NowMillis())
}

func TestFixedClock_Set(t *testing.T) {
	clock := NewFixedClock(1000)
	clock.Advance(999)

	clock.Set(42)
	assert.Equal(t, int64(42), clock.NowMillis())
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := NewFixedClock(0)
	const numGoroutines = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(1)
			clock.NowMillis()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(numGoroutines), clock.NowMillis())
}
