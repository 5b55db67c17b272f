package change

import "time"

// Clock supplies event timestamps in unix milliseconds. Reconciliation
// reads the clock exactly once per call.
type Clock interface {
	NowMillis() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowMillis implements Clock.
func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}
