package utils

import (
	"sync/atomic"
	"time"
)

// Clock supplies the instrument's millisecond timebase. All cadences and
// record timestamps come from one clock so traces stay comparable.
type Clock interface {
	NowMs() int64
}

// MonotonicClock counts milliseconds since construction. Go's
// time.Since is monotonic-safe.
type MonotonicClock struct {
	start time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

func (c *MonotonicClock) NowMs() int64 {
	return time.Since(c.start).Milliseconds()
}

// ManualClock is advanced explicitly; used by the bench harness and
// tests to drive cadences deterministically.
type ManualClock struct {
	now atomic.Int64
}

func NewManualClock(startMs int64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(startMs)
	return c
}

func (c *ManualClock) NowMs() int64     { return c.now.Load() }
func (c *ManualClock) Advance(ms int64) { c.now.Add(ms) }
func (c *ManualClock) Set(ms int64)     { c.now.Store(ms) }
