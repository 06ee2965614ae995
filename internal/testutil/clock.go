package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start time of a DeterministicClock.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// DeterministicClock is a wall clock for tests that advances by a fixed step
// on every call to Now.
//
// The same scenario run twice against fresh clocks sees identical timestamps,
// which keeps golden traces stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int64
}

// NewDeterministicClock creates a clock at Epoch stepping one second per call.
//
// The first call to Now() returns Epoch.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(Epoch, time.Second)
}

// NewDeterministicClockAt creates a clock starting at start and advancing by step.
func NewDeterministicClockAt(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start.UTC(), step: step}
}

// Now returns the current time and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls returns how many times Now has been called.
func (c *DeterministicClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock so the next Now() returns the start time again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
