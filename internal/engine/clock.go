package engine

import "sync/atomic"

// Clock is a monotonic logical counter for cycle numbering.
//
// Every cycle is stamped with a strictly increasing number from this clock,
// never with wall-clock timestamps, so logs and reports order identically
// across restarts of the same process lifetime.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// although the engine's single-writer loop means only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific cycle number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next cycle number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current cycle number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
