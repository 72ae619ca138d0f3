package clock

import "time"

// FakeClock pins Now to a fixed instant so tests can assert on
// snapshot and transition timestamps without racing wall time.
type FakeClock struct {
	now time.Time
}

// NewFakeClock starts the clock at t, normalized to UTC to match
// what the stored models carry.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward. Not safe for concurrent use;
// fixtures advance it between calls, not during them.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
