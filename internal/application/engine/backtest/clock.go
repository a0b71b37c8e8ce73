package backtest

import "time"

// Clock is the virtual timestamp driving a run, independent of wall-clock
// time. It only moves forward.
type Clock struct {
	now time.Time
}

// Advance moves the clock to ts. Earlier timestamps are ignored; ticks are
// processed in non-decreasing timestamp order, so this never runs backwards.
func (c *Clock) Advance(ts time.Time) {
	if ts.After(c.now) {
		c.now = ts
	}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time {
	return c.now
}

// Latency models the two delays between the strategy and the simulated
// market. Both default to zero (instantaneous).
type Latency struct {
	// Order is the delay from submission to visibility in the book.
	Order time.Duration

	// Report is the delay from a fill occurring to the strategy seeing it.
	Report time.Duration
}

// reportVisibleAt returns the first virtual time at which a fill that
// occurred at ts may be shown to the strategy.
func (l Latency) reportVisibleAt(ts time.Time) time.Time {
	return ts.Add(l.Report)
}
