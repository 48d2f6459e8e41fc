package session

// Clock is the monotonic countdown for one live session. It is a pure
// tick sink: the host delivers ticks from its own event loop and the
// controller consumes the result synchronously, so there is never a
// second callback entry point into the state machine.
type Clock struct {
	remaining int
}

// NewClock creates a Clock with the given number of seconds remaining.
func NewClock(seconds int) *Clock {
	if seconds < 0 {
		seconds = 0
	}
	return &Clock{remaining: seconds}
}

// Remaining returns the seconds left on the countdown.
func (c *Clock) Remaining() int {
	return c.remaining
}

// Tick consumes one second and reports whether this tick brought the
// countdown to zero. A tick delivered when the countdown is already at
// zero is a no-op, so a late tick racing a slow submission can never
// fire expiry twice.
func (c *Clock) Tick() bool {
	if c.remaining == 0 {
		return false
	}
	c.remaining--
	return c.remaining == 0
}
