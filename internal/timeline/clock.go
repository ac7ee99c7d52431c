package timeline

import (
	"errors"
	"time"
)

// ErrNotStarted is returned when a clock is ticked before Start. This is a
// programming-contract violation and never surfaces through the session API.
var ErrNotStarted = errors.New("timeline: clock ticked before start")

// Clock converts wall instants into normalized progress over a fixed
// duration. The start instant is latched on the first tick after Start,
// so elapsed time is measured from the first rendered frame.
type Clock struct {
	duration float64 // seconds
	start    time.Time
	armed    bool
	latched  bool
}

func NewClock(durationSeconds float64) *Clock {
	return &Clock{duration: durationSeconds}
}

// Start arms the clock. The next Tick latches the start instant.
func (c *Clock) Start() {
	c.armed = true
	c.latched = false
}

// Started reports whether the start instant has been latched.
func (c *Clock) Started() bool {
	return c.latched
}

// Duration returns the configured duration in seconds.
func (c *Clock) Duration() float64 {
	return c.duration
}

// Tick maps now onto (t, elapsed): elapsed seconds since the first tick,
// and progress t = clamp(elapsed/duration, 0, 1).
func (c *Clock) Tick(now time.Time) (t, elapsed float64, err error) {
	if !c.armed {
		return 0, 0, ErrNotStarted
	}
	if !c.latched {
		c.start = now
		c.latched = true
	}
	elapsed = now.Sub(c.start).Seconds()
	if c.duration > 0 {
		t = elapsed / c.duration
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t, elapsed, nil
}
