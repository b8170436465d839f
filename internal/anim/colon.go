package anim

import "time"

// DefaultBlinkPeriod is the colon's on/off duration.
const DefaultBlinkPeriod = time.Second

// Colon is a two-state blinker driven by elapsed time, independent of digit
// transitions.
type Colon struct {
	period  time.Duration
	visible bool
	last    time.Time
	started bool
}

// NewColon returns a visible colon toggling every period.
func NewColon(period time.Duration) *Colon {
	if period <= 0 {
		period = DefaultBlinkPeriod
	}
	return &Colon{period: period, visible: true}
}

// Update toggles the colon for every full period elapsed since the last
// toggle and returns the current state.
func (c *Colon) Update(now time.Time) bool {
	if !c.started {
		c.started = true
		c.last = now
		return c.visible
	}
	elapsed := now.Sub(c.last)
	if elapsed < c.period {
		return c.visible
	}
	n := int64(elapsed / c.period)
	if n%2 == 1 {
		c.visible = !c.visible
	}
	c.last = c.last.Add(time.Duration(n) * c.period)
	return c.visible
}

// Visible returns the current state.
func (c *Colon) Visible() bool { return c.visible }
