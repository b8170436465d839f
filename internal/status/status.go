// Package status shows the sync health on the status LED.
package status

import (
	"time"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/clocksync"
)

// Pattern is a repeating on/off cycle. Off == 0 keeps the LED lit; On == 0
// keeps it dark.
type Pattern struct {
	On  time.Duration
	Off time.Duration
}

var (
	Connecting = Pattern{On: 250 * time.Millisecond, Off: 250 * time.Millisecond}
	Synced     = Pattern{On: 50 * time.Millisecond, Off: 4950 * time.Millisecond}
	Degraded   = Pattern{On: time.Second, Off: time.Second}
	Dark       = Pattern{}
)

// PatternFor returns the LED pattern of s.
func PatternFor(s clocksync.Status) Pattern {
	switch s {
	case clocksync.StatusConnecting:
		return Connecting
	case clocksync.StatusSynced:
		return Synced
	case clocksync.StatusDegraded:
		return Degraded
	default:
		return Dark
	}
}

// lit reports whether the pattern is on at elapsed time since it started.
func (p Pattern) lit(elapsed time.Duration) bool {
	switch {
	case p.On <= 0:
		return false
	case p.Off <= 0:
		return true
	}
	return elapsed%(p.On+p.Off) < p.On
}

// Indicator implements clocksync.StatusNotifier on an LED. Notify and Step
// are called from the frame loop.
type Indicator struct {
	led hal.LED
	log hal.Logger

	status  clocksync.Status
	pattern Pattern
	since   time.Time
	fresh   bool

	on      bool
	known   bool
	changes uint64
}

var _ clocksync.StatusNotifier = (*Indicator)(nil)

// NewIndicator returns an Indicator with the LED dark. led and log may be nil.
func NewIndicator(led hal.LED, log hal.Logger) *Indicator {
	return &Indicator{led: led, log: log, pattern: Dark}
}

func (i *Indicator) Notify(s clocksync.Status) {
	if s == i.status {
		return
	}
	i.status = s
	i.pattern = PatternFor(s)
	i.fresh = true
	i.changes++
	if i.log != nil {
		i.log.WriteLineString("status: " + s.String())
	}
}

// Step drives the LED for the current pattern.
func (i *Indicator) Step(now time.Time) {
	if i.fresh {
		i.since = now
		i.fresh = false
	}
	i.set(i.pattern.lit(now.Sub(i.since)))
}

func (i *Indicator) set(on bool) {
	if i.known && on == i.on {
		return
	}
	i.on = on
	i.known = true
	if i.led == nil {
		return
	}
	if on {
		i.led.High()
	} else {
		i.led.Low()
	}
}

// Status returns the last notified status.
func (i *Indicator) Status() clocksync.Status { return i.status }

// On reports whether the LED is lit.
func (i *Indicator) On() bool { return i.on }

// Changes returns the number of distinct statuses notified.
func (i *Indicator) Changes() uint64 { return i.changes }
