// Package clockface runs one frame of the clock: sync polling, digit change
// detection, animation stepping and frame assembly, in that order.
package clockface

import (
	"fmt"
	"time"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/anim"
	"github.com/messerjon/TetrisClock/internal/clocksync"
	"github.com/messerjon/TetrisClock/internal/glyph"
)

// Blank marks a digit slot that shows nothing.
const Blank = -1

// Clock is the time authority the face reads. *clocksync.Manager
// implements it.
type Clock interface {
	Tick(now time.Time) clocksync.Action
	LocalTime() time.Time
	Degraded() bool
}

var _ Clock = (*clocksync.Manager)(nil)

// Config selects the clock face behaviour. A zero BlinkPeriod blinks the
// colon once a second.
type Config struct {
	TwelveHour   bool
	ForceRefresh bool
	Anim         anim.Options
	BlinkPeriod  time.Duration
}

// Face is the clock's frame loop body. It is not safe for concurrent use.
type Face struct {
	cfg    Config
	clock  Clock
	engine *anim.Engine
	colon  *anim.Colon
	log    hal.Logger

	started  bool
	digits   [anim.Slots]int
	meridiem anim.Meridiem
	minute   int
	local    time.Time
	action   clocksync.Action

	cells []anim.Cell
}

// New returns a Face with a blank display. log may be nil.
func New(cfg Config, clock Clock, log hal.Logger) *Face {
	return &Face{
		cfg:    cfg,
		clock:  clock,
		engine: anim.NewEngine(cfg.Anim),
		colon:  anim.NewColon(cfg.BlinkPeriod),
		log:    log,
	}
}

// Step advances the clock to the monotonic instant now and returns the
// frame to draw. Frame.Cells is reused by the next Step.
func (f *Face) Step(now time.Time) anim.Frame {
	f.action = f.clock.Tick(now)
	f.local = f.clock.LocalTime()

	digits, mer := Digits(f.local, f.cfg.TwelveHour)
	minute := minuteKey(f.local)
	newMinute := !f.started || minute != f.minute
	for slot := range digits {
		changed := !f.started || digits[slot] != f.digits[slot]
		if changed || (f.cfg.ForceRefresh && newMinute) {
			f.enqueue(slot, digits[slot])
		}
	}
	if newMinute && f.log != nil {
		f.log.WriteLineString("clockface: " + Format(digits, mer))
	}
	f.started = true
	f.digits = digits
	f.meridiem = mer
	f.minute = minute

	f.engine.Step()
	visible := f.colon.Update(now)

	f.cells = f.engine.AppendCells(f.cells[:0])
	f.cells = anim.AppendColon(f.cells, visible)
	return anim.Frame{
		Seq:      f.engine.Frames(),
		Cells:    f.cells,
		Colon:    visible,
		Meridiem: mer,
		Degraded: f.clock.Degraded(),
	}
}

func (f *Face) enqueue(slot, digit int) {
	g, color := glyph.Blank, anim.ColorNone
	if digit != Blank {
		g, color = glyph.Must(digit), anim.ColorFor(digit)
	}
	f.engine.MustEnqueue(slot, g, color)
}

// Engine returns the animation engine.
func (f *Face) Engine() *anim.Engine { return f.engine }

// Digits returns the digits shown since the last Step.
func (f *Face) Digits() [anim.Slots]int { return f.digits }

// Meridiem returns the AM/PM state shown since the last Step.
func (f *Face) Meridiem() anim.Meridiem { return f.meridiem }

// LocalTime returns the wall time used by the last Step.
func (f *Face) LocalTime() time.Time { return f.local }

// Action returns the sync action started by the last Step.
func (f *Face) Action() clocksync.Action { return f.action }

// Digits splits t into the four slot values. In 12-hour mode a leading
// zero hour digit is Blank and the meridiem is set.
func Digits(t time.Time, twelveHour bool) ([anim.Slots]int, anim.Meridiem) {
	h, m := t.Hour(), t.Minute()
	mer := anim.MeridiemNone
	var d [anim.Slots]int
	if twelveHour {
		mer = anim.MeridiemAM
		if h >= 12 {
			mer = anim.MeridiemPM
		}
		h %= 12
		if h == 0 {
			h = 12
		}
		d[0] = h / 10
		if d[0] == 0 {
			d[0] = Blank
		}
	} else {
		d[0] = h / 10
	}
	d[1] = h % 10
	d[2] = m / 10
	d[3] = m % 10
	return d, mer
}

// Format renders slot values as "HH:MM", with a trailing meridiem when set.
func Format(d [anim.Slots]int, mer anim.Meridiem) string {
	b := []byte("  :  ")
	for i, pos := range [anim.Slots]int{0, 1, 3, 4} {
		if d[i] != Blank {
			b[pos] = byte('0' + d[i])
		}
	}
	if mer != anim.MeridiemNone {
		return fmt.Sprintf("%s %s", b, mer)
	}
	return string(b)
}

func minuteKey(t time.Time) int {
	y, yd := t.Year(), t.YearDay()
	return ((y*400+yd)*24+t.Hour())*60 + t.Minute()
}
