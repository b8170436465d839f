// Package anim turns digit changes into falling-block animations.
//
// A change of a slot's digit becomes a TransitionPlan (Plan), which the
// Engine plays out one frame per Step: removed blocks clear immediately,
// added blocks spawn at the top of their column one at a time and fall at a
// constant speed until they land.
package anim

import (
	"fmt"

	"github.com/messerjon/TetrisClock/internal/glyph"
)

// Slots is the number of digit positions: H-tens, H-units, M-tens, M-units.
const Slots = 4

const (
	DefaultFallStep      = SubRows / 2
	DefaultClearFrames   = 6
	DefaultColumnStagger = 2
	DefaultSlotStagger   = 3
)

// Options tunes the animation timing. All values are in frames except
// FallStep, which is in sub-rows per frame.
type Options struct {
	FallStep      int
	ClearFrames   int
	ColumnStagger int
	SlotStagger   int
}

// DefaultOptions returns the standard timing: half a row per frame.
func DefaultOptions() Options {
	return Options{
		FallStep:      DefaultFallStep,
		ClearFrames:   DefaultClearFrames,
		ColumnStagger: DefaultColumnStagger,
		SlotStagger:   DefaultSlotStagger,
	}
}

func (o Options) normalize() Options {
	if o.FallStep <= 0 {
		o.FallStep = DefaultFallStep
	}
	if o.ClearFrames < 0 {
		o.ClearFrames = 0
	}
	if o.ColumnStagger < 0 {
		o.ColumnStagger = 0
	}
	if o.SlotStagger < 0 {
		o.SlotStagger = 0
	}
	return o
}

// Engine owns the column stacks of all digit slots. It is the only writer
// of block state.
type Engine struct {
	opts  Options
	slots [Slots]Slot
	frame uint64
}

// NewEngine returns an engine with all slots blank and idle.
func NewEngine(opts Options) *Engine {
	e := &Engine{opts: opts.normalize()}
	for i := range e.slots {
		e.slots[i].init(i)
	}
	return e
}

// Options returns the engine's timing options.
func (e *Engine) Options() Options { return e.opts }

// Enqueue requests a transition of slot to grid. The plan is derived when
// the slot is idle; while a transition is in flight only the latest request
// is kept.
func (e *Engine) Enqueue(slot int, grid glyph.Grid, color uint8) error {
	if slot < 0 || slot >= Slots {
		return fmt.Errorf("anim enqueue: slot %d out of range", slot)
	}
	e.slots[slot].enqueue(target{grid: grid, color: color})
	return nil
}

// MustEnqueue is like Enqueue but panics on an out-of-range slot.
func (e *Engine) MustEnqueue(slot int, grid glyph.Grid, color uint8) {
	if err := e.Enqueue(slot, grid, color); err != nil {
		panic(err)
	}
}

// Step advances every slot by one frame.
func (e *Engine) Step() {
	e.frame++
	for i := range e.slots {
		e.slots[i].step(e.opts)
	}
}

// Frames returns the number of steps taken.
func (e *Engine) Frames() uint64 { return e.frame }

// Slot returns slot i.
func (e *Engine) Slot(i int) *Slot { return &e.slots[i] }

// Idle reports whether every slot is idle with nothing queued.
func (e *Engine) Idle() bool {
	for i := range e.slots {
		if e.slots[i].state != SlotIdle || e.slots[i].queued {
			return false
		}
	}
	return true
}

// AppendCells appends the drawable cells of all slots to dst: clearing
// blocks first, then landed, then falling, so later cells paint over
// earlier ones.
func (e *Engine) AppendCells(dst []Cell) []Cell {
	for si := range e.slots {
		s := &e.slots[si]
		for col := range s.cols {
			c := &s.cols[col]
			for _, cl := range c.clearing {
				dst = append(dst, Cell{Slot: si, Col: col, Row: cl.row, Color: cl.color, Kind: CellClearing})
			}
		}
	}
	for si := range e.slots {
		s := &e.slots[si]
		for col := range s.cols {
			c := &s.cols[col]
			for _, b := range c.landed {
				dst = append(dst, Cell{Slot: si, Col: col, Row: b.Row(), Color: b.Color, Kind: CellLanded})
			}
			if c.hasFalling {
				dst = append(dst, Cell{Slot: si, Col: col, Row: c.falling.Row(), Color: c.falling.Color, Kind: CellFalling})
			}
		}
	}
	return dst
}
