package anim

import "github.com/messerjon/TetrisClock/internal/glyph"

// SlotState is the transition state of a digit slot.
type SlotState uint8

const (
	SlotIdle SlotState = iota
	SlotAnimating
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotAnimating:
		return "animating"
	default:
		return "unknown"
	}
}

type target struct {
	grid  glyph.Grid
	color uint8
}

// Slot is one independently animated digit position.
type Slot struct {
	index int
	cols  [glyph.Cols]ColumnStack
	state SlotState

	queued bool
	next   target

	plans uint64
	last  TransitionPlan
}

func (s *Slot) init(index int) {
	s.index = index
	for col := range s.cols {
		s.cols[col].col = col
	}
}

// State returns the slot's transition state.
func (s *Slot) State() SlotState { return s.state }

// Queued reports whether a target is waiting for the slot to become idle.
func (s *Slot) Queued() bool { return s.queued }

// Plans returns how many transition plans the slot has applied.
func (s *Slot) Plans() uint64 { return s.plans }

// LastPlan returns the most recently applied plan.
func (s *Slot) LastPlan() TransitionPlan { return s.last }

// Column returns the stack for column col.
func (s *Slot) Column(col int) *ColumnStack { return &s.cols[col] }

// Grid returns the cells currently rendered by landed blocks.
func (s *Slot) Grid() glyph.Grid {
	var g glyph.Grid
	for col := range s.cols {
		g = s.cols[col].grid(g)
	}
	return g
}

// Done reports whether no column has pending or falling blocks.
func (s *Slot) Done() bool {
	for col := range s.cols {
		if !s.cols[col].Done() {
			return false
		}
	}
	return true
}

func (s *Slot) enqueue(t target) {
	s.next = t
	s.queued = true
}

func (s *Slot) apply(t target, opts Options) {
	p := Plan(s.Grid(), t.grid)
	for col := range s.cols {
		c := &s.cols[col]
		c.delay = s.index*opts.SlotStagger + col*opts.ColumnStagger
		cp := p.cols[col]
		for i := 0; i < cp.Len(); i++ {
			op := cp.Op(i)
			switch op.Kind {
			case OpRemove:
				c.remove(op.Row, opts.ClearFrames)
			case OpAdd:
				c.queue(op.Row, t.color)
			}
		}
	}
	s.last = p
	s.plans++
	s.state = SlotAnimating
}

func (s *Slot) step(opts Options) {
	if s.state == SlotIdle && s.queued {
		s.queued = false
		s.apply(s.next, opts)
	}
	for col := range s.cols {
		s.cols[col].step(opts.FallStep)
	}
	if s.state == SlotAnimating && s.Done() {
		s.state = SlotIdle
	}
}
