package anim

import "github.com/messerjon/TetrisClock/internal/glyph"

// SubRows is the fixed-point resolution of a falling block's position.
const SubRows = 16

// BlockState is the motion state of a block.
type BlockState uint8

const (
	Falling BlockState = iota + 1
	Landed
)

func (s BlockState) String() string {
	switch s {
	case Falling:
		return "falling"
	case Landed:
		return "landed"
	default:
		return "unknown"
	}
}

// Block is one cell of a digit, in motion or at rest.
type Block struct {
	Col    int
	Target int
	Color  uint8
	State  BlockState

	pos int // sub-rows from the top
}

// Row returns the block's current row, quantized for rendering.
func (b Block) Row() int { return b.pos / SubRows }

type clearing struct {
	row    int
	color  uint8
	frames int
}

// ColumnStack is the runtime state of one column of a digit slot: the landed
// blocks in stacking order and at most one falling block.
type ColumnStack struct {
	col int

	landed     []Block
	falling    Block
	hasFalling bool

	pending []Block // adds not yet spawned, in spawn order
	delay   int     // frames until the first spawn is allowed

	clearing []clearing
}

// Landed returns a copy of the landed blocks, bottom of the stack first.
func (c *ColumnStack) Landed() []Block {
	out := make([]Block, len(c.landed))
	copy(out, c.landed)
	return out
}

// Falling returns the falling block, if any.
func (c *ColumnStack) Falling() (Block, bool) {
	return c.falling, c.hasFalling
}

// Pending returns the number of adds waiting to spawn.
func (c *ColumnStack) Pending() int { return len(c.pending) }

// Top returns the row of the topmost landed block, or glyph.Rows when the
// column is empty.
func (c *ColumnStack) Top() int {
	top := glyph.Rows
	for i := range c.landed {
		if r := c.landed[i].Row(); r < top {
			top = r
		}
	}
	return top
}

// Done reports whether the column has no pending or falling blocks.
func (c *ColumnStack) Done() bool {
	return !c.hasFalling && len(c.pending) == 0
}

func (c *ColumnStack) remove(row, clearFrames int) {
	for i := range c.landed {
		if c.landed[i].Row() != row {
			continue
		}
		if clearFrames > 0 {
			c.clearing = append(c.clearing, clearing{row: row, color: c.landed[i].Color, frames: clearFrames})
		}
		c.landed = append(c.landed[:i], c.landed[i+1:]...)
		return
	}
}

func (c *ColumnStack) queue(target int, color uint8) {
	c.pending = append(c.pending, Block{Col: c.col, Target: target, Color: color})
}

// step advances the column by one frame.
func (c *ColumnStack) step(fallStep int) {
	if n := len(c.clearing); n > 0 {
		keep := c.clearing[:0]
		for _, cl := range c.clearing {
			cl.frames--
			if cl.frames > 0 {
				keep = append(keep, cl)
			}
		}
		c.clearing = keep
	}

	if !c.hasFalling {
		if len(c.pending) == 0 {
			return
		}
		if c.delay > 0 {
			c.delay--
			return
		}
		c.spawn()
		return
	}

	limit := c.limit(c.falling.Target)
	c.falling.pos += fallStep
	if c.falling.pos >= limit*SubRows {
		c.falling.pos = limit * SubRows
		c.land()
	}
}

// limit is the lowest row a block aimed at target can reach.
func (c *ColumnStack) limit(target int) int {
	if top := c.Top() - 1; top < target {
		return top
	}
	return target
}

func (c *ColumnStack) spawn() {
	b := c.pending[0]
	c.pending = c.pending[1:]
	if c.limit(b.Target) < 0 {
		// Column is full up to the top row; the block has nowhere to go.
		return
	}
	b.State = Falling
	b.pos = 0
	c.falling = b
	c.hasFalling = true
}

func (c *ColumnStack) land() {
	b := c.falling
	b.State = Landed
	c.landed = append(c.landed, b)
	c.falling = Block{}
	c.hasFalling = false
}

// grid adds the landed blocks of this column to g.
func (c *ColumnStack) grid(g glyph.Grid) glyph.Grid {
	for i := range c.landed {
		g = g.With(c.col, c.landed[i].Row())
	}
	return g
}
