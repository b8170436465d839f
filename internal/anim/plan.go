package anim

import (
	"fmt"
	"strings"

	"github.com/messerjon/TetrisClock/internal/glyph"
)

// OpKind is the kind of a plan operation.
type OpKind uint8

const (
	OpRemove OpKind = iota + 1
	OpAdd
)

func (k OpKind) String() string {
	switch k {
	case OpRemove:
		return "remove"
	case OpAdd:
		return "add"
	default:
		return "unknown"
	}
}

// Op is one block operation on a column. Row is the block's resting row.
type Op struct {
	Kind OpKind
	Row  int
}

const maxColumnOps = 2 * glyph.Rows

// ColumnPlan is the ordered operation list for one column: all removes
// (bottom to top) followed by all adds (lowest target first).
type ColumnPlan struct {
	ops [maxColumnOps]Op
	n   uint8
}

func (c *ColumnPlan) push(op Op) {
	c.ops[c.n] = op
	c.n++
}

// Len returns the number of operations.
func (c ColumnPlan) Len() int { return int(c.n) }

// Op returns operation i.
func (c ColumnPlan) Op(i int) Op { return c.ops[i] }

// Ops returns a copy of the operations.
func (c ColumnPlan) Ops() []Op {
	out := make([]Op, c.n)
	copy(out, c.ops[:c.n])
	return out
}

// TransitionPlan converts one rendered grid into another. It is a value type:
// once computed it cannot be modified by its consumers.
type TransitionPlan struct {
	cols [glyph.Cols]ColumnPlan
}

// Column returns the plan for column col.
func (p TransitionPlan) Column(col int) ColumnPlan { return p.cols[col] }

// Empty reports whether the plan has no operations.
func (p TransitionPlan) Empty() bool {
	for i := range p.cols {
		if p.cols[i].n != 0 {
			return false
		}
	}
	return true
}

// Counts returns the number of add and remove operations.
func (p TransitionPlan) Counts() (adds, removes int) {
	for i := range p.cols {
		c := &p.cols[i]
		for j := 0; j < int(c.n); j++ {
			switch c.ops[j].Kind {
			case OpAdd:
				adds++
			case OpRemove:
				removes++
			}
		}
	}
	return adds, removes
}

func (p TransitionPlan) String() string {
	var b strings.Builder
	for col := range p.cols {
		c := p.cols[col]
		fmt.Fprintf(&b, "col%d:", col)
		if c.n == 0 {
			b.WriteString(" -")
		}
		for i := 0; i < int(c.n); i++ {
			fmt.Fprintf(&b, " %s@%d", c.ops[i].Kind, c.ops[i].Row)
		}
		if col < len(p.cols)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Plan computes the column-wise operations turning from into to.
//
// Blocks fall from the top, so a block kept by both grids but sitting above
// the lowest new block would be in the way; such blocks are lifted (removed
// and added again) so every add has a clear path down to its row.
func Plan(from, to glyph.Grid) TransitionPlan {
	var p TransitionPlan
	for col := 0; col < glyph.Cols; col++ {
		lowestAdd := -1
		for row := glyph.Rows - 1; row >= 0; row-- {
			if to.Filled(col, row) && !from.Filled(col, row) {
				lowestAdd = row
				break
			}
		}

		c := &p.cols[col]
		for row := glyph.Rows - 1; row >= 0; row-- {
			if from.Filled(col, row) && (!to.Filled(col, row) || row < lowestAdd) {
				c.push(Op{Kind: OpRemove, Row: row})
			}
		}
		for row := glyph.Rows - 1; row >= 0; row-- {
			if to.Filled(col, row) && (!from.Filled(col, row) || row < lowestAdd) {
				c.push(Op{Kind: OpAdd, Row: row})
			}
		}
	}
	return p
}
