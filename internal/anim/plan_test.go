package anim

import (
	"testing"

	"github.com/messerjon/TetrisClock/internal/glyph"
)

func TestPlanSameGridIsEmpty(t *testing.T) {
	grids := []glyph.Grid{glyph.Blank}
	for d := 0; d <= 9; d++ {
		grids = append(grids, glyph.Must(d))
	}
	for i, g := range grids {
		if p := Plan(g, g); !p.Empty() {
			t.Fatalf("Plan(g%d, g%d) = \n%s\nwant empty", i, i, p)
		}
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	for from := 0; from <= 9; from++ {
		for to := 0; to <= 9; to++ {
			a := Plan(glyph.Must(from), glyph.Must(to))
			b := Plan(glyph.Must(from), glyph.Must(to))
			if a != b {
				t.Fatalf("Plan(%d, %d) differs between calls:\n%s\n--\n%s", from, to, a, b)
			}
		}
	}
}

func TestPlanOneToEight(t *testing.T) {
	p := Plan(glyph.Must(1), glyph.Must(8))

	adds, removes := p.Counts()
	if adds != 10 || removes != 2 {
		t.Fatalf("Counts() = %d adds, %d removes, want 10, 2\n%s", adds, removes, p)
	}

	mid := p.Column(1).Ops()
	want := []Op{{Kind: OpRemove, Row: 3}, {Kind: OpRemove, Row: 1}}
	if len(mid) != len(want) {
		t.Fatalf("column 1 ops = %v, want %v", mid, want)
	}
	for i := range want {
		if mid[i] != want[i] {
			t.Fatalf("column 1 op %d = %v, want %v", i, mid[i], want[i])
		}
	}

	left := p.Column(0).Ops()
	for i, op := range left {
		if op.Kind != OpAdd {
			t.Fatalf("column 0 op %d = %v, want add", i, op)
		}
		if i > 0 && op.Row >= left[i-1].Row {
			t.Fatalf("column 0 adds not lowest-first: %v", left)
		}
	}
}

func TestPlanShrinkOnlyRemoves(t *testing.T) {
	for _, to := range []int{0, 6, 9} {
		p := Plan(glyph.Must(8), glyph.Must(to))
		adds, removes := p.Counts()
		if adds != 0 || removes != 1 {
			t.Fatalf("Plan(8, %d) = %d adds, %d removes, want 0, 1\n%s", to, adds, removes, p)
		}
	}

	// Filling the gaps of the middle column lifts the kept blocks above them.
	p := Plan(glyph.Must(8), glyph.Must(1))
	adds, removes := p.Counts()
	if adds != 4 || removes != 12 {
		t.Fatalf("Plan(8, 1) = %d adds, %d removes, want 4, 12\n%s", adds, removes, p)
	}
}

func TestPlanRemovesBottomToTop(t *testing.T) {
	p := Plan(glyph.Must(8), glyph.Blank)
	for col := 0; col < glyph.Cols; col++ {
		ops := p.Column(col).Ops()
		for i := 1; i < len(ops); i++ {
			if ops[i].Row >= ops[i-1].Row {
				t.Fatalf("column %d removes not bottom-to-top: %v", col, ops)
			}
		}
	}
}

func TestPlanLiftsObstructingBlocks(t *testing.T) {
	// 7 has only the top cell in column 0; 9 needs rows 1, 2 and 4 below it.
	p := Plan(glyph.Must(7), glyph.Must(9))
	ops := p.Column(0).Ops()
	want := []Op{
		{Kind: OpRemove, Row: 0},
		{Kind: OpAdd, Row: 4},
		{Kind: OpAdd, Row: 2},
		{Kind: OpAdd, Row: 1},
		{Kind: OpAdd, Row: 0},
	}
	if len(ops) != len(want) {
		t.Fatalf("column 0 ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("column 0 op %d = %v, want %v", i, ops[i], want[i])
		}
	}

	// Column 2 of 7 is fully kept by 9 and needs nothing.
	if n := p.Column(2).Len(); n != 0 {
		t.Fatalf("column 2 ops = %v, want none", p.Column(2).Ops())
	}
}
