package anim

import "github.com/messerjon/TetrisClock/internal/glyph"

// CellKind tells a display driver how to draw a cell.
type CellKind uint8

const (
	CellLanded CellKind = iota
	CellFalling
	CellClearing
	CellColon
)

// Cell is one logical block position with its palette color. Slot is the
// digit slot; colon cells use ColonSlot.
type Cell struct {
	Slot  int
	Col   int
	Row   int
	Color uint8
	Kind  CellKind
}

// ColonSlot marks cells belonging to the colon indicator.
const ColonSlot = -1

// Meridiem is the AM/PM indicator state.
type Meridiem uint8

const (
	MeridiemNone Meridiem = iota
	MeridiemAM
	MeridiemPM
)

func (m Meridiem) String() string {
	switch m {
	case MeridiemAM:
		return "AM"
	case MeridiemPM:
		return "PM"
	default:
		return ""
	}
}

// Frame is the logical render state for one tick.
type Frame struct {
	Seq      uint64
	Cells    []Cell
	Colon    bool
	Meridiem Meridiem
	Degraded bool
}

// Palette indexes. Zero is the background.
const (
	ColorNone  uint8 = 0
	ColorColon uint8 = 8

	blockColors = 7
)

// ColorFor returns the block color for digit d.
func ColorFor(d int) uint8 {
	if d < 0 {
		d = -d
	}
	return uint8(d%blockColors) + 1
}

// AppendColon appends the colon cells to dst when visible.
func AppendColon(dst []Cell, visible bool) []Cell {
	if !visible {
		return dst
	}
	for _, c := range glyph.Colon() {
		dst = append(dst, Cell{Slot: ColonSlot, Col: c.Col, Row: c.Row, Color: ColorColon, Kind: CellColon})
	}
	return dst
}
