// Package glyph holds the block patterns for the clock digits and the colon.
package glyph

import (
	"errors"
	"strings"
)

// Grid dimensions are the same for every glyph.
const (
	Cols = 3
	Rows = 5
)

// ErrInvalidDigit is returned for a digit outside 0..9.
var ErrInvalidDigit = errors.New("glyph: invalid digit")

// Grid is a glyph's filled cells, one bitmask per row (row 0 at the top).
//
// Bits are stored as 0b00000xxx (bit2 = leftmost column).
type Grid [Rows]uint8

// Blank is the empty grid, used for a suppressed leading hour digit.
var Blank Grid

var digits = [...]Grid{
	0: {0b111, 0b101, 0b101, 0b101, 0b111},
	1: {0b010, 0b010, 0b010, 0b010, 0b010},
	2: {0b111, 0b001, 0b111, 0b100, 0b111},
	3: {0b111, 0b001, 0b111, 0b001, 0b111},
	4: {0b101, 0b101, 0b111, 0b001, 0b001},
	5: {0b111, 0b100, 0b111, 0b001, 0b111},
	6: {0b111, 0b100, 0b111, 0b101, 0b111},
	7: {0b111, 0b001, 0b001, 0b001, 0b001},
	8: {0b111, 0b101, 0b111, 0b101, 0b111},
	9: {0b111, 0b101, 0b111, 0b001, 0b111},
}

// The table must cover exactly the ten decimal digits.
var _ = [1]struct{}{}[len(digits)-10]

// For returns the grid for digit d.
func For(d int) (Grid, error) {
	if d < 0 || d >= len(digits) {
		return Grid{}, ErrInvalidDigit
	}
	return digits[d], nil
}

// Must is like For but panics on an invalid digit.
func Must(d int) Grid {
	g, err := For(d)
	if err != nil {
		panic(err)
	}
	return g
}

// Filled reports whether the cell at (col, row) is set. Out-of-range cells are empty.
func (g Grid) Filled(col, row int) bool {
	if col < 0 || col >= Cols || row < 0 || row >= Rows {
		return false
	}
	return g[row]&(1<<(Cols-1-col)) != 0
}

// With returns a copy of g with the cell at (col, row) set.
func (g Grid) With(col, row int) Grid {
	if col < 0 || col >= Cols || row < 0 || row >= Rows {
		return g
	}
	g[row] |= 1 << (Cols - 1 - col)
	return g
}

// Count returns the number of filled cells.
func (g Grid) Count() int {
	n := 0
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if g.Filled(col, row) {
				n++
			}
		}
	}
	return n
}

func (g Grid) String() string {
	var b strings.Builder
	for row := 0; row < Rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < Cols; col++ {
			if g.Filled(col, row) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

// Cell addresses one block position.
type Cell struct {
	Col int
	Row int
}

// Colon returns the two cells of the colon indicator, in a one-column grid
// of the same height as the digits.
func Colon() [2]Cell {
	return [2]Cell{{Col: 0, Row: 1}, {Col: 0, Row: 3}}
}
