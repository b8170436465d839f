package render

import (
	"image/color"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/anim"

	"tinygo.org/x/tinyfont"
)

// Panel layout in pixels for the 64x32 matrix.
const (
	CellSize = 2
	Top      = 10
	ColonX   = 22

	MeridiemRight    = 62
	MeridiemBaseline = 20
)

// SlotX holds the left edge of each digit slot.
var SlotX = [anim.Slots]int{2, 10, 28, 36}

// Palette is indexed by anim cell colors: 0 background, 1..7 blocks, 8 colon.
var Palette = [...]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF},
	{0xFF, 0x00, 0x00, 0xFF}, // red
	{0x00, 0xFF, 0x00, 0xFF}, // green
	{0x00, 0x00, 0xFF, 0xFF}, // blue
	{0xFF, 0xFF, 0x00, 0xFF}, // yellow
	{0xFF, 0x00, 0xFF, 0xFF}, // magenta
	{0x00, 0xFF, 0xFF, 0xFF}, // cyan
	{0xFF, 0xA5, 0x00, 0xFF}, // orange
	{0xFF, 0xFF, 0xFF, 0xFF}, // colon
}

var (
	meridiemColor = color.RGBA{0x80, 0x80, 0x80, 0xFF}
	degradedColor = color.RGBA{0xFF, 0x00, 0x00, 0xFF}
)

// ColorOf returns the palette color for index i, falling back to the
// background.
func ColorOf(i uint8) color.RGBA {
	if int(i) < len(Palette) {
		return Palette[i]
	}
	return Palette[0]
}

// Dim halves each channel; clearing blocks are drawn dimmed.
func Dim(c color.RGBA) color.RGBA {
	return color.RGBA{c.R / 2, c.G / 2, c.B / 2, c.A}
}

// CellOrigin returns the top-left pixel of cell c.
func CellOrigin(c anim.Cell) (x, y int) {
	x0 := ColonX
	if c.Slot >= 0 && c.Slot < anim.Slots {
		x0 = SlotX[c.Slot]
	}
	return x0 + c.Col*CellSize, Top + c.Row*CellSize
}

// Painter draws frames onto a framebuffer.
type Painter struct {
	fb     hal.Framebuffer
	target *Target
	font   tinyfont.Fonter
}

// NewPainter returns a Painter for fb.
func NewPainter(fb hal.Framebuffer) *Painter {
	return &Painter{fb: fb, target: NewTarget(fb), font: &tinyfont.TomThumb}
}

// Paint clears the framebuffer, draws fr and presents it.
func (p *Painter) Paint(fr anim.Frame) error {
	if p.fb == nil || p.fb.Format() != hal.PixelFormatRGB565 {
		return hal.ErrNotImplemented
	}
	p.fb.ClearRGB(0, 0, 0)

	for _, c := range fr.Cells {
		col := ColorOf(c.Color)
		if c.Kind == anim.CellClearing {
			col = Dim(col)
		}
		x, y := CellOrigin(c)
		fillRGB565(p.fb, x, y, CellSize, CellSize, hal.RGB565(col.R, col.G, col.B))
	}

	if fr.Meridiem != anim.MeridiemNone {
		s := fr.Meridiem.String()
		_, w := tinyfont.LineWidth(p.font, s)
		tinyfont.WriteLine(p.target, p.font, int16(MeridiemRight-int(w)), MeridiemBaseline, s, meridiemColor)
	}
	if fr.Degraded {
		c := degradedColor
		fillRGB565(p.fb, p.fb.Width()-2, 0, 2, 2, hal.RGB565(c.R, c.G, c.B))
	}
	return p.target.Display()
}
