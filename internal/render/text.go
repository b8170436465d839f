package render

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"github.com/messerjon/TetrisClock/hal"

	"tinygo.org/x/tinyfont"
)

// TomThumb metrics in pixels.
const (
	textAdvance = 4
	textHeight  = 6
	textAscent  = 5
)

// TextScreen clears fb to bg and writes lines top-down in fg, wrapping at the
// panel edge. Lines that do not fit are dropped. It returns how many text
// rows were drawn.
func TextScreen(fb hal.Framebuffer, lines []string, fg, bg color.RGBA) (int, error) {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return 0, hal.ErrNotImplemented
	}
	fb.ClearRGB(bg.R, bg.G, bg.B)

	d := NewTarget(fb)
	font := &tinyfont.TomThumb
	cols := fb.Width() / textAdvance
	if cols <= 0 {
		cols = 1
	}

	rows := 0
	y := 0
	for _, line := range lines {
		for first := true; first || line != ""; first = false {
			if y+textHeight > fb.Height() {
				return rows, d.Display()
			}
			chunk, rest := takeRunes(line, cols)
			x := int16(0)
			for _, r := range chunk {
				tinyfont.DrawChar(d, font, x, int16(y+textAscent), r, fg)
				x += textAdvance
			}
			y += textHeight
			rows++
			line = strings.TrimLeft(rest, " ")
		}
	}
	return rows, d.Display()
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
