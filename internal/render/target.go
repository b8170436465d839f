// Package render rasterizes clock frames onto an RGB565 framebuffer.
package render

import (
	"image/color"

	"github.com/messerjon/TetrisClock/hal"

	"tinygo.org/x/drivers"
)

// Target adapts a framebuffer to drivers.Displayer so tinyfont can draw on it.
type Target struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*Target)(nil)

// NewTarget wraps fb.
func NewTarget(fb hal.Framebuffer) *Target { return &Target{fb: fb} }

func (d *Target) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *Target) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	hal.PutRGB565(d.fb, int(x), int(y), hal.RGB565(c.R, c.G, c.B))
}

// Display presents the framebuffer.
func (d *Target) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

// FillRectangle paints a clipped rectangle.
func (d *Target) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	fillRGB565(d.fb, int(x), int(y), int(width), int(height), hal.RGB565(c.R, c.G, c.B))
	return nil
}

func fillRGB565(fb hal.Framebuffer, x, y, w, h int, pixel uint16) {
	buf := fb.Buffer()
	if buf == nil {
		return
	}
	x0 := clampInt(x, 0, fb.Width())
	y0 := clampInt(y, 0, fb.Height())
	x1 := clampInt(x+w, 0, fb.Width())
	y1 := clampInt(y+h, 0, fb.Height())
	if x0 >= x1 || y0 >= y1 {
		return
	}

	lo := byte(pixel)
	hi := byte(pixel >> 8)
	stride := fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off < 0 || off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
