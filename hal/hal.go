package hal

import (
	"context"
	"errors"
	"time"
)

// Panel dimensions of the dot-matrix display, in pixels.
const (
	PanelWidth  = 64
	PanelHeight = 32
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time is the platform clock. Now must carry a monotonic reading where the
// platform has one.
type Time interface {
	Now() time.Time
}

// Network is the link the time source talks over.
//
// Reconnect may block; callers run it off the frame loop.
type Network interface {
	Connected() bool
	Reconnect(ctx context.Context) error
}

// HAL provides the only contact point between the clock and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	Display() Display
	Time() Time
	Network() Network
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }
