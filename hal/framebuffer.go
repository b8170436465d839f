package hal

import "sync"

// MemFramebuffer is an RGB565 framebuffer in RAM. Present calls the
// optional sink with the pixel buffer.
type MemFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte

	sink func(buf []byte, w, h int) error
}

// NewMemFramebuffer returns a w x h framebuffer whose Present is a no-op.
func NewMemFramebuffer(width, height int) *MemFramebuffer {
	stride := width * 2
	return &MemFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *MemFramebuffer) Width() int          { return f.width }
func (f *MemFramebuffer) Height() int         { return f.height }
func (f *MemFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *MemFramebuffer) StrideBytes() int    { return f.stride }
func (f *MemFramebuffer) Buffer() []byte      { return f.buf }

func (f *MemFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := RGB565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

// Present publishes the buffer to the sink, if any.
func (f *MemFramebuffer) Present() error {
	if f.sink == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sink(f.buf, f.width, f.height)
}

// Snapshot copies the buffer into dst.
func (f *MemFramebuffer) Snapshot(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}

type memDisplay struct {
	fb *MemFramebuffer
}

func (d memDisplay) Framebuffer() Framebuffer { return d.fb }
