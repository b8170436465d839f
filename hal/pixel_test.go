package hal

import "testing"

func TestRGB565RoundTripPrimaries(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		want    uint16
	}{
		{255, 0, 0, 0xF800},
		{0, 255, 0, 0x07E0},
		{0, 0, 255, 0x001F},
		{255, 255, 255, 0xFFFF},
		{0, 0, 0, 0x0000},
	}
	for _, c := range cases {
		p := RGB565(c.r, c.g, c.b)
		if p != c.want {
			t.Fatalf("RGB565(%d,%d,%d) = %#04x, want %#04x", c.r, c.g, c.b, p, c.want)
		}
		r, g, b := RGB888From565(p)
		if r != c.r || g != c.g || b != c.b {
			t.Fatalf("RGB888From565(%#04x) = %d,%d,%d, want %d,%d,%d", p, r, g, b, c.r, c.g, c.b)
		}
	}
}

func TestPutAtRGB565(t *testing.T) {
	fb := NewMemFramebuffer(PanelWidth, PanelHeight)
	PutRGB565(fb, 3, 2, 0xABCD)
	if got := AtRGB565(fb, 3, 2); got != 0xABCD {
		t.Fatalf("AtRGB565(3,2) = %#04x, want 0xabcd", got)
	}
	off := 2*fb.StrideBytes() + 3*2
	if b := fb.Buffer(); b[off] != 0xCD || b[off+1] != 0xAB {
		t.Fatalf("buffer bytes = %#02x %#02x, want little-endian", b[off], b[off+1])
	}

	// Out of range writes are dropped.
	PutRGB565(fb, -1, 0, 0xFFFF)
	PutRGB565(fb, PanelWidth, 0, 0xFFFF)
	PutRGB565(fb, 0, PanelHeight, 0xFFFF)
	if got := AtRGB565(fb, PanelWidth, 0); got != 0 {
		t.Fatalf("AtRGB565(out of range) = %#04x, want 0", got)
	}
}

func TestMemFramebufferClearAndPresent(t *testing.T) {
	fb := NewMemFramebuffer(4, 2)
	fb.ClearRGB(255, 0, 0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if got := AtRGB565(fb, x, y); got != 0xF800 {
				t.Fatalf("AtRGB565(%d,%d) = %#04x, want 0xf800", x, y, got)
			}
		}
	}
	if err := fb.Present(); err != nil {
		t.Fatalf("Present() without sink = %v, want nil", err)
	}

	var got []byte
	fb.sink = func(buf []byte, w, h int) error {
		if w != 4 || h != 2 {
			t.Fatalf("sink size = %dx%d, want 4x2", w, h)
		}
		got = append([]byte(nil), buf...)
		return nil
	}
	if err := fb.Present(); err != nil {
		t.Fatalf("Present() = %v", err)
	}
	if len(got) != 16 {
		t.Fatalf("sink got %d bytes, want 16", len(got))
	}

	snap := make([]byte, 16)
	fb.Snapshot(snap)
	if snap[0] != 0x00 || snap[1] != 0xF8 {
		t.Fatalf("Snapshot() first pixel = %#02x %#02x", snap[0], snap[1])
	}
}
