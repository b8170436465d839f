package hal

import "testing"

func TestPackHUB75SplitsHalves(t *testing.T) {
	fb := NewMemFramebuffer(PanelWidth, PanelHeight)
	half := PanelHeight / 2
	PutRGB565(fb, 5, 3, RGB565(255, 0, 0))      // top half, full red
	PutRGB565(fb, 5, 3+half, RGB565(0, 0, 255)) // bottom half, same scan row
	PutRGB565(fb, 9, 0, RGB565(0, 160, 0))

	dst := make([]uint8, hub75FrameLen(PanelWidth, PanelHeight))
	packHUB75(dst, fb.Buffer(), PanelWidth, PanelHeight)

	at := func(plane, row, x int) uint8 { return dst[(plane*half+row)*PanelWidth+x] }
	for plane := 0; plane < hub75Planes; plane++ {
		if got, want := at(plane, 3, 5), uint8(hub75R1|hub75B2); got != want {
			t.Fatalf("plane %d word(3,5) = %#02x, want %#02x", plane, got, want)
		}
	}

	_, gg, _ := RGB888From565(RGB565(0, 160, 0))
	for plane := 0; plane < hub75Planes; plane++ {
		var want uint8
		if gg>>uint(7-plane)&1 != 0 {
			want = hub75G1
		}
		if got := at(plane, 0, 9); got != want {
			t.Fatalf("plane %d word(0,9) = %#02x, want %#02x", plane, got, want)
		}
	}
	if got := at(0, 0, 0); got != 0 {
		t.Fatalf("word(0,0) = %#02x, want 0", got)
	}
}

func TestPackHUB75IgnoresShortBuffers(t *testing.T) {
	dst := []uint8{0xAA}
	packHUB75(dst, make([]byte, PanelWidth*PanelHeight*2), PanelWidth, PanelHeight)
	if dst[0] != 0xAA {
		t.Fatalf("packHUB75 wrote into a short dst: %#02x", dst[0])
	}
}
