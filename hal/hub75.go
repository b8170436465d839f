package hal

// HUB75 data pin bits in a packed column word.
const (
	hub75R1 = 1 << iota
	hub75G1
	hub75B1
	hub75R2
	hub75G2
	hub75B2
)

// hub75Planes is the number of binary-coded brightness planes per channel.
const hub75Planes = 3

// hub75FrameLen is the packed size of a w x h panel.
func hub75FrameLen(w, h int) int { return hub75Planes * (h / 2) * w }

// packHUB75 converts a little-endian RGB565 buffer into column words for a
// 1/(h/2) scan panel. Word (plane*(h/2)+row)*w+x carries pixel (x, row) on
// the R1/G1/B1 bits and pixel (x, row+h/2) on the R2/G2/B2 bits. Plane 0 is
// the most significant brightness bit.
func packHUB75(dst []uint8, buf []byte, w, h int) {
	half := h / 2
	if len(dst) < hub75FrameLen(w, h) || len(buf) < w*h*2 {
		return
	}
	for plane := 0; plane < hub75Planes; plane++ {
		shift := uint(7 - plane)
		for row := 0; row < half; row++ {
			out := dst[(plane*half+row)*w:][:w]
			top := buf[row*w*2:]
			bot := buf[(row+half)*w*2:]
			for x := 0; x < w; x++ {
				var word uint8
				r, g, b := RGB888From565(uint16(top[2*x]) | uint16(top[2*x+1])<<8)
				if r>>shift&1 != 0 {
					word |= hub75R1
				}
				if g>>shift&1 != 0 {
					word |= hub75G1
				}
				if b>>shift&1 != 0 {
					word |= hub75B1
				}
				r, g, b = RGB888From565(uint16(bot[2*x]) | uint16(bot[2*x+1])<<8)
				if r>>shift&1 != 0 {
					word |= hub75R2
				}
				if g>>shift&1 != 0 {
					word |= hub75G2
				}
				if b>>shift&1 != 0 {
					word |= hub75B2
				}
				out[x] = word
			}
		}
	}
}
