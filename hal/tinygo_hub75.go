//go:build tinygo && baremetal && !picocalc

package hal

import (
	"machine"
	"sync"
	"time"
)

// Panel wiring on the Pico 2.
var (
	hub75Data = [6]machine.Pin{machine.GP2, machine.GP3, machine.GP4, machine.GP5, machine.GP6, machine.GP7} // R1 G1 B1 R2 G2 B2
	hub75Addr = [4]machine.Pin{machine.GP8, machine.GP9, machine.GP10, machine.GP11}                         // A B C D
	hub75CLK  = machine.GP12
	hub75LAT  = machine.GP13
	hub75OE   = machine.GP14
)

// hub75OnTime is how long a row stays lit for the least significant plane.
const hub75OnTime = 40 * time.Microsecond

// hub75Panel scans a 1/16 HUB75 panel from a packed frame on its own
// goroutine. present swaps in a new frame; the scan never blocks on it.
type hub75Panel struct {
	w, h int

	mu    sync.Mutex
	front []uint8
	back  []uint8
}

func newHUB75Panel(w, h int) *hub75Panel {
	out := machine.PinConfig{Mode: machine.PinOutput}
	for _, p := range hub75Data {
		p.Configure(out)
		p.Low()
	}
	for _, p := range hub75Addr {
		p.Configure(out)
		p.Low()
	}
	hub75CLK.Configure(out)
	hub75CLK.Low()
	hub75LAT.Configure(out)
	hub75LAT.Low()
	hub75OE.Configure(out)
	hub75OE.High()

	n := hub75FrameLen(w, h)
	p := &hub75Panel{w: w, h: h, front: make([]uint8, n), back: make([]uint8, n)}
	go p.scan()
	return p
}

// present packs buf and hands it to the scanner.
func (p *hub75Panel) present(buf []byte, w, h int) error {
	if w != p.w || h != p.h {
		return ErrNotImplemented
	}
	packHUB75(p.back, buf, w, h)
	p.mu.Lock()
	p.front, p.back = p.back, p.front
	p.mu.Unlock()
	return nil
}

func (p *hub75Panel) scan() {
	half := p.h / 2
	row := make([]uint8, p.w)
	for {
		for plane := 0; plane < hub75Planes; plane++ {
			for y := 0; y < half; y++ {
				p.mu.Lock()
				copy(row, p.front[(plane*half+y)*p.w:])
				p.mu.Unlock()

				for x := 0; x < p.w; x++ {
					word := row[x]
					for i, pin := range hub75Data {
						pin.Set(word&(1<<i) != 0)
					}
					hub75CLK.High()
					hub75CLK.Low()
				}

				hub75OE.High()
				for i, pin := range hub75Addr {
					pin.Set(y&(1<<i) != 0)
				}
				hub75LAT.High()
				hub75LAT.Low()
				hub75OE.Low()
				time.Sleep(hub75OnTime << uint(hub75Planes-1-plane))
			}
		}
		hub75OE.High()
	}
}
