//go:build tinygo && baremetal && !picocalc

package hal

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	fb     *MemFramebuffer
	net    Network
}

// New returns a Pico 2 (RP2350) HAL implementation.
//
// Present hands the framebuffer to a HUB75 panel scanned from GP2..GP14.
func New() HAL {
	logger, led := initBoard()
	fb := NewMemFramebuffer(PanelWidth, PanelHeight)
	fb.sink = newHUB75Panel(PanelWidth, PanelHeight).present
	return &tinyGoHAL{
		logger: logger,
		led:    led,
		fb:     fb,
		net:    nullNetwork{},
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) Display() Display { return memDisplay{fb: h.fb} }
func (h *tinyGoHAL) Time() Time       { return systemTime{} }
func (h *tinyGoHAL) Network() Network { return h.net }
