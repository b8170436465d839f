//go:build tinygo && baremetal && picocalc

package hal

type picoCalcHAL struct {
	logger *uartLogger
	led    *pinLED
	fb     *MemFramebuffer
	net    Network
}

// lcdScale maps one panel pixel to a 5x5 block on the 320x320 LCD.
const lcdScale = 5

// New returns a PicoCalc HAL implementation (Pico/Pico2 on the PicoCalc carrier).
//
// The LCD stands in for the LED matrix: the 64x32 panel is drawn scaled and
// vertically centred.
func New() HAL {
	logger, led := initBoard()

	fb := NewMemFramebuffer(PanelWidth, PanelHeight)
	if lcd, err := initILI9488(); err == nil {
		lcd.fill(0, 0, lcdSize, lcdSize, 0)
		y0 := (lcdSize - PanelHeight*lcdScale) / 2
		fb.sink = func(buf []byte, w, h int) error {
			return lcd.blitScaled(buf, w, h, lcdScale, 0, y0)
		}
	} else {
		logger.WriteLineString("hal: lcd: " + err.Error())
	}

	return &picoCalcHAL{
		logger: logger,
		led:    led,
		fb:     fb,
		net:    nullNetwork{},
	}
}

func (h *picoCalcHAL) Logger() Logger   { return h.logger }
func (h *picoCalcHAL) LED() LED         { return h.led }
func (h *picoCalcHAL) Display() Display { return memDisplay{fb: h.fb} }
func (h *picoCalcHAL) Time() Time       { return systemTime{} }
func (h *picoCalcHAL) Network() Network { return h.net }
