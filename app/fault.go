package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"

	"github.com/messerjon/TetrisClock/internal/render"
)

var (
	faultFG = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	faultBG = color.RGBA{R: 0xA0, A: 0xFF}
)

// fault logs a recovered frame panic with its stack and paints it on the
// panel. The returned error stops the runner.
func (s *System) fault(v any) error {
	err := fmt.Errorf("app panic: %v", v)
	s.logf(err.Error())
	if stack := debug.Stack(); len(stack) > 0 {
		for _, line := range strings.Split(string(stack), "\n") {
			if line != "" {
				s.logf(line)
			}
		}
	}
	bootDiagSetStep(err.Error())

	if d := s.h.Display(); d != nil {
		if fb := d.Framebuffer(); fb != nil {
			_, _ = render.TextScreen(fb, []string{"PANIC", fmt.Sprint(v)}, faultFG, faultBG)
		}
	}
	return err
}
