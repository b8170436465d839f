package app

import (
	"image/color"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/buildinfo"
	"github.com/messerjon/TetrisClock/internal/config"
	"github.com/messerjon/TetrisClock/internal/render"
)

var (
	bootFG = color.RGBA{R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF}
	bootBG = color.RGBA{A: 0xFF}
)

// bootScreen shows the build and time zone until the first frame is painted.
func bootScreen(fb hal.Framebuffer, settings config.Config) {
	_, _ = render.TextScreen(fb, []string{
		"TETRIS CLOCK",
		buildinfo.Short(),
		settings.Timezone,
		"syncing...",
	}, bootFG, bootBG)
}
