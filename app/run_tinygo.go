//go:build tinygo

package app

import (
	"time"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/config"
)

// Run starts the clock with the default settings and never returns.
func Run(h hal.HAL) {
	bootDiagStart(h)
	s, err := New(h, Options{Settings: config.Defaults()})
	if err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString(err.Error())
		}
		select {}
	}

	step := s.StepFunc()
	t := time.NewTicker(s.Settings().FramePeriod())
	defer t.Stop()
	for range t.C {
		if err := step(); err != nil {
			// The fault screen stays up.
			select {}
		}
	}
}
