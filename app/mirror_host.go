//go:build !tinygo

package app

import (
	"github.com/messerjon/TetrisClock/internal/anim"
	"github.com/messerjon/TetrisClock/internal/buildinfo"
	"github.com/messerjon/TetrisClock/internal/clockface"
	"github.com/messerjon/TetrisClock/internal/mirror"
)

// AttachMirror publishes every painted frame and the clock status to hub.
func (s *System) AttachMirror(hub *mirror.Hub) {
	build := buildinfo.Current()
	s.Observe(func(fr anim.Frame) {
		local := s.face.LocalTime()
		st := mirror.Status{
			Build:   build,
			Display: clockface.Format(s.face.Digits(), s.face.Meridiem()),
			Digits:  s.face.Digits(),
			Local:   local,
			Frames:  fr.Seq,
			Sync:    s.sync.Snapshot(),
		}
		if err := hub.Publish(fr, local, st); err != nil {
			s.logf("mirror: publish: " + err.Error())
		}
	})
}
