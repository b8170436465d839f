// Package app wires the clock together: settings, time sync, status LED,
// clock face and panel renderer.
package app

import (
	"fmt"
	"time"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/anim"
	"github.com/messerjon/TetrisClock/internal/buildinfo"
	"github.com/messerjon/TetrisClock/internal/clockface"
	"github.com/messerjon/TetrisClock/internal/clocksync"
	"github.com/messerjon/TetrisClock/internal/config"
	"github.com/messerjon/TetrisClock/internal/render"
	"github.com/messerjon/TetrisClock/internal/status"
	"github.com/messerjon/TetrisClock/internal/timesrc"
)

// Options selects how the System is built.
type Options struct {
	Settings config.Config
	// Offline trusts the platform clock instead of the network time source.
	Offline bool
	// Fetcher overrides the time source; nil picks one from the settings.
	Fetcher timesrc.Fetcher
}

// System is one running clock. Step must be called from a single goroutine.
type System struct {
	h        hal.HAL
	settings config.Config
	log      hal.Logger

	fetch   timesrc.Fetcher
	source  *timesrc.Source
	sync    *clocksync.Manager
	led     *status.Indicator
	face    *clockface.Face
	painter *render.Painter

	observers []func(anim.Frame)
	faulted   error
}

// New builds the clock on h and shows the boot screen.
func New(h hal.HAL, opts Options) (*System, error) {
	if h == nil {
		return nil, fmt.Errorf("app new: nil hal")
	}
	settings := opts.Settings
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("app new: %w", err)
	}
	loc, err := settings.Location()
	if err != nil {
		return nil, fmt.Errorf("app new: %w", err)
	}

	s := &System{h: h, settings: settings, log: h.Logger()}
	s.logf(buildinfo.String())
	bootDiagSetStep("settings loaded")

	net := h.Network()
	s.fetch = opts.Fetcher
	switch {
	case s.fetch != nil:
	case opts.Offline:
		s.fetch, net = timesrc.SystemFetcher{}, nil
	default:
		s.fetch, net, err = platformFetcher(settings, net)
		if err != nil {
			return nil, fmt.Errorf("app new: %w", err)
		}
	}
	s.source = timesrc.NewSource(s.fetch, net, settings.TimeSyncTimeout.Duration(), s.log)

	s.led = status.NewIndicator(h.LED(), s.log)
	s.sync = clocksync.NewManager(clocksync.Config{
		Retries:     settings.TimeSyncRetries,
		RetryDelay:  settings.TimeSyncRetryDelay.Duration(),
		Interval:    settings.TimeSyncInterval.Duration(),
		Timeout:     settings.TimeSyncTimeout.Duration(),
		DailyHour:   settings.DailyReconnectHour,
		DailyMinute: settings.DailyReconnectMinute,
		Location:    loc,
	}, s.source, s.led, s.log)

	s.face = clockface.New(clockface.Config{
		TwelveHour:   settings.TwelveHourFormat,
		ForceRefresh: settings.ForceRefresh,
		Anim:         anim.DefaultOptions(),
		BlinkPeriod:  time.Second,
	}, s.sync, s.log)

	if d := h.Display(); d != nil {
		if fb := d.Framebuffer(); fb != nil {
			s.painter = render.NewPainter(fb)
			bootScreen(fb, settings)
		}
	}
	bootDiagSetStep("running")
	return s, nil
}

// Observe registers fn to receive every painted frame. Frame.Cells is only
// valid for the duration of the call.
func (s *System) Observe(fn func(anim.Frame)) {
	s.observers = append(s.observers, fn)
}

// Step runs one frame at the monotonic instant now. A panic inside the frame
// paints the fault screen and is returned as an error; later calls keep
// returning it.
func (s *System) Step(now time.Time) (fr anim.Frame, err error) {
	if s.faulted != nil {
		return fr, s.faulted
	}
	defer func() {
		if r := recover(); r != nil {
			s.faulted = s.fault(r)
			err = s.faulted
		}
	}()

	fr = s.face.Step(now)
	s.led.Step(now)
	if s.painter != nil {
		if err := s.painter.Paint(fr); err != nil {
			return fr, fmt.Errorf("app paint: %w", err)
		}
	}
	for _, fn := range s.observers {
		fn(fr)
	}
	return fr, nil
}

// StepFunc adapts Step to the hal runners, reading time from the HAL.
func (s *System) StepFunc() func() error {
	clock := s.h.Time()
	return func() error {
		_, err := s.Step(clock.Now())
		return err
	}
}

// StatusLine summarizes the clock for terminals and logs.
func (s *System) StatusLine() string {
	snap := s.sync.Snapshot()
	line := fmt.Sprintf("%s  sync %s  ok %d  failed %d",
		clockface.Format(s.face.Digits(), anim.MeridiemNone), snap.Phase, snap.Syncs, snap.Failed)
	if snap.Syncs > 1 {
		line += fmt.Sprintf("  drift %s", snap.LastDrift)
	}
	if snap.LastError != "" && snap.Phase != clocksync.PhaseSynced {
		line += "  (" + snap.LastError + ")"
	}
	return line
}

// Settings returns the validated settings in use.
func (s *System) Settings() config.Config { return s.settings }

// Face returns the clock face.
func (s *System) Face() *clockface.Face { return s.face }

// Sync returns the time sync manager.
func (s *System) Sync() *clocksync.Manager { return s.sync }

// Indicator returns the status LED driver.
func (s *System) Indicator() *status.Indicator { return s.led }

// Close stops background time requests.
func (s *System) Close() error {
	err := s.source.Close()
	if c, ok := s.fetch.(interface{ CloseIdle() }); ok {
		c.CloseIdle()
	}
	return err
}

func (s *System) logf(line string) {
	if s.log != nil {
		s.log.WriteLineString(line)
	}
}
