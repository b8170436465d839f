//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/messerjon/TetrisClock/app"
	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/config"
	"github.com/messerjon/TetrisClock/internal/mirror"
	"github.com/messerjon/TetrisClock/internal/tui"
)

func main() {
	var (
		cfg        hal.HeadlessConfig
		configPath string
		mirrorAddr string
		useTUI     bool
		offline    bool
		scale      int
	)
	flag.StringVar(&configPath, "config", "", "Path to settings.yaml (defaults when empty).")
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 0, "Frame rate (0 = frame_hz from settings).")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N frames in headless mode (0 = run forever).")
	flag.BoolVar(&useTUI, "tui", false, "Draw the clock in the terminal.")
	flag.StringVar(&mirrorAddr, "mirror", "", "Serve the live frame mirror on this address (overrides mirror_addr).")
	flag.BoolVar(&offline, "offline", false, "Use the system clock instead of the network time source.")
	flag.IntVar(&scale, "scale", 10, "Window pixels per panel pixel.")
	flag.Parse()

	if err := run(cfg, configPath, mirrorAddr, useTUI, offline, scale); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg hal.HeadlessConfig, configPath, mirrorAddr string, useTUI, offline bool, scale int) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if mirrorAddr != "" {
		settings.MirrorAddr = mirrorAddr
	}
	if cfg.Hz <= 0 {
		cfg.Hz = settings.FrameHz
	}
	cfg.Host.Offline = offline

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sys *app.System
	var setupErr error
	newApp := func(h hal.HAL) func() error {
		sys, setupErr = app.New(h, app.Options{Settings: settings, Offline: offline})
		if setupErr != nil {
			return func() error { return setupErr }
		}
		if settings.MirrorAddr != "" {
			startMirror(ctx, sys, settings.MirrorAddr, h.Logger())
		}
		return sys.StepFunc()
	}
	defer func() {
		if sys != nil {
			_ = sys.Close()
		}
	}()

	switch {
	case useTUI:
		// The terminal belongs to bubbletea; logs go nowhere.
		cfg.Host.Log = io.Discard
		step := newApp(hal.NewHost(cfg.Host))
		if setupErr != nil {
			return step()
		}
		err = tui.Run(ctx, sys, settings.FramePeriod())
	case cfg.Enabled:
		err = hal.RunHeadless(ctx, newApp, cfg)
	default:
		err = hal.RunWindow(newApp, hal.WindowConfig{Hz: cfg.Hz, Scale: scale, Host: cfg.Host})
	}
	if errors.Is(err, context.Canceled) || (err != nil && ctx.Err() != nil) {
		return nil
	}
	return err
}

func startMirror(ctx context.Context, sys *app.System, addr string, log hal.Logger) {
	hub := mirror.NewHub()
	sys.AttachMirror(hub)
	srv := mirror.NewServer(hub, log)
	go func() {
		if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
			log.WriteLineString("mirror: " + err.Error())
		}
	}()
}
