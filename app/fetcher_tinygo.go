//go:build tinygo

package app

import (
	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/config"
	"github.com/messerjon/TetrisClock/internal/timesrc"
)

// platformFetcher reads the board clock. The boards have no network stack
// yet, so the link is not managed.
func platformFetcher(config.Config, hal.Network) (timesrc.Fetcher, hal.Network, error) {
	return timesrc.SystemFetcher{}, nil, nil
}
