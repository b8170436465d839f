//go:build !tinygo

package app

import (
	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/config"
	"github.com/messerjon/TetrisClock/internal/timesrc"
)

// platformFetcher asks the configured HTTP time service over the host
// network.
func platformFetcher(settings config.Config, net hal.Network) (timesrc.Fetcher, hal.Network, error) {
	f, err := timesrc.NewHTTPFetcher(settings.TimeURL, settings.TimeSyncTimeout.Duration())
	if err != nil {
		return nil, nil, err
	}
	return f, net, nil
}
