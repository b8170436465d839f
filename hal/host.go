//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
)

// HostConfig selects the host peripherals.
type HostConfig struct {
	// Log receives log lines; nil means stdout.
	Log io.Writer
	// Offline replaces the network with one that never connects.
	Offline bool
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	fb     *MemFramebuffer
	t      systemTime
	net    Network
}

// New returns a host HAL logging to stdout with the system network.
func New() HAL { return NewHost(HostConfig{}) }

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) HAL {
	w := cfg.Log
	if w == nil {
		w = os.Stdout
	}
	logger := &hostLogger{w: w}
	var n Network = &hostNetwork{logger: logger}
	if cfg.Offline {
		n = nullNetwork{}
	}
	return &hostHAL{
		logger: logger,
		led:    &hostLED{logger: logger},
		fb:     NewMemFramebuffer(PanelWidth, PanelHeight),
		net:    n,
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) Display() Display { return memDisplay{fb: h.fb} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Network() Network { return h.net }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on {
		return
	}
	l.on = true
	l.logger.WriteLineString("led: HIGH")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.on {
		return
	}
	l.on = false
	l.logger.WriteLineString("led: LOW")
}

var errNoRoute = errors.New("no non-loopback interface is up")

// hostNetwork treats the OS as the radio: connected means some non-loopback
// interface has an address.
type hostNetwork struct {
	mu        sync.Mutex
	connected bool
	logger    *hostLogger
}

func (n *hostNetwork) Connected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.connected
}

func (n *hostNetwork) Reconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ok := hasRoute()
	n.mu.Lock()
	n.connected = ok
	n.mu.Unlock()
	if !ok {
		n.logger.WriteLineString("net: reconnect: " + errNoRoute.Error())
		return errNoRoute
	}
	n.logger.WriteLineString("net: reconnect: ok")
	return nil
}

func hasRoute() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}
