//go:build !tinygo

package timesrc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

const maxBody = 4 << 10

// HTTPFetcher reads the time from an HTTP endpoint such as the Adafruit IO
// time service. The transport negotiates HTTP/2 over TLS when the server
// offers it.
type HTTPFetcher struct {
	URL string

	client    *http.Client
	transport *http.Transport
	now       func() time.Time
}

// NewHTTPFetcher returns a fetcher for url. timeout bounds each request.
func NewHTTPFetcher(url string, timeout time.Duration) (*HTTPFetcher, error) {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, fmt.Errorf("timesrc http2: %w", err)
	}
	return &HTTPFetcher{
		URL:       url,
		client:    &http.Client{Transport: tr, Timeout: timeout},
		transport: tr,
		now:       time.Now,
	}, nil
}

// Fetch returns the server time shifted by half the round trip, the
// server's best guess at the instant the reply arrives.
func (f *HTTPFetcher) Fetch(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("timesrc request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, application/json")

	sent := f.now()
	resp, err := f.client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	rtt := f.now().Sub(sent)
	t, err := Parse(body)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if rtt > 0 {
		t = t.Add(rtt / 2)
	}
	return t, nil
}

// CloseIdle drops pooled connections so the next fetch dials afresh.
func (f *HTTPFetcher) CloseIdle() { f.transport.CloseIdleConnections() }
