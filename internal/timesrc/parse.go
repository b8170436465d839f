// Package timesrc fetches network time for the sync manager.
//
// A Source implements clocksync.Transport: each issued request runs on its
// own goroutine and leaves its result in a fixed slot table that the frame
// loop polls.
package timesrc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrUnavailable means no time could be obtained: the link is down, the
// server failed, or the reply did not carry a time.
var ErrUnavailable = errors.New("time source unavailable")

// Fetcher obtains the current wall time. Fetch may block until ctx is done.
type Fetcher interface {
	Fetch(ctx context.Context) (time.Time, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (time.Time, error)

func (f FetcherFunc) Fetch(ctx context.Context) (time.Time, error) { return f(ctx) }

// SystemFetcher reports the host clock. It serves offline runs where the
// operating system keeps time.
type SystemFetcher struct{}

func (SystemFetcher) Fetch(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	return time.Now(), nil
}

type jsonTime struct {
	UnixTime    *float64 `json:"unixtime"`
	Seconds     *float64 `json:"seconds"`
	Datetime    string   `json:"datetime"`
	UTCDatetime string   `json:"utc_datetime"`
}

// Parse extracts a time from a server reply. It accepts unix seconds
// (optionally fractional), RFC 3339, and JSON objects carrying one of
// "unixtime", "seconds", "utc_datetime" or "datetime".
func Parse(body []byte) (time.Time, error) {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return time.Time{}, fmt.Errorf("timesrc parse: empty body")
	}

	if b[0] == '{' {
		var jt jsonTime
		if err := json.Unmarshal(b, &jt); err != nil {
			return time.Time{}, fmt.Errorf("timesrc parse: %w", err)
		}
		switch {
		case jt.UnixTime != nil:
			return fromUnix(*jt.UnixTime)
		case jt.Seconds != nil:
			return fromUnix(*jt.Seconds)
		case jt.UTCDatetime != "":
			return parseRFC3339(jt.UTCDatetime)
		case jt.Datetime != "":
			return parseRFC3339(jt.Datetime)
		}
		return time.Time{}, fmt.Errorf("timesrc parse: no time field in %q", truncate(b))
	}

	if f, err := strconv.ParseFloat(string(b), 64); err == nil {
		return fromUnix(f)
	}
	return parseRFC3339(string(b))
}

func fromUnix(f float64) (time.Time, error) {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) || f > 1<<40 {
		return time.Time{}, fmt.Errorf("timesrc parse: unix time %v out of range", f)
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timesrc parse: %w", err)
	}
	return t, nil
}

func truncate(b []byte) string {
	const max = 64
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
