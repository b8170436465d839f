// Package config loads the clock settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	// Embedded zone database: the MCU and minimal containers have none.
	_ "time/tzdata"
)

// EnvPrefix prefixes the environment overrides, e.g. TETRIS_CLOCK_TIMEZONE.
const EnvPrefix = "TETRIS_CLOCK_"

const (
	DefaultTimezone = "America/New_York"
	DefaultTimeURL  = "https://io.adafruit.com/api/v2/time/seconds"
	DefaultFrameHz  = 20
)

var ErrInvalid = errors.New("invalid setting")

type Config struct {
	TwelveHourFormat bool `yaml:"twelve_hour_format"`
	ForceRefresh     bool `yaml:"force_refresh"`

	TimeSyncRetries    int     `yaml:"time_sync_retries"`
	TimeSyncRetryDelay Seconds `yaml:"time_sync_retry_delay"`
	TimeSyncInterval   Seconds `yaml:"time_sync_interval"`
	TimeSyncTimeout    Seconds `yaml:"time_sync_timeout"`

	DailyReconnectHour   int `yaml:"daily_reconnect_hour"`
	DailyReconnectMinute int `yaml:"daily_reconnect_minute"`

	Timezone string `yaml:"timezone"`
	TimeURL  string `yaml:"time_url"`

	FrameHz    int    `yaml:"frame_hz"`
	MirrorAddr string `yaml:"mirror_addr,omitempty"`
}

// Defaults returns the settings used when no file is given.
func Defaults() Config {
	return Config{
		TwelveHourFormat:     true,
		ForceRefresh:         false,
		TimeSyncRetries:      3,
		TimeSyncRetryDelay:   Seconds(10 * time.Second),
		TimeSyncInterval:     Seconds(900 * time.Second),
		TimeSyncTimeout:      Seconds(30 * time.Second),
		DailyReconnectHour:   2,
		DailyReconnectMinute: 1,
		Timezone:             DefaultTimezone,
		TimeURL:              DefaultTimeURL,
		FrameHz:              DefaultFrameHz,
	}
}

// Load reads path over the defaults, applies environment overrides, then
// normalizes and validates. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("settings.yaml: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, fmt.Errorf("settings env: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("settings.yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from variables named EnvPrefix + upper-cased
// YAML key.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	duration := func(key string, dst *Seconds) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = Seconds(d)
		return nil
	}

	str("TIMEZONE", &c.Timezone)
	str("TIME_URL", &c.TimeURL)
	str("MIRROR_ADDR", &c.MirrorAddr)
	return errors.Join(
		boolean("TWELVE_HOUR_FORMAT", &c.TwelveHourFormat),
		boolean("FORCE_REFRESH", &c.ForceRefresh),
		integer("TIME_SYNC_RETRIES", &c.TimeSyncRetries),
		duration("TIME_SYNC_RETRY_DELAY", &c.TimeSyncRetryDelay),
		duration("TIME_SYNC_INTERVAL", &c.TimeSyncInterval),
		duration("TIME_SYNC_TIMEOUT", &c.TimeSyncTimeout),
		integer("DAILY_RECONNECT_HOUR", &c.DailyReconnectHour),
		integer("DAILY_RECONNECT_MINUTE", &c.DailyReconnectMinute),
		integer("FRAME_HZ", &c.FrameHz),
	)
}

// Seconds is a duration that settings files may give as bare seconds
// ("900") or as a Go duration ("15m").
type Seconds time.Duration

func (s Seconds) Duration() time.Duration { return time.Duration(s) }

func (s Seconds) String() string { return time.Duration(s).String() }

func (s *Seconds) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", n.Line)
	}
	d, err := parseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*s = Seconds(d)
	return nil
}

func (s Seconds) MarshalYAML() (any, error) { return s.String(), nil }

// parseDuration accepts Go durations ("15m") or bare seconds ("900").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Normalize fills empty values with defaults.
func (c *Config) Normalize() {
	d := Defaults()
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	c.TimeURL = strings.TrimSpace(c.TimeURL)
	if c.TimeURL == "" {
		c.TimeURL = d.TimeURL
	}
	c.MirrorAddr = strings.TrimSpace(c.MirrorAddr)
	if c.TimeSyncRetryDelay == 0 {
		c.TimeSyncRetryDelay = d.TimeSyncRetryDelay
	}
	if c.TimeSyncInterval == 0 {
		c.TimeSyncInterval = d.TimeSyncInterval
	}
	if c.FrameHz == 0 {
		c.FrameHz = d.FrameHz
	}
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case c.TimeSyncRetries < 0:
		return fmt.Errorf("%w: time_sync_retries %d < 0", ErrInvalid, c.TimeSyncRetries)
	case c.TimeSyncRetryDelay < 0:
		return fmt.Errorf("%w: time_sync_retry_delay %s < 0", ErrInvalid, c.TimeSyncRetryDelay)
	case c.TimeSyncInterval.Duration() < time.Second:
		return fmt.Errorf("%w: time_sync_interval %s < 1s", ErrInvalid, c.TimeSyncInterval)
	case c.TimeSyncTimeout < 0:
		return fmt.Errorf("%w: time_sync_timeout %s < 0", ErrInvalid, c.TimeSyncTimeout)
	case c.DailyReconnectHour < 0 || c.DailyReconnectHour > 23:
		return fmt.Errorf("%w: daily_reconnect_hour %d not in 0..23", ErrInvalid, c.DailyReconnectHour)
	case c.DailyReconnectMinute < 0 || c.DailyReconnectMinute > 59:
		return fmt.Errorf("%w: daily_reconnect_minute %d not in 0..59", ErrInvalid, c.DailyReconnectMinute)
	case c.FrameHz < 1 || c.FrameHz > 240:
		return fmt.Errorf("%w: frame_hz %d not in 1..240", ErrInvalid, c.FrameHz)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FramePeriod is the duration of one animation frame.
func (c Config) FramePeriod() time.Duration {
	if c.FrameHz <= 0 {
		return time.Second / DefaultFrameHz
	}
	return time.Second / time.Duration(c.FrameHz)
}
