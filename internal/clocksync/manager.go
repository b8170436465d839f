package clocksync

import (
	"errors"
	"fmt"
	"time"

	"github.com/messerjon/TetrisClock/hal"
)

const (
	DefaultRetries     = 3
	DefaultRetryDelay  = 10 * time.Second
	DefaultInterval    = 900 * time.Second
	DefaultTimeout     = 30 * time.Second
	DefaultDailyHour   = 2
	DefaultDailyMinute = 1
)

var errTimeout = errors.New("request timed out")

// Config is the sync policy. Zero values fall back to the defaults, except
// Timeout where zero disables the in-flight deadline.
type Config struct {
	// Retries is the number of consecutive failures tolerated in one cycle
	// before falling back to Interval. Values below one act as one.
	Retries    int
	RetryDelay time.Duration
	Interval   time.Duration
	Timeout    time.Duration

	DailyHour   int
	DailyMinute int

	Location *time.Location
}

// DefaultConfig returns the standard policy in UTC.
func DefaultConfig() Config {
	return Config{
		Retries:     DefaultRetries,
		RetryDelay:  DefaultRetryDelay,
		Interval:    DefaultInterval,
		Timeout:     DefaultTimeout,
		DailyHour:   DefaultDailyHour,
		DailyMinute: DefaultDailyMinute,
		Location:    time.UTC,
	}
}

func (c Config) normalize() Config {
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	if c.DailyHour < 0 || c.DailyHour > 23 {
		c.DailyHour = DefaultDailyHour
	}
	if c.DailyMinute < 0 || c.DailyMinute > 59 {
		c.DailyMinute = DefaultDailyMinute
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// Snapshot is a copy of the Manager's bookkeeping for status surfaces.
type Snapshot struct {
	Phase       Phase         `json:"phase" msgpack:"phase"`
	Synced      bool          `json:"synced" msgpack:"synced"`
	InFlight    bool          `json:"in_flight" msgpack:"in_flight"`
	Failures    int           `json:"failures" msgpack:"failures"`
	Attempts    uint64        `json:"attempts" msgpack:"attempts"`
	Syncs       uint64        `json:"syncs" msgpack:"syncs"`
	Failed      uint64        `json:"failed" msgpack:"failed"`
	LastSync    time.Time     `json:"last_sync" msgpack:"last_sync"`
	NextAttempt time.Time     `json:"next_attempt" msgpack:"next_attempt"`
	NextDaily   time.Time     `json:"next_daily" msgpack:"next_daily"`
	LastDrift   time.Duration `json:"last_drift" msgpack:"last_drift"`
	MaxDrift    time.Duration `json:"max_drift" msgpack:"max_drift"`
	LastError   string        `json:"last_error,omitempty" msgpack:"last_error,omitempty"`
}

// Manager is the sync state machine. It is driven by Tick from the frame
// loop and is not safe for concurrent use.
type Manager struct {
	cfg    Config
	tr     Transport
	notify StatusNotifier
	log    hal.Logger

	started bool
	now     time.Time
	phase   Phase
	status  Status

	// LocalTime = baseWall + (now - baseMono).
	baseWall time.Time
	baseMono time.Time
	synced   bool
	lastSync time.Time

	inFlight bool
	handle   Handle
	kind     Kind
	issuedAt time.Time

	cycle       Kind
	failures    int
	nextAttempt time.Time

	dailyArmed bool
	nextDaily  time.Time
	lastDaily  time.Time

	attempts  uint64
	syncs     uint64
	failed    uint64
	lastDrift time.Duration
	maxDrift  time.Duration
	lastErr   error
}

// NewManager returns a Manager in the initial phase. notify and log may be
// nil.
func NewManager(cfg Config, tr Transport, notify StatusNotifier, log hal.Logger) *Manager {
	return &Manager{
		cfg:    cfg.normalize(),
		tr:     tr,
		notify: notify,
		log:    log,
		phase:  PhaseInitial,
		cycle:  KindSync,
	}
}

// Config returns the normalized policy.
func (m *Manager) Config() Config { return m.cfg }

// Phase returns the current phase.
func (m *Manager) Phase() Phase { return m.phase }

// Status returns the last status sent to the notifier.
func (m *Manager) Status() Status { return m.status }

// Degraded reports whether the initial sync was given up on.
func (m *Manager) Degraded() bool { return m.phase == PhaseDegraded }

// LocalTime returns the best wall-time estimate as of the last Tick.
func (m *Manager) LocalTime() time.Time { return m.LocalTimeAt(m.now) }

// LocalTimeAt returns the wall-time estimate at the monotonic instant now.
// Before the first Tick it returns now in the configured location.
func (m *Manager) LocalTimeAt(now time.Time) time.Time {
	if !m.started {
		return now.In(m.cfg.Location)
	}
	return m.baseWall.Add(now.Sub(m.baseMono)).In(m.cfg.Location)
}

// Tick advances the state machine to now. It issues at most one request
// and returns the action started, if any. A tick that consumes a finished
// request never starts another one.
func (m *Manager) Tick(now time.Time) Action {
	if !m.started {
		m.started = true
		m.baseWall = now
		m.baseMono = now
		m.nextAttempt = now
		m.setStatus(StatusConnecting)
	}
	m.now = now

	if m.inFlight {
		r := m.tr.Poll(m.handle)
		switch r.State {
		case Pending:
			if m.cfg.Timeout > 0 && now.Sub(m.issuedAt) >= m.cfg.Timeout {
				m.inFlight = false
				m.fail(now, errTimeout)
			}
		case Success:
			m.inFlight = false
			m.succeed(now, r.Time)
		default:
			m.inFlight = false
			err := r.Err
			if err == nil {
				err = errors.New("request failed")
			}
			m.fail(now, err)
		}
		return ActionNone
	}

	if m.dailyArmed && !m.LocalTimeAt(now).Before(m.nextDaily) {
		m.lastDaily = m.nextDaily
		m.nextDaily = m.dailyAfter(m.LocalTimeAt(now))
		m.cycle = KindReconnect
		m.failures = 0
		m.issue(now, KindReconnect)
		return ActionReconnect
	}

	if !now.Before(m.nextAttempt) {
		m.issue(now, m.cycle)
		if m.cycle == KindReconnect {
			return ActionReconnect
		}
		return ActionSync
	}
	return ActionNone
}

// Snapshot returns a copy of the bookkeeping.
func (m *Manager) Snapshot() Snapshot {
	s := Snapshot{
		Phase:       m.phase,
		Synced:      m.synced,
		InFlight:    m.inFlight,
		Failures:    m.failures,
		Attempts:    m.attempts,
		Syncs:       m.syncs,
		Failed:      m.failed,
		LastSync:    m.lastSync,
		NextAttempt: m.nextAttempt,
		LastDrift:   m.lastDrift,
		MaxDrift:    m.maxDrift,
	}
	if m.dailyArmed {
		s.NextDaily = m.nextDaily
	}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}
	return s
}

func (m *Manager) issue(now time.Time, kind Kind) {
	m.handle = m.tr.Issue(kind)
	m.kind = kind
	m.inFlight = true
	m.issuedAt = now
	m.attempts++
}

func (m *Manager) succeed(now, t time.Time) {
	if m.synced {
		d := t.Sub(m.LocalTimeAt(now))
		m.lastDrift = d
		if d < 0 {
			d = -d
		}
		if d > m.maxDrift {
			m.maxDrift = d
		}
	}
	m.baseWall = t
	m.baseMono = now
	m.synced = true
	m.lastSync = t
	m.syncs++
	m.lastErr = nil

	m.failures = 0
	m.cycle = KindSync
	m.nextAttempt = now.Add(m.cfg.Interval)
	m.phase = PhaseSynced

	// Recomputed on every sync so a stepped clock cannot skip or repeat a day.
	m.dailyArmed = true
	m.nextDaily = m.dailyAfter(m.LocalTimeAt(now))

	m.logf("%s ok time=%s drift=%s", m.kind, m.LocalTimeAt(now).Format(time.RFC3339), m.lastDrift)
	m.setStatus(StatusSynced)
}

func (m *Manager) fail(now time.Time, err error) {
	m.failures++
	m.failed++
	m.lastErr = err

	bound := m.cfg.Retries
	if bound < 1 {
		bound = 1
	}
	exhausted := m.failures >= bound

	switch {
	case m.phase == PhaseDegraded:
		m.nextAttempt = now.Add(m.cfg.Interval)
	case exhausted:
		m.failures = 0
		m.cycle = KindSync
		m.nextAttempt = now.Add(m.cfg.Interval)
		if m.phase == PhaseInitial {
			m.phase = PhaseDegraded
		}
	default:
		m.nextAttempt = now.Add(m.cfg.RetryDelay)
	}

	m.logf("%s failed (%d/%d): %v; next in %s", m.kind, m.failures, bound, err, m.nextAttempt.Sub(now))
	if m.phase == PhaseDegraded {
		m.setStatus(StatusDegraded)
	}
}

// dailyAfter returns the next reconnect instant strictly after local, on a
// calendar day later than the last reconnect.
func (m *Manager) dailyAfter(local time.Time) time.Time {
	loc := m.cfg.Location
	local = local.In(loc)
	y, mo, d := local.Date()
	next := time.Date(y, mo, d, m.cfg.DailyHour, m.cfg.DailyMinute, 0, 0, loc)
	for !next.After(local) || (!m.lastDaily.IsZero() && dayKey(next, loc) <= dayKey(m.lastDaily, loc)) {
		y, mo, d = next.Date()
		next = time.Date(y, mo, d+1, m.cfg.DailyHour, m.cfg.DailyMinute, 0, 0, loc)
	}
	return next
}

func dayKey(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return y*10000 + int(m)*100 + d
}

func (m *Manager) setStatus(s Status) {
	if m.status == s {
		return
	}
	m.status = s
	m.logf("status %s", s)
	if m.notify != nil {
		m.notify.Notify(s)
	}
}

func (m *Manager) logf(format string, args ...any) {
	if m.log == nil {
		return
	}
	m.log.WriteLineString("clocksync: " + fmt.Sprintf(format, args...))
}
