package clocksync

import (
	"errors"
	"testing"
	"time"
)

type outcome struct {
	fail    bool
	pending bool
	skew    time.Duration
}

// fakeTransport resolves each request on the first poll using the next
// scripted outcome. Success times follow a reference clock that started at
// net0 when the simulation started at t0.
type fakeTransport struct {
	t0, net0 time.Time
	now      time.Time

	script []outcome
	def    outcome

	next   Handle
	issued map[Handle]outcome
	kinds  []Kind
}

func newFake(t0, net0 time.Time, def outcome, script ...outcome) *fakeTransport {
	return &fakeTransport{t0: t0, net0: net0, def: def, script: script, issued: map[Handle]outcome{}}
}

func (f *fakeTransport) Issue(kind Kind) Handle {
	f.next++
	o := f.def
	if len(f.script) > 0 {
		o = f.script[0]
		f.script = f.script[1:]
	}
	f.issued[f.next] = o
	f.kinds = append(f.kinds, kind)
	return f.next
}

func (f *fakeTransport) Poll(h Handle) Result {
	o := f.issued[h]
	switch {
	case o.pending:
		return Result{State: Pending}
	case o.fail:
		return Result{State: Failure, Err: errors.New("no route to host")}
	default:
		return Result{State: Success, Time: f.net0.Add(f.now.Sub(f.t0)).Add(o.skew)}
	}
}

type recorder struct{ got []Status }

func (r *recorder) Notify(s Status) { r.got = append(r.got, s) }

type tickLog struct {
	at     int // seconds since t0
	action Action
}

// simulate ticks once per second for n seconds and returns the actions.
func simulate(t *testing.T, m *Manager, f *fakeTransport, n int, each func(sec int)) []tickLog {
	t.Helper()
	var out []tickLog
	for sec := 0; sec <= n; sec++ {
		f.now = f.t0.Add(time.Duration(sec) * time.Second)
		if a := m.Tick(f.now); a != ActionNone {
			out = append(out, tickLog{at: sec, action: a})
		}
		if each != nil {
			each(sec)
		}
	}
	return out
}

func attemptTimes(log []tickLog) []int {
	var out []int
	for _, l := range log {
		out = append(out, l.at)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var (
	t0   = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	noon = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Retries = 3
	cfg.RetryDelay = 10 * time.Second
	cfg.Interval = 900 * time.Second
	return cfg
}

func TestInitialRetriesThenDegraded(t *testing.T) {
	f := newFake(t0, noon, outcome{fail: true})
	rec := &recorder{}
	m := NewManager(testConfig(), f, rec, nil)

	var prev time.Time
	log := simulate(t, m, f, 2000, func(sec int) {
		lt := m.LocalTime()
		if lt.Before(prev) {
			t.Fatalf("LocalTime() went backwards at %ds: %s < %s", sec, lt, prev)
		}
		prev = lt
		if sec == 22 && m.Phase() != PhaseInitial {
			t.Fatalf("Phase() at 22s = %s, want initial", m.Phase())
		}
		if sec == 23 && m.Phase() != PhaseDegraded {
			t.Fatalf("Phase() at 23s = %s, want degraded after 3 failures", m.Phase())
		}
	})

	want := []int{0, 11, 22, 923, 1824}
	if got := attemptTimes(log); !equalInts(got, want) {
		t.Fatalf("attempts at %v, want %v", got, want)
	}
	if len(rec.got) != 2 || rec.got[0] != StatusConnecting || rec.got[1] != StatusDegraded {
		t.Fatalf("statuses = %v, want [connecting degraded]", rec.got)
	}
	if !m.Degraded() {
		t.Fatal("Degraded() = false")
	}
	// Never synced: the local clock keeps running from the device time.
	if got, want := m.LocalTime(), t0.Add(2000*time.Second); !got.Equal(want) {
		t.Fatalf("LocalTime() = %s, want %s", got, want)
	}
}

func TestZeroRetriesDegradesAfterFirstFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Retries = 0
	f := newFake(t0, noon, outcome{fail: true})
	m := NewManager(cfg, f, nil, nil)

	log := simulate(t, m, f, 1000, nil)
	want := []int{0, 901}
	if got := attemptTimes(log); !equalInts(got, want) {
		t.Fatalf("attempts at %v, want %v", got, want)
	}
	if m.Phase() != PhaseDegraded {
		t.Fatalf("Phase() = %s, want degraded", m.Phase())
	}
}

func TestDegradedRecoversOnSuccess(t *testing.T) {
	f := newFake(t0, noon, outcome{}, outcome{fail: true}, outcome{fail: true}, outcome{fail: true})
	rec := &recorder{}
	m := NewManager(testConfig(), f, rec, nil)

	simulate(t, m, f, 930, nil)
	if m.Phase() != PhaseSynced {
		t.Fatalf("Phase() = %s, want synced", m.Phase())
	}
	want := []Status{StatusConnecting, StatusDegraded, StatusSynced}
	if len(rec.got) != len(want) {
		t.Fatalf("statuses = %v, want %v", rec.got, want)
	}
	for i := range want {
		if rec.got[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", rec.got, want)
		}
	}
}

func TestSuccessSetsBaselineAndInterval(t *testing.T) {
	f := newFake(t0, noon, outcome{})
	m := NewManager(testConfig(), f, nil, nil)

	log := simulate(t, m, f, 1000, func(sec int) {
		if sec == 5 {
			if got, want := m.LocalTime(), noon.Add(5*time.Second); !got.Equal(want) {
				t.Fatalf("LocalTime() = %s, want %s", got, want)
			}
		}
	})
	want := []int{0, 901}
	if got := attemptTimes(log); !equalInts(got, want) {
		t.Fatalf("attempts at %v, want %v", got, want)
	}
	if s := m.Snapshot(); s.Syncs != 2 || !s.Synced || s.Phase != PhaseSynced {
		t.Fatalf("Snapshot() = %+v", s)
	}
}

func TestSyncedFailuresStaySynced(t *testing.T) {
	f := newFake(t0, noon, outcome{},
		outcome{}, outcome{fail: true}, outcome{fail: true}, outcome{fail: true}, outcome{})
	rec := &recorder{}
	m := NewManager(testConfig(), f, rec, nil)

	log := simulate(t, m, f, 1830, func(sec int) {
		if sec > 1 && m.Phase() != PhaseSynced {
			t.Fatalf("Phase() at %ds = %s, want synced", sec, m.Phase())
		}
	})
	want := []int{0, 901, 912, 923, 1824}
	if got := attemptTimes(log); !equalInts(got, want) {
		t.Fatalf("attempts at %v, want %v", got, want)
	}
	for _, s := range rec.got {
		if s == StatusDegraded {
			t.Fatalf("statuses = %v, periodic failures must not degrade", rec.got)
		}
	}
}

func TestInFlightTimeoutCountsAsFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 30 * time.Second
	f := newFake(t0, noon, outcome{}, outcome{pending: true})
	m := NewManager(cfg, f, nil, nil)

	log := simulate(t, m, f, 45, nil)
	want := []int{0, 40}
	if got := attemptTimes(log); !equalInts(got, want) {
		t.Fatalf("attempts at %v, want %v", got, want)
	}
	if s := m.Snapshot(); s.Failed != 1 || s.LastError != "" || s.Syncs != 1 {
		t.Fatalf("Snapshot() = %+v, want one timeout then a sync", s)
	}
}

func TestDriftRecorded(t *testing.T) {
	f := newFake(t0, noon, outcome{}, outcome{}, outcome{skew: 2 * time.Second}, outcome{skew: -500 * time.Millisecond})
	m := NewManager(testConfig(), f, nil, nil)

	simulate(t, m, f, 1803, nil)
	s := m.Snapshot()
	if s.Syncs != 3 {
		t.Fatalf("Syncs = %d, want 3", s.Syncs)
	}
	if s.LastDrift != -2500*time.Millisecond {
		t.Fatalf("LastDrift = %s, want -2.5s", s.LastDrift)
	}
	if s.MaxDrift != 2500*time.Millisecond {
		t.Fatalf("MaxDrift = %s, want 2.5s", s.MaxDrift)
	}
}

func TestDailyReconnectOncePerDay(t *testing.T) {
	cfg := testConfig()
	cfg.Interval = 6 * time.Hour
	net0 := time.Date(2024, 3, 1, 1, 50, 0, 0, time.UTC)
	// The first reconnect steps the clock back five minutes, past 02:01 again.
	f := newFake(t0, net0, outcome{}, outcome{}, outcome{skew: -5 * time.Minute})
	m := NewManager(cfg, f, nil, nil)

	days := map[string]int{}
	log := simulate(t, m, f, 2*86400, nil)
	for _, l := range log {
		if l.action != ActionReconnect {
			continue
		}
		local := net0.Add(time.Duration(l.at) * time.Second)
		days[local.Format("2006-01-02")]++
		if local.Hour() != 2 || local.Minute() < 1 || local.Minute() > 6 {
			t.Fatalf("reconnect at %s, want shortly after 02:01", local)
		}
	}
	if len(days) != 2 || days["2024-03-01"] != 1 || days["2024-03-02"] != 1 {
		t.Fatalf("reconnects per day = %v, want one on each of two days", days)
	}
}

func TestDailyReconnectNotArmedBeforeSync(t *testing.T) {
	cfg := testConfig()
	cfg.Location = time.UTC
	start := time.Date(2024, 3, 1, 1, 59, 0, 0, time.UTC)
	f := newFake(start, start, outcome{fail: true})
	m := NewManager(cfg, f, nil, nil)

	log := simulate(t, m, f, 600, nil)
	for _, l := range log {
		if l.action == ActionReconnect {
			t.Fatalf("reconnect at %ds before any sync", l.at)
		}
	}
	if !m.Snapshot().NextDaily.IsZero() {
		t.Fatal("NextDaily set before first sync")
	}
}

func TestDailyInLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	cfg := testConfig()
	cfg.Location = loc
	cfg.Interval = 6 * time.Hour
	net0 := time.Date(2024, 3, 1, 1, 0, 0, 0, loc)
	f := newFake(t0, net0, outcome{})
	m := NewManager(cfg, f, nil, nil)

	simulate(t, m, f, 2, nil)
	want := time.Date(2024, 3, 1, 2, 1, 0, 0, loc)
	if got := m.Snapshot().NextDaily; !got.Equal(want) {
		t.Fatalf("NextDaily = %s, want %s", got, want)
	}
	if got := m.LocalTime().Location(); got != loc {
		t.Fatalf("LocalTime().Location() = %v, want %v", got, loc)
	}
}

func TestOneActionPerTick(t *testing.T) {
	cfg := testConfig()
	cfg.RetryDelay = time.Nanosecond
	f := newFake(t0, noon, outcome{fail: true})
	m := NewManager(cfg, f, nil, nil)

	// A request finishing on a tick never starts another on the same tick.
	if a := m.Tick(t0); a != ActionSync {
		t.Fatalf("Tick(0) = %s, want sync", a)
	}
	if a := m.Tick(t0.Add(time.Second)); a != ActionNone {
		t.Fatalf("Tick(1s) = %s, want none", a)
	}
	if a := m.Tick(t0.Add(2 * time.Second)); a != ActionSync {
		t.Fatalf("Tick(2s) = %s, want sync", a)
	}
}
