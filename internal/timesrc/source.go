package timesrc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/clocksync"
)

// maxInFlight bounds the result table. The manager keeps one request in
// flight, plus any it abandoned on timeout.
const maxInFlight = 8

var errEvicted = errors.New("request evicted")

type slot struct {
	handle clocksync.Handle
	res    clocksync.Result
}

// Source runs fetches off the frame loop and implements clocksync.Transport.
type Source struct {
	fetch   Fetcher
	net     hal.Network
	timeout time.Duration
	log     hal.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	next  clocksync.Handle
	slots [maxInFlight]slot
}

var _ clocksync.Transport = (*Source)(nil)

// NewSource returns a Source using fetch. net may be nil when the link needs
// no management; timeout bounds each request, zero meaning none.
func NewSource(fetch Fetcher, net hal.Network, timeout time.Duration, log hal.Logger) *Source {
	ctx, cancel := context.WithCancel(context.Background())
	return &Source{
		fetch:   fetch,
		net:     net,
		timeout: timeout,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Issue starts a request and returns immediately.
func (s *Source) Issue(kind clocksync.Kind) clocksync.Handle {
	s.mu.Lock()
	s.next++
	if s.next == 0 {
		s.next++
	}
	h := s.next
	s.slots[int(h)%maxInFlight] = slot{handle: h, res: clocksync.Result{State: clocksync.Pending}}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res := s.run(kind)
		s.mu.Lock()
		defer s.mu.Unlock()
		if sl := &s.slots[int(h)%maxInFlight]; sl.handle == h {
			sl.res = res
		}
	}()
	return h
}

// Poll returns the state of h. A finished result is handed out once.
func (s *Source) Poll(h clocksync.Handle) clocksync.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := &s.slots[int(h)%maxInFlight]
	if sl.handle != h {
		return clocksync.Result{State: clocksync.Failure, Err: errEvicted}
	}
	res := sl.res
	if res.State != clocksync.Pending {
		*sl = slot{}
	}
	return res
}

// Close cancels outstanding requests and waits for their goroutines.
func (s *Source) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

func (s *Source) run(kind clocksync.Kind) clocksync.Result {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.net != nil && (kind == clocksync.KindReconnect || !s.net.Connected()) {
		if err := s.net.Reconnect(ctx); err != nil {
			return s.failed(kind, fmt.Errorf("%w: reconnect: %v", ErrUnavailable, err))
		}
	}

	t, err := s.fetch.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return s.failed(kind, err)
	}
	return clocksync.Result{State: clocksync.Success, Time: t}
}

func (s *Source) failed(kind clocksync.Kind, err error) clocksync.Result {
	if s.log != nil {
		s.log.WriteLineString("timesrc: " + kind.String() + ": " + err.Error())
	}
	return clocksync.Result{State: clocksync.Failure, Err: err}
}
