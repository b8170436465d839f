// Package clocksync keeps the clock's wall time accurate without ever
// blocking the frame loop.
//
// Network work goes through a two-phase Transport: Tick issues a request and
// later ticks poll it. The Manager owns the retry policy for the initial
// sync, the periodic resync, the daily reconnect and the drift statistics.
package clocksync

import (
	"fmt"
	"time"
)

// Kind is the type of network work requested from a Transport.
type Kind uint8

const (
	// KindSync fetches the current time over the existing link.
	KindSync Kind = iota + 1
	// KindReconnect re-establishes the link, then fetches the time.
	KindReconnect
)

func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindReconnect:
		return "reconnect"
	default:
		return "unknown"
	}
}

// Handle identifies an issued request.
type Handle uint32

// State is the progress of an issued request.
type State uint8

const (
	Pending State = iota
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of a request. Time is set on Success, Err on Failure.
type Result struct {
	State State
	Time  time.Time
	Err   error
}

// Transport performs network time requests off the frame loop. Issue must
// return immediately; Poll must never block.
type Transport interface {
	Issue(kind Kind) Handle
	Poll(h Handle) Result
}

// Status is the externally visible sync health.
type Status uint8

const (
	StatusConnecting Status = iota + 1
	StatusSynced
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusSynced:
		return "synced"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// StatusNotifier receives status changes.
type StatusNotifier interface {
	Notify(s Status)
}

// Action is the network work Tick started this frame.
type Action uint8

const (
	ActionNone Action = iota
	ActionSync
	ActionReconnect
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSync:
		return "sync"
	case ActionReconnect:
		return "reconnect"
	default:
		return "unknown"
	}
}

// Phase is the Manager's top-level state.
type Phase uint8

const (
	PhaseInitial Phase = iota
	PhaseSynced
	PhaseDegraded
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseSynced:
		return "synced"
	case PhaseDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// MarshalText lets phases appear by name in JSON status documents.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText parses a phase name written by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	for _, q := range []Phase{PhaseInitial, PhaseSynced, PhaseDegraded} {
		if string(b) == q.String() {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("clocksync: unknown phase %q", b)
}
