// Package lobby implements the per-user lobby state machine of spec.md
// §4.2: a hand-written switch over a transition table, in place of the
// teacher's decorator-driven state machine library (spec.md §9 design
// note) — closest in spirit to the teacher's own ConnectionState
// (internal/login/state.go in the teacher repo).
package lobby

import "errors"

// ErrInvalidTransition is returned when Fire is called with an input the
// current state does not define. spec.md §4.2 calls this "a fatal
// programming error"; callers receive it as an error value, nothing panics
// on it, and config.StrictMode is not consulted.
var ErrInvalidTransition = errors.New("invalid lobby transition")

// State is one state of the lobby machine.
type State int

const (
	Start State = iota
	Unjoined
	WaitingForAccepts
	Invited
	Accepted
	SessionStarted
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Unjoined:
		return "unjoined"
	case WaitingForAccepts:
		return "waiting_for_accepts"
	case Invited:
		return "invited"
	case Accepted:
		return "accepted"
	case SessionStarted:
		return "session_started"
	default:
		return "unknown"
	}
}

// Input is an event fired at the machine.
type Input int

const (
	Initialize Input = iota
	CreateSession
	ReceiveInvitation
	SendInvitation
	StartSession
	Cancel
	Accept
	Reject
	RevokeInvitation
)

// transitions is the table from spec.md §4.2.
var transitions = map[State]map[Input]State{
	Start: {
		Initialize: Unjoined,
	},
	Unjoined: {
		CreateSession:     WaitingForAccepts,
		ReceiveInvitation: Invited,
	},
	WaitingForAccepts: {
		SendInvitation: WaitingForAccepts,
		StartSession:   SessionStarted,
		Cancel:         Unjoined,
	},
	Invited: {
		Accept:           Accepted,
		Reject:           Unjoined,
		RevokeInvitation: Unjoined,
	},
	Accepted: {
		StartSession: SessionStarted,
		Cancel:       Unjoined,
	},
}

// Token is the serialized form of a Machine's state, used by transport
// migration (spec.md §4.7) to move a user's lobby progress from one
// application instance to another.
type Token State

// Machine is a per-user lobby state machine. Side effects on the session
// registry (creating, joining, leaving, destroying a session) belong to
// the surrounding application adapter, invoked around Fire calls — never
// inside the machine itself (spec.md §4.2).
type Machine struct {
	state   State
	onEnter func(State)
}

// New constructs a machine in the Start state. onEnter is invoked after
// every successful transition, including the replay performed by
// Restore.
func New(onEnter func(State)) *Machine {
	return &Machine{state: Start, onEnter: onEnter}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Fire applies input to the machine, returning ErrInvalidTransition if
// input is not defined for the current state.
func (m *Machine) Fire(input Input) error {
	next, ok := transitions[m.state][input]
	if !ok {
		return ErrInvalidTransition
	}
	m.state = next
	if m.onEnter != nil {
		m.onEnter(m.state)
	}
	return nil
}

// ForceUnjoined drives the machine straight to Unjoined regardless of
// the current state, bypassing the transition table. Session shutdown
// (spec.md §4.4 CTRL-X, §4.6 the Shutdown signal) ends a session from
// any state including SessionStarted, which the table has no Cancel
// entry for — shutdown is a side effect the session registry drives,
// not a lobby transition, so it resets the machine directly instead of
// going through Fire.
func (m *Machine) ForceUnjoined() {
	m.state = Unjoined
	if m.onEnter != nil {
		m.onEnter(m.state)
	}
}

// Serialize captures the machine's state as an opaque token.
func (m *Machine) Serialize() Token {
	return Token(m.state)
}

// Restore rebuilds a machine from a token, replaying the entry handler
// for the restored state (spec.md §4.2, used by transport migration).
func Restore(token Token, onEnter func(State)) *Machine {
	m := &Machine{state: State(token), onEnter: onEnter}
	if onEnter != nil {
		onEnter(m.state)
	}
	return m
}
