// Package signalbus implements the per-session fan-out described in
// spec.md §4.6: one player's action reaches every sibling member's
// bound application as a typed Signal.
//
// Delivery happens synchronously on the caller's goroutine, one recipient
// after another, so two signals emitted by the same caller are observed by
// a recipient in the order they were sent — spec.md §5's ordering
// guarantee — without needing a dedicated scheduler abstraction. The
// session's own mutex (internal/registry.SessionEntry) is held only while
// the member list is read, not during delivery.
package signalbus

import "github.com/txwerewolves/wwserver/internal/registry"

// Kind identifies one of the signal kinds defined in spec.md §4.6.
type Kind string

const (
	NextPhase       Kind = "next-phase"
	ChatMessage     Kind = "chat-message"
	Shutdown        Kind = "shutdown"
	Reset           Kind = "reset"
	InviteCancelled Kind = "invite-cancelled"
	NewSettings     Kind = "new-settings"
)

// Signal is a typed event delivered to sibling applications in a session.
type Signal struct {
	Kind    Kind
	Payload any
}

// ChatPayload accompanies a ChatMessage signal.
type ChatPayload struct {
	Sender string
}

// ShutdownPayload accompanies a Shutdown signal.
type ShutdownPayload struct {
	Initiator string
}

// InviteCancelledPayload accompanies an InviteCancelled signal.
type InviteCancelledPayload struct {
	User string
}

// Receiver is implemented by application adapters (internal/lobby-driven
// terminal/web apps) that can accept a fanned-out signal.
type Receiver interface {
	ReceiveSignal(Signal)
}

// Options narrows or widens the recipient set of a Send.
type Options struct {
	IncludeInvited bool
	Exclude        map[string]bool
}

// Bus fans out signals to the members (and optionally invitees) of one
// session at a time, resolving user id -> bound Application via the
// registries.
type Bus struct {
	sessions *registry.SessionRegistry
	users    *registry.UserRegistry
}

// New constructs a Bus over the given registries.
func New(sessions *registry.SessionRegistry, users *registry.UserRegistry) *Bus {
	return &Bus{sessions: sessions, users: users}
}

// recipients returns the set of user ids a signal for sessionID should
// reach under opts.
func (b *Bus) recipients(s *registry.SessionEntry, opts Options) []string {
	ids := s.Members()
	if opts.IncludeInvited {
		ids = append(ids, s.InvitedUsers()...)
	}
	if opts.Exclude == nil {
		return ids
	}
	out := ids[:0:0]
	for _, id := range ids {
		if !opts.Exclude[id] {
			out = append(out, id)
		}
	}
	return out
}

func (b *Bus) deliver(id string, signal Signal) {
	u := b.users.Get(id)
	if u == nil {
		return
	}
	app := u.App()
	if app == nil {
		return
	}
	if r, ok := app.(Receiver); ok {
		r.ReceiveSignal(signal)
	}
}

// Send delivers signal to every recipient of sessionID selected by opts.
// Unknown sessions are silently ignored (spec.md §7: client protocol
// mis-use is swallowed, not surfaced).
func (b *Bus) Send(sessionID string, signal Signal, opts Options) {
	s := b.sessions.Get(sessionID)
	if s == nil {
		return
	}
	for _, id := range b.recipients(s, opts) {
		b.deliver(id, signal)
	}
}

// Shutdown delivers a Shutdown signal to every member other than
// initiator, then removes every notified member from the session
// (including initiator), destroying the session if it ends up empty —
// the full effect spec.md §4.6 describes for the shutdown signal.
func (b *Bus) Shutdown(sessionID, initiator string) {
	s := b.sessions.Get(sessionID)
	if s == nil {
		return
	}
	for _, id := range s.Members() {
		if id != initiator {
			b.deliver(id, Signal{Kind: Shutdown, Payload: ShutdownPayload{Initiator: initiator}})
		}
	}
	for _, id := range s.Members() {
		s.RemoveMember(id)
		if u := b.users.Get(id); u != nil {
			u.ClearSession()
		}
	}
	if s.MemberCount() == 0 {
		b.sessions.Destroy(sessionID)
	}
}
