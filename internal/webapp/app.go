// Package webapp is the browser/SSE Application adapter of spec.md
// §4.5: the same lobby/game semantics as internal/termapp, rendered as a
// stream of JSON server-sent events instead of an ANSI frame.
package webapp

import (
	"sync"
	"time"

	"github.com/txwerewolves/wwserver/internal/avatar"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/lobby"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
)

const snapshotCoalesceDelay = 10 * time.Millisecond

// App is the per-user web Application. internal/webtransport subscribes
// one or more SSE connections to it (normally one, but a detached tab
// reconnecting briefly overlaps with the old one).
type App struct {
	mu sync.Mutex

	userID string
	users  *registry.UserRegistry
	sess   *registry.SessionRegistry
	bus    *signalbus.Bus

	lobby *lobby.Machine

	sessionID string
	game      *game.Game

	buffer      []Event
	subscribers map[int]chan Event
	nextSub     int

	snapshotTimer *time.Timer
}

// New constructs a web App for userID.
func New(userID string, users *registry.UserRegistry, sess *registry.SessionRegistry, bus *signalbus.Bus) *App {
	a := &App{
		userID:      userID,
		users:       users,
		sess:        sess,
		bus:         bus,
		subscribers: make(map[int]chan Event),
	}
	a.lobby = lobby.New(func(lobby.State) { a.scheduleSnapshot() })
	_ = a.lobby.Fire(lobby.Initialize)
	return a
}

// NewFromTerminal builds a web peer for a terminal App during migration,
// carrying over its lobby token and session/game binding (spec.md §4.7).
// Declared here (rather than a free function wired via SetPeerFactory)
// so internal/termapp never has to import internal/webapp.
func NewFromTerminal(userID string, token lobby.Token, sessionID string, g *game.Game, users *registry.UserRegistry, sess *registry.SessionRegistry, bus *signalbus.Bus) *App {
	a := &App{
		userID:      userID,
		users:       users,
		sess:        sess,
		bus:         bus,
		sessionID:   sessionID,
		game:        g,
		subscribers: make(map[int]chan Event),
	}
	a.lobby = lobby.Restore(token, func(lobby.State) { a.scheduleSnapshot() })
	return a
}

// UserID implements avatar.Application.
func (a *App) UserID() string { return a.userID }

// Kind implements avatar.Application.
func (a *App) Kind() avatar.Kind { return avatar.WebKind }

// ProduceCompatible implements avatar.Application. A terminal peer is
// produced by internal/termapp's peer factory, wired at startup.
func (a *App) ProduceCompatible(target avatar.Kind) (avatar.Application, error) {
	if target == avatar.WebKind {
		return a, nil
	}
	return webPeerFactory(a, target)
}

var webPeerFactory func(*App, avatar.Kind) (avatar.Application, error)

// SetPeerFactory installs the function used to mint a terminal peer for a
// web App. Called once at process startup.
func SetPeerFactory(f func(*App, avatar.Kind) (avatar.Application, error)) {
	webPeerFactory = f
}

// historyRecorder mirrors internal/termapp's archival hook (SPEC_FULL.md
// §9); only one of the two packages' StartSession calls will ever be the
// one that deals a given game, but both wire the same hook so it fires
// regardless of which transport the session owner is on.
var historyRecorder func(sessionID string, g *game.Game)

// SetHistoryRecorder installs the archival hook. Called once at process
// startup when config.History.DSN is non-empty.
func SetHistoryRecorder(f func(sessionID string, g *game.Game)) {
	historyRecorder = f
}

// LobbyToken exposes the machine's serialized state for migration.
func (a *App) LobbyToken() lobby.Token {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lobby.Serialize()
}

// SessionID returns the joined session id, or "" if unjoined.
func (a *App) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// RefreshUI implements avatar.Application.
func (a *App) RefreshUI() {
	a.scheduleSnapshot()
}

// Shutdown implements avatar.Application.
func (a *App) Shutdown() {
	a.mu.Lock()
	if a.snapshotTimer != nil {
		a.snapshotTimer.Stop()
	}
	for _, ch := range a.subscribers {
		close(ch)
	}
	a.subscribers = make(map[int]chan Event)
	a.mu.Unlock()
	if u := a.users.Get(a.userID); u != nil {
		u.ClearSession()
	}
}

// ReceiveSignal implements signalbus.Receiver.
func (a *App) ReceiveSignal(signal signalbus.Signal) {
	switch signal.Kind {
	case signalbus.Shutdown:
		a.mu.Lock()
		a.sessionID = ""
		a.game = nil
		a.mu.Unlock()
		a.lobby.ForceUnjoined()
		a.emit(EventShutDown, nil)
	case signalbus.ChatMessage:
		a.emitChatSnapshot()
	}
	a.scheduleSnapshot()
}

// Subscribe registers a new SSE connection, returning a channel of
// events starting from the buffered replay (spec.md §4.5, §6) and an
// unsubscribe function the transport must call on disconnect.
func (a *App) Subscribe() (<-chan Event, func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	ch := make(chan Event, eventBufferSize)
	for _, e := range a.buffer {
		ch <- e
	}
	a.subscribers[id] = ch
	a.mu.Unlock()

	return ch, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if c, ok := a.subscribers[id]; ok {
			delete(a.subscribers, id)
			close(c)
		}
	}
}

// emit records e in the replay buffer and fans it out to every live
// subscriber, dropping the oldest buffered event past eventBufferSize.
func (a *App) emit(kind EventKind, data any) {
	e := Event{Kind: kind, Data: data}
	a.mu.Lock()
	if len(a.buffer) >= eventBufferSize {
		a.buffer = a.buffer[1:]
	}
	a.buffer = append(a.buffer, e)
	subs := make([]chan Event, 0, len(a.subscribers))
	for _, ch := range a.subscribers {
		subs = append(subs, ch)
	}
	a.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (a *App) scheduleSnapshot() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapshotTimer != nil {
		return
	}
	a.snapshotTimer = time.AfterFunc(snapshotCoalesceDelay, func() {
		a.mu.Lock()
		a.snapshotTimer = nil
		a.mu.Unlock()
		a.emitSnapshot()
	})
}
