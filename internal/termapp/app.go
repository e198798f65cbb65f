// Package termapp is the terminal Application adapter of spec.md §4.4: it
// composes the lobby machine, a Game once one is dealt, the dialog stack,
// and a terminal.Surface into the full-screen UI an SSH session drives.
package termapp

import (
	"sync"
	"time"

	"github.com/txwerewolves/wwserver/internal/avatar"
	"github.com/txwerewolves/wwserver/internal/dialog"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/lobby"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
	"github.com/txwerewolves/wwserver/internal/terminal"
)

// redrawCoalesceDelay bounds how many full-screen repaints a burst of
// signals produces: every ReceiveSignal / key handled inside one tick
// collapses into a single Render, mirroring the teacher's deferred
// broadcast coalescing (spec.md §5, §9 "one-shot timer fallback").
const redrawCoalesceDelay = 10 * time.Millisecond

// App is the per-user terminal Application. One App instance persists
// across SSH reconnects; only the bound Surface changes. A migration to
// the web transport replaces it with a webapp peer, and migrating back
// builds a new App through NewFromWeb.
type App struct {
	mu sync.Mutex

	userID string
	users  *registry.UserRegistry
	sess   *registry.SessionRegistry
	bus    *signalbus.Bus

	surface terminal.Surface
	lobby   *lobby.Machine
	dialogs dialog.Stack

	sessionID string
	game      *game.Game

	redrawTimer *time.Timer
	connected   bool
}

// New constructs an App for userID, starting its lobby machine at Start
// and immediately firing Initialize (spec.md §4.2: every application
// begins by driving its machine to Unjoined).
func New(userID string, surface terminal.Surface, users *registry.UserRegistry, sess *registry.SessionRegistry, bus *signalbus.Bus) *App {
	a := &App{
		userID:    userID,
		users:     users,
		sess:      sess,
		bus:       bus,
		surface:   surface,
		connected: true,
	}
	a.lobby = lobby.New(func(lobby.State) { a.scheduleRedraw() })
	_ = a.lobby.Fire(lobby.Initialize)
	return a
}

// NewFromWeb builds a terminal peer for a web App during migration,
// carrying over its lobby token and session/game binding (spec.md §4.7).
func NewFromWeb(userID string, surface terminal.Surface, token lobby.Token, sessionID string, g *game.Game, users *registry.UserRegistry, sess *registry.SessionRegistry, bus *signalbus.Bus) *App {
	a := &App{
		userID:    userID,
		users:     users,
		sess:      sess,
		bus:       bus,
		surface:   surface,
		sessionID: sessionID,
		game:      g,
		connected: true,
	}
	a.lobby = lobby.Restore(token, func(lobby.State) { a.scheduleRedraw() })
	return a
}

// UserID implements avatar.Application.
func (a *App) UserID() string { return a.userID }

// Kind implements avatar.Application.
func (a *App) Kind() avatar.Kind { return avatar.TerminalKind }

// Attach rebinds the App to a newly (re)connected surface — used on
// plain reconnect (same transport) and as the final step of a migration
// back to this transport kind.
func (a *App) Attach(surface terminal.Surface) {
	a.mu.Lock()
	a.surface = surface
	a.connected = true
	a.mu.Unlock()
}

// Detach marks the App as having no live connection, without tearing
// down its state — a disconnect, not a logoff.
func (a *App) Detach() {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
}

// ProduceCompatible implements avatar.Application: a terminal App has no
// peer of its own Kind beyond itself; producing a web peer is
// internal/webapp's job, wired in by cmd/werewolves at startup via
// SetPeerFactory.
func (a *App) ProduceCompatible(target avatar.Kind) (avatar.Application, error) {
	if target == avatar.TerminalKind {
		return a, nil
	}
	return peerFactory(a, target)
}

// peerFactory is set by cmd/werewolves wiring to break the import cycle
// between termapp and webapp (both depend on avatar, neither on the
// other) while still letting ProduceCompatible build a real peer.
var peerFactory func(*App, avatar.Kind) (avatar.Application, error)

// SetPeerFactory installs the function used to mint a web peer for a
// terminal App. Called once at process startup.
func SetPeerFactory(f func(*App, avatar.Kind) (avatar.Application, error)) {
	peerFactory = f
}

// historyRecorder is the optional game-history archival hook
// (SPEC_FULL.md §9), invoked with the winning session once its game
// reaches Endgame. Left nil when history archiving is disabled.
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

// RestoreLobby rebuilds the machine from a migrated token.
func (a *App) RestoreLobby(token lobby.Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lobby = lobby.Restore(token, func(lobby.State) { a.scheduleRedraw() })
}

// SessionID returns the joined session id, or "" if unjoined.
func (a *App) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// RefreshUI implements avatar.Application: schedule an immediate repaint,
// used after a reattach or migration so the new UI isn't blank until the
// next signal.
func (a *App) RefreshUI() {
	a.scheduleRedraw()
}

// Shutdown implements avatar.Application: tears down dialogs and clears
// registry bookkeeping. Idempotent.
func (a *App) Shutdown() {
	a.mu.Lock()
	a.dialogs.CloseAll()
	if a.redrawTimer != nil {
		a.redrawTimer.Stop()
	}
	a.mu.Unlock()
	if u := a.users.Get(a.userID); u != nil {
		u.ClearSession()
	}
}

// ReceiveSignal implements signalbus.Receiver. Invitation-specific
// notifications (ReceiveInvitation, InvitationCancelled, GameStarted) are
// delivered as direct method calls by internal/termapp's action methods
// instead, since both sides always have a concrete Go Application value
// at hand; this handler covers the signals genuinely broadcast to a
// whole session via the bus.
func (a *App) ReceiveSignal(signal signalbus.Signal) {
	switch signal.Kind {
	case signalbus.Shutdown:
		a.mu.Lock()
		a.sessionID = ""
		a.game = nil
		a.mu.Unlock()
		a.lobby.ForceUnjoined()
		a.dialogs.Push(dialog.NewSystemMessage("the session owner shut down the session"))
	}
	a.scheduleRedraw()
}

// scheduleRedraw coalesces bursts of state changes into one Render per
// redrawCoalesceDelay window (spec.md §9).
func (a *App) scheduleRedraw() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.redrawTimer != nil {
		return
	}
	a.redrawTimer = time.AfterFunc(redrawCoalesceDelay, func() {
		a.mu.Lock()
		a.redrawTimer = nil
		connected := a.connected
		a.mu.Unlock()
		if connected {
			a.Render()
		}
	})
}
