package webapp

import (
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/lobby"
	"github.com/txwerewolves/wwserver/internal/signalbus"
)

type invitee interface {
	ReceiveInvitation(sessionID, from string)
}

type inviteCancelRecipient interface {
	InvitationCancelled()
}

type sessionStarter interface {
	GameStarted(sessionID string, g *game.Game)
}

// ReceiveInvitation mirrors internal/termapp.App.ReceiveInvitation; both
// sides of an invitation call each other through this structural
// interface regardless of which transport either is on.
func (a *App) ReceiveInvitation(sessionID, from string) {
	a.mu.Lock()
	a.sessionID = sessionID
	a.mu.Unlock()
	_ = a.lobby.Fire(lobby.ReceiveInvitation)
}

func (a *App) InvitationCancelled() {
	a.mu.Lock()
	a.sessionID = ""
	a.mu.Unlock()
	_ = a.lobby.Fire(lobby.RevokeInvitation)
}

func (a *App) GameStarted(sessionID string, g *game.Game) {
	a.mu.Lock()
	a.sessionID = sessionID
	a.game = g
	a.mu.Unlock()
	_ = a.lobby.Fire(lobby.StartSession)
}

// CreateSession drives Unjoined -> WaitingForAccepts.
func (a *App) CreateSession() error {
	entry, err := a.sess.Create(a.userID)
	if err != nil {
		return err
	}
	if err := a.lobby.Fire(lobby.CreateSession); err != nil {
		a.sess.Destroy(entry.ID())
		return err
	}
	a.mu.Lock()
	a.sessionID = entry.ID()
	a.mu.Unlock()
	if u := a.users.Get(a.userID); u != nil {
		u.SetJoined(entry.ID())
	}
	a.emit(EventOutput, "session created: "+entry.ID())
	return nil
}

// Invite sends an invitation to targetID.
func (a *App) Invite(targetID string) error {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return lobby.ErrInvalidTransition
	}
	if err := a.lobby.Fire(lobby.SendInvitation); err != nil {
		return err
	}
	session.Invite(targetID)
	target := a.users.Register(targetID)
	target.SetInvited(sid)
	if app := target.App(); app != nil {
		if inv, ok := app.(invitee); ok {
			inv.ReceiveInvitation(sid, a.userID)
		}
	}
	a.emit(EventOutput, "invited "+targetID)
	return nil
}

// RevokeInvite cancels a pending invitation.
func (a *App) RevokeInvite(targetID string) {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return
	}
	session.RevokeInvite(targetID)
	if target := a.users.Get(targetID); target != nil {
		target.ClearSession()
		if app := target.App(); app != nil {
			if rec, ok := app.(inviteCancelRecipient); ok {
				rec.InvitationCancelled()
			}
		}
	}
}

// Accept joins the invited session.
func (a *App) Accept() error {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return lobby.ErrInvalidTransition
	}
	if err := a.lobby.Fire(lobby.Accept); err != nil {
		return err
	}
	session.AddMember(a.userID)
	if u := a.users.Get(a.userID); u != nil {
		u.SetJoined(sid)
	}
	a.emit(EventOutput, "joined session "+sid)
	return nil
}

// Reject declines a pending invitation.
func (a *App) Reject() error {
	sid := a.SessionID()
	if err := a.lobby.Fire(lobby.Reject); err != nil {
		return err
	}
	if session := a.sess.Get(sid); session != nil {
		session.RevokeInvite(a.userID)
	}
	if u := a.users.Get(a.userID); u != nil {
		u.ClearSession()
	}
	a.mu.Lock()
	a.sessionID = ""
	a.mu.Unlock()
	return nil
}

// Cancel leaves or tears down the current session. Must work from
// SessionStarted too, which the lobby FSM has no Cancel transition for,
// so it resets the machine directly instead of going through Fire.
func (a *App) Cancel() error {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return lobby.ErrInvalidTransition
	}
	if session.Owner() == a.userID {
		a.bus.Shutdown(sid, a.userID)
	} else {
		session.RemoveMember(a.userID)
	}
	a.lobby.ForceUnjoined()
	if u := a.users.Get(a.userID); u != nil {
		u.ClearSession()
	}
	a.mu.Lock()
	a.sessionID = ""
	a.game = nil
	a.mu.Unlock()
	return nil
}

// StartSession deals the game and transitions every member's machine.
func (a *App) StartSession() error {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil || session.Owner() != a.userID {
		return lobby.ErrInvalidTransition
	}
	if err := a.lobby.Fire(lobby.StartSession); err != nil {
		return err
	}
	g := session.StartGame()
	bus := a.bus
	g.OnPhaseChange = func(p game.Phase) {
		bus.Send(sid, signalbus.Signal{Kind: signalbus.NextPhase}, signalbus.Options{})
		if p == game.Endgame && historyRecorder != nil {
			historyRecorder(sid, g)
		}
	}
	a.mu.Lock()
	a.game = g
	a.mu.Unlock()
	for _, id := range session.Members() {
		if id == a.userID {
			continue
		}
		if u := a.users.Get(id); u != nil {
			if app := u.App(); app != nil {
				if s, ok := app.(sessionStarter); ok {
					s.GameStarted(sid, g)
				}
			}
		}
	}
	a.emit(EventOutput, "game started")
	return nil
}

func (a *App) currentGame() *game.Game {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game
}

// Game returns the bound Game, or nil before one is dealt — exported for
// cmd/werewolves' peer-factory wiring.
func (a *App) Game() *game.Game {
	return a.currentGame()
}

func (a *App) SignalAdvance() error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	return g.SignalAdvance(a.userID)
}

func (a *App) Vote(target string) error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	return g.Vote(a.userID, target)
}

func (a *App) SeerViewPlayer(target string) error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	_, err := g.SeerViewPlayer(a.userID, target)
	return err
}

func (a *App) SeerViewTable(pos1, pos2 int) error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	_, err := g.SeerViewTable(a.userID, pos1, pos2)
	return err
}

func (a *App) RobberSwap(target string) error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	_, err := g.RobberSwap(a.userID, target)
	return err
}

func (a *App) TroublemakerPickFirst(first string) error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	return g.TroublemakerPickFirst(a.userID, first)
}

func (a *App) TroublemakerPickSecond(second string) error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	return g.TroublemakerPickSecond(a.userID, second)
}

// SendChat appends a line to the session chat ring and fans out a
// ChatMessage signal so every member's snapshot refreshes.
func (a *App) SendChat(text string) {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return
	}
	session.Chat().Append(a.userID, text)
	a.bus.Send(sid, signalbus.Signal{Kind: signalbus.ChatMessage, Payload: signalbus.ChatPayload{Sender: a.userID}}, signalbus.Options{})
	a.emitChatSnapshot()
}

// CommitSettings applies new pending settings and resets any dealt game.
func (a *App) CommitSettings(settings game.Settings) {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return
	}
	session.SetSettings(settings)
	session.ResetGame()
	a.mu.Lock()
	a.game = nil
	a.mu.Unlock()
	a.bus.Send(sid, signalbus.Signal{Kind: signalbus.NewSettings}, signalbus.Options{})
	a.emit(EventOutput, "settings updated, game reset")
}
