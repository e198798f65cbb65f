package termapp

import (
	"github.com/txwerewolves/wwserver/internal/dialog"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/lobby"
	"github.com/txwerewolves/wwserver/internal/signalbus"
)

// invitee is the structural interface an App on the receiving end of an
// invitation satisfies. Using a narrow ad-hoc interface instead of a
// shared type keeps termapp and webapp free of a mutual import (both
// only need to depend on avatar and registry).
type invitee interface {
	ReceiveInvitation(sessionID, from string)
}

type inviteCancelRecipient interface {
	InvitationCancelled()
}

type sessionStarter interface {
	GameStarted(sessionID string, g *game.Game)
}

// ReceiveInvitation is called (via the invitee interface) on the invited
// user's App when the session owner invites them.
func (a *App) ReceiveInvitation(sessionID, from string) {
	a.mu.Lock()
	a.sessionID = sessionID
	a.mu.Unlock()
	_ = a.lobby.Fire(lobby.ReceiveInvitation)
}

// InvitationCancelled is called when a pending invitation to this user is
// revoked by the session owner.
func (a *App) InvitationCancelled() {
	a.mu.Lock()
	a.sessionID = ""
	a.mu.Unlock()
	_ = a.lobby.Fire(lobby.RevokeInvitation)
}

// GameStarted binds g to this App once the owner starts the session —
// called on every accepted member, including the owner itself.
func (a *App) GameStarted(sessionID string, g *game.Game) {
	a.mu.Lock()
	a.sessionID = sessionID
	a.game = g
	a.mu.Unlock()
	_ = a.lobby.Fire(lobby.StartSession)
}

// CreateSession drives Unjoined -> WaitingForAccepts, allocating a fresh
// session owned by this user.
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
	return nil
}

// Invite sends an invitation to targetID, reaching their App directly if
// one is bound (spec.md §4.2 SendInvitation).
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
	return nil
}

// RevokeInvite cancels a pending invitation, notifying the invitee.
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

// Accept joins the session this user was invited to.
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

// Cancel leaves the current session (owner: tears it down for everyone;
// accepted member: just leaves). This is CTRL-X's shutdown path, so it
// must work from SessionStarted too, which the lobby FSM has no Cancel
// transition for — it resets the machine directly instead of going
// through Fire, the same way the original ends a session straight from
// the joined session rather than through its state machine.
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

// StartSession deals the game and transitions every current member's
// machine into SessionStarted.
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
	return nil
}

// Game returns the bound Game, or nil before one is dealt — exported for
// cmd/werewolves' peer-factory wiring.
func (a *App) Game() *game.Game {
	return a.currentGame()
}

// currentGame returns the bound Game, or nil before one is dealt.
func (a *App) currentGame() *game.Game {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game
}

// SignalAdvance forwards a "done with this phase" signal to the Game.
func (a *App) SignalAdvance() error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	return g.SignalAdvance(a.userID)
}

// Vote records this user's Daybreak vote for target.
func (a *App) Vote(target string) error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	return g.Vote(a.userID, target)
}

// openChoosePlayer pushes a ChoosePlayer dialog over the game's other
// players, excluding this user.
func (a *App) openChoosePlayer(prompt string, onChoose func(string)) {
	g := a.currentGame()
	if g == nil {
		return
	}
	var options []string
	for _, p := range g.Players() {
		if p != a.userID {
			options = append(options, p)
		}
	}
	a.dialogs.Push(dialog.NewChoosePlayer(prompt, options, onChoose, nil))
	a.scheduleRedraw()
}

// ActivateSeerViewPlayer opens the target picker for the Seer's
// player-viewing power.
func (a *App) ActivateSeerViewPlayer() {
	a.openChoosePlayer("Seer: view a player's card", func(target string) {
		_, _ = a.currentGame().SeerViewPlayer(a.userID, target)
		a.scheduleRedraw()
	})
}

// ActivateSeerViewTable views two of the three table cards directly
// (no target picker needed beyond fixed positions 0 and 1).
func (a *App) ActivateSeerViewTable() error {
	g := a.currentGame()
	if g == nil {
		return game.ErrInvalidTransition
	}
	_, err := g.SeerViewTable(a.userID, 0, 1)
	return err
}

// ActivateRobber opens the target picker for the Robber's swap power.
func (a *App) ActivateRobber() {
	a.openChoosePlayer("Robber: swap with a player", func(target string) {
		_, _ = a.currentGame().RobberSwap(a.userID, target)
		a.scheduleRedraw()
	})
}

// ActivateTroublemaker opens two sequential pickers for the
// Troublemaker's swap power.
func (a *App) ActivateTroublemaker() {
	a.openChoosePlayer("Troublemaker: pick the first player", func(first string) {
		g := a.currentGame()
		if g == nil {
			return
		}
		if err := g.TroublemakerPickFirst(a.userID, first); err != nil {
			return
		}
		a.openChoosePlayer("Troublemaker: pick the second player", func(second string) {
			_ = a.currentGame().TroublemakerPickSecond(a.userID, second)
			a.scheduleRedraw()
		})
	})
}

// OpenVoteDialog opens the Daybreak voting picker.
func (a *App) OpenVoteDialog() {
	a.openChoosePlayer("Vote to eliminate", func(target string) {
		_ = a.Vote(target)
		a.scheduleRedraw()
	})
}
