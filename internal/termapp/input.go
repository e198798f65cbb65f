package termapp

import (
	"github.com/txwerewolves/wwserver/internal/dialog"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
)

// HandleKey is the single entry point the SSH transport feeds decoded
// keystrokes through: the dialog stack gets first refusal, then the
// fixed command table, then phase-specific gameplay bindings
// (spec.md §4.4).
func (a *App) HandleKey(key rune, mod dialog.KeyMod) {
	if a.dialogs.HandleInput(key, mod) {
		a.scheduleRedraw()
		return
	}
	if a.handleCommandTable(key, mod) {
		a.scheduleRedraw()
		return
	}
	if a.handleGameplayKey(key, mod) {
		a.scheduleRedraw()
	}
}

// handleCommandTable implements the bindings available at any time
// (spec.md §4.4: h, TAB, CTRL-A, CTRL-X, CTRL-D).
func (a *App) handleCommandTable(key rune, mod dialog.KeyMod) bool {
	switch {
	case key == 'h':
		a.dialogs.Push(dialog.NewHelp())
		return true
	case key == '\t':
		a.dialogs.Push(dialog.NewChat(a.chatScrollback, a.sendChat))
		return true
	case key == 'a' && mod&dialog.ModCtrl != 0:
		sid := a.SessionID()
		session := a.sess.Get(sid)
		if session == nil || session.Owner() != a.userID {
			return true
		}
		a.dialogs.Push(dialog.NewSessionAdmin(session.Settings(), a.commitSettings))
		return true
	case key == 'x' && mod&dialog.ModCtrl != 0:
		_ = a.Cancel()
		return true
	case key == 'd' && mod&dialog.ModCtrl != 0:
		a.mu.Lock()
		surface := a.surface
		a.mu.Unlock()
		a.Detach()
		if surface != nil {
			surface.LoseConnection()
		}
		return true
	}
	return false
}

// handleGameplayKey dispatches lobby and in-game actions that are not
// part of the fixed command table.
func (a *App) handleGameplayKey(key rune, mod dialog.KeyMod) bool {
	switch key {
	case 'c':
		return a.CreateSession() == nil
	case 'y':
		return a.Accept() == nil
	case 'n':
		return a.Reject() == nil
	case 's':
		return a.StartSession() == nil
	}

	g := a.currentGame()
	if g == nil {
		return false
	}
	switch g.State() {
	case game.WerewolfPhase, game.MinionPhase, game.InsomniacPhase:
		if key == ' ' {
			return a.SignalAdvance() == nil
		}
	case game.SeerPhase:
		switch key {
		case 'p':
			a.ActivateSeerViewPlayer()
			return true
		case 't':
			return a.ActivateSeerViewTable() == nil
		}
	case game.SeerPowerActivated:
		if key == ' ' {
			return a.SignalAdvance() == nil
		}
	case game.RobberPhase:
		if key == 'p' {
			a.ActivateRobber()
			return true
		}
	case game.RobberPowerActivated:
		if key == ' ' {
			return a.SignalAdvance() == nil
		}
	case game.TroublemakerPhase:
		if key == 'p' {
			a.ActivateTroublemaker()
			return true
		}
	case game.TroublemakerPowerActivated:
		if key == ' ' {
			return a.SignalAdvance() == nil
		}
	case game.Daybreak:
		if key == 'v' {
			a.OpenVoteDialog()
			return true
		}
	}
	return false
}

// chatScrollback adapts the session chat ring for the Chat dialog.
func (a *App) chatScrollback() []registry.ChatLine {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return nil
	}
	return session.Chat().Lines()
}

// sendChat appends a line to the session's chat ring and fans it out.
func (a *App) sendChat(text string) {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return
	}
	session.Chat().Append(a.userID, text)
	a.bus.Send(sid, signalbus.Signal{Kind: signalbus.ChatMessage, Payload: signalbus.ChatPayload{Sender: a.userID}}, signalbus.Options{})
}

// commitSettings applies new pending settings and resets any dealt game.
func (a *App) commitSettings(settings game.Settings) {
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
}
