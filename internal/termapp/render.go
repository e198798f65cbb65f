package termapp

import (
	"fmt"
	"strings"

	"github.com/txwerewolves/wwserver/internal/dialog"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/lobby"
	"github.com/txwerewolves/wwserver/internal/terminal"
)

// Render repaints the full screen: frame, player panel, shared info
// panel, phase panel, the top dialog (if any), then positions the
// cursor (spec.md §4.4 render order).
func (a *App) Render() {
	a.mu.Lock()
	surface := a.surface
	st := a.lobby.State()
	sessionID := a.sessionID
	g := a.game
	a.mu.Unlock()

	if surface == nil {
		return
	}

	surface.Reset()
	a.drawFrame(surface)
	a.drawPlayerPanel(surface, st, sessionID)
	a.drawSharedInfoPanel(surface, sessionID)
	a.drawPhasePanel(surface, g)
	a.dialogs.Draw(surface, dialog.Rect{X: 4, Y: 10, W: 60, H: 12})
	if !a.dialogs.SetCursorPos(surface) {
		surface.Cursor(2, 2)
	}
}

func (a *App) drawFrame(s terminal.Surface) {
	s.Cursor(1, 1)
	s.Write(strings.Repeat(string(terminal.GlyphHorizontal), 78))
}

func (a *App) drawPlayerPanel(s terminal.Surface, st lobby.State, sessionID string) {
	s.Cursor(1, 2)
	s.Write(fmt.Sprintf("user: %s   lobby: %s", a.userID, st))
	if sessionID != "" {
		s.Cursor(1, 3)
		s.Write("session: " + sessionID)
	}
}

func (a *App) drawSharedInfoPanel(s terminal.Surface, sessionID string) {
	if sessionID == "" {
		return
	}
	session := a.sess.Get(sessionID)
	if session == nil {
		return
	}
	s.Cursor(1, 5)
	s.Write("members: " + strings.Join(session.Members(), ", "))
	s.Cursor(1, 6)
	invited := session.InvitedUsers()
	if len(invited) > 0 {
		s.Write("invited: " + strings.Join(invited, ", "))
	}
}

func (a *App) drawPhasePanel(s terminal.Surface, g *game.Game) {
	if g == nil {
		return
	}
	s.Cursor(1, 8)
	s.Write("phase: " + g.State().String())
	s.Cursor(1, 9)
	s.Write(g.State().Description())
	waiting := g.WaitingFor()
	if len(waiting) > 0 {
		s.Cursor(1, 10)
		s.Write("waiting on: " + strings.Join(waiting, ", "))
	}
	if g.State() == game.Endgame {
		if results, err := g.PostGameResults(); err == nil {
			s.Cursor(1, 11)
			s.Write("winner: " + results.Winner.String())
		}
	}
}
