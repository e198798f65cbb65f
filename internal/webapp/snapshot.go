package webapp

import (
	"github.com/txwerewolves/wwserver/internal/card"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/lobby"
)

// emitSnapshot pushes the full set of events describing current state,
// replacing internal/termapp's single Render call: one status, one
// actions list, and whichever of phase-info/player-info/game-info/
// settings-info/post-game-results currently apply (spec.md §4.5).
func (a *App) emitSnapshot() {
	a.mu.Lock()
	st := a.lobby.State()
	sid := a.sessionID
	g := a.game
	a.mu.Unlock()

	a.emit(EventStatus, StatusView{LobbyState: st.String(), SessionID: sid})

	if sid != "" {
		if session := a.sess.Get(sid); session != nil {
			a.emit(EventGameInfo, GameInfoView{
				SessionID: sid,
				Members:   session.Members(),
				Invited:   session.InvitedUsers(),
			})
			settings := session.Settings()
			a.emit(EventSettingsInfo, SettingsInfoView{
				WerewolfCount: settings.WerewolfCount,
				OptionalRoles: cardNames(settings.OptionalRoles),
			})
		}
	}

	if g != nil {
		a.emitPlayerInfo(g)
		a.emitPhaseInfo(g)
	}

	a.emit(EventActions, availableActions(st, g))
}

// emitPlayerInfo shows the caller their own dealt card (spec.md §4.5
// player-info), distinct from post-game-results which reveals everyone's.
func (a *App) emitPlayerInfo(g *game.Game) {
	original, _, err := g.QueryPlayerCards()
	if err != nil {
		return
	}
	c, ok := original[a.userID]
	if !ok {
		return
	}
	a.emit(EventPlayerInfo, PlayerInfoView{UserID: a.userID, Card: c.String()})
}

// availableActions lists the actions valid to fire given the lobby state
// and, once dealt, the game phase — rebuilt on every snapshot so a
// client can never hold an action id that no longer applies.
func availableActions(st lobby.State, g *game.Game) []Action {
	var actions []Action
	switch st {
	case lobby.Unjoined:
		actions = append(actions, Action{ID: "create-session", Label: "Create session"})
	case lobby.Invited:
		actions = append(actions,
			Action{ID: "accept", Label: "Accept invitation"},
			Action{ID: "reject", Label: "Reject invitation"})
	case lobby.WaitingForAccepts, lobby.Accepted:
		actions = append(actions, Action{ID: "start-session", Label: "Start game"})
	}
	// Shutdown (spec.md §4.4 CTRL-X) is available for the whole lifetime
	// of a joined session, including once the game is underway — unlike
	// the other lobby actions above, it is not gated by lobby state.
	if st == lobby.WaitingForAccepts || st == lobby.Accepted || st == lobby.SessionStarted {
		actions = append(actions, Action{ID: "cancel", Label: "Cancel"})
	}
	if g == nil {
		return actions
	}
	switch g.State() {
	case game.WerewolfPhase, game.MinionPhase, game.InsomniacPhase,
		game.SeerPowerActivated, game.RobberPowerActivated, game.TroublemakerPowerActivated:
		actions = append(actions, Action{ID: "signal-advance", Label: "Done"})
	case game.SeerPhase:
		actions = append(actions,
			Action{ID: "seer-view-player", Label: "View a player's card"},
			Action{ID: "seer-view-table", Label: "View two table cards"})
	case game.RobberPhase:
		actions = append(actions, Action{ID: "robber-swap", Label: "Swap with a player"})
	case game.TroublemakerPhase:
		actions = append(actions, Action{ID: "troublemaker-pick", Label: "Pick two players to swap"})
	case game.Daybreak:
		actions = append(actions, Action{ID: "vote", Label: "Vote to eliminate"})
	}
	return actions
}

func (a *App) emitPhaseInfo(g *game.Game) {
	a.emit(EventPhaseInfo, PhaseInfoView{
		Phase:       g.State().String(),
		Description: g.State().Description(),
		WaitingFor:  g.WaitingFor(),
	})
	if g.State() == game.Endgame {
		if results, err := g.PostGameResults(); err == nil {
			a.emit(EventPostGameResults, PostGameResultsView{
				Winner:     results.Winner.String(),
				Eliminated: results.Eliminated,
				Original:   cardMapNames(results.PlayerCardsOriginal),
				Current:    cardMapNames(results.PlayerCardsCurrent),
			})
		}
	}
}

func (a *App) emitChatSnapshot() {
	sid := a.SessionID()
	session := a.sess.Get(sid)
	if session == nil {
		return
	}
	lines := session.Chat().Lines()
	views := make([]ChatLineView, len(lines))
	for i, l := range lines {
		views[i] = ChatLineView{Sender: l.Sender, Text: l.Text}
	}
	a.emit(EventChat, views)
}

func cardNames(cards []card.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func cardMapNames(m map[string]card.Card) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}
