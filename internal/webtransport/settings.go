package webtransport

import (
	"github.com/txwerewolves/wwserver/internal/card"
	"github.com/txwerewolves/wwserver/internal/game"
)

// settingsRequest is the POST /settings JSON body (spec.md §6).
type settingsRequest struct {
	WerewolfCount int      `json:"werewolf_count"`
	OptionalRoles []string `json:"optional_roles"`
}

var cardsByName = func() map[string]card.Card {
	m := make(map[string]card.Card, len(card.AllOptionalRoles))
	for _, c := range card.AllOptionalRoles {
		m[c.String()] = c
	}
	return m
}()

// toGameSettings converts the wire request to game.Settings, clamping via
// Validate; unrecognized role names are dropped rather than rejected
// (spec.md §7: client protocol misuse is silently ignored).
func (r settingsRequest) toGameSettings() game.Settings {
	settings := game.Settings{WerewolfCount: r.WerewolfCount}
	for _, name := range r.OptionalRoles {
		if c, ok := cardsByName[name]; ok {
			settings.OptionalRoles = append(settings.OptionalRoles, c)
		}
	}
	settings.Validate()
	return settings
}
