package game

import "github.com/txwerewolves/wwserver/internal/card"

// Settings holds the pending game configuration a session owner edits via
// the SessionAdmin dialog before starting or resetting a game.
type Settings struct {
	WerewolfCount int
	OptionalRoles []card.Card
}

// DefaultSettings returns the settings a freshly created session starts
// with: two werewolves, no optional roles.
func DefaultSettings() Settings {
	return Settings{WerewolfCount: 2}
}

// Validate clamps WerewolfCount into [1,9] and deduplicates OptionalRoles.
// This is a supplemented behavior (SPEC_FULL.md §9): raw keystroke state
// from the SessionAdmin dialog is never trusted as-is.
func (s *Settings) Validate() {
	if s.WerewolfCount < 1 {
		s.WerewolfCount = 1
	}
	if s.WerewolfCount > 9 {
		s.WerewolfCount = 9
	}
	seen := make(map[card.Card]bool, len(s.OptionalRoles))
	deduped := s.OptionalRoles[:0:0]
	for _, c := range s.OptionalRoles {
		if seen[c] {
			continue
		}
		seen[c] = true
		deduped = append(deduped, c)
	}
	s.OptionalRoles = deduped
}

// ToggleRole flips inclusion of c in OptionalRoles.
func (s *Settings) ToggleRole(c card.Card) {
	for i, x := range s.OptionalRoles {
		if x == c {
			s.OptionalRoles = append(s.OptionalRoles[:i], s.OptionalRoles[i+1:]...)
			return
		}
	}
	s.OptionalRoles = append(s.OptionalRoles, c)
}

// HasRole reports whether c is currently toggled on.
func (s Settings) HasRole(c card.Card) bool {
	for _, x := range s.OptionalRoles {
		if x == c {
			return true
		}
	}
	return false
}
