// Package card defines the role cards dealt in a game and the shuffling
// primitives used to build a deck.
package card

import "math/rand/v2"

// Card is a tagged enumerant for a role in the game.
type Card byte

const (
	Werewolf Card = iota
	Seer
	Robber
	Troublemaker
	Villager
	Minion
	Insomniac
	Hunter
	Tanner
)

var displayNames = map[Card]string{
	Werewolf:     "Werewolf",
	Seer:         "Seer",
	Robber:       "Robber",
	Troublemaker: "Troublemaker",
	Villager:     "Villager",
	Minion:       "Minion",
	Insomniac:    "Insomniac",
	Hunter:       "Hunter",
	Tanner:       "Tanner",
}

// String returns the display name for the card.
func (c Card) String() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return "Unknown"
}

// AllOptionalRoles lists every card that may appear as an optional role
// selection in session settings (i.e. everything but Werewolf and Villager,
// which are always implicitly available as filler).
var AllOptionalRoles = []Card{Seer, Robber, Troublemaker, Minion, Insomniac, Hunter, Tanner}

// Deck is an ordered collection of cards, shuffled in place with a
// Fisher-Yates pass. Shuffle draws from math/rand/v2's package-level
// source; no seeded rand.Rand can be passed in.
type Deck []Card

// Shuffle randomizes the deck order in place.
func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Clone returns a copy of the deck.
func (d Deck) Clone() Deck {
	out := make(Deck, len(d))
	copy(out, d)
	return out
}

// Contains reports whether the deck holds at least one of the given card.
func (d Deck) Contains(c Card) bool {
	for _, x := range d {
		if x == c {
			return true
		}
	}
	return false
}

// Count returns how many copies of c are present.
func (d Deck) Count(c Card) int {
	n := 0
	for _, x := range d {
		if x == c {
			n++
		}
	}
	return n
}
