// Package game implements HandledWerewolfGame, the per-session state
// machine described in spec.md §4.3: dealing, the ordered night phases
// with role-absent skipping, role power activations, Daybreak voting, and
// endgame win determination.
//
// A Game is not safe for concurrent use on its own; callers (internal/
// registry.SessionEntry) serialize access with their own mutex, matching
// the teacher's one-mutex-per-entry convention (model.Party,
// gameserver.ClientManager).
package game

import (
	"sort"

	"github.com/txwerewolves/wwserver/internal/card"
)

// Game is one play-through of HandledWerewolfGame for a fixed player set.
type Game struct {
	players []string // sorted order, established at New time

	playerCardsOriginal map[string]card.Card
	playerCardsCurrent  map[string]card.Card
	tableCardsOriginal  [3]card.Card
	tableCardsCurrent   [3]card.Card

	state    Phase
	waitList map[string]bool

	seerActivated       bool
	seerViewedPlayer     *seerPlayerResult
	seerViewedTable      *seerTableResult
	robberActivated      bool
	robberResult         *robberResult
	troublemakerActivated bool
	troublemakerPending   *string

	votes      map[string]string
	eliminated map[string]bool
	results    *Results

	// OnPhaseChange is invoked (if non-nil) every time the machine enters
	// a new phase, after all bookkeeping for that phase is initialized.
	// The caller (an application adapter) uses this to fire a
	// signalbus "next-phase" event; side effects live outside the
	// machine, same discipline spec.md §4.2 requires of the lobby.
	OnPhaseChange func(Phase)
}

// New constructs a Game awaiting dealing for the given players.
func New(players []string) *Game {
	ordered := append([]string(nil), players...)
	sort.Strings(ordered)
	return &Game{
		players: ordered,
		state:   HavePlayers,
	}
}

// State returns the current machine state.
func (g *Game) State() Phase {
	return g.state
}

// Players returns the fixed player roster for this game.
func (g *Game) Players() []string {
	return append([]string(nil), g.players...)
}

// DealCards builds the deck, deals it, and drives the machine through any
// leading night phases whose role card was not dealt.
func (g *Game) DealCards(werewolfCount int, optionalRoles []card.Card) error {
	if g.state != HavePlayers {
		return ErrInvalidTransition
	}

	n := len(g.players) + 3
	deck := make(card.Deck, 0, n)
	for i := 0; i < werewolfCount; i++ {
		deck = append(deck, card.Werewolf)
	}

	shuffledOptional := append([]card.Card(nil), optionalRoles...)
	card.Deck(shuffledOptional).Shuffle()
	deck = append(deck, shuffledOptional...)

	if len(deck) > n {
		deck = deck[:n]
	}
	for len(deck) < n {
		deck = append(deck, card.Villager)
	}
	deck.Shuffle()

	g.playerCardsOriginal = make(map[string]card.Card, len(g.players))
	for i, p := range g.players {
		g.playerCardsOriginal[p] = deck[i]
	}
	for i := 0; i < 3; i++ {
		g.tableCardsOriginal[i] = deck[len(g.players)+i]
	}

	g.playerCardsCurrent = make(map[string]card.Card, len(g.players))
	for p, c := range g.playerCardsOriginal {
		g.playerCardsCurrent[p] = c
	}
	g.tableCardsCurrent = g.tableCardsOriginal

	g.state = CardsDealt
	g.enterPhase(nextPhaseAfter(CardsDealt))
	return nil
}

// dealtDeck returns every card currently in play (players + table). Cards
// are conserved across swaps, so this equals the original deal's
// composition regardless of who currently holds what.
func (g *Game) dealtDeck() card.Deck {
	deck := make(card.Deck, 0, len(g.players)+3)
	for _, c := range g.playerCardsCurrent {
		deck = append(deck, c)
	}
	deck = append(deck, g.tableCardsCurrent[:]...)
	return deck
}

// enterPhase transitions into p, auto-skipping night phases whose role
// card is absent from the deal (spec.md §4.3 invariant).
func (g *Game) enterPhase(p Phase) {
	if role, ok := phaseRoleCard[p]; ok && !g.dealtDeck().Contains(role) {
		g.enterPhase(nextPhaseAfter(p))
		return
	}

	g.state = p
	switch p {
	case Daybreak:
		g.waitList = newWaitSet(g.players)
		g.votes = make(map[string]string, len(g.players))
	case Endgame:
		g.computeResults()
	default:
		if hasWaitList(p) {
			g.waitList = newWaitSet(g.players)
		}
	}

	if g.OnPhaseChange != nil {
		g.OnPhaseChange(p)
	}
}

func newWaitSet(players []string) map[string]bool {
	set := make(map[string]bool, len(players))
	for _, p := range players {
		set[p] = true
	}
	return set
}

// isPlayer reports whether id is part of this game's roster.
func (g *Game) isPlayer(id string) bool {
	for _, p := range g.players {
		if p == id {
			return true
		}
	}
	return false
}

// WaitingFor returns a snapshot of who has not yet signaled advance in the
// current phase.
func (g *Game) WaitingFor() []string {
	out := make([]string, 0, len(g.waitList))
	for id := range g.waitList {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SignalAdvance removes id from the current phase's wait list, advancing
// the machine once the list empties. Daybreak does not accept direct
// signals: voting implies the signal (spec.md §4.3).
func (g *Game) SignalAdvance(id string) error {
	if !g.isPlayer(id) {
		return ErrNotAPlayer
	}
	if g.state == Daybreak || !hasWaitList(g.state) {
		return ErrInvalidTransition
	}
	g.signalLocked(id)
	return nil
}

func (g *Game) signalLocked(id string) {
	delete(g.waitList, id)
	if len(g.waitList) == 0 {
		if g.state == Daybreak {
			g.countVotesAndAdvance()
			return
		}
		g.enterPhase(nextPhaseAfter(basePhase(g.state)))
	}
}
