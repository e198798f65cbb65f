package game

import "github.com/txwerewolves/wwserver/internal/card"

// WinnerKind classifies who won the game once Endgame is reached.
type WinnerKind int

const (
	NoOne WinnerKind = iota
	Village
	Werewolves
	Tanner
	TannerAndVillage
)

func (w WinnerKind) String() string {
	switch w {
	case Village:
		return "Village"
	case Werewolves:
		return "Werewolf"
	case Tanner:
		return "Tanner"
	case TannerAndVillage:
		return "TannerAndVillage"
	default:
		return "NoOne"
	}
}

// Results is the full post-game report (spec.md §4.3 post_game_results).
type Results struct {
	Winner              WinnerKind
	Eliminated          []string
	PlayerCardsOriginal map[string]card.Card
	PlayerCardsCurrent  map[string]card.Card
	TableCardsOriginal  [3]card.Card
	TableCardsCurrent   [3]card.Card
}

func (g *Game) computeResults() {
	playerCards := make(map[card.Card]bool, len(g.players))
	for _, c := range g.playerCardsCurrent {
		playerCards[c] = true
	}

	eliminatedCards := make(map[card.Card]bool, len(g.eliminated))
	for id := range g.eliminated {
		eliminatedCards[g.playerCardsCurrent[id]] = true
	}

	tannerWin := eliminatedCards[card.Tanner]
	villageWin := eliminatedCards[card.Werewolf] || (len(g.eliminated) == 0 && !playerCards[card.Werewolf])
	werewolfWin := !tannerWin && (
		(playerCards[card.Werewolf] && !eliminatedCards[card.Werewolf]) ||
			(!playerCards[card.Werewolf] && playerCards[card.Minion] && !eliminatedCards[card.Minion] && len(g.eliminated) > 0))

	var winner WinnerKind
	switch {
	case tannerWin && villageWin:
		winner = TannerAndVillage
	case villageWin:
		winner = Village
	case tannerWin:
		winner = Tanner
	case werewolfWin:
		winner = Werewolves
	default:
		winner = NoOne
	}

	eliminatedList := make([]string, 0, len(g.eliminated))
	for id := range g.eliminated {
		eliminatedList = append(eliminatedList, id)
	}

	g.results = &Results{
		Winner:              winner,
		Eliminated:          eliminatedList,
		PlayerCardsOriginal: cloneCardMap(g.playerCardsOriginal),
		PlayerCardsCurrent:  cloneCardMap(g.playerCardsCurrent),
		TableCardsOriginal:  g.tableCardsOriginal,
		TableCardsCurrent:   g.tableCardsCurrent,
	}
}

// PostGameResults returns the final report. Valid only once Endgame has
// been reached.
func (g *Game) PostGameResults() (*Results, error) {
	if g.state != Endgame || g.results == nil {
		return nil, ErrInvalidTransition
	}
	return g.results, nil
}

// QueryCards returns a shuffled copy of the original deal's card
// composition (players + table), with no positional information —
// spec.md §4.3 query_cards().
func (g *Game) QueryCards() (card.Deck, error) {
	if g.playerCardsOriginal == nil {
		return nil, ErrInvalidTransition
	}
	deck := make(card.Deck, 0, len(g.players)+3)
	for _, c := range g.playerCardsOriginal {
		deck = append(deck, c)
	}
	deck = append(deck, g.tableCardsOriginal[:]...)
	deck.Shuffle()
	return deck, nil
}

// QueryTableCards returns copies of the original and current table cards.
func (g *Game) QueryTableCards() (original, current [3]card.Card, err error) {
	if g.playerCardsOriginal == nil {
		return original, current, ErrInvalidTransition
	}
	return g.tableCardsOriginal, g.tableCardsCurrent, nil
}

// QueryPlayerCards returns copies of the original and current per-player
// card assignments.
func (g *Game) QueryPlayerCards() (original, current map[string]card.Card, err error) {
	if g.playerCardsOriginal == nil {
		return nil, nil, ErrInvalidTransition
	}
	return cloneCardMap(g.playerCardsOriginal), cloneCardMap(g.playerCardsCurrent), nil
}

func cloneCardMap(m map[string]card.Card) map[string]card.Card {
	out := make(map[string]card.Card, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
