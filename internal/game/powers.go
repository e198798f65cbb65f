package game

import "github.com/txwerewolves/wwserver/internal/card"

type seerPlayerResult struct {
	Target string
	Card   card.Card
}

type seerTableResult struct {
	Positions [2]int
	Cards     [2]card.Card
}

type robberResult struct {
	Target    string
	Stolen    card.Card
}

// ObserveWerewolves returns the set of players currently holding the
// Werewolf card. Valid during WerewolfPhase or MinionPhase only; both
// roles get the same view of "who are the wolves" per spec.md §4.3.
func (g *Game) ObserveWerewolves() ([]string, error) {
	if g.state != WerewolfPhase && g.state != MinionPhase {
		return nil, ErrInvalidTransition
	}
	var out []string
	for _, p := range g.players {
		if g.playerCardsCurrent[p] == card.Werewolf {
			out = append(out, p)
		}
	}
	return out, nil
}

// SeerViewPlayer lets the Seer look at another player's current card.
// Exactly one Seer activation (view-player or view-table) is allowed per
// game.
func (g *Game) SeerViewPlayer(seer, target string) (card.Card, error) {
	if g.state != SeerPhase {
		return 0, ErrInvalidTransition
	}
	if g.seerActivated {
		return 0, ErrAlreadyActivated
	}
	if seer == target {
		return 0, ErrSamePlayer
	}
	if !g.isPlayer(seer) || !g.isPlayer(target) {
		return 0, ErrNotAPlayer
	}
	c := g.playerCardsCurrent[target]
	g.seerActivated = true
	g.seerViewedPlayer = &seerPlayerResult{Target: target, Card: c}
	g.state = SeerPowerActivated
	return c, nil
}

// SeerViewTable lets the Seer look at two of the three table card
// positions (0,1,2).
func (g *Game) SeerViewTable(seer string, pos1, pos2 int) ([2]card.Card, error) {
	var zero [2]card.Card
	if g.state != SeerPhase {
		return zero, ErrInvalidTransition
	}
	if g.seerActivated {
		return zero, ErrAlreadyActivated
	}
	if pos1 == pos2 {
		return zero, ErrSamePlayer
	}
	if pos1 < 0 || pos1 > 2 || pos2 < 0 || pos2 > 2 {
		return zero, ErrInvalidTablePos
	}
	cards := [2]card.Card{g.tableCardsCurrent[pos1], g.tableCardsCurrent[pos2]}
	g.seerActivated = true
	g.seerViewedTable = &seerTableResult{Positions: [2]int{pos1, pos2}, Cards: cards}
	g.state = SeerPowerActivated
	return cards, nil
}

// QuerySeerResult returns whichever Seer activation occurred. Exactly one
// of the two return values is non-nil if err is nil.
func (g *Game) QuerySeerResult() (*seerPlayerResult, *seerTableResult, error) {
	if !g.seerActivated {
		return nil, nil, ErrInvalidTransition
	}
	return g.seerViewedPlayer, g.seerViewedTable, nil
}

// RobberSwap lets the Robber optionally swap cards with another player,
// learning the card they end up with. Calling SignalAdvance instead of
// this method is how the Robber declines to swap.
func (g *Game) RobberSwap(robber, target string) (card.Card, error) {
	if g.state != RobberPhase {
		return 0, ErrInvalidTransition
	}
	if g.robberActivated {
		return 0, ErrAlreadyActivated
	}
	if robber == target {
		return 0, ErrSamePlayer
	}
	if !g.isPlayer(robber) || !g.isPlayer(target) {
		return 0, ErrNotAPlayer
	}
	g.playerCardsCurrent[robber], g.playerCardsCurrent[target] =
		g.playerCardsCurrent[target], g.playerCardsCurrent[robber]

	stolen := g.playerCardsCurrent[robber]
	g.robberActivated = true
	g.robberResult = &robberResult{Target: target, Stolen: stolen}
	g.state = RobberPowerActivated
	return stolen, nil
}

// QueryRobberResult returns the card the Robber ended up with.
func (g *Game) QueryRobberResult() (card.Card, string, error) {
	if !g.robberActivated {
		return 0, "", ErrInvalidTransition
	}
	return g.robberResult.Stolen, g.robberResult.Target, nil
}

// TroublemakerPickFirst records the first of the two players whose cards
// the Troublemaker wants to swap. The swap itself does not happen until
// TroublemakerPickSecond completes the pair (spec.md §4.3: "picks are
// made in two sequential sub-steps").
func (g *Game) TroublemakerPickFirst(troublemaker, first string) error {
	if g.state != TroublemakerPhase {
		return ErrInvalidTransition
	}
	if g.troublemakerActivated {
		return ErrAlreadyActivated
	}
	if g.troublemakerPending != nil {
		return ErrPendingPick
	}
	if troublemaker == first {
		return ErrSamePlayer
	}
	if !g.isPlayer(troublemaker) || !g.isPlayer(first) {
		return ErrNotAPlayer
	}
	g.troublemakerPending = &first
	return nil
}

// TroublemakerPickSecond completes the swap between the pending first
// pick and second, without revealing either card to the Troublemaker.
func (g *Game) TroublemakerPickSecond(troublemaker, second string) error {
	if g.state != TroublemakerPhase {
		return ErrInvalidTransition
	}
	if g.troublemakerActivated {
		return ErrAlreadyActivated
	}
	if g.troublemakerPending == nil {
		return ErrNoPendingPick
	}
	first := *g.troublemakerPending
	if troublemaker == second || first == second {
		return ErrSamePlayer
	}
	if !g.isPlayer(troublemaker) || !g.isPlayer(second) {
		return ErrNotAPlayer
	}

	g.playerCardsCurrent[first], g.playerCardsCurrent[second] =
		g.playerCardsCurrent[second], g.playerCardsCurrent[first]

	g.troublemakerActivated = true
	g.troublemakerPending = nil
	g.state = TroublemakerPowerActivated
	return nil
}

// InsomniacReveal reveals the current card held by whoever was originally
// dealt the Insomniac card — identity follows the original deal even if
// the card itself has since moved (spec.md §4.3).
func (g *Game) InsomniacReveal() (card.Card, error) {
	if g.state != InsomniacPhase {
		return 0, ErrInvalidTransition
	}
	for _, p := range g.players {
		if g.playerCardsOriginal[p] == card.Insomniac {
			return g.playerCardsCurrent[p], nil
		}
	}
	return 0, ErrInvalidTransition
}
