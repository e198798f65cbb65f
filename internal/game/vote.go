package game

import "github.com/txwerewolves/wwserver/internal/card"

// Vote records voter's ballot for target (possibly themselves). Casting a
// vote implicitly signals advance (spec.md §4.3); once every player has
// voted, votes are counted and the machine moves to Endgame.
func (g *Game) Vote(voter, target string) error {
	if g.state != Daybreak {
		return ErrInvalidTransition
	}
	if !g.isPlayer(voter) || !g.isPlayer(target) {
		return ErrNotAPlayer
	}
	g.votes[voter] = target
	g.signalLocked(voter)
	return nil
}

// Votes returns a snapshot of ballots cast so far.
func (g *Game) Votes() map[string]string {
	out := make(map[string]string, len(g.votes))
	for k, v := range g.votes {
		out[k] = v
	}
	return out
}

func (g *Game) countVotesAndAdvance() {
	tally := make(map[string]int, len(g.players))
	for _, target := range g.votes {
		tally[target]++
	}

	max := 0
	for _, n := range tally {
		if n > max {
			max = n
		}
	}

	eliminated := make(map[string]bool)
	if max > 1 {
		for target, n := range tally {
			if n == max {
				eliminated[target] = true
			}
		}
	}

	// Hunter special: if the Hunter is eliminated, their vote target dies
	// too, even if that target wasn't otherwise tied for the max.
	for id := range eliminated {
		if g.playerCardsCurrent[id] == card.Hunter {
			if target, voted := g.votes[id]; voted {
				eliminated[target] = true
			}
		}
	}

	g.eliminated = eliminated
	g.enterPhase(Endgame)
}
