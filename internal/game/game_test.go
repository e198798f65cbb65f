package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txwerewolves/wwserver/internal/card"
)

func signalAll(t *testing.T, g *Game, players []string) {
	t.Helper()
	for _, p := range players {
		if g.State() == Daybreak || g.State() == Endgame {
			return
		}
		require.NoError(t, g.SignalAdvance(p))
	}
}

func TestDealCardsInvariants(t *testing.T) {
	players := []string{"alice", "bob", "charlie", "dan"}
	g := New(players)

	err := g.DealCards(3, []card.Card{card.Seer, card.Robber})
	require.NoError(t, err)

	original, current, err := g.QueryPlayerCards()
	require.NoError(t, err)
	assert.Len(t, original, len(players))
	assert.Equal(t, original, current)

	_, tableCurrent, err := g.QueryTableCards()
	require.NoError(t, err)

	all := make(card.Deck, 0, len(players)+3)
	for _, c := range original {
		all = append(all, c)
	}
	all = append(all, tableCurrent[:]...)

	assert.Len(t, all, len(players)+3)
	assert.Equal(t, 3, all.Count(card.Werewolf))
}

func TestDealCardsTruncatesOversizedOptionalSet(t *testing.T) {
	players := []string{"alice", "bob"}
	g := New(players)
	// 2 players + 3 table = 5 slots; 1 werewolf + 7 optional roles overflow.
	require.NoError(t, g.DealCards(1, card.AllOptionalRoles))

	deck, err := g.QueryCards()
	require.NoError(t, err)
	assert.Len(t, deck, 5)
	assert.Equal(t, 1, deck.Count(card.Werewolf))
}

func TestRoleAbsentPhasesAutoSkip(t *testing.T) {
	players := []string{"alice", "bob", "charlie"}
	g := New(players)

	var seen []Phase
	g.OnPhaseChange = func(p Phase) { seen = append(seen, p) }

	require.NoError(t, g.DealCards(3, nil)) // no optional roles at all

	// Only WerewolfPhase should be live; everything else skips straight
	// through to Daybreak.
	require.Equal(t, WerewolfPhase, g.State())
	signalAll(t, g, players)
	require.Equal(t, Daybreak, g.State())

	assert.Contains(t, seen, WerewolfPhase)
	assert.Contains(t, seen, Daybreak)
	assert.NotContains(t, seen, MinionPhase)
	assert.NotContains(t, seen, SeerPhase)
}

func TestVotingNoEliminationOnAllUniqueVotes(t *testing.T) {
	players := []string{"alice", "bob", "charlie"}
	g := New(players)
	require.NoError(t, g.DealCards(1, nil))

	signalAll(t, g, players)
	require.Equal(t, Daybreak, g.State())

	require.NoError(t, g.Vote("alice", "bob"))
	require.NoError(t, g.Vote("bob", "charlie"))
	require.NoError(t, g.Vote("charlie", "alice"))

	require.Equal(t, Endgame, g.State())
	res, err := g.PostGameResults()
	require.NoError(t, err)
	assert.Empty(t, res.Eliminated)
}

func TestHappyGameFlow(t *testing.T) {
	players := []string{"alice", "bob", "charlie"}
	g := New(players)
	require.NoError(t, g.DealCards(2, []card.Card{
		card.Seer, card.Robber, card.Troublemaker, card.Minion, card.Insomniac, card.Hunter, card.Tanner,
	}))

	original, _, err := g.QueryPlayerCards()
	require.NoError(t, err)
	assert.Len(t, original, 3)

	// Drive through every night phase regardless of who got what; powers
	// are optional so plain signals suffice to prove the machine reaches
	// Daybreak without getting stuck.
	for g.State() != Daybreak {
		current := g.State()
		for _, p := range players {
			if g.State() != current {
				break
			}
			_ = g.SignalAdvance(p)
		}
	}

	require.NoError(t, g.Vote("alice", "bob"))
	require.NoError(t, g.Vote("bob", "alice"))
	require.NoError(t, g.Vote("charlie", "alice"))

	require.Equal(t, Endgame, g.State())
	res, err := g.PostGameResults()
	require.NoError(t, err)
	assert.Contains(t, res.Eliminated, "alice")

	if res.PlayerCardsCurrent["alice"] == card.Werewolf {
		assert.Equal(t, Village, res.Winner)
	}
}

func TestTroublemakerSwap(t *testing.T) {
	players := []string{"alice", "bob", "charlie"}

	// Dealing is randomized and the Troublemaker card can land on the
	// table, so deal again until a player holds it -- the test then adapts
	// to whatever assignment comes out instead of fixing it.
	var g *Game
	var original map[string]card.Card
	var troublemaker string
	for troublemaker == "" {
		g = New(players)
		require.NoError(t, g.DealCards(1, []card.Card{card.Troublemaker}))

		var err error
		original, _, err = g.QueryPlayerCards()
		require.NoError(t, err)

		for p, c := range original {
			if c == card.Troublemaker {
				troublemaker = p
			}
		}
	}
	require.NotEmpty(t, troublemaker)

	var others []string
	for _, p := range players {
		if p != troublemaker {
			others = append(others, p)
		}
	}
	require.Len(t, others, 2)

	// Skip WerewolfPhase.
	signalAll(t, g, players)
	require.Equal(t, TroublemakerPhase, g.State())

	require.NoError(t, g.TroublemakerPickFirst(troublemaker, others[0]))
	require.NoError(t, g.TroublemakerPickSecond(troublemaker, others[1]))
	require.Equal(t, TroublemakerPowerActivated, g.State())

	_, current, err := g.QueryPlayerCards()
	require.NoError(t, err)
	assert.Equal(t, original[others[0]], current[others[1]])
	assert.Equal(t, original[others[1]], current[others[0]])
	assert.Equal(t, original[troublemaker], current[troublemaker])
}

func TestTannerWin(t *testing.T) {
	players := []string{"alice", "bob", "charlie"}

	// Deal again until a player, not the table, holds the Tanner.
	var g *Game
	var tanner string
	for tanner == "" {
		g = New(players)
		require.NoError(t, g.DealCards(1, []card.Card{card.Tanner}))

		original, _, err := g.QueryPlayerCards()
		require.NoError(t, err)
		for p, c := range original {
			if c == card.Tanner {
				tanner = p
			}
		}
	}
	require.NotEmpty(t, tanner)

	for g.State() != Daybreak {
		signalAll(t, g, players)
	}

	for _, voter := range players {
		require.NoError(t, g.Vote(voter, tanner))
	}

	require.Equal(t, Endgame, g.State())
	res, err := g.PostGameResults()
	require.NoError(t, err)
	assert.Contains(t, []WinnerKind{Tanner, TannerAndVillage}, res.Winner)
}

func TestHunterEliminationChain(t *testing.T) {
	players := []string{"alice", "bob", "charlie", "dan"}

	// Deal again until a player, not the table, holds the Hunter.
	var g *Game
	var hunter string
	for hunter == "" {
		g = New(players)
		require.NoError(t, g.DealCards(1, []card.Card{card.Hunter}))

		original, _, err := g.QueryPlayerCards()
		require.NoError(t, err)
		for p, c := range original {
			if c == card.Hunter {
				hunter = p
			}
		}
	}
	require.NotEmpty(t, hunter)

	var others []string
	for _, p := range players {
		if p != hunter {
			others = append(others, p)
		}
	}

	for g.State() != Daybreak {
		signalAll(t, g, players)
	}

	// Three of four vote for the hunter (tied-max elimination), hunter
	// votes for someone else -- that target should die too.
	require.NoError(t, g.Vote(others[0], hunter))
	require.NoError(t, g.Vote(others[1], hunter))
	require.NoError(t, g.Vote(others[2], hunter))
	require.NoError(t, g.Vote(hunter, others[0]))

	res, err := g.PostGameResults()
	require.NoError(t, err)
	assert.Contains(t, res.Eliminated, hunter)
	assert.Contains(t, res.Eliminated, others[0])
}

func TestSignalAdvanceRejectsNonPlayer(t *testing.T) {
	g := New([]string{"alice", "bob"})
	require.NoError(t, g.DealCards(1, nil))
	assert.ErrorIs(t, g.SignalAdvance("mallory"), ErrNotAPlayer)
}

func TestVoteOutsideDaybreakIsInvalid(t *testing.T) {
	g := New([]string{"alice", "bob"})
	require.NoError(t, g.DealCards(1, nil))
	assert.ErrorIs(t, g.Vote("alice", "bob"), ErrInvalidTransition)
}

func TestQuerySeerResultBeforeActivationIsInvalid(t *testing.T) {
	g := New([]string{"alice", "bob", "charlie"})
	require.NoError(t, g.DealCards(1, []card.Card{card.Seer}))
	_, _, err := g.QuerySeerResult()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
