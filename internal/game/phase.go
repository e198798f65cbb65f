package game

import "github.com/txwerewolves/wwserver/internal/card"

// Phase is one state of the HandledWerewolfGame machine, ordered as the
// night cycle runs. Power-activated sub-states exist so that the UI can
// tell "phase entered, power not yet used" from "phase entered, power
// used" without inspecting internal flags.
type Phase int

const (
	HavePlayers Phase = iota
	CardsDealt
	WerewolfPhase
	MinionPhase
	SeerPhase
	SeerPowerActivated
	RobberPhase
	RobberPowerActivated
	TroublemakerPhase
	TroublemakerPowerActivated
	InsomniacPhase
	Daybreak
	Endgame
)

func (p Phase) String() string {
	switch p {
	case HavePlayers:
		return "have_players"
	case CardsDealt:
		return "cards_dealt"
	case WerewolfPhase:
		return "werewolf_phase"
	case MinionPhase:
		return "minion_phase"
	case SeerPhase:
		return "seer_phase"
	case SeerPowerActivated:
		return "seer_power_activated"
	case RobberPhase:
		return "robber_phase"
	case RobberPowerActivated:
		return "robber_power_activated"
	case TroublemakerPhase:
		return "troublemaker_phase"
	case TroublemakerPowerActivated:
		return "troublemaker_power_activated"
	case InsomniacPhase:
		return "insomniac_phase"
	case Daybreak:
		return "daybreak"
	case Endgame:
		return "endgame"
	default:
		return "unknown"
	}
}

// Description is a short human-readable phase description for UI panels
// (spec.md §4.5 phase-info event).
func (p Phase) Description() string {
	switch p {
	case WerewolfPhase:
		return "Werewolves, wake up and look for one another."
	case MinionPhase:
		return "Minion, wake up and look for the Werewolves."
	case SeerPhase:
		return "Seer, wake up. You may look at another player's card or two table cards."
	case RobberPhase:
		return "Robber, wake up. You may swap your card with another player's."
	case TroublemakerPhase:
		return "Troublemaker, wake up. You may swap two other players' cards."
	case InsomniacPhase:
		return "Insomniac, wake up and look at your card again."
	case Daybreak:
		return "Daybreak. Discuss and vote for who you believe is a Werewolf."
	case Endgame:
		return "The game is over."
	default:
		return ""
	}
}

// nightOrder is the sequence of night phases (a subset skipped when the
// phase's role card was not dealt) followed by Daybreak and Endgame.
var nightOrder = []Phase{
	WerewolfPhase,
	MinionPhase,
	SeerPhase,
	RobberPhase,
	TroublemakerPhase,
	InsomniacPhase,
	Daybreak,
	Endgame,
}

// phaseRoleCard maps a skippable night phase to the role card whose
// presence in the deal gates it.
var phaseRoleCard = map[Phase]card.Card{
	WerewolfPhase:     card.Werewolf,
	MinionPhase:       card.Minion,
	SeerPhase:         card.Seer,
	RobberPhase:       card.Robber,
	TroublemakerPhase: card.Troublemaker,
	InsomniacPhase:    card.Insomniac,
}

// basePhase collapses a power-activated sub-state back to its phase, for
// the purpose of computing "what comes next".
func basePhase(p Phase) Phase {
	switch p {
	case SeerPowerActivated:
		return SeerPhase
	case RobberPowerActivated:
		return RobberPhase
	case TroublemakerPowerActivated:
		return TroublemakerPhase
	default:
		return p
	}
}

// nextPhaseAfter returns the phase immediately following p in nightOrder.
// p must already be a base phase (CardsDealt or a member of nightOrder).
func nextPhaseAfter(p Phase) Phase {
	if p == CardsDealt {
		return nightOrder[0]
	}
	for i, np := range nightOrder {
		if np == p && i+1 < len(nightOrder) {
			return nightOrder[i+1]
		}
	}
	return Endgame
}

// hasWaitList reports whether signaling advance is the way members leave
// phase p (every night phase, including its activated sub-states, plus
// Daybreak where the implicit signal is a cast vote).
func hasWaitList(p Phase) bool {
	switch p {
	case WerewolfPhase, MinionPhase,
		SeerPhase, SeerPowerActivated,
		RobberPhase, RobberPowerActivated,
		TroublemakerPhase, TroublemakerPowerActivated,
		InsomniacPhase, Daybreak:
		return true
	default:
		return false
	}
}
