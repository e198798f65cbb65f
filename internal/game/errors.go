package game

import "errors"

// Sentinel errors surfaced by the game state machine. Callers convert
// these to user-visible messages or swallow-and-log per spec.md §7.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotAPlayer        = errors.New("not a player in this game")
	ErrAlreadyActivated  = errors.New("power already activated")
	ErrSamePlayer        = errors.New("target must be a different player")
	ErrInvalidTablePos   = errors.New("table card position out of range")
	ErrPendingPick       = errors.New("a first pick is already pending")
	ErrNoPendingPick     = errors.New("no first pick is pending")
)
