package core

import "fmt"

// Phase is the encounter lifecycle state. Hostility and alliance are
// orthogonal flags on EncounterState, not phases.
type Phase string

const (
	PhaseLocked        Phase = "locked"
	PhaseExploration   Phase = "exploration"
	PhasePuzzle        Phase = "puzzle"
	PhaseBattle        Phase = "battle"
	PhaseConfrontation Phase = "confrontation"
	PhaseDefeated      Phase = "defeated"
)

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseLocked, PhaseExploration, PhasePuzzle, PhaseBattle, PhaseConfrontation, PhaseDefeated:
		return true
	}
	return false
}

// Terminal reports whether the phase admits no further transitions.
func (p Phase) Terminal() bool { return p == PhaseDefeated }

// CanTransition reports whether the state machine permits moving from p to
// next. Self-transitions are allowed for puzzle (retry) and battle (turn
// loop).
func (p Phase) CanTransition(next Phase) bool {
	switch p {
	case PhaseLocked:
		return next == PhaseExploration
	case PhaseExploration:
		return next == PhasePuzzle
	case PhasePuzzle:
		return next == PhasePuzzle || next == PhaseBattle
	case PhaseBattle:
		return next == PhaseBattle || next == PhaseConfrontation
	case PhaseConfrontation:
		return next == PhaseDefeated
	default:
		return false
	}
}

// Transition validates and applies a phase change, returning the new phase.
func (p Phase) Transition(next Phase) (Phase, error) {
	if !next.Valid() {
		return p, fmt.Errorf("%w: phase %q is not defined", ErrNotAccessible, next)
	}
	if !p.CanTransition(next) {
		return p, fmt.Errorf("%w: cannot move from %s to %s", ErrNotAccessible, p, next)
	}
	return next, nil
}
