package core

import "errors"

// Error taxonomy. Only the state-machine and resource errors surface to the
// caller as user-facing failures; inference and validation errors are
// recovered locally wherever a safe default exists (fallback puzzle template,
// "attack" tactical decision, empty reaction list).
var (
	// ErrNotAccessible reports an invalid phase transition or a challenge
	// against an oracle whose dominion has not been unlocked.
	ErrNotAccessible = errors.New("oracle not accessible")

	// ErrAlreadyDefeated guards the idempotency of the defeat operation.
	ErrAlreadyDefeated = errors.New("oracle already defeated")

	// ErrBattleNotInProgress rejects combat turns outside an active battle.
	ErrBattleNotInProgress = errors.New("battle not in progress")

	// ErrInferenceTimeout marks a gateway call that exceeded its deadline.
	ErrInferenceTimeout = errors.New("inference timeout")

	// ErrInferenceMalformed marks a gateway response that could not be parsed
	// into the expected structure.
	ErrInferenceMalformed = errors.New("inference response malformed")

	// ErrValidationFailed marks a puzzle skeleton that violates the minimal
	// schema. It never surfaces raw to callers; the pipeline substitutes the
	// static fallback template instead.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInsufficientResource reports an exhausted resource pool, e.g. no
	// insight tokens left.
	ErrInsufficientResource = errors.New("insufficient resource")

	// ErrUnknownOracle reports a lookup against a name outside the fixed set.
	ErrUnknownOracle = errors.New("unknown oracle")
)

// IsRecoverable reports whether err belongs to the class of failures the
// engine converts into a fallback behavior instead of propagating.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInferenceTimeout) ||
		errors.Is(err, ErrInferenceMalformed) ||
		errors.Is(err, ErrValidationFailed)
}
