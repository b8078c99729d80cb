package flow

import "errors"

var (
	// ErrOutOfSequence is returned when a transition is invoked from a
	// state it is not valid in. Scratch state is left untouched; callers
	// usually ignore the stray input.
	ErrOutOfSequence = errors.New("input does not match the current flow step")

	// ErrValidation is returned for user input that fails to parse or
	// violates an invariant. The step does not advance and the user is
	// re-prompted.
	ErrValidation = errors.New("invalid input")

	// ErrUnknownCategory is returned when a category choice is not in the
	// catalog snapshot taken when the flow started.
	ErrUnknownCategory = errors.New("unknown category")
)
