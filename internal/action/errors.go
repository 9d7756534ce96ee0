// internal/action/errors.go
package action

import (
	"errors"

	"github.com/xkilldash9x/embody-cli/internal/interaction"
)

// ErrorCode is a string type used for structured failure reporting from
// actions. Using a custom type ensures that only predefined constants can be
// used where an ErrorCode is expected.
type ErrorCode string

const (
	// ErrCodeNone is carried by actions that did not fail or stop abnormally.
	ErrCodeNone ErrorCode = ""

	// -- Precondition Errors --
	// ErrCodePrecondition covers targets that cannot be interacted with, busy
	// effectors and objects in the wrong carried state.
	ErrCodePrecondition ErrorCode = "PRECONDITION_FAILURE"
	// ErrCodeTargetMissing indicates a nil or destroyed target.
	ErrCodeTargetMissing ErrorCode = "TARGET_MISSING"

	// -- Locomotion Errors --
	// ErrCodeUnreachable is the hard variant: nothing reachable nearby.
	ErrCodeUnreachable ErrorCode = "UNREACHABLE"
	// ErrCodeUnreachableNear is the soft variant: the walk stopped and a
	// fallback point was reported.
	ErrCodeUnreachableNear ErrorCode = "UNREACHABLE_NEAR"

	// -- Collaborator Errors --
	// ErrCodeExternalTask indicates a motion task that was cancelled or
	// superseded outside the action's control.
	ErrCodeExternalTask ErrorCode = "EXTERNAL_TASK_FAILURE"

	// ErrCodeStopped marks an action stopped on request.
	ErrCodeStopped ErrorCode = "STOPPED"
)

// codeFor classifies the failure cause of an interaction.
func codeFor(err error) ErrorCode {
	switch {
	case err == nil:
		return ErrCodeNone
	case errors.Is(err, interaction.ErrTargetMissing):
		return ErrCodeTargetMissing
	case errors.Is(err, interaction.ErrMotionAborted):
		return ErrCodeExternalTask
	default:
		return ErrCodePrecondition
	}
}
