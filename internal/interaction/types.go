// internal/interaction/types.go
package interaction

import (
	"errors"
	"fmt"
	"strings"
)

// Kind describes what the effector does once it reaches the target.
type Kind int

const (
	Touch Kind = iota
	Pick
	Use
	Push
	Pull
)

var kindNames = map[Kind]string{
	Touch: "touch",
	Pick:  "pick",
	Use:   "use",
	Push:  "push",
	Pull:  "pull",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == normalized {
			return k, nil
		}
	}
	return 0, fmt.Errorf("interaction: unknown kind %q", s)
}

// State is the phase of an interaction.
type State int

const (
	Idle State = iota
	Reaching
	Holding
	Returning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Reaching:
		return "reaching"
	case Holding:
		return "holding"
	case Returning:
		return "returning"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event identifies a lifecycle notification.
type Event int

const (
	EventStarted Event = iota
	EventReached
	EventHeld
	EventCompleted
	EventStopped
	EventFailed
)

func (e Event) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventReached:
		return "reached"
	case EventHeld:
		return "held"
	case EventCompleted:
		return "completed"
	case EventStopped:
		return "stopped"
	case EventFailed:
		return "failed"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Outcome is how an interaction attempt ended. It is recorded once.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCompleted
	OutcomeStopped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeCompleted:
		return "completed"
	case OutcomeStopped:
		return "stopped"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

var (
	ErrNilInteraction    = errors.New("interaction: nil interaction")
	ErrInteractionReused = errors.New("interaction: already started once")
	ErrTargetMissing     = errors.New("interaction: target is missing or destroyed")
	ErrUnknownEffector   = errors.New("interaction: unknown effector")
	ErrEffectorBusy      = errors.New("interaction: effector is already interacting")
	ErrNegativeDuration  = errors.New("interaction: durations must not be negative")
	ErrMotionAborted     = errors.New("interaction: motion task aborted")
	ErrAlreadyCarried    = errors.New("interaction: target is already being carried")
	ErrNoAttachPoint     = errors.New("interaction: effector has no attach point")
)
