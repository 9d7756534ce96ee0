// internal/action/action.go
package action

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/interaction"
)

// State is the lifecycle state of an action.
type State int

const (
	Idle State = iota
	Updating
	Completed
	Stopped
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Updating:
		return "updating"
	case Completed:
		return "completed"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsTerminal reports whether s ends the action.
func (s State) IsTerminal() bool {
	return s == Completed || s == Stopped || s == Failed
}

// Kind names an action variant.
type Kind string

const (
	KindTouch Kind = "touch"
	KindPick  Kind = "pick"
	KindDrop  Kind = "drop"
	KindWalk  Kind = "walk"
)

// Action is one agent-level task run by an agent queue. The queue calls Setup
// once when it first sees the action Idle, Start if Setup did not end it,
// OnUpdate every tick while Updating, and exactly one of OnComplete, OnStop or
// OnFail once it is terminal.
type Action interface {
	ID() string
	Kind() Kind
	State() State
	// SetState moves a non-terminal action to s and reports whether it did.
	// Terminal states are final.
	SetState(s State) bool
	// Log is a human-readable account of the last state change.
	Log() string
	Code() ErrorCode

	Setup()
	Start()
	OnUpdate()
	OnComplete()
	OnStop()
	OnFail()
}

// Base carries the state shared by every action variant. Variants embed it and
// override the lifecycle hooks they need.
type Base struct {
	id     string
	kind   Kind
	logger *zap.Logger

	mu    sync.Mutex
	state State
	log   string
	code  ErrorCode
	owned *interaction.Interaction
}

func (b *Base) init(kind Kind, logger *zap.Logger) {
	b.id = uuid.NewString()
	b.kind = kind
	b.logger = logger.Named("action").With(zap.String("action", b.id), zap.String("kind", string(kind)))
}

func (b *Base) ID() string { return b.id }
func (b *Base) Kind() Kind { return b.kind }

func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Base) Log() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log
}

func (b *Base) Code() ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code
}

func (b *Base) SetState(s State) bool {
	if s == Stopped {
		return b.transition(s, ErrCodeStopped, "stopped on request")
	}
	return b.transition(s, ErrCodeNone, "")
}

// transition applies only from a non-terminal state, so a stop request is
// never overwritten by a late interaction callback.
func (b *Base) transition(to State, code ErrorCode, msg string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.IsTerminal() {
		return false
	}
	b.state = to
	if code != ErrCodeNone {
		b.code = code
	}
	if msg != "" {
		b.log = msg
	}
	return true
}

// Fail moves the action to Failed with a reason.
func (b *Base) Fail(code ErrorCode, format string, args ...any) bool {
	return b.transition(Failed, code, fmt.Sprintf(format, args...))
}

// Stop moves the action to Stopped with a reason.
func (b *Base) Stop(code ErrorCode, format string, args ...any) bool {
	return b.transition(Stopped, code, fmt.Sprintf(format, args...))
}

// Complete moves the action to Completed.
func (b *Base) Complete(format string, args ...any) bool {
	return b.transition(Completed, ErrCodeNone, fmt.Sprintf(format, args...))
}

// Interaction returns the interaction the action started, if any.
func (b *Base) Interaction() *interaction.Interaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owned
}

// follow takes ownership of i and mirrors its outcome onto the action.
func (b *Base) follow(i *interaction.Interaction) {
	b.mu.Lock()
	b.owned = i
	b.mu.Unlock()

	i.On(interaction.EventCompleted, func(i *interaction.Interaction) {
		b.Complete("%s interaction with %s completed", i.Kind(), i.Effector())
	})
	i.On(interaction.EventFailed, func(i *interaction.Interaction) {
		b.Fail(codeFor(i.Err()), "%s interaction with %s failed: %v", i.Kind(), i.Effector(), i.Err())
	})
	i.On(interaction.EventStopped, func(i *interaction.Interaction) {
		b.Stop(ErrCodeStopped, "%s interaction with %s was stopped", i.Kind(), i.Effector())
	})
}

// stopOwned stops the owned interaction, if it is still running.
func (b *Base) stopOwned(sys *interaction.System) {
	if i := b.Interaction(); i != nil {
		sys.Stop(i)
	}
}

func (b *Base) Setup()    {}
func (b *Base) Start()    {}
func (b *Base) OnUpdate() {}

func (b *Base) OnComplete() {
	b.logger.Info("Action completed.", zap.String("log", b.Log()))
}

func (b *Base) OnStop() {
	b.logger.Info("Action stopped.", zap.String("log", b.Log()), zap.String("code", string(b.Code())))
}

func (b *Base) OnFail() {
	b.logger.Warn("Action failed.", zap.String("log", b.Log()), zap.String("code", string(b.Code())))
}
