// internal/interaction/interaction.go
package interaction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xkilldash9x/embody-cli/internal/config"
	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
)

// Options are the timing parameters of one interaction.
type Options struct {
	ReachDuration  time.Duration
	HoldDuration   time.Duration
	ReturnDuration time.Duration
	ReachCurve     humanoid.Curve
	ReturnCurve    humanoid.Curve
	UseLookAt      bool
	// LookAtFactor scales ReachDuration for the gaze request.
	LookAtFactor float64
}

// DefaultOptions returns 1s reach, 100ms hold, 1s return, ease-in-out curves
// and look-at enabled.
func DefaultOptions() Options {
	return Options{
		ReachDuration:  time.Second,
		HoldDuration:   100 * time.Millisecond,
		ReturnDuration: time.Second,
		ReachCurve:     humanoid.EaseInOut,
		ReturnCurve:    humanoid.EaseInOut,
		UseLookAt:      true,
		LookAtFactor:   0.75,
	}
}

// OptionsFromConfig converts the configured defaults.
func OptionsFromConfig(cfg config.InteractionConfig) (Options, error) {
	reach, err := humanoid.CurveByName(cfg.ReachCurve)
	if err != nil {
		return Options{}, fmt.Errorf("reach curve: %w", err)
	}
	ret, err := humanoid.CurveByName(cfg.ReturnCurve)
	if err != nil {
		return Options{}, fmt.Errorf("return curve: %w", err)
	}
	opts := Options{
		ReachDuration:  cfg.ReachDuration,
		HoldDuration:   cfg.HoldDuration,
		ReturnDuration: cfg.ReturnDuration,
		ReachCurve:     reach,
		ReturnCurve:    ret,
		UseLookAt:      cfg.UseLookAt,
		LookAtFactor:   cfg.LookAtFactor,
	}
	if err := opts.validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (o Options) validate() error {
	if o.ReachDuration < 0 || o.HoldDuration < 0 || o.ReturnDuration < 0 {
		return ErrNegativeDuration
	}
	return nil
}

func (o Options) lookAtDuration() time.Duration {
	return time.Duration(float64(o.ReachDuration) * o.LookAtFactor)
}

// Handler receives lifecycle events. Handlers run synchronously on the tick
// goroutine with no locks held, so they may call back into the System.
type Handler func(*Interaction)

type handlerEntry struct {
	id int
	fn Handler
}

// Interaction is one timed attempt by an effector to reach a target, hold and
// return. It is single use: once it has been started it can never be started
// again, whatever the outcome.
type Interaction struct {
	id       string
	target   interactable.Interactable
	kind     Kind
	effector humanoid.EffectorType
	opts     Options

	mu       sync.Mutex
	state    State
	outcome  Outcome
	err      error
	started  bool
	held     time.Duration
	task     humanoid.Task
	ctx      context.Context
	cancel   context.CancelFunc
	handlers map[Event][]handlerEntry
	nextID   int
}

var _ humanoid.Occupant = (*Interaction)(nil)

// New creates an idle interaction.
func New(target interactable.Interactable, kind Kind, effector humanoid.EffectorType, opts Options) *Interaction {
	return &Interaction{
		id:       uuid.NewString(),
		target:   target,
		kind:     kind,
		effector: effector,
		opts:     opts,
		handlers: make(map[Event][]handlerEntry),
	}
}

func (i *Interaction) ID() string                        { return i.id }
func (i *Interaction) Target() interactable.Interactable { return i.target }
func (i *Interaction) Kind() Kind                        { return i.kind }
func (i *Interaction) Effector() humanoid.EffectorType   { return i.effector }
func (i *Interaction) Options() Options                  { return i.opts }

func (i *Interaction) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Active reports whether the interaction occupies its effector.
func (i *Interaction) Active() bool {
	return i.State() != Idle
}

func (i *Interaction) Outcome() Outcome {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.outcome
}

// Err is the failure cause when Outcome is OutcomeFailed.
func (i *Interaction) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

// On registers fn for ev and returns a function that removes it. Handlers for
// the same event run in registration order.
func (i *Interaction) On(ev Event, fn Handler) (remove func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.nextID++
	id := i.nextID
	i.handlers[ev] = append(i.handlers[ev], handlerEntry{id: id, fn: fn})
	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		entries := i.handlers[ev]
		for n, e := range entries {
			if e.id == id {
				i.handlers[ev] = append(entries[:n:n], entries[n+1:]...)
				return
			}
		}
	}
}

func (i *Interaction) emit(ev Event) {
	i.mu.Lock()
	entries := make([]handlerEntry, len(i.handlers[ev]))
	copy(entries, i.handlers[ev])
	i.mu.Unlock()

	for _, e := range entries {
		e.fn(i)
	}
}

// begin marks the interaction as started. It fails if it already was.
func (i *Interaction) begin() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.started {
		return false
	}
	i.started = true
	return true
}

func (i *Interaction) transition(from, to State) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != from {
		return false
	}
	i.state = to
	if to == Holding {
		i.held = 0
	}
	return true
}

// settle forces Idle and records the outcome. It reports false when the
// interaction had already settled.
func (i *Interaction) settle(outcome Outcome, err error) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.outcome != OutcomeNone {
		return false
	}
	i.state = Idle
	i.outcome = outcome
	i.err = err
	i.task = nil
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	return true
}

func (i *Interaction) setTask(t humanoid.Task) {
	i.mu.Lock()
	i.task = t
	i.mu.Unlock()
}

func (i *Interaction) currentTask() humanoid.Task {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.task
}

func (i *Interaction) addHeld(dt time.Duration) time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.held += dt
	return i.held
}

func (i *Interaction) heldFor() time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.held
}
