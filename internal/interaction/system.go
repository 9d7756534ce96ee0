// internal/interaction/system.go
package interaction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
	"github.com/xkilldash9x/embody-cli/internal/metrics"
)

// System runs the phase machine of every interaction started on one body.
// All methods are meant to be called from the tick goroutine; the internal
// locks only protect readers on other goroutines (reports, metrics).
type System struct {
	logger   *zap.Logger
	registry *humanoid.Registry
	motion   humanoid.MotionExecutor
	metrics  *metrics.Metrics
	defaults Options
	base     context.Context

	mu      sync.Mutex
	active  []*Interaction
	carried map[humanoid.EffectorType]interactable.Pickable
}

// SystemOption configures a System.
type SystemOption func(*System)

// WithDefaults sets the options applied by the interaction builders.
func WithDefaults(o Options) SystemOption {
	return func(s *System) { s.defaults = o }
}

// WithMetrics reports interaction outcomes.
func WithMetrics(m *metrics.Metrics) SystemOption {
	return func(s *System) { s.metrics = m }
}

// WithContext sets the parent of every motion context. Cancelling it aborts
// all in-flight motion.
func WithContext(ctx context.Context) SystemOption {
	return func(s *System) { s.base = ctx }
}

// NewSystem creates a System driving the effectors in registry through motion.
func NewSystem(registry *humanoid.Registry, motion humanoid.MotionExecutor, logger *zap.Logger, opts ...SystemOption) *System {
	s := &System{
		logger:   logger.Named("interaction"),
		registry: registry,
		motion:   motion,
		defaults: DefaultOptions(),
		base:     context.Background(),
		carried:  make(map[humanoid.EffectorType]interactable.Pickable),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) Registry() *humanoid.Registry { return s.registry }

// Defaults returns the options used by the builders.
func (s *System) Defaults() Options { return s.defaults }

// NewInteraction creates an idle interaction with the system defaults.
func (s *System) NewInteraction(target interactable.Interactable, kind Kind, effector humanoid.EffectorType) *Interaction {
	return New(target, kind, effector, s.defaults)
}

// Active returns the interactions currently running, in start order.
func (s *System) Active() []*Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Interaction, len(s.active))
	copy(out, s.active)
	return out
}

// Idle reports whether no interaction is running.
func (s *System) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active) == 0
}

// Start moves i from Idle to Reaching. Validation failures fire EventFailed on
// i, leave it Idle and are returned; Reaching never begins in that case.
func (s *System) Start(i *Interaction) error {
	if i == nil {
		return ErrNilInteraction
	}
	if !i.begin() {
		s.logger.Warn("Interaction cannot be started twice.", zap.String("interaction", i.ID()))
		return ErrInteractionReused
	}

	if interactable.Missing(i.target) {
		return s.reject(i, ErrTargetMissing)
	}
	eff, ok := s.registry.Get(i.effector)
	if !ok {
		return s.reject(i, fmt.Errorf("%w: %s", ErrUnknownEffector, i.effector))
	}
	if err := i.opts.validate(); err != nil {
		return s.reject(i, err)
	}
	if eff.IsInteracting() || !eff.Claim(i) {
		return s.reject(i, fmt.Errorf("%w: %s", ErrEffectorBusy, i.effector))
	}

	ctx, cancel := context.WithCancel(s.base)
	i.mu.Lock()
	i.ctx = ctx
	i.cancel = cancel
	i.state = Reaching
	i.mu.Unlock()
	s.track(i)

	s.logger.Debug("Interaction started.",
		zap.String("interaction", i.ID()),
		zap.Stringer("kind", i.kind),
		zap.Stringer("effector", i.effector),
		zap.String("target", i.target.Description()))
	i.emit(EventStarted)
	if i.State() != Reaching {
		// A Started handler stopped it.
		return nil
	}

	point := i.target.InteractionPoint()
	if i.opts.UseLookAt {
		// Fire and forget; only the effector motion gates the phase.
		s.motion.LookAt(ctx, point, i.opts.lookAtDuration())
	}
	i.setTask(s.motion.MoveEffectorTo(ctx, i.effector, point, i.opts.ReachDuration, i.opts.ReachCurve))
	return nil
}

func (s *System) reject(i *Interaction, err error) error {
	s.logger.Warn("Interaction rejected.",
		zap.String("interaction", i.ID()),
		zap.Stringer("effector", i.effector),
		zap.Error(err))
	i.settle(OutcomeFailed, err)
	s.metrics.ObserveInteraction(i.effector.String(), i.kind.String(), OutcomeFailed.String())
	i.emit(EventFailed)
	return err
}

// Tick advances every running interaction by dt of simulated time.
func (s *System) Tick(dt time.Duration) {
	for _, i := range s.Active() {
		s.advance(i, dt)
	}
}

func (s *System) advance(i *Interaction, dt time.Duration) {
	if i.State() == Holding {
		i.addHeld(dt)
	}

	for {
		switch i.State() {
		case Reaching:
			if !s.taskFinished(i) {
				return
			}
			if !i.transition(Reaching, Holding) {
				return
			}
			i.emit(EventReached)

		case Holding:
			if i.heldFor() < i.opts.HoldDuration {
				return
			}
			i.emit(EventHeld)
			if !i.transition(Holding, Returning) {
				// A Held handler stopped it.
				return
			}
			ctx := s.motionContext(i)
			if i.opts.UseLookAt {
				s.motion.ReturnGazeToRest(ctx, i.opts.ReturnDuration)
			}
			i.setTask(s.motion.ReturnEffectorToRest(ctx, i.effector, i.opts.ReturnDuration, i.opts.ReturnCurve))

		case Returning:
			if !s.taskFinished(i) {
				return
			}
			s.finish(i, OutcomeCompleted, nil, EventCompleted)
			return

		default:
			return
		}
	}
}

// taskFinished reports whether the current motion task completed. A task
// that reports an error fails the interaction.
func (s *System) taskFinished(i *Interaction) bool {
	task := i.currentTask()
	if task == nil {
		return false
	}
	if err := task.Err(); err != nil {
		s.finish(i, OutcomeFailed, fmt.Errorf("%w: %v", ErrMotionAborted, err), EventFailed)
		return false
	}
	return task.Done()
}

func (s *System) motionContext(i *Interaction) context.Context {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ctx == nil {
		return s.base
	}
	return i.ctx
}

// Stop cancels i's in-flight motion at once. If i was running it also sends
// the effector (and gaze) back to rest without waiting, forces Idle and fires
// EventStopped. Stopping an idle interaction only cancels.
func (s *System) Stop(i *Interaction) {
	if i == nil {
		return
	}
	i.mu.Lock()
	if i.cancel != nil {
		i.cancel()
	}
	wasActive := i.state != Idle
	i.mu.Unlock()

	if !wasActive {
		return
	}
	if i.opts.UseLookAt {
		s.motion.ReturnGazeToRest(s.base, i.opts.ReturnDuration)
	}
	s.motion.ReturnEffectorToRest(s.base, i.effector, i.opts.ReturnDuration, i.opts.ReturnCurve)
	s.finish(i, OutcomeStopped, nil, EventStopped)
}

// StopAll stops every running interaction.
func (s *System) StopAll() {
	for _, i := range s.Active() {
		s.Stop(i)
	}
}

func (s *System) finish(i *Interaction, outcome Outcome, err error, ev Event) {
	if !i.settle(outcome, err) {
		return
	}
	if eff, ok := s.registry.Get(i.effector); ok {
		eff.Release(i)
	}
	s.untrack(i)
	s.metrics.ObserveInteraction(i.effector.String(), i.kind.String(), outcome.String())

	fields := []zap.Field{
		zap.String("interaction", i.ID()),
		zap.Stringer("effector", i.effector),
		zap.Stringer("outcome", outcome),
	}
	if err != nil {
		s.logger.Warn("Interaction failed.", append(fields, zap.Error(err))...)
	} else {
		s.logger.Debug("Interaction finished.", fields...)
	}
	i.emit(ev)
}

func (s *System) track(i *Interaction) {
	s.mu.Lock()
	s.active = append(s.active, i)
	s.mu.Unlock()
}

func (s *System) untrack(i *Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, a := range s.active {
		if a == i {
			s.active = append(s.active[:n], s.active[n+1:]...)
			return
		}
	}
}

// SetCarried records p as held by effector.
func (s *System) SetCarried(effector humanoid.EffectorType, p interactable.Pickable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carried[effector] = p
}

// Carried returns what effector is holding.
func (s *System) Carried(effector humanoid.EffectorType) (interactable.Pickable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.carried[effector]
	return p, ok
}

// CarriedBy finds the effector holding p.
func (s *System) CarriedBy(p interactable.Pickable) (humanoid.EffectorType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for eff, held := range s.carried {
		if held == p {
			return eff, true
		}
	}
	return 0, false
}

// RemoveCarried forgets what effector is holding.
func (s *System) RemoveCarried(effector humanoid.EffectorType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carried, effector)
}
