// internal/agent/agent.go
package agent

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/action"
	"github.com/xkilldash9x/embody-cli/internal/metrics"
)

// FinishedFunc observes actions as they are archived.
type FinishedFunc func(action.Action)

// Agent owns a FIFO queue of actions and runs them one at a time. Tick must be
// called once per frame from the tick goroutine; the accessors are safe to
// call from anywhere.
type Agent struct {
	name    string
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	current   action.Action
	pending   []action.Action
	archive   []action.Action
	listeners []FinishedFunc
}

// New creates an agent with an empty queue. m may be nil.
func New(name string, logger *zap.Logger, m *metrics.Metrics) *Agent {
	return &Agent{
		name:    name,
		logger:  logger.Named("agent").With(zap.String("agent", name)),
		metrics: m,
	}
}

func (a *Agent) Name() string { return a.name }

// Logger is the agent's named logger, for building actions.
func (a *Agent) Logger() *zap.Logger { return a.logger }

// Enqueue appends act to the queue. It rejects nil.
func (a *Agent) Enqueue(act action.Action) bool {
	if act == nil {
		return false
	}
	a.mu.Lock()
	a.pending = append(a.pending, act)
	depth := len(a.pending)
	a.mu.Unlock()

	a.metrics.SetQueueDepth(a.name, depth)
	a.logger.Debug("Action enqueued.",
		zap.String("action", act.ID()),
		zap.String("kind", string(act.Kind())),
		zap.Int("pending", depth))
	return true
}

// Tick advances the current action by one step. With no current action the
// front of the queue is promoted and dispatched in the same tick. A terminal
// action is handed its final hook, archived and cleared in the same tick, so
// the next one starts on the following tick.
func (a *Agent) Tick() {
	a.mu.Lock()
	if a.current == nil {
		if len(a.pending) == 0 {
			a.mu.Unlock()
			return
		}
		a.current = a.pending[0]
		a.pending[0] = nil
		a.pending = a.pending[1:]
		a.metrics.SetQueueDepth(a.name, len(a.pending))
	}
	cur := a.current
	a.mu.Unlock()

	// Action hooks run without the agent lock; they may enqueue or stop.
	switch cur.State() {
	case action.Idle:
		cur.Setup()
		if cur.State().IsTerminal() {
			return
		}
		cur.Start()
		cur.SetState(action.Updating)
	case action.Updating:
		cur.OnUpdate()
	case action.Completed:
		cur.OnComplete()
		a.retire(cur)
	case action.Stopped:
		cur.OnStop()
		a.retire(cur)
	case action.Failed:
		cur.OnFail()
		a.retire(cur)
	}
}

func (a *Agent) retire(act action.Action) {
	a.mu.Lock()
	a.archive = append(a.archive, act)
	if a.current == act {
		a.current = nil
	}
	listeners := make([]FinishedFunc, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	state := act.State()
	a.metrics.ObserveAction(string(act.Kind()), state.String())
	a.logger.Debug("Action archived.",
		zap.String("action", act.ID()),
		zap.String("kind", string(act.Kind())),
		zap.Stringer("state", state))
	for _, fn := range listeners {
		fn(act)
	}
}

// StopCurrent marks the current action Stopped. The action sees it on the
// next tick, when its OnStop hook is responsible for stopping whatever it
// started.
func (a *Agent) StopCurrent() bool {
	cur := a.Current()
	if cur == nil {
		return false
	}
	return cur.SetState(action.Stopped)
}

// Current returns the action being run, or nil.
func (a *Agent) Current() action.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Pending returns a copy of the queue behind the current action.
func (a *Agent) Pending() []action.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]action.Action, len(a.pending))
	copy(out, a.pending)
	return out
}

// Archive returns a copy of the finished actions in the order they finished.
func (a *Agent) Archive() []action.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]action.Action, len(a.archive))
	copy(out, a.archive)
	return out
}

// Idle reports whether there is nothing left to run.
func (a *Agent) Idle() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current == nil && len(a.pending) == 0
}

// OnFinished registers fn to be called after each action is archived.
func (a *Agent) OnFinished(fn FinishedFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}
