// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/embody-cli/internal/config"
	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/locomotion"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Engine() config.EngineConfig {
	args := m.Called()
	return args.Get(0).(config.EngineConfig)
}

func (m *MockConfig) Interaction() config.InteractionConfig {
	args := m.Called()
	return args.Get(0).(config.InteractionConfig)
}

func (m *MockConfig) Locomotion() config.LocomotionConfig {
	args := m.Called()
	return args.Get(0).(config.LocomotionConfig)
}

func (m *MockConfig) Metrics() config.MetricsConfig {
	args := m.Called()
	return args.Get(0).(config.MetricsConfig)
}

func (m *MockConfig) SetEngineRealtime(b bool)      { m.Called(b) }
func (m *MockConfig) SetEngineMaxFrames(n int)      { m.Called(n) }
func (m *MockConfig) SetMetricsListenAddr(a string) { m.Called(a) }

// -- Motion Mocks --

// ManualTask is a humanoid.Task resolved by the test. It also records the
// context it was issued with so cancellation can be asserted.
type ManualTask struct {
	mu   sync.Mutex
	ctx  context.Context
	done bool
	err  error
}

var _ humanoid.Task = (*ManualTask)(nil)

// NewManualTask creates an unresolved task bound to ctx. A nil ctx never
// cancels.
func NewManualTask(ctx context.Context) *ManualTask {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ManualTask{ctx: ctx}
}

// Complete resolves the task successfully.
func (t *ManualTask) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		t.done = true
	}
}

// Fail resolves the task with err.
func (t *ManualTask) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.err = err
	}
}

func (t *ManualTask) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *ManualTask) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	if !t.done {
		return t.ctx.Err()
	}
	return nil
}

// Cancelled reports whether the issuing context has been cancelled.
func (t *ManualTask) Cancelled() bool { return t.ctx.Err() != nil }

// MockMotionExecutor mocks humanoid.MotionExecutor. Expectations return a
// humanoid.Task; use ReturnTask to hand out ManualTasks bound to the call's
// context.
type MockMotionExecutor struct {
	mock.Mock
}

var _ humanoid.MotionExecutor = (*MockMotionExecutor)(nil)

func (m *MockMotionExecutor) MoveEffectorTo(ctx context.Context, effector humanoid.EffectorType, destination scene.Vector3, duration time.Duration, curve humanoid.Curve) humanoid.Task {
	args := m.Called(ctx, effector, destination, duration, curve)
	return taskFrom(args, ctx)
}

func (m *MockMotionExecutor) ReturnEffectorToRest(ctx context.Context, effector humanoid.EffectorType, duration time.Duration, curve humanoid.Curve) humanoid.Task {
	args := m.Called(ctx, effector, duration, curve)
	return taskFrom(args, ctx)
}

func (m *MockMotionExecutor) LookAt(ctx context.Context, point scene.Vector3, duration time.Duration) humanoid.Task {
	args := m.Called(ctx, point, duration)
	return taskFrom(args, ctx)
}

func (m *MockMotionExecutor) ReturnGazeToRest(ctx context.Context, duration time.Duration) humanoid.Task {
	args := m.Called(ctx, duration)
	return taskFrom(args, ctx)
}

// TaskFactory builds the task handed back for one call.
type TaskFactory func(ctx context.Context) humanoid.Task

// ReturnTask is a TaskFactory that records every ManualTask it creates in
// *sink, in call order.
func ReturnTask(sink *[]*ManualTask) TaskFactory {
	var mu sync.Mutex
	return func(ctx context.Context) humanoid.Task {
		t := NewManualTask(ctx)
		mu.Lock()
		*sink = append(*sink, t)
		mu.Unlock()
		return t
	}
}

func taskFrom(args mock.Arguments, ctx context.Context) humanoid.Task {
	switch v := args.Get(0).(type) {
	case TaskFactory:
		return v(ctx)
	case func(context.Context) humanoid.Task:
		return v(ctx)
	case humanoid.Task:
		return v
	}
	return NewManualTask(ctx)
}

// -- Locomotion Mock --

// MockLocomotionProvider mocks locomotion.Provider. Arrival subscriptions are
// kept by the mock itself so tests can fire them with Arrive.
type MockLocomotionProvider struct {
	mock.Mock

	mu     sync.Mutex
	subs   map[int]func()
	nextID int
}

var _ locomotion.Provider = (*MockLocomotionProvider)(nil)

func (m *MockLocomotionProvider) CanReach(position scene.Vector3) bool {
	args := m.Called(position)
	return args.Bool(0)
}

func (m *MockLocomotionProvider) CanReachNear(position scene.Vector3, maxRadius float64) (bool, scene.Vector3) {
	args := m.Called(position, maxRadius)
	return args.Bool(0), args.Get(1).(scene.Vector3)
}

func (m *MockLocomotionProvider) SetDestination(position scene.Vector3) bool {
	args := m.Called(position)
	return args.Bool(0)
}

func (m *MockLocomotionProvider) Stop() {
	m.Called()
}

func (m *MockLocomotionProvider) OnArrival(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs == nil {
		m.subs = make(map[int]func())
	}
	m.nextID++
	id := m.nextID
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Subscribers counts live arrival subscriptions.
func (m *MockLocomotionProvider) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Arrive fires every live arrival subscription.
func (m *MockLocomotionProvider) Arrive() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for id := 1; id <= m.nextID; id++ {
		if fn, ok := m.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
