// internal/engine/engine_test.go
package engine

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/embody-cli/internal/action"
	"github.com/xkilldash9x/embody-cli/internal/agent"
	"github.com/xkilldash9x/embody-cli/internal/config"
	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
	"github.com/xkilldash9x/embody-cli/internal/interaction"
	"github.com/xkilldash9x/embody-cli/internal/locomotion"
	"github.com/xkilldash9x/embody-cli/internal/metrics"
	"github.com/xkilldash9x/embody-cli/internal/mocks"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

func engineConfig(cfg config.EngineConfig) *mocks.MockConfig {
	m := new(mocks.MockConfig)
	m.On("Engine").Return(cfg)
	return m
}

func fastEngine() config.EngineConfig {
	return config.EngineConfig{FrameRate: 20, MaxFrames: 1000, StopWhenIdle: true}
}

func newEntity(t *testing.T, logger *zap.Logger, name string, provider locomotion.Provider) *Entity {
	t.Helper()
	body := scene.NewNode(name, scene.Zero)
	reg := humanoid.NewRegistry(body)
	rig := humanoid.NewRig(reg, logger)

	opts := interaction.DefaultOptions()
	opts.ReachDuration = 100 * time.Millisecond
	opts.HoldDuration = 50 * time.Millisecond
	opts.ReturnDuration = 100 * time.Millisecond
	sys := interaction.NewSystem(reg, rig, logger, interaction.WithDefaults(opts))

	return &Entity{
		Name:         name,
		Rig:          rig,
		Interactions: sys,
		Agent:        agent.NewSimple(agent.New(name, logger, nil), sys, provider, 0),
	}
}

func TestNew_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := New(nil, logger, nil)
	assert.Error(t, err)

	_, err = New(engineConfig(fastEngine()), nil, nil)
	assert.Error(t, err)

	_, err = New(engineConfig(config.EngineConfig{FrameRate: 0}), logger, nil)
	assert.Error(t, err)
}

func TestEngine_Add(t *testing.T) {
	logger := zaptest.NewLogger(t)
	e, err := New(engineConfig(fastEngine()), logger, nil)
	require.NoError(t, err)

	require.NoError(t, e.Add(newEntity(t, logger, "alice", nil)))
	assert.Error(t, e.Add(newEntity(t, logger, "alice", nil)), "duplicate name")
	assert.Error(t, e.Add(&Entity{Name: "ghost"}), "missing parts")
	assert.Error(t, e.Add(nil))

	got, ok := e.Entity("alice")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Name)
	_, ok = e.Entity("bob")
	assert.False(t, ok)
}

func TestEngine_RunUntilIdle(t *testing.T) {
	defer goleak.VerifyNone(t)
	logger := zaptest.NewLogger(t)
	reg := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(reg, "test")

	e, err := New(engineConfig(fastEngine()), logger, m)
	require.NoError(t, err)

	alice := newEntity(t, logger, "alice", nil)
	bob := newEntity(t, logger, "bob", nil)
	require.NoError(t, e.Add(alice))
	require.NoError(t, e.Add(bob))

	lamp := interactable.NewProp(scene.NewNode("lamp", scene.Vector3{X: 0.3, Y: 1.2, Z: 0.5}), "lamp")
	cup := interactable.NewItem(scene.NewNode("cup", scene.Vector3{X: -0.3, Y: 1, Z: 0.4}), "cup")
	touch := alice.Agent.Touch(lamp, humanoid.RightHand)
	pick := bob.Agent.Pick(cup, humanoid.LeftHand)

	frames, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Positive(t, frames)
	assert.Equal(t, frames, e.Frames())
	assert.True(t, e.Idle())

	assert.Equal(t, action.Completed, touch.State(), touch.Log())
	assert.Equal(t, action.Completed, pick.State(), pick.Log())
	assert.True(t, cup.IsBeingCarried())
	assert.Equal(t, float64(frames), gatheredCounter(t, reg, "test_engine_frames_total"))
	count, err := testutil.GatherAndCount(reg, "test_engine_frame_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// gatheredCounter reads a counter value from reg by fully qualified name.
func gatheredCounter(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestEngine_EmptyWorldStopsImmediately(t *testing.T) {
	e, err := New(engineConfig(fastEngine()), zaptest.NewLogger(t), nil)
	require.NoError(t, err)

	frames, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, frames)
}

func TestEngine_FrameLimit(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := fastEngine()
	cfg.MaxFrames = 3
	e, err := New(engineConfig(cfg), logger, nil)
	require.NoError(t, err)

	ent := newEntity(t, logger, "slow", nil)
	require.NoError(t, e.Add(ent))
	lever := interactable.NewProp(scene.NewNode("lever", scene.Vector3{Z: 0.6}), "lever")
	ent.Agent.Touch(lever, humanoid.RightHand)

	frames, err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrFrameLimit)
	assert.Equal(t, 3, frames)

	// Without stop_when_idle the budget is the normal end of a run.
	cfg.StopWhenIdle = false
	e2, err := New(engineConfig(cfg), logger, nil)
	require.NoError(t, err)
	frames, err = e2.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, frames)
}

func TestEngine_CancelHaltsEntities(t *testing.T) {
	defer goleak.VerifyNone(t)
	logger := zaptest.NewLogger(t)

	dest := scene.Vector3{X: 5}
	provider := new(mocks.MockLocomotionProvider)
	provider.On("CanReach", dest).Return(true)
	provider.On("SetDestination", dest).Return(true)
	provider.On("Stop").Maybe()

	cfg := config.EngineConfig{FrameRate: 200, Realtime: true, StopWhenIdle: true}
	e, err := New(engineConfig(cfg), logger, nil)
	require.NoError(t, err)
	ent := newEntity(t, logger, "walker", provider)
	require.NoError(t, e.Add(ent))
	walk := ent.Agent.Walk(dest)

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		frames int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		frames, err := e.Run(ctx)
		done <- result{frames, err}
	}()

	require.Eventually(t, func() bool { return e.Frames() > 2 }, 2*time.Second, 5*time.Millisecond)
	_, err = e.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	cancel()
	select {
	case res := <-done:
		assert.ErrorIs(t, res.err, context.Canceled)
		assert.Positive(t, res.frames)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop after cancellation")
	}
	assert.Equal(t, action.Stopped, walk.State())
	provider.AssertCalled(t, "SetDestination", mock.Anything)
}

func TestEngine_StepOrder(t *testing.T) {
	logger := zaptest.NewLogger(t)
	e, err := New(engineConfig(fastEngine()), logger, nil)
	require.NoError(t, err)

	ent := newEntity(t, logger, "order", nil)
	require.NoError(t, e.Add(ent))
	bell := interactable.NewProp(scene.NewNode("bell", scene.Vector3{Z: 0.5}), "bell")
	touch := ent.Agent.Touch(bell, humanoid.RightHand)

	// Frame 1: the agent dispatches and the interaction starts reaching.
	e.Step(50 * time.Millisecond)
	require.NotNil(t, touch.Interaction())
	assert.Equal(t, interaction.Reaching, touch.Interaction().State())

	// Frames 2-3: the rig finishes the reach before the system polls it.
	e.Step(50 * time.Millisecond)
	e.Step(50 * time.Millisecond)
	assert.Equal(t, interaction.Holding, touch.Interaction().State())
}
