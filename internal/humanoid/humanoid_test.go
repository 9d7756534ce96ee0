// internal/humanoid/humanoid_test.go
package humanoid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

const frame = 100 * time.Millisecond

func setupRig(t *testing.T) (*Rig, *Registry) {
	t.Helper()
	reg := NewRegistry(scene.NewNode("body", scene.Zero))
	return NewRig(reg, zaptest.NewLogger(t)), reg
}

func TestRig_MoveEffectorTo(t *testing.T) {
	rig, reg := setupRig(t)
	eff, _ := reg.Get(RightHand)
	start := eff.Target().Position()
	dest := scene.Vector3{X: 1, Y: 1, Z: 1}

	task := rig.MoveEffectorTo(context.Background(), RightHand, dest, 4*frame, Linear)
	assert.False(t, task.Done())
	assert.Equal(t, 1, rig.Pending())

	rig.Advance(2 * frame)
	assert.False(t, task.Done())
	assert.True(t, eff.Target().Position().ApproxEqual(start.Lerp(dest, 0.5), 1e-9))

	rig.Advance(2 * frame)
	require.True(t, task.Done())
	assert.NoError(t, task.Err())
	assert.True(t, eff.Target().Position().ApproxEqual(dest, 1e-9))
	assert.Equal(t, 0, rig.Pending())
}

func TestRig_ZeroDurationCompletesOnNextAdvance(t *testing.T) {
	rig, reg := setupRig(t)
	eff, _ := reg.Get(LeftFoot)
	dest := scene.Vector3{X: -0.1, Y: 0.3, Z: 0.5}

	task := rig.MoveEffectorTo(context.Background(), LeftFoot, dest, 0, nil)
	assert.False(t, task.Done())

	rig.Advance(0)
	assert.True(t, task.Done())
	assert.Equal(t, dest, eff.Target().Position())
}

func TestRig_ReturnEffectorToRestFollowsBody(t *testing.T) {
	rig, reg := setupRig(t)
	eff, _ := reg.Get(LeftHand)
	eff.Target().SetPosition(scene.Vector3{X: 0, Y: 1, Z: 1})

	task := rig.ReturnEffectorToRest(context.Background(), LeftHand, 2*frame, EaseOut)
	rig.Advance(frame)
	reg.Root().SetPosition(scene.Vector3{X: 3})
	rig.Advance(frame)

	require.True(t, task.Done())
	assert.True(t, eff.Target().Position().ApproxEqual(eff.Rest().Position(), 1e-9))
}

func TestRig_CancelledContextFailsTask(t *testing.T) {
	rig, _ := setupRig(t)
	ctx, cancel := context.WithCancel(context.Background())

	task := rig.MoveEffectorTo(ctx, RightFoot, scene.Vector3{Z: 1}, time.Second, nil)
	rig.Advance(frame)
	cancel()
	rig.Advance(frame)

	assert.False(t, task.Done())
	assert.ErrorIs(t, task.Err(), context.Canceled)
	assert.Equal(t, 0, rig.Pending())
}

func TestRig_NewRequestSupersedesOld(t *testing.T) {
	rig, reg := setupRig(t)
	eff, _ := reg.Get(RightHand)

	first := rig.MoveEffectorTo(context.Background(), RightHand, scene.Vector3{X: 5}, time.Second, nil)
	second := rig.ReturnEffectorToRest(context.Background(), RightHand, frame, nil)

	assert.ErrorIs(t, first.Err(), ErrSuperseded)
	assert.Equal(t, 1, rig.Pending())

	rig.Advance(frame)
	assert.True(t, second.Done())
	assert.False(t, first.Done())
	assert.Equal(t, eff.Rest().Position(), eff.Target().Position())
}

func TestRig_UnknownEffector(t *testing.T) {
	reg := NewRegistryWithLayout(scene.NewNode("body", scene.Zero), map[EffectorType]Layout{})
	rig := NewRig(reg, zaptest.NewLogger(t))

	task := rig.MoveEffectorTo(context.Background(), RightHand, scene.Zero, frame, nil)
	assert.ErrorIs(t, task.Err(), ErrUnknownEffector)
	assert.False(t, task.Done())
	assert.ErrorIs(t, rig.ReturnEffectorToRest(context.Background(), RightHand, frame, nil).Err(), ErrUnknownEffector)
	assert.Equal(t, 0, rig.Pending())
}

func TestRig_GazeLookAtAndReturn(t *testing.T) {
	rig, reg := setupRig(t)
	point := scene.Vector3{X: 2, Y: 0.5, Z: 2}

	look := rig.LookAt(context.Background(), point, 3*frame)
	for i := 0; i < 3; i++ {
		rig.Advance(frame)
	}
	require.True(t, look.Done())
	assert.True(t, rig.Gaze().Position().ApproxEqual(point, 1e-9))

	back := rig.ReturnGazeToRest(context.Background(), frame)
	rig.Advance(frame)
	require.True(t, back.Done())
	assert.True(t, rig.Gaze().Position().ApproxEqual(reg.Root().Position().Add(GazeRestOffset), 1e-9))
}

func TestCurve(t *testing.T) {
	for _, name := range []string{"", "linear", "ease_in", "ease_out", "ease_in_out"} {
		c, err := CurveByName(name)
		require.NoError(t, err, name)
		assert.InDelta(t, 0.0, c.Evaluate(0), 1e-12, name)
		assert.InDelta(t, 1.0, c.Evaluate(1), 1e-12, name)
		assert.InDelta(t, 1.0, c.Evaluate(3), 1e-12, "clamped above: "+name)
		assert.InDelta(t, 0.0, c.Evaluate(-1), 1e-12, "clamped below: "+name)
	}
	_, err := CurveByName("wobble")
	assert.Error(t, err)

	var unset Curve
	assert.InDelta(t, 0.5, unset.Evaluate(0.5), 1e-12)
	assert.InDelta(t, 0.25, EaseIn(0.5), 1e-12)
	assert.InDelta(t, 0.75, EaseOut(0.5), 1e-12)
}

func TestEffectorType_Parse(t *testing.T) {
	for _, typ := range AllEffectors() {
		got, err := ParseEffectorType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	got, err := ParseEffectorType("LeftHand")
	require.NoError(t, err)
	assert.Equal(t, LeftHand, got)

	_, err = ParseEffectorType("tail")
	assert.Error(t, err)
}
