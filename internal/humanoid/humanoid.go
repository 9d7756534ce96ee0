// internal/humanoid/humanoid.go
package humanoid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// GazeRestOffset is where the gaze target sits relative to the body root when
// nothing is being looked at.
var GazeRestOffset = scene.Vector3{X: 0, Y: 1.5, Z: 2}

// ErrUnknownEffector is reported for motion requests naming an effector the
// body does not have.
var ErrUnknownEffector = errors.New("humanoid: unknown effector")

// Rig is the simulated motion executor. It owns the IK target nodes of one
// body and moves them a little every time Advance is called. A node only ever
// follows its most recent motion request.
type Rig struct {
	logger   *zap.Logger
	registry *Registry
	gaze     *scene.Node
	gazeRest *scene.Node

	mu      sync.Mutex
	motions map[*scene.Node]*motion
	order   []*scene.Node
}

var _ MotionExecutor = (*Rig)(nil)

// NewRig creates a rig driving the effectors of registry.
func NewRig(registry *Registry, logger *zap.Logger) *Rig {
	root := registry.Root()
	return &Rig{
		logger:   logger.Named("rig").With(zap.String("body", root.Name())),
		registry: registry,
		gazeRest: root.NewChild("gaze_rest", GazeRestOffset),
		gaze:     root.NewChild("gaze_target", GazeRestOffset),
		motions:  make(map[*scene.Node]*motion),
	}
}

func (r *Rig) Registry() *Registry { return r.registry }

// Gaze is the look-at target node.
func (r *Rig) Gaze() *scene.Node { return r.gaze }

// Pending reports the number of unresolved motions.
func (r *Rig) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.motions)
}

func (r *Rig) MoveEffectorTo(ctx context.Context, effector EffectorType, destination scene.Vector3, duration time.Duration, curve Curve) Task {
	eff, ok := r.registry.Get(effector)
	if !ok {
		return failedTask{err: fmt.Errorf("%w: %s", ErrUnknownEffector, effector)}
	}
	return r.start(newMotion(ctx, effector.String()+" reach", eff.Target(),
		func() scene.Vector3 { return destination }, duration, curve))
}

func (r *Rig) ReturnEffectorToRest(ctx context.Context, effector EffectorType, duration time.Duration, curve Curve) Task {
	eff, ok := r.registry.Get(effector)
	if !ok {
		return failedTask{err: fmt.Errorf("%w: %s", ErrUnknownEffector, effector)}
	}
	return r.start(newMotion(ctx, effector.String()+" return", eff.Target(),
		eff.Rest().Position, duration, curve))
}

func (r *Rig) LookAt(ctx context.Context, point scene.Vector3, duration time.Duration) Task {
	return r.start(newMotion(ctx, "look at", r.gaze,
		func() scene.Vector3 { return point }, duration, EaseInOut))
}

func (r *Rig) ReturnGazeToRest(ctx context.Context, duration time.Duration) Task {
	return r.start(newMotion(ctx, "gaze return", r.gaze, r.gazeRest.Position, duration, EaseInOut))
}

func (r *Rig) start(m *motion) Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.motions[m.node]; ok {
		prev.fail(ErrSuperseded)
		r.logger.Debug("Motion superseded.", zap.String("motion", prev.label))
	} else {
		r.order = append(r.order, m.node)
	}
	r.motions[m.node] = m
	r.logger.Debug("Motion started.",
		zap.String("motion", m.label),
		zap.Duration("duration", m.duration))
	return m
}

// Advance steps every pending motion by dt. Requests issued during this call
// are first stepped on the next one.
func (r *Rig) Advance(dt time.Duration) {
	r.mu.Lock()
	pending := make([]*motion, 0, len(r.order))
	for _, n := range r.order {
		pending = append(pending, r.motions[n])
	}
	r.mu.Unlock()

	for _, m := range pending {
		if !m.step(dt) {
			continue
		}
		if err := m.Err(); err != nil && !errors.Is(err, ErrSuperseded) {
			r.logger.Debug("Motion cancelled.", zap.String("motion", m.label), zap.Error(err))
		}
		r.remove(m)
	}
}

func (r *Rig) remove(m *motion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.motions[m.node] != m {
		return
	}
	delete(r.motions, m.node)
	for i, n := range r.order {
		if n == m.node {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
