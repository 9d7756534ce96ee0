// internal/humanoid/movement.go
package humanoid

import (
	"context"
	"sync"
	"time"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// motion interpolates one node towards a destination over a fixed duration.
// The destination is re-evaluated every frame so that rest poses follow the
// body while it walks.
type motion struct {
	ctx      context.Context
	label    string
	node     *scene.Node
	from     scene.Vector3
	to       func() scene.Vector3
	duration time.Duration
	curve    Curve

	mu      sync.Mutex
	elapsed time.Duration
	done    bool
	err     error
}

var _ Task = (*motion)(nil)

func newMotion(ctx context.Context, label string, node *scene.Node, to func() scene.Vector3, d time.Duration, curve Curve) *motion {
	if ctx == nil {
		ctx = context.Background()
	}
	if d < 0 {
		d = 0
	}
	return &motion{
		ctx:      ctx,
		label:    label,
		node:     node,
		from:     node.Position(),
		to:       to,
		duration: d,
		curve:    curve,
	}
}

func (m *motion) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

func (m *motion) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// resolved reports whether the task has either finished or failed.
func (m *motion) resolved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done || m.err != nil
}

func (m *motion) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done || m.err != nil {
		return
	}
	m.err = err
}

// step advances the interpolation by dt and reports whether the motion
// resolved during this step.
func (m *motion) step(dt time.Duration) bool {
	if err := m.ctx.Err(); err != nil {
		m.fail(err)
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done || m.err != nil {
		return true
	}

	m.elapsed += dt
	t := 1.0
	if m.duration > 0 && m.elapsed < m.duration {
		t = float64(m.elapsed) / float64(m.duration)
	}
	m.node.SetPosition(m.from.Lerp(m.to(), m.curve.Evaluate(t)))
	if t >= 1 {
		m.done = true
	}
	return m.done
}

// failedTask is returned for requests that cannot be executed at all.
type failedTask struct{ err error }

func (f failedTask) Done() bool { return false }
func (f failedTask) Err() error { return f.err }
