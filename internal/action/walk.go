// internal/action/walk.go
package action

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/locomotion"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// DefaultNearRadius bounds the fallback search when a destination cannot be
// reached directly.
const DefaultNearRadius = 5.0

// Walk moves the body to a destination. It never silently succeeds: an
// unreachable destination either stops (with a fallback point) or fails.
type Walk struct {
	Base
	provider    locomotion.Provider
	destination scene.Vector3
	nearRadius  float64

	walkMu      sync.Mutex
	unsubscribe func()
	walking     bool
	fallback    *scene.Vector3
}

var _ Action = (*Walk)(nil)

// NewWalk creates a walk. A non-positive nearRadius selects DefaultNearRadius.
func NewWalk(provider locomotion.Provider, destination scene.Vector3, nearRadius float64, logger *zap.Logger) *Walk {
	if nearRadius <= 0 {
		nearRadius = DefaultNearRadius
	}
	w := &Walk{provider: provider, destination: destination, nearRadius: nearRadius}
	w.init(KindWalk, logger)
	return w
}

func (w *Walk) Destination() scene.Vector3 { return w.destination }

// Fallback is the nearest reachable point reported when the walk stopped
// short.
func (w *Walk) Fallback() (scene.Vector3, bool) {
	w.walkMu.Lock()
	defer w.walkMu.Unlock()
	if w.fallback == nil {
		return scene.Zero, false
	}
	return *w.fallback, true
}

func (w *Walk) Setup() {
	if w.provider.CanReach(w.destination) {
		w.SetState(Updating)
		return
	}
	ok, near := w.provider.CanReachNear(w.destination, w.nearRadius)
	if !ok {
		w.Fail(ErrCodeUnreachable, "destination %s is unreachable and nothing is reachable within %.2f", w.destination, w.nearRadius)
		return
	}
	w.walkMu.Lock()
	w.fallback = &near
	w.walkMu.Unlock()
	w.Stop(ErrCodeUnreachableNear, "destination %s is unreachable; nearest reachable point is %s", w.destination, near)
}

// Start subscribes to arrival before asking the provider to move, so an
// immediate arrival is not missed.
func (w *Walk) Start() {
	unsubscribe := w.provider.OnArrival(func() {
		w.release()
		w.Complete("arrived at %s", w.destination)
	})
	w.walkMu.Lock()
	w.unsubscribe = unsubscribe
	w.walking = true
	w.walkMu.Unlock()

	if !w.provider.SetDestination(w.destination) {
		w.release()
		w.Fail(ErrCodeUnreachable, "locomotion refused destination %s", w.destination)
	}
}

// release drops the arrival subscription and reports whether the walk was
// still in progress.
func (w *Walk) release() bool {
	w.walkMu.Lock()
	unsubscribe, walking := w.unsubscribe, w.walking
	w.unsubscribe, w.walking = nil, false
	w.walkMu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	return walking
}

func (w *Walk) OnStop() {
	if w.release() {
		w.provider.Stop()
	}
	w.Base.OnStop()
}

func (w *Walk) OnFail() {
	w.release()
	w.Base.OnFail()
}
