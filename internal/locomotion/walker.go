// internal/locomotion/walker.go
package locomotion

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

type subscription struct {
	id int
	fn func()
}

// Walker is the simulated Provider. It plans over a NavGrid and slides the
// body node along the planned waypoints every Tick.
type Walker struct {
	logger    *zap.Logger
	grid      *NavGrid
	body      *scene.Node
	speed     float64
	tolerance float64

	mu       sync.Mutex
	path     []scene.Vector3
	moving   bool
	subs     []subscription
	nextSub  int
	arrivals int
}

var _ Provider = (*Walker)(nil)

// NewWalker creates a walker moving body at speed metres per second.
func NewWalker(body *scene.Node, grid *NavGrid, speed, tolerance float64, logger *zap.Logger) *Walker {
	return &Walker{
		logger:    logger.Named("walker").With(zap.String("body", body.Name())),
		grid:      grid,
		body:      body,
		speed:     speed,
		tolerance: tolerance,
	}
}

func (w *Walker) Body() *scene.Node { return w.body }

func (w *Walker) plan(position scene.Vector3) ([]Cell, error) {
	start, ok := w.grid.CellAt(w.body.Position())
	if !ok {
		return nil, ErrNoPath
	}
	goal, ok := w.grid.CellAt(position)
	if !ok {
		return nil, ErrNoPath
	}
	return w.grid.FindPath(start, goal)
}

func (w *Walker) CanReach(position scene.Vector3) bool {
	_, err := w.plan(position)
	return err == nil
}

func (w *Walker) CanReachNear(position scene.Vector3, maxRadius float64) (bool, scene.Vector3) {
	start, ok := w.grid.CellAt(w.body.Position())
	if !ok {
		return false, scene.Zero
	}
	cell, ok := w.grid.Nearest(start, position, maxRadius)
	if !ok {
		return false, scene.Zero
	}
	return true, w.grid.Center(cell)
}

func (w *Walker) SetDestination(position scene.Vector3) bool {
	cells, err := w.plan(position)
	if err != nil {
		w.logger.Debug("No path to destination.", zap.Stringer("destination", position))
		return false
	}

	height := w.body.Position().Y
	waypoints := make([]scene.Vector3, 0, len(cells)+1)
	for _, c := range cells {
		p := w.grid.Center(c)
		p.Y = height
		waypoints = append(waypoints, p)
	}
	// The last cell centre is replaced by the exact destination.
	final := scene.Vector3{X: position.X, Y: height, Z: position.Z}
	if n := len(waypoints); n > 0 {
		waypoints[n-1] = final
	} else {
		waypoints = append(waypoints, final)
	}

	w.mu.Lock()
	w.path = waypoints
	w.moving = true
	w.mu.Unlock()
	w.logger.Debug("Walking.", zap.Stringer("destination", final), zap.Int("waypoints", len(waypoints)))
	return true
}

func (w *Walker) OnArrival(fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextSub++
	id := w.nextSub
	w.subs = append(w.subs, subscription{id: id, fn: fn})
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for n, s := range w.subs {
			if s.id == id {
				w.subs = append(w.subs[:n:n], w.subs[n+1:]...)
				return
			}
		}
	}
}

func (w *Walker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.path = nil
	w.moving = false
}

// Moving reports whether a destination is being walked to.
func (w *Walker) Moving() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.moving
}

// Arrivals counts completed walks.
func (w *Walker) Arrivals() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.arrivals
}

// Tick moves the body by speed*dt along the path and fires arrival once the
// last waypoint is within tolerance.
func (w *Walker) Tick(dt time.Duration) {
	w.mu.Lock()
	if !w.moving {
		w.mu.Unlock()
		return
	}
	pos := w.body.Position()
	budget := w.speed * dt.Seconds()
	for len(w.path) > 0 {
		next := w.path[0]
		dist := pos.Dist(next)
		if dist > budget {
			pos = pos.Add(next.Sub(pos).Normalize().Mul(budget))
			break
		}
		pos = next
		budget -= dist
		w.path = w.path[1:]
	}
	if len(w.path) == 1 && pos.Dist(w.path[0]) <= w.tolerance {
		pos = w.path[0]
		w.path = nil
	}
	w.body.SetPosition(pos)

	if len(w.path) > 0 {
		w.mu.Unlock()
		return
	}
	w.moving = false
	w.arrivals++
	subs := make([]subscription, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	w.logger.Debug("Arrived.", zap.Stringer("position", pos))
	for _, s := range subs {
		s.fn()
	}
}
