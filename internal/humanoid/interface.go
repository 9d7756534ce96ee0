// internal/humanoid/interface.go
package humanoid

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// ErrSuperseded is reported by a task whose node was claimed by a newer motion
// before it finished.
var ErrSuperseded = errors.New("humanoid: motion superseded by a newer request")

// Task is a motion request spanning several frames. It resolves at most once:
// either Done turns true, or Err reports why it never will (cancellation of the
// request context, or supersession).
type Task interface {
	Done() bool
	Err() error
}

// MotionExecutor moves effector targets and the gaze target. Implementations
// never block the caller; progress is observed by polling the returned Task.
// Cancelling ctx cancels the task.
type MotionExecutor interface {
	MoveEffectorTo(ctx context.Context, effector EffectorType, destination scene.Vector3, duration time.Duration, curve Curve) Task
	ReturnEffectorToRest(ctx context.Context, effector EffectorType, duration time.Duration, curve Curve) Task
	LookAt(ctx context.Context, point scene.Vector3, duration time.Duration) Task
	ReturnGazeToRest(ctx context.Context, duration time.Duration) Task
}
