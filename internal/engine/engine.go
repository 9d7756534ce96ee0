// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/embody-cli/internal/agent"
	"github.com/xkilldash9x/embody-cli/internal/config"
	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interaction"
	"github.com/xkilldash9x/embody-cli/internal/locomotion"
	"github.com/xkilldash9x/embody-cli/internal/metrics"
)

var (
	// ErrAlreadyRunning is returned when Run is called on a running engine.
	ErrAlreadyRunning = errors.New("engine is already running")
	// ErrFrameLimit is returned when a run hits max_frames with work left.
	ErrFrameLimit = errors.New("frame limit reached before all agents went idle")
)

// Entity is one simulated body: its rig, optional locomotion, interaction
// system and action queue.
type Entity struct {
	Name         string
	Rig          *humanoid.Rig
	Walker       *locomotion.Walker
	Interactions *interaction.System
	Agent        *agent.Simple
}

func (e *Entity) validate() error {
	switch {
	case e == nil:
		return errors.New("entity is nil")
	case e.Name == "":
		return errors.New("entity name is required")
	case e.Rig == nil:
		return fmt.Errorf("entity %q has no rig", e.Name)
	case e.Interactions == nil:
		return fmt.Errorf("entity %q has no interaction system", e.Name)
	case e.Agent == nil:
		return fmt.Errorf("entity %q has no agent", e.Name)
	}
	return nil
}

// step advances one frame in dependency order: motions resolve before the
// interaction system polls them, and the agent sees the resulting state last.
func (e *Entity) step(dt time.Duration) {
	e.Rig.Advance(dt)
	if e.Walker != nil {
		e.Walker.Tick(dt)
	}
	e.Interactions.Tick(dt)
	e.Agent.Tick()
}

func (e *Entity) idle() bool {
	if !e.Agent.Idle() || !e.Interactions.Idle() || e.Rig.Pending() > 0 {
		return false
	}
	return e.Walker == nil || !e.Walker.Moving()
}

// halt stops whatever the entity is doing without waiting for it to settle.
func (e *Entity) halt() {
	e.Agent.StopCurrent()
	e.Interactions.StopAll()
	if e.Walker != nil {
		e.Walker.Stop()
	}
}

// Engine steps every entity once per frame with a fixed time step. All
// simulation state is touched only from the goroutine running Run or Step.
type Engine struct {
	cfg     config.Interface
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	entities []*Entity
	frames   int

	// stateLock guards the running flag.
	stateLock sync.Mutex
	isRunning bool
}

// New creates an engine. m may be nil.
func New(cfg config.Interface, logger *zap.Logger, m *metrics.Metrics) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("engine requires a configuration")
	}
	if logger == nil {
		return nil, errors.New("engine requires a logger")
	}
	if cfg.Engine().FrameRate <= 0 {
		return nil, fmt.Errorf("engine frame_rate must be positive, got %d", cfg.Engine().FrameRate)
	}
	return &Engine{
		cfg:     cfg,
		logger:  logger.Named("engine"),
		metrics: m,
	}, nil
}

// Add registers an entity. Entity names are unique.
func (e *Engine) Add(ent *Entity) error {
	if err := ent.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.entities {
		if existing.Name == ent.Name {
			return fmt.Errorf("entity %q already exists", ent.Name)
		}
	}
	e.entities = append(e.entities, ent)
	return nil
}

// Entity looks an entity up by name.
func (e *Engine) Entity(name string) (*Entity, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ent := range e.entities {
		if ent.Name == name {
			return ent, true
		}
	}
	return nil, false
}

// Entities returns the registered entities in insertion order.
func (e *Engine) Entities() []*Entity {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Entity, len(e.entities))
	copy(out, e.entities)
	return out
}

// Frames is the number of frames stepped so far.
func (e *Engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Idle reports whether every entity has nothing left to do.
func (e *Engine) Idle() bool {
	for _, ent := range e.Entities() {
		if !ent.idle() {
			return false
		}
	}
	return true
}

// Step advances every entity by dt, in the order they were added.
func (e *Engine) Step(dt time.Duration) {
	start := time.Now()
	for _, ent := range e.Entities() {
		ent.step(dt)
	}
	e.mu.Lock()
	e.frames++
	e.mu.Unlock()
	e.metrics.ObserveFrame(time.Since(start))
}

// Run steps frames of FrameDuration until the context is cancelled, the
// frame budget runs out, or (with stop_when_idle) every entity is idle. It
// returns the number of frames stepped by this call.
func (e *Engine) Run(ctx context.Context) (int, error) {
	e.stateLock.Lock()
	if e.isRunning {
		e.stateLock.Unlock()
		return 0, ErrAlreadyRunning
	}
	e.isRunning = true
	e.stateLock.Unlock()
	defer func() {
		e.stateLock.Lock()
		e.isRunning = false
		e.stateLock.Unlock()
	}()

	cfg := e.cfg.Engine()
	dt := cfg.FrameDuration()
	var limiter *rate.Limiter
	if cfg.Realtime {
		limiter = rate.NewLimiter(rate.Limit(cfg.FrameRate), 1)
	}

	e.logger.Info("Engine run starting.",
		zap.Int("entities", len(e.Entities())),
		zap.Duration("dt", dt),
		zap.Bool("realtime", cfg.Realtime),
		zap.Int("max_frames", cfg.MaxFrames))

	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			e.halt()
			e.logger.Warn("Engine run cancelled.", zap.Int("frames", frames), zap.Error(err))
			return frames, err
		}
		if cfg.StopWhenIdle && e.Idle() {
			e.logger.Info("Engine run finished, all entities idle.", zap.Int("frames", frames))
			return frames, nil
		}
		if cfg.MaxFrames > 0 && frames >= cfg.MaxFrames {
			if cfg.StopWhenIdle {
				e.logger.Warn("Engine run hit the frame limit.", zap.Int("frames", frames))
				return frames, ErrFrameLimit
			}
			return frames, nil
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				e.halt()
				return frames, fmt.Errorf("waiting for frame slot: %w", err)
			}
		}
		e.Step(dt)
		frames++
	}
}

func (e *Engine) halt() {
	for _, ent := range e.Entities() {
		ent.halt()
	}
}
