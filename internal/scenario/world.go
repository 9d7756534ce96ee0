// internal/scenario/world.go
package scenario

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/agent"
	"github.com/xkilldash9x/embody-cli/internal/config"
	"github.com/xkilldash9x/embody-cli/internal/engine"
	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
	"github.com/xkilldash9x/embody-cli/internal/interaction"
	"github.com/xkilldash9x/embody-cli/internal/locomotion"
	"github.com/xkilldash9x/embody-cli/internal/metrics"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// World is a scenario instantiated against an engine.
type World struct {
	Scenario *Scenario
	Engine   *engine.Engine
	Grid     *locomotion.NavGrid

	props map[string]*interactable.Prop
	items map[string]*interactable.Item
}

// engineOverride layers a scenario's frame loop settings over the
// configuration.
type engineOverride struct {
	config.Interface
	engine config.EngineConfig
}

func (o engineOverride) Engine() config.EngineConfig { return o.engine }

// Build creates the props, bodies and action queues a scenario describes. m
// may be nil.
func Build(s *Scenario, cfg config.Interface, logger *zap.Logger, m *metrics.Metrics) (*World, error) {
	if s == nil {
		return nil, errors.New("scenario is nil")
	}
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	logger = logger.Named("scenario").With(zap.String("scenario", s.Name))

	engCfg := cfg.Engine()
	if s.Engine.FrameRate > 0 {
		engCfg.FrameRate = s.Engine.FrameRate
	}
	if s.Engine.MaxFrames > 0 {
		engCfg.MaxFrames = s.Engine.MaxFrames
	}
	eng, err := engine.New(engineOverride{Interface: cfg, engine: engCfg}, logger, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	opts, err := interaction.OptionsFromConfig(cfg.Interaction())
	if err != nil {
		return nil, fmt.Errorf("invalid interaction configuration: %w", err)
	}

	w := &World{
		Scenario: s,
		Engine:   eng,
		props:    make(map[string]*interactable.Prop, len(s.Props)),
		items:    make(map[string]*interactable.Item),
	}
	if s.Nav != nil {
		if w.Grid, err = locomotion.NewNavGrid(s.Nav.Origin.Vector(), s.Nav.CellSize, s.Nav.Rows); err != nil {
			return nil, fmt.Errorf("invalid nav grid: %w", err)
		}
	}

	for _, p := range s.Props {
		node := scene.NewNode(p.Name, p.Position.Vector())
		if p.Pickable {
			item := interactable.NewItem(node, p.Name)
			w.items[p.Name] = item
			w.props[p.Name] = item.Prop
		} else {
			w.props[p.Name] = interactable.NewProp(node, p.Name)
		}
		w.props[p.Name].SetInteractable(p.interactable())
	}

	loco := cfg.Locomotion()
	for _, a := range s.Agents {
		ent, err := w.buildEntity(a, opts, loco, logger, m)
		if err != nil {
			return nil, err
		}
		if err := eng.Add(ent); err != nil {
			return nil, err
		}
	}
	logger.Info("Scenario built.",
		zap.Int("props", len(s.Props)),
		zap.Int("agents", len(s.Agents)),
		zap.Bool("nav", w.Grid != nil))
	return w, nil
}

func (w *World) buildEntity(a Agent, opts interaction.Options, loco config.LocomotionConfig, logger *zap.Logger, m *metrics.Metrics) (*engine.Entity, error) {
	body := scene.NewNode(a.Name, a.Position.Vector())
	registry := humanoid.NewRegistry(body)
	rig := humanoid.NewRig(registry, logger)
	sys := interaction.NewSystem(registry, rig, logger,
		interaction.WithDefaults(opts),
		interaction.WithMetrics(m))

	ent := &engine.Entity{Name: a.Name, Rig: rig, Interactions: sys}
	var provider locomotion.Provider
	if w.Grid != nil {
		speed := a.Speed
		if speed == 0 {
			speed = loco.Speed
		}
		ent.Walker = locomotion.NewWalker(body, w.Grid, speed, loco.ArrivalTolerance, logger)
		provider = ent.Walker
	}
	ent.Agent = agent.NewSimple(agent.New(a.Name, logger, m), sys, provider, loco.NearRadius)

	for n, step := range a.Actions {
		if err := w.enqueue(ent.Agent, step); err != nil {
			return nil, fmt.Errorf("agent %q action %d: %w", a.Name, n, err)
		}
	}
	return ent, nil
}

func (w *World) enqueue(ag *agent.Simple, step Step) error {
	effector, err := step.effector()
	if err != nil {
		return err
	}
	switch step.Do {
	case StepWalk:
		if step.Destination == nil {
			return errors.New("walk needs a destination")
		}
		if ag.Walk(step.Destination.Vector()) == nil {
			return errors.New("walk needs a nav grid")
		}
	case StepTouch:
		prop, ok := w.props[step.Target]
		if !ok {
			return fmt.Errorf("unknown target %q", step.Target)
		}
		ag.Touch(prop, effector)
	case StepPick, StepDrop:
		item, ok := w.items[step.Target]
		if !ok {
			return fmt.Errorf("unknown pickable target %q", step.Target)
		}
		if step.Do == StepPick {
			ag.Pick(item, effector)
		} else if step.Destination != nil {
			ag.Drop(item, step.Destination.Vector(), effector)
		} else {
			return errors.New("drop needs a destination")
		}
	default:
		return fmt.Errorf("unknown action %q", step.Do)
	}
	return nil
}

// Prop returns a built prop by name.
func (w *World) Prop(name string) (*interactable.Prop, bool) {
	p, ok := w.props[name]
	return p, ok
}

// Item returns a built pickable prop by name.
func (w *World) Item(name string) (*interactable.Item, bool) {
	i, ok := w.items[name]
	return i, ok
}

// Run runs the engine to completion and reports what every agent did. The
// report is returned even when the run ended with an error.
func (w *World) Run(ctx context.Context) (*Report, error) {
	frames, err := w.Engine.Run(ctx)
	return w.Report(frames, err), err
}
