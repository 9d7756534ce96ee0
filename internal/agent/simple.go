// internal/agent/simple.go
package agent

import (
	"github.com/xkilldash9x/embody-cli/internal/action"
	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
	"github.com/xkilldash9x/embody-cli/internal/interaction"
	"github.com/xkilldash9x/embody-cli/internal/locomotion"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// Simple is an agent with a body: it builds actions against its own
// interaction system and locomotion provider and enqueues them.
type Simple struct {
	*Agent
	system     *interaction.System
	provider   locomotion.Provider
	nearRadius float64
}

// NewSimple wraps agent. provider may be nil for a body that cannot walk.
func NewSimple(agent *Agent, system *interaction.System, provider locomotion.Provider, nearRadius float64) *Simple {
	return &Simple{Agent: agent, system: system, provider: provider, nearRadius: nearRadius}
}

func (s *Simple) System() *interaction.System   { return s.system }
func (s *Simple) Provider() locomotion.Provider { return s.provider }

func (s *Simple) Touch(target interactable.Interactable, effector humanoid.EffectorType) *action.Touch {
	a := action.NewTouch(s.system, target, effector, s.logger)
	s.Enqueue(a)
	return a
}

func (s *Simple) Pick(target interactable.Pickable, effector humanoid.EffectorType) *action.Pick {
	a := action.NewPick(s.system, target, effector, s.logger)
	s.Enqueue(a)
	return a
}

func (s *Simple) Drop(item interactable.Pickable, destination scene.Vector3, effector humanoid.EffectorType) *action.Drop {
	a := action.NewDrop(s.system, item, destination, effector, s.logger)
	s.Enqueue(a)
	return a
}

// Walk enqueues a walk. It returns nil without enqueuing when the body has no
// locomotion provider.
func (s *Simple) Walk(destination scene.Vector3) *action.Walk {
	if s.provider == nil {
		s.logger.Warn("Walk requested for a body without locomotion.")
		return nil
	}
	a := action.NewWalk(s.provider, destination, s.nearRadius, s.logger)
	s.Enqueue(a)
	return a
}
