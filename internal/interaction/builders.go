// internal/interaction/builders.go
package interaction

import (
	"fmt"

	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// TouchInteraction builds an idle touch interaction.
func (s *System) TouchInteraction(target interactable.Interactable, effector humanoid.EffectorType) *Interaction {
	return s.NewInteraction(target, Touch, effector)
}

// PickInteraction builds an idle pick interaction. When the hold phase ends
// the target is re-parented onto the effector's attach point at zero offset,
// flagged as carried and recorded in the carried registry.
func (s *System) PickInteraction(target interactable.Pickable, effector humanoid.EffectorType) (*Interaction, error) {
	if target == nil {
		return nil, ErrTargetMissing
	}
	if target.IsBeingCarried() {
		return nil, ErrAlreadyCarried
	}
	eff, ok := s.registry.Get(effector)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffector, effector)
	}
	attach := eff.AttachPoint()
	if attach == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAttachPoint, effector)
	}

	i := s.NewInteraction(target, Pick, effector)
	i.On(EventHeld, func(*Interaction) {
		node := target.Transform()
		node.SetParent(attach, false)
		node.SetLocalPosition(scene.Zero)
		target.SetCarried(true)
		s.SetCarried(effector, target)
		target.OnPickup()
	})
	return i, nil
}

// ReachInteraction builds an idle touch interaction towards a bare point. The
// throwaway marker target is destroyed when the interaction completes.
func (s *System) ReachInteraction(point scene.Vector3, effector humanoid.EffectorType) *Interaction {
	marker := interactable.NewMarker(point)
	i := s.NewInteraction(marker, Touch, effector)
	i.On(EventCompleted, func(*Interaction) { marker.Destroy() })
	return i
}

// StartTouchInteraction builds and starts a touch interaction. The
// interaction is returned even when starting it failed.
func (s *System) StartTouchInteraction(target interactable.Interactable, effector humanoid.EffectorType) (*Interaction, error) {
	i := s.TouchInteraction(target, effector)
	return i, s.Start(i)
}

// StartPickInteraction builds and starts a pick interaction.
func (s *System) StartPickInteraction(target interactable.Pickable, effector humanoid.EffectorType) (*Interaction, error) {
	i, err := s.PickInteraction(target, effector)
	if err != nil {
		return nil, err
	}
	return i, s.Start(i)
}

// StartReachInteraction builds and starts a reach interaction.
func (s *System) StartReachInteraction(point scene.Vector3, effector humanoid.EffectorType) (*Interaction, error) {
	i := s.ReachInteraction(point, effector)
	return i, s.Start(i)
}
