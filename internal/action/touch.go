// internal/action/touch.go
package action

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
	"github.com/xkilldash9x/embody-cli/internal/interaction"
)

// Touch reaches for a target with one effector and returns.
type Touch struct {
	Base
	system   *interaction.System
	target   interactable.Interactable
	effector humanoid.EffectorType
}

var _ Action = (*Touch)(nil)

func NewTouch(system *interaction.System, target interactable.Interactable, effector humanoid.EffectorType, logger *zap.Logger) *Touch {
	t := &Touch{system: system, target: target, effector: effector}
	t.init(KindTouch, logger)
	return t
}

func (t *Touch) Target() interactable.Interactable { return t.target }
func (t *Touch) Effector() humanoid.EffectorType   { return t.effector }

// Setup fails when the target cannot be interacted with or the effector is
// busy.
func (t *Touch) Setup() {
	if checkTarget(&t.Base, t.target) && checkEffector(&t.Base, t.system, t.effector) {
		t.SetState(Updating)
	}
}

func (t *Touch) Start() {
	i := t.system.TouchInteraction(t.target, t.effector)
	t.follow(i)
	// A start failure is reported through EventFailed.
	_ = t.system.Start(i)
}

func (t *Touch) OnStop() {
	t.stopOwned(t.system)
	t.Base.OnStop()
}

// checkTarget fails b when target is missing or not interactable.
func checkTarget(b *Base, target interactable.Interactable) bool {
	if interactable.Missing(target) {
		b.Fail(ErrCodeTargetMissing, "target is missing")
		return false
	}
	if !target.CanInteract() {
		b.Fail(ErrCodePrecondition, "target %q cannot be interacted with", target.Description())
		return false
	}
	return true
}

// checkEffector fails b when effector is unknown or already interacting.
func checkEffector(b *Base, system *interaction.System, effector humanoid.EffectorType) bool {
	eff, ok := system.Registry().Get(effector)
	if !ok {
		b.Fail(ErrCodePrecondition, "effector %s does not exist", effector)
		return false
	}
	if eff.IsInteracting() {
		b.Fail(ErrCodePrecondition, "effector %s is already interacting", effector)
		return false
	}
	return true
}
