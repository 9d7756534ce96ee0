// internal/action/pick.go
package action

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
	"github.com/xkilldash9x/embody-cli/internal/interaction"
)

// Pick grabs an item with a hand and keeps carrying it.
type Pick struct {
	Base
	system   *interaction.System
	target   interactable.Pickable
	effector humanoid.EffectorType
}

var _ Action = (*Pick)(nil)

func NewPick(system *interaction.System, target interactable.Pickable, effector humanoid.EffectorType, logger *zap.Logger) *Pick {
	p := &Pick{system: system, target: target, effector: effector}
	p.init(KindPick, logger)
	return p
}

func (p *Pick) Target() interactable.Pickable   { return p.target }
func (p *Pick) Effector() humanoid.EffectorType { return p.effector }

func (p *Pick) Setup() {
	var target interactable.Interactable
	if p.target != nil {
		target = p.target
	}
	if !checkTarget(&p.Base, target) || !checkEffector(&p.Base, p.system, p.effector) {
		return
	}
	if eff, _ := p.system.Registry().Get(p.effector); eff.AttachPoint() == nil {
		p.Fail(ErrCodePrecondition, "effector %s cannot carry anything", p.effector)
		return
	}
	p.SetState(Updating)
}

// Start fails fast, without creating an interaction, when the item is already
// being carried.
func (p *Pick) Start() {
	if p.target.IsBeingCarried() {
		p.Fail(ErrCodePrecondition, "%q is already being carried", p.target.Description())
		return
	}
	i, err := p.system.PickInteraction(p.target, p.effector)
	if err != nil {
		p.Fail(codeFor(err), "cannot pick %q: %v", p.target.Description(), err)
		return
	}
	p.follow(i)
	_ = p.system.Start(i)
}

func (p *Pick) OnStop() {
	p.stopOwned(p.system)
	p.Base.OnStop()
}
