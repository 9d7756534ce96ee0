// internal/action/drop.go
package action

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/interactable"
	"github.com/xkilldash9x/embody-cli/internal/interaction"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// Drop moves a carried item to a destination and lets go of it there.
type Drop struct {
	Base
	system      *interaction.System
	item        interactable.Pickable
	destination scene.Vector3
	effector    humanoid.EffectorType
}

var _ Action = (*Drop)(nil)

func NewDrop(system *interaction.System, item interactable.Pickable, destination scene.Vector3, effector humanoid.EffectorType, logger *zap.Logger) *Drop {
	d := &Drop{system: system, item: item, destination: destination, effector: effector}
	d.init(KindDrop, logger)
	return d
}

func (d *Drop) Item() interactable.Pickable     { return d.item }
func (d *Drop) Destination() scene.Vector3      { return d.destination }
func (d *Drop) Effector() humanoid.EffectorType { return d.effector }

// Setup fails when the item is not carried by this effector or the effector
// is busy.
func (d *Drop) Setup() {
	if d.item == nil {
		d.Fail(ErrCodeTargetMissing, "item is missing")
		return
	}
	if !d.item.IsBeingCarried() {
		d.Fail(ErrCodePrecondition, "%q is not being carried", d.item.Description())
		return
	}
	by, ok := d.system.CarriedBy(d.item)
	if !ok {
		d.Fail(ErrCodePrecondition, "%q is carried by someone else", d.item.Description())
		return
	}
	if by != d.effector {
		d.Fail(ErrCodePrecondition, "%q is carried by %s, not %s", d.item.Description(), by, d.effector)
		return
	}
	if !checkEffector(&d.Base, d.system, d.effector) {
		return
	}
	d.SetState(Updating)
}

// Start reaches towards the destination. At the end of the hold phase the
// item is un-parented in place and no longer carried.
func (d *Drop) Start() {
	i := d.system.ReachInteraction(d.destination, d.effector)
	i.On(interaction.EventHeld, func(*interaction.Interaction) {
		d.item.Transform().SetParent(nil, true)
		d.item.SetCarried(false)
		d.system.RemoveCarried(d.effector)
	})
	d.follow(i)
	_ = d.system.Start(i)
}

func (d *Drop) OnStop() {
	d.stopOwned(d.system)
	d.Base.OnStop()
}
