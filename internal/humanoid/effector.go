// internal/humanoid/effector.go
package humanoid

import (
	"sync"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// Occupant is whatever currently claims an effector. Interactions implement it.
type Occupant interface {
	Active() bool
}

// Effector is one controllable body part. It holds a non-owning reference to
// the occupant using it; at most one active occupant may hold it at a time.
type Effector struct {
	typ    EffectorType
	target *scene.Node
	rest   *scene.Node
	attach *scene.Node

	mu      sync.RWMutex
	current Occupant
}

func (e *Effector) Type() EffectorType { return e.typ }

// Target is the IK target node moved by the motion executor.
func (e *Effector) Target() *scene.Node { return e.target }

// Rest is the node the target returns to when idle.
func (e *Effector) Rest() *scene.Node { return e.rest }

// AttachPoint is where carried objects are parented. Nil when the effector
// cannot carry anything.
func (e *Effector) AttachPoint() *scene.Node { return e.attach }

// Current returns the occupant reference, which may be inactive.
func (e *Effector) Current() Occupant {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// IsInteracting reports whether an active occupant holds the effector.
func (e *Effector) IsInteracting() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current != nil && e.current.Active()
}

// Claim makes o the occupant. It fails when a different active occupant
// already holds the effector.
func (e *Effector) Claim(o Occupant) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil && e.current != o && e.current.Active() {
		return false
	}
	e.current = o
	return true
}

// Release clears the reference if o is still the occupant.
func (e *Effector) Release(o Occupant) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == o {
		e.current = nil
	}
}

// Layout describes where an effector rests relative to the body root.
type Layout struct {
	Rest      scene.Vector3
	CanAttach bool
}

// DefaultLayout is a generic adult humanoid standing at the body origin,
// facing +Z.
func DefaultLayout() map[EffectorType]Layout {
	return map[EffectorType]Layout{
		RightHand: {Rest: scene.Vector3{X: 0.25, Y: 1.0, Z: 0.15}, CanAttach: true},
		LeftHand:  {Rest: scene.Vector3{X: -0.25, Y: 1.0, Z: 0.15}, CanAttach: true},
		RightFoot: {Rest: scene.Vector3{X: 0.1, Y: 0, Z: 0.1}},
		LeftFoot:  {Rest: scene.Vector3{X: -0.1, Y: 0, Z: 0.1}},
	}
}

// Registry holds the fixed set of effectors of one body.
type Registry struct {
	root      *scene.Node
	effectors map[EffectorType]*Effector
}

// NewRegistry builds effectors under root with DefaultLayout.
func NewRegistry(root *scene.Node) *Registry {
	return NewRegistryWithLayout(root, DefaultLayout())
}

// NewRegistryWithLayout builds one effector per layout entry. Effector types
// missing from the layout are reported as not found by Get.
func NewRegistryWithLayout(root *scene.Node, layout map[EffectorType]Layout) *Registry {
	r := &Registry{root: root, effectors: make(map[EffectorType]*Effector, len(layout))}
	for typ, l := range layout {
		name := typ.String()
		eff := &Effector{
			typ:    typ,
			rest:   root.NewChild(name+"_rest", l.Rest),
			target: root.NewChild(name+"_target", l.Rest),
		}
		if l.CanAttach {
			eff.attach = eff.target.NewChild(name+"_attach", scene.Zero)
		}
		r.effectors[typ] = eff
	}
	return r
}

// Root is the body node every effector hangs from.
func (r *Registry) Root() *scene.Node { return r.root }

// Get looks up an effector.
func (r *Registry) Get(t EffectorType) (*Effector, bool) {
	eff, ok := r.effectors[t]
	return eff, ok
}

// IsInteracting reports false for unknown effectors.
func (r *Registry) IsInteracting(t EffectorType) bool {
	eff, ok := r.effectors[t]
	return ok && eff.IsInteracting()
}

// Types lists the registered effector types in declaration order.
func (r *Registry) Types() []EffectorType {
	out := make([]EffectorType, 0, len(r.effectors))
	for _, t := range AllEffectors() {
		if _, ok := r.effectors[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
