// internal/interactable/interactable.go
package interactable

import (
	"sync"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// Interactable is anything an effector can reach for.
type Interactable interface {
	// InteractionPoint is the world position the effector moves to.
	InteractionPoint() scene.Vector3
	Description() string
	CanInteract() bool
}

// Pickable is an Interactable that can be carried by a hand.
type Pickable interface {
	Interactable
	// Transform is the node re-parented onto the carrying effector.
	Transform() *scene.Node
	IsBeingCarried() bool
	OnPickup()
	SetCarried(carried bool)
}

// Destroyable targets may vanish while an interaction is pending. A destroyed
// target is treated as missing.
type Destroyable interface {
	IsDestroyed() bool
}

// Missing reports whether target is nil or has been destroyed.
func Missing(target Interactable) bool {
	if target == nil {
		return true
	}
	if d, ok := target.(Destroyable); ok && d.IsDestroyed() {
		return true
	}
	return false
}

// Prop is a static node-backed Interactable.
type Prop struct {
	node        *scene.Node
	description string

	mu          sync.RWMutex
	canInteract bool
	destroyed   bool
}

var (
	_ Interactable = (*Prop)(nil)
	_ Destroyable  = (*Prop)(nil)
)

// NewProp creates an interactable prop around node.
func NewProp(node *scene.Node, description string) *Prop {
	return &Prop{node: node, description: description, canInteract: true}
}

func (p *Prop) Transform() *scene.Node { return p.node }

func (p *Prop) InteractionPoint() scene.Vector3 { return p.node.Position() }

func (p *Prop) Description() string { return p.description }

func (p *Prop) CanInteract() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.canInteract && !p.destroyed
}

func (p *Prop) SetInteractable(v bool) {
	p.mu.Lock()
	p.canInteract = v
	p.mu.Unlock()
}

// Destroy detaches the prop from the scene. Interactions that have not yet
// started will fail on it.
func (p *Prop) Destroy() {
	p.mu.Lock()
	p.destroyed = true
	p.mu.Unlock()
	p.node.SetParent(nil, true)
}

func (p *Prop) IsDestroyed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.destroyed
}

// Item is a Prop that can be picked up.
type Item struct {
	*Prop

	mu      sync.RWMutex
	carried bool
	pickups int
}

var _ Pickable = (*Item)(nil)

func NewItem(node *scene.Node, description string) *Item {
	return &Item{Prop: NewProp(node, description)}
}

func (i *Item) IsBeingCarried() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.carried
}

func (i *Item) SetCarried(carried bool) {
	i.mu.Lock()
	i.carried = carried
	i.mu.Unlock()
}

func (i *Item) OnPickup() {
	i.mu.Lock()
	i.pickups++
	i.mu.Unlock()
}

// Pickups counts how many times the item has been picked up.
func (i *Item) Pickups() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.pickups
}

// NewMarker returns a throwaway point target, used for reaching towards a
// position rather than an object.
func NewMarker(position scene.Vector3) *Prop {
	return NewProp(scene.NewNode("marker", position), "marker")
}
