// internal/interactable/interactable_test.go
package interactable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

func TestProp(t *testing.T) {
	table := scene.NewNode("table", scene.Vector3{X: 1})
	cup := NewProp(table.NewChild("cup", scene.Vector3{Y: 1}), "a cup")

	assert.Equal(t, scene.Vector3{X: 1, Y: 1}, cup.InteractionPoint())
	assert.Equal(t, "a cup", cup.Description())
	assert.True(t, cup.CanInteract())
	assert.False(t, Missing(cup))

	cup.SetInteractable(false)
	assert.False(t, cup.CanInteract())
	cup.SetInteractable(true)

	cup.Destroy()
	assert.True(t, cup.IsDestroyed())
	assert.False(t, cup.CanInteract())
	assert.True(t, Missing(cup))
	assert.Nil(t, cup.Transform().Parent())
	assert.Equal(t, scene.Vector3{X: 1, Y: 1}, cup.InteractionPoint(), "destroy keeps world position")
}

func TestMissing(t *testing.T) {
	assert.True(t, Missing(nil))

	var typedNil Interactable
	assert.True(t, Missing(typedNil))
	assert.False(t, Missing(NewMarker(scene.Zero)))
}

func TestItem(t *testing.T) {
	item := NewItem(scene.NewNode("box", scene.Zero), "a box")
	assert.False(t, item.IsBeingCarried())

	item.SetCarried(true)
	item.OnPickup()
	assert.True(t, item.IsBeingCarried())
	assert.Equal(t, 1, item.Pickups())

	item.SetCarried(false)
	assert.False(t, item.IsBeingCarried(), "carried flag follows the argument")
}
