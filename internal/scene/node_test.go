package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_WorldPositionFollowsParent(t *testing.T) {
	body := NewNode("body", Vector3{X: 1, Y: 0, Z: 1})
	hand := body.NewChild("hand", Vector3{X: 0.25, Y: 1, Z: 0})

	assert.Equal(t, Vector3{X: 1.25, Y: 1, Z: 1}, hand.Position())

	body.SetPosition(Vector3{X: 3, Y: 0, Z: 0})
	assert.Equal(t, Vector3{X: 3.25, Y: 1, Z: 0}, hand.Position())
	assert.Equal(t, Vector3{X: 0.25, Y: 1, Z: 0}, hand.LocalPosition())
}

func TestNode_SetPositionOnChild(t *testing.T) {
	body := NewNode("body", Vector3{X: 2})
	target := body.NewChild("target", Vector3{})

	target.SetPosition(Vector3{X: 5, Y: 1})
	assert.Equal(t, Vector3{X: 3, Y: 1}, target.LocalPosition())
	assert.Equal(t, Vector3{X: 5, Y: 1}, target.Position())
}

func TestNode_SetParent(t *testing.T) {
	t.Run("keep local offset", func(t *testing.T) {
		attach := NewNode("attach", Vector3{X: 1, Y: 1, Z: 1})
		cup := NewNode("cup", Vector3{X: 4, Y: 0, Z: 0})

		cup.SetParent(attach, false)
		cup.SetLocalPosition(Zero)

		require.Same(t, attach, cup.Parent())
		assert.Equal(t, attach.Position(), cup.Position())
		assert.Len(t, attach.Children(), 1)
	})

	t.Run("keep world position when detaching", func(t *testing.T) {
		attach := NewNode("attach", Vector3{X: 1, Y: 1, Z: 1})
		cup := attach.NewChild("cup", Vector3{})

		cup.SetParent(nil, true)

		assert.Nil(t, cup.Parent())
		assert.Equal(t, Vector3{X: 1, Y: 1, Z: 1}, cup.Position())
		assert.Empty(t, attach.Children())
	})

	t.Run("cycles are ignored", func(t *testing.T) {
		root := NewNode("root", Zero)
		child := root.NewChild("child", Vector3{X: 1})

		root.SetParent(child, true)
		assert.Nil(t, root.Parent())
		root.SetParent(root, true)
		assert.Nil(t, root.Parent())
		assert.True(t, child.IsDescendantOf(root))
	})
}

func TestVector3(t *testing.T) {
	a := Vector3{X: 0, Y: 0, Z: 0}
	b := Vector3{X: 3, Y: 4, Z: 0}

	assert.InDelta(t, 5.0, a.Dist(b), 1e-9)
	assert.Equal(t, Vector3{X: 1.5, Y: 2}, a.Lerp(b, 0.5))
	assert.InDelta(t, 1.0, b.Normalize().Mag(), 1e-9)
	assert.Equal(t, Vector3{}, Zero.Normalize())
	assert.True(t, b.ApproxEqual(Vector3{X: 3, Y: 4.0005}, 1e-3))
	assert.Equal(t, "(3.00, 4.00, 0.00)", b.String())
}
