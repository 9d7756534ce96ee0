// internal/humanoid/effector_test.go
package humanoid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

type stubOccupant struct{ active bool }

func (s *stubOccupant) Active() bool { return s.active }

func TestRegistry_DefaultLayout(t *testing.T) {
	root := scene.NewNode("body", scene.Vector3{X: 1})
	reg := NewRegistry(root)

	assert.Equal(t, AllEffectors(), reg.Types())
	for _, typ := range AllEffectors() {
		eff, ok := reg.Get(typ)
		require.True(t, ok, typ.String())
		assert.Equal(t, typ, eff.Type())
		assert.Equal(t, eff.Rest().Position(), eff.Target().Position(), "target starts at rest")
		assert.Equal(t, typ.IsHand(), eff.AttachPoint() != nil, "only hands can carry")
		assert.False(t, eff.IsInteracting())
	}

	rh, _ := reg.Get(RightHand)
	assert.Equal(t, scene.Vector3{X: 1.25, Y: 1.0, Z: 0.15}, rh.Rest().Position())
	assert.True(t, rh.AttachPoint().IsDescendantOf(rh.Target()))
}

func TestRegistry_UnknownEffector(t *testing.T) {
	reg := NewRegistryWithLayout(scene.NewNode("body", scene.Zero), map[EffectorType]Layout{
		RightHand: {CanAttach: true},
	})

	_, ok := reg.Get(LeftFoot)
	assert.False(t, ok)
	assert.False(t, reg.IsInteracting(LeftFoot))
	assert.Equal(t, []EffectorType{RightHand}, reg.Types())
}

func TestEffector_ClaimAndRelease(t *testing.T) {
	reg := NewRegistry(scene.NewNode("body", scene.Zero))
	eff, _ := reg.Get(LeftHand)

	first := &stubOccupant{active: true}
	second := &stubOccupant{active: true}

	require.True(t, eff.Claim(first))
	assert.True(t, eff.IsInteracting())
	assert.True(t, reg.IsInteracting(LeftHand))
	assert.True(t, eff.Claim(first), "re-claiming by the same occupant succeeds")
	assert.False(t, eff.Claim(second), "a second active occupant is rejected")

	eff.Release(second)
	assert.Same(t, first, eff.Current(), "releasing a non-occupant is a no-op")

	first.active = false
	assert.False(t, eff.IsInteracting(), "an inactive occupant does not count")
	assert.True(t, eff.Claim(second), "an inactive occupant can be displaced")

	eff.Release(second)
	assert.Nil(t, eff.Current())
}
