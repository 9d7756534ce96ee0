// internal/locomotion/locomotion_test.go
package locomotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

func TestNavGrid_Parse(t *testing.T) {
	_, err := NewNavGrid(scene.Zero, 0, []string{"."})
	assert.Error(t, err)
	_, err = NewNavGrid(scene.Zero, 1, nil)
	assert.Error(t, err)

	g, err := NewNavGrid(scene.Vector3{X: -1}, 0.5, []string{"...", ".#"})
	require.NoError(t, err)
	cols, rows := g.Size()
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, rows)
	assert.False(t, g.Walkable(Cell{Col: 1, Row: 1}))
	assert.False(t, g.Walkable(Cell{Col: 2, Row: 1}), "short rows are padded as blocked")
	assert.False(t, g.Walkable(Cell{Col: -1, Row: 0}))

	cell, ok := g.CellAt(scene.Vector3{X: -0.2, Z: 0.7})
	require.True(t, ok)
	assert.Equal(t, Cell{Col: 1, Row: 1}, cell)
	assert.Equal(t, scene.Vector3{X: -0.25, Z: 0.75}, g.Center(cell))

	_, ok = g.CellAt(scene.Vector3{X: 5})
	assert.False(t, ok)
}

func TestNavGrid_FindPath(t *testing.T) {
	g, err := NewNavGrid(scene.Zero, 1, []string{
		".....",
		".###.",
		".....",
	})
	require.NoError(t, err)

	path, err := g.FindPath(Cell{0, 0}, Cell{4, 0})
	require.NoError(t, err)
	assert.Equal(t, []Cell{{1, 0}, {2, 0}, {3, 0}, {4, 0}}, path)

	path, err = g.FindPath(Cell{2, 0}, Cell{2, 2})
	require.NoError(t, err)
	assert.Len(t, path, 6, "detour around the wall")
	assert.Equal(t, Cell{2, 2}, path[len(path)-1])
	for _, c := range path {
		assert.True(t, g.Walkable(c))
	}

	path, err = g.FindPath(Cell{0, 0}, Cell{0, 0})
	require.NoError(t, err)
	assert.Empty(t, path)

	_, err = g.FindPath(Cell{0, 0}, Cell{2, 1})
	assert.ErrorIs(t, err, ErrNoPath)
}

func setupIsland(t *testing.T) *Walker {
	t.Helper()
	g, err := NewNavGrid(scene.Zero, 1, []string{
		"..#..",
		"..#..",
	})
	require.NoError(t, err)
	body := scene.NewNode("body", scene.Vector3{X: 0.5, Z: 0.5})
	return NewWalker(body, g, 1, 0.05, zaptest.NewLogger(t))
}

func TestWalker_Reachability(t *testing.T) {
	w := setupIsland(t)

	assert.True(t, w.CanReach(scene.Vector3{X: 1.5, Z: 1.5}))
	assert.False(t, w.CanReach(scene.Vector3{X: 3.5, Z: 0.5}), "other side of the wall")
	assert.False(t, w.CanReach(scene.Vector3{X: 30}), "off the grid")

	ok, near := w.CanReachNear(scene.Vector3{X: 3.5, Z: 0.5}, 5.0)
	require.True(t, ok)
	assert.Equal(t, scene.Vector3{X: 1.5, Z: 0.5}, near)

	ok, _ = w.CanReachNear(scene.Vector3{X: 3.5, Z: 0.5}, 1.0)
	assert.False(t, ok)

	assert.False(t, w.SetDestination(scene.Vector3{X: 3.5, Z: 0.5}))
	assert.False(t, w.Moving())
}

func TestWalker_WalksAndArrivesOnce(t *testing.T) {
	w := NewWalker(scene.NewNode("body", scene.Vector3{X: 0.5, Z: 0.5}), OpenGrid(8, 1), 1, 0.05, zaptest.NewLogger(t))
	// OpenGrid(8, 1) spans [-4, 4); walk 3 m along X.
	dest := scene.Vector3{X: 3.5, Z: 0.5}

	arrivals := 0
	w.OnArrival(func() { arrivals++ })
	require.True(t, w.SetDestination(dest))
	assert.True(t, w.Moving())

	w.Tick(time.Second)
	assert.True(t, w.Body().Position().ApproxEqual(scene.Vector3{X: 1.5, Z: 0.5}, 1e-9))
	w.Tick(time.Second)
	assert.Equal(t, 0, arrivals)
	w.Tick(time.Second)

	assert.Equal(t, 1, arrivals)
	assert.Equal(t, 1, w.Arrivals())
	assert.False(t, w.Moving())
	assert.True(t, w.Body().Position().ApproxEqual(dest, 1e-9))

	w.Tick(time.Second)
	assert.Equal(t, 1, arrivals, "arrival fires once per walk")
}

func TestWalker_UnsubscribeFromCallback(t *testing.T) {
	w := NewWalker(scene.NewNode("body", scene.Zero), OpenGrid(4, 1), 10, 0.05, zaptest.NewLogger(t))

	calls := 0
	var unsubscribe func()
	unsubscribe = w.OnArrival(func() {
		calls++
		unsubscribe()
	})

	require.True(t, w.SetDestination(scene.Vector3{X: 1.5, Z: 0.5}))
	w.Tick(time.Second)
	require.True(t, w.SetDestination(scene.Vector3{X: -1.5, Z: -1.5}))
	w.Tick(time.Second)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, w.Arrivals())
}

func TestWalker_StopDoesNotArrive(t *testing.T) {
	w := NewWalker(scene.NewNode("body", scene.Vector3{X: 0.5, Z: 0.5}), OpenGrid(8, 1), 1, 0.05, zaptest.NewLogger(t))
	arrivals := 0
	w.OnArrival(func() { arrivals++ })

	require.True(t, w.SetDestination(scene.Vector3{X: 3.5, Z: 0.5}))
	w.Tick(time.Second)
	w.Stop()
	w.Tick(5 * time.Second)

	assert.Equal(t, 0, arrivals)
	assert.False(t, w.Moving())
	assert.True(t, w.Body().Position().ApproxEqual(scene.Vector3{X: 1.5, Z: 0.5}, 1e-9))
}
