// internal/locomotion/navgrid.go
package locomotion

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// ErrNoPath is returned when the goal cell cannot be reached.
var ErrNoPath = errors.New("locomotion: no path")

// Cell addresses one square of a NavGrid.
type Cell struct{ Col, Row int }

// NavGrid is a walkable floor on the XZ plane, split into square cells. Row r
// covers Z in [origin.Z + r*size, origin.Z + (r+1)*size) and column c covers X
// the same way. Height is ignored.
type NavGrid struct {
	origin   scene.Vector3
	cellSize float64
	cols     int
	rows     int
	blocked  []bool
}

// NewNavGrid parses ASCII rows where '#' is a blocked cell and anything else
// is walkable. Rows shorter than the longest one are padded as blocked.
func NewNavGrid(origin scene.Vector3, cellSize float64, rows []string) (*NavGrid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("locomotion: cell size must be positive, got %v", cellSize)
	}
	if len(rows) == 0 {
		return nil, errors.New("locomotion: nav grid needs at least one row")
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	g := &NavGrid{origin: origin, cellSize: cellSize, cols: cols, rows: len(rows), blocked: make([]bool, cols*len(rows))}
	for r, line := range rows {
		for c := 0; c < cols; c++ {
			g.blocked[r*cols+c] = c >= len(line) || line[c] == '#'
		}
	}
	return g, nil
}

// OpenGrid is a fully walkable square grid of the given size, centred on the
// world origin.
func OpenGrid(cells int, cellSize float64) *NavGrid {
	half := float64(cells) * cellSize / 2
	line := strings.Repeat(".", cells)
	rows := make([]string, cells)
	for i := range rows {
		rows[i] = line
	}
	g, _ := NewNavGrid(scene.Vector3{X: -half, Z: -half}, cellSize, rows)
	return g
}

func (g *NavGrid) Size() (cols, rows int) { return g.cols, g.rows }

// CellAt maps a world position to its cell. ok is false outside the grid.
func (g *NavGrid) CellAt(p scene.Vector3) (Cell, bool) {
	c := int(math.Floor((p.X - g.origin.X) / g.cellSize))
	r := int(math.Floor((p.Z - g.origin.Z) / g.cellSize))
	cell := Cell{Col: c, Row: r}
	return cell, g.inside(cell)
}

// Center is the world position of the middle of cell, at the grid height.
func (g *NavGrid) Center(cell Cell) scene.Vector3 {
	return scene.Vector3{
		X: g.origin.X + (float64(cell.Col)+0.5)*g.cellSize,
		Y: g.origin.Y,
		Z: g.origin.Z + (float64(cell.Row)+0.5)*g.cellSize,
	}
}

func (g *NavGrid) inside(c Cell) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < g.cols && c.Row < g.rows
}

// Walkable reports whether cell is inside the grid and not blocked.
func (g *NavGrid) Walkable(c Cell) bool {
	return g.inside(c) && !g.blocked[c.Row*g.cols+c.Col]
}

func (g *NavGrid) neighbors(c Cell) []Cell {
	out := make([]Cell, 0, 4)
	for _, d := range [...]Cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		n := Cell{Col: c.Col + d.Col, Row: c.Row + d.Row}
		if g.Walkable(n) {
			out = append(out, n)
		}
	}
	return out
}

func manhattan(a, b Cell) float64 {
	return math.Abs(float64(a.Col-b.Col)) + math.Abs(float64(a.Row-b.Row))
}

// FindPath runs A* between two walkable cells and returns the cells to visit
// after start, ending with goal. A path from a cell to itself is empty.
func (g *NavGrid) FindPath(start, goal Cell) ([]Cell, error) {
	if !g.Walkable(start) || !g.Walkable(goal) {
		return nil, ErrNoPath
	}
	if start == goal {
		return nil, nil
	}

	open := &cellQueue{}
	heap.Init(open)
	heap.Push(open, &queued{cell: start, priority: manhattan(start, goal)})
	cameFrom := map[Cell]Cell{start: start}
	gScore := map[Cell]float64{start: 0}

	for open.Len() > 0 {
		current := heap.Pop(open).(*queued).cell
		if current == goal {
			return reconstruct(cameFrom, start, goal), nil
		}
		for _, n := range g.neighbors(current) {
			tentative := gScore[current] + 1
			if old, seen := gScore[n]; seen && tentative >= old {
				continue
			}
			cameFrom[n] = current
			gScore[n] = tentative
			heap.Push(open, &queued{cell: n, priority: tentative + manhattan(n, goal)})
		}
	}
	return nil, ErrNoPath
}

func reconstruct(cameFrom map[Cell]Cell, start, goal Cell) []Cell {
	var path []Cell
	for c := goal; c != start; c = cameFrom[c] {
		path = append(path, c)
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// Nearest returns the walkable cell, reachable from start, whose centre is
// closest to p and no further than maxRadius from it.
func (g *NavGrid) Nearest(start Cell, p scene.Vector3, maxRadius float64) (Cell, bool) {
	if !g.Walkable(start) {
		return Cell{}, false
	}
	best, bestDist, found := Cell{}, math.Inf(1), false
	for c := range g.reachable(start) {
		d := g.Center(c).Sub(p)
		d.Y = 0
		dist := d.Mag()
		if dist > maxRadius {
			continue
		}
		if dist < bestDist || (dist == bestDist && less(c, best)) {
			best, bestDist, found = c, dist, true
		}
	}
	return best, found
}

func less(a, b Cell) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

// reachable flood-fills the component containing start.
func (g *NavGrid) reachable(start Cell) map[Cell]struct{} {
	seen := map[Cell]struct{}{start: {}}
	frontier := []Cell{start}
	for len(frontier) > 0 {
		c := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, n := range g.neighbors(c) {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				frontier = append(frontier, n)
			}
		}
	}
	return seen
}

type queued struct {
	cell     Cell
	priority float64
	index    int
}

// cellQueue is a min-heap on priority.
type cellQueue []*queued

func (q cellQueue) Len() int           { return len(q) }
func (q cellQueue) Less(i, j int) bool { return q[i].priority < q[j].priority }
func (q cellQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *cellQueue) Push(x any) {
	item := x.(*queued)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *cellQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
