// Package flowfield computes grid flow fields: a cost grid is turned into an
// integration field (cumulative cost to a single goal cell) and then into a
// per-cell direction field that many agents can sample without running their
// own path searches.
package flowfield

import "fmt"

// DefaultGridSize is the side length used when a map does not specify one.
const DefaultGridSize = 256

// Cell is a grid coordinate.
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid describes the dimensions shared by every field of one computation.
type Grid struct {
	Width  int
	Height int
}

// NewGrid returns a grid of the given dimensions.
func NewGrid(width, height int) Grid {
	return Grid{Width: width, Height: height}
}

// Size returns the number of cells.
func (g Grid) Size() int {
	if g.Width <= 0 || g.Height <= 0 {
		return 0
	}
	return g.Width * g.Height
}

// Contains reports whether c lies inside the grid.
func (g Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// Index converts a coordinate to a flat row-major index. Callers check
// Contains first.
func (g Grid) Index(c Cell) int {
	return c.Y*g.Width + c.X
}

// CellAt converts a flat index back to a coordinate.
func (g Grid) CellAt(idx int) Cell {
	return Cell{X: idx % g.Width, Y: idx / g.Width}
}

// Neighbor returns the cell one step from c in direction d and whether it is
// inside the grid. X and Y are bounds checked independently so a step off the
// right edge never lands on the next row.
func (g Grid) Neighbor(c Cell, d Direction) (Cell, bool) {
	n := Cell{X: c.X + int(d.DX), Y: c.Y + int(d.DY)}
	if n.X < 0 || n.X >= g.Width || n.Y < 0 || n.Y >= g.Height {
		return Cell{}, false
	}
	return n, true
}

func (g Grid) validate(n int) error {
	if g.Width < 0 || g.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidGrid, g.Width, g.Height)
	}
	if n != g.Size() {
		return fmt.Errorf("%w: %dx%d grid needs %d cells, got %d", ErrInvalidGrid, g.Width, g.Height, g.Size(), n)
	}
	return nil
}

func (g Grid) validateGoal(goal Cell) error {
	if !g.Contains(goal) {
		return fmt.Errorf("%w: %s outside %dx%d grid", ErrInvalidGoal, goal, g.Width, g.Height)
	}
	return nil
}
