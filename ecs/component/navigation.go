package component

import (
	"math"

	"github.com/milk9111/skirmish/flowfield"
)

// Navigation is the singleton that owns the shared flow field. Setting a
// goal or editing terrain marks it dirty; the navigation system rebuilds on
// the next tick and keeps the previous Fields if the rebuild fails.
type Navigation struct {
	CellSize float64
	Costs    TerrainCosts
	Goal     flowfield.Cell
	HasGoal  bool
	Dirty    bool

	Builder   *flowfield.Builder
	Fields    *flowfield.Fields
	LastError error

	builtVersion int
}

var NavigationComponent = NewComponent[Navigation]()

func NewNavigation(cellSize float64, cfg flowfield.Config, costs TerrainCosts) *Navigation {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Navigation{
		CellSize: cellSize,
		Costs:    costs,
		Builder:  flowfield.NewBuilder(cfg),
	}
}

// CellAt converts a world position to the cell containing it. Positions
// left of or above the origin map to negative cells.
func (n *Navigation) CellAt(x, y float64) flowfield.Cell {
	return flowfield.Cell{
		X: int(math.Floor(x / n.CellSize)),
		Y: int(math.Floor(y / n.CellSize)),
	}
}

// CellCenter returns the world position of the middle of c.
func (n *Navigation) CellCenter(c flowfield.Cell) (float64, float64) {
	return (float64(c.X) + 0.5) * n.CellSize, (float64(c.Y) + 0.5) * n.CellSize
}

func (n *Navigation) SetGoal(c flowfield.Cell) {
	if n.HasGoal && n.Goal == c && n.Fields != nil && n.Fields.Goal == c {
		return
	}
	n.Goal = c
	n.HasGoal = true
	n.Dirty = true
}

// Stale reports whether terrain edits happened since the last build.
func (n *Navigation) Stale(t *Terrain) bool {
	return t != nil && t.Version != n.builtVersion
}

// MarkBuilt records the terrain version of the last build attempt.
func (n *Navigation) MarkBuilt(t *Terrain) {
	if t != nil {
		n.builtVersion = t.Version
	}
}
