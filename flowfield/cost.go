package flowfield

import "math"

// Cost is the price of entering a cell.
type Cost uint16

const (
	// CostGoal marks the goal cell. Any other zero cost is caller error.
	CostGoal Cost = 0
	// CostDefault is the cost of open ground.
	CostDefault Cost = 1
	// CostImpassable cells are never entered by propagation.
	CostImpassable Cost = math.MaxUint16
)

// CostField is the caller-owned input to a build. The builder reads it but
// never writes to it.
type CostField struct {
	Grid
	Costs []Cost
}

// NewCostField returns a field with every cell set to fill.
func NewCostField(g Grid, fill Cost) *CostField {
	costs := make([]Cost, g.Size())
	for i := range costs {
		costs[i] = fill
	}
	return &CostField{Grid: g, Costs: costs}
}

// At returns the cost of c, or CostImpassable outside the grid.
func (f *CostField) At(c Cell) Cost {
	if f == nil || !f.Contains(c) {
		return CostImpassable
	}
	return f.Costs[f.Index(c)]
}

// Set writes the cost of c. Out of bounds writes are ignored.
func (f *CostField) Set(c Cell, cost Cost) {
	if f == nil || !f.Contains(c) {
		return
	}
	f.Costs[f.Index(c)] = cost
}

// SetGoal sets the goal cell's cost to CostGoal.
func (f *CostField) SetGoal(goal Cell) {
	f.Set(goal, CostGoal)
}

// Validate checks that the cost slice matches the grid.
func (f *CostField) Validate() error {
	if f == nil {
		return ErrInvalidGrid
	}
	return f.validate(len(f.Costs))
}

// Clone returns a deep copy.
func (f *CostField) Clone() *CostField {
	if f == nil {
		return nil
	}
	return &CostField{Grid: f.Grid, Costs: append([]Cost(nil), f.Costs...)}
}

// zeroCostCells counts cells other than goal whose cost is CostGoal.
func (f *CostField) zeroCostCells(goal Cell) int {
	goalIdx := -1
	if f.Contains(goal) {
		goalIdx = f.Index(goal)
	}
	n := 0
	for i, c := range f.Costs {
		if c == CostGoal && i != goalIdx {
			n++
		}
	}
	return n
}
