package component

import "github.com/milk9111/skirmish/flowfield"

type CellType uint8

const (
	CellNone CellType = iota
	CellGround
	CellMud
	CellWater
	cellTypeCount
)

func (t CellType) String() string {
	switch t {
	case CellGround:
		return "ground"
	case CellMud:
		return "mud"
	case CellWater:
		return "water"
	default:
		return "none"
	}
}

// CellTypes lists every placeable terrain type in palette order.
func CellTypes() []CellType {
	out := make([]CellType, 0, cellTypeCount)
	for t := CellNone; t < cellTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

type CellProperty uint8

const (
	PropertyNone    CellProperty = 0
	PropertyBurning CellProperty = 1 << 0
)

type TerrainCell struct {
	Type       CellType
	Properties CellProperty
}

func (c TerrainCell) Burning() bool {
	return c.Properties&PropertyBurning != 0
}

// Map text encoding, one rune per cell.
var terrainRunes = map[TerrainCell]rune{
	{Type: CellNone}:   '#',
	{Type: CellGround}: '.',
	{Type: CellMud}:    ',',
	{Type: CellWater}:  '~',
	{Type: CellGround, Properties: PropertyBurning}: '^',
	{Type: CellMud, Properties: PropertyBurning}:    '%',
}

// Rune returns the map character for c. Burning water and burning void have
// no character of their own and encode as their base type.
func (c TerrainCell) Rune() rune {
	if r, ok := terrainRunes[c]; ok {
		return r
	}
	return terrainRunes[TerrainCell{Type: c.Type}]
}

// ParseTerrainRune is the inverse of TerrainCell.Rune.
func ParseTerrainRune(r rune) (TerrainCell, bool) {
	for cell, cr := range terrainRunes {
		if cr == r {
			return cell, true
		}
	}
	return TerrainCell{}, false
}

// Terrain is the editable cell grid the navigation costs are derived from.
// Version changes on every edit.
type Terrain struct {
	Width   int
	Height  int
	Cells   []TerrainCell
	Version int
}

var TerrainComponent = NewComponent[Terrain]()

func NewTerrain(width, height int, fill CellType) *Terrain {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([]TerrainCell, width*height)
	for i := range cells {
		cells[i].Type = fill
	}
	return &Terrain{Width: width, Height: height, Cells: cells}
}

func (t *Terrain) Grid() flowfield.Grid {
	return flowfield.NewGrid(t.Width, t.Height)
}

// At returns CellNone outside the grid.
func (t *Terrain) At(c flowfield.Cell) TerrainCell {
	g := t.Grid()
	if !g.Contains(c) {
		return TerrainCell{}
	}
	return t.Cells[g.Index(c)]
}

// Set reports whether c was inside the grid and actually changed.
func (t *Terrain) Set(c flowfield.Cell, cell TerrainCell) bool {
	g := t.Grid()
	if !g.Contains(c) {
		return false
	}
	idx := g.Index(c)
	if t.Cells[idx] == cell {
		return false
	}
	t.Cells[idx] = cell
	t.Version++
	return true
}

// TerrainCosts maps cell types to traversal costs. Burning is added on top
// of the base cost of a passable cell.
type TerrainCosts struct {
	None    flowfield.Cost
	Ground  flowfield.Cost
	Mud     flowfield.Cost
	Water   flowfield.Cost
	Burning flowfield.Cost
}

func DefaultTerrainCosts() TerrainCosts {
	return TerrainCosts{
		None:    flowfield.CostImpassable,
		Ground:  flowfield.CostDefault,
		Mud:     4,
		Water:   flowfield.CostImpassable,
		Burning: 8,
	}
}

func (tc TerrainCosts) CostOf(cell TerrainCell) flowfield.Cost {
	var base flowfield.Cost
	switch cell.Type {
	case CellGround:
		base = tc.Ground
	case CellMud:
		base = tc.Mud
	case CellWater:
		base = tc.Water
	default:
		base = tc.None
	}
	if base == flowfield.CostImpassable || !cell.Burning() {
		return base
	}
	sum := uint32(base) + uint32(tc.Burning)
	if sum >= uint32(flowfield.CostImpassable) {
		return flowfield.CostImpassable - 1
	}
	return flowfield.Cost(sum)
}

// CostField converts the terrain into a fresh cost grid. The goal cell is
// not special-cased here; callers set it.
func (t *Terrain) CostField(tc TerrainCosts) *flowfield.CostField {
	costs := flowfield.NewCostField(t.Grid(), flowfield.CostDefault)
	for i, cell := range t.Cells {
		if i >= len(costs.Costs) {
			break
		}
		costs.Costs[i] = tc.CostOf(cell)
	}
	return costs
}
