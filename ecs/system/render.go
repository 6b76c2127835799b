package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
	"golang.org/x/image/colornames"
)

var terrainColors = map[component.CellType]color.RGBA{
	component.CellNone:   {R: 38, G: 36, B: 42, A: 255},
	component.CellGround: {R: 104, G: 142, B: 76, A: 255},
	component.CellMud:    {R: 112, G: 84, B: 56, A: 255},
	component.CellWater:  {R: 52, G: 96, B: 168, A: 255},
}

var burningTint = color.RGBA{R: 230, G: 96, B: 24, A: 140}

// TerrainColor returns the fill used for a terrain cell type.
func TerrainColor(t component.CellType) color.RGBA {
	if c, ok := terrainColors[t]; ok {
		return c
	}
	return terrainColors[component.CellNone]
}

// visibleCells returns the inclusive cell range on screen.
func visibleCells(screen *ebiten.Image, cam ecs.Camera, nav *component.Navigation, grid flowfield.Grid) (x0, y0, x1, y1 int) {
	b := screen.Bounds()
	wx0, wy0 := cam.ScreenToWorld(float64(b.Min.X), float64(b.Min.Y))
	wx1, wy1 := cam.ScreenToWorld(float64(b.Max.X), float64(b.Max.Y))
	c0 := nav.CellAt(wx0, wy0)
	c1 := nav.CellAt(wx1, wy1)
	x0, y0 = max(c0.X, 0), max(c0.Y, 0)
	x1, y1 = min(c1.X, grid.Width-1), min(c1.Y, grid.Height-1)
	return x0, y0, x1, y1
}

func cellRect(cam ecs.Camera, nav *component.Navigation, c flowfield.Cell) (x, y, size float32) {
	sx, sy := cam.WorldToScreen(float64(c.X)*nav.CellSize, float64(c.Y)*nav.CellSize)
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return float32(sx), float32(sy), float32(nav.CellSize * zoom)
}

// TerrainRenderer fills each visible cell with its terrain colour.
type TerrainRenderer struct {
	Grid bool
}

func NewTerrainRenderer() *TerrainRenderer {
	return &TerrainRenderer{}
}

func (r *TerrainRenderer) Draw(w *ecs.World, screen *ebiten.Image, cam ecs.Camera) {
	if r == nil {
		return
	}
	_, nav, terr, ok := navigationState(w)
	if !ok {
		return
	}
	grid := terr.Grid()
	x0, y0, x1, y1 := visibleCells(screen, cam, nav, grid)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := flowfield.Cell{X: x, Y: y}
			cell := terr.At(c)
			sx, sy, size := cellRect(cam, nav, c)
			vector.FillRect(screen, sx, sy, size, size, TerrainColor(cell.Type), false)
			if cell.Burning() {
				vector.FillRect(screen, sx, sy, size, size, burningTint, false)
			}
			if r.Grid && size >= 6 {
				vector.StrokeRect(screen, sx, sy, size, size, 1, color.RGBA{A: 40}, false)
			}
		}
	}
}

// UnitRenderer draws units as circles with a health bar. Selected units get
// a white ring.
type UnitRenderer struct{}

func NewUnitRenderer() *UnitRenderer {
	return &UnitRenderer{}
}

func (r *UnitRenderer) Draw(w *ecs.World, screen *ebiten.Image, cam ecs.Camera) {
	if r == nil || w == nil || screen == nil {
		return
	}
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.UnitComponent.Kind(), func(e ecs.Entity, t *component.Transform, u *component.Unit) {
		sx, sy := cam.WorldToScreen(t.X, t.Y)
		radius := float32(u.Radius * zoom)
		fill := u.Color
		if fill == nil {
			fill = colornames.Steelblue
		}
		vector.FillCircle(screen, float32(sx), float32(sy), radius, fill, true)

		if ecs.Has(w, e, component.SelectedTagComponent.Kind()) {
			vector.StrokeCircle(screen, float32(sx), float32(sy), radius+2, 1.5, colornames.White, true)
		}

		if u.MaxHealth > 0 && u.Health < u.MaxHealth {
			frac := float32(math.Max(u.Health/u.MaxHealth, 0))
			barW := radius * 2
			bx, by := float32(sx)-radius, float32(sy)-radius-4
			vector.FillRect(screen, bx, by, barW, 2, colornames.Darkred, false)
			vector.FillRect(screen, bx, by, barW*frac, 2, colornames.Limegreen, false)
		}
	})
}

// FlowFieldOverlay draws the shared field on top of the terrain. Heat shades
// cells by integration value; Arrows draws each flow direction.
type FlowFieldOverlay struct {
	Heat   bool
	Arrows bool
}

func NewFlowFieldOverlay() *FlowFieldOverlay {
	return &FlowFieldOverlay{Heat: true, Arrows: true}
}

func (o *FlowFieldOverlay) Draw(w *ecs.World, screen *ebiten.Image, cam ecs.Camera) {
	if o == nil || (!o.Heat && !o.Arrows) {
		return
	}
	_, nav, _, ok := navigationState(w)
	if !ok || nav.Fields == nil {
		return
	}
	fields := nav.Fields
	hi := fields.Integration.Max()
	x0, y0, x1, y1 := visibleCells(screen, cam, nav, fields.Integration.Grid)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := flowfield.Cell{X: x, Y: y}
			sx, sy, size := cellRect(cam, nav, c)

			if o.Heat {
				v := fields.Integration.At(c)
				if v != flowfield.Unreached {
					t := 0.0
					if hi > 0 {
						t = float64(v) / float64(hi)
					}
					heat := flowfield.HeatColor(t)
					heat.A = 72
					vector.FillRect(screen, sx, sy, size, size, heat, false)
				}
			}

			if o.Arrows && size >= 8 {
				d := fields.Direction(c)
				if d.IsZero() {
					continue
				}
				dx, dy := d.Vector()
				cx, cy := sx+size/2, sy+size/2
				l := size * 0.35
				ex, ey := cx+float32(dx)*l, cy+float32(dy)*l
				vector.StrokeLine(screen, cx, cy, ex, ey, 1, colornames.Whitesmoke, true)
				vector.FillRect(screen, ex-1, ey-1, 2, 2, colornames.Whitesmoke, false)
			}
		}
	}

	gx, gy, size := cellRect(cam, nav, fields.Goal)
	vector.StrokeRect(screen, gx, gy, size, size, 2, colornames.Blue, false)
}
