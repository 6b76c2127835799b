package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/system"
	"github.com/milk9111/skirmish/prefabs"
	"github.com/milk9111/skirmish/rts"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	panSpeed     = 480.0
	dragDeadZone = 4
)

type Game struct {
	frames int
	debug  bool
	paused bool

	sim     *rts.Sim
	cam     ecs.Camera
	watcher *prefabs.Watcher

	dragging               bool
	dragStartX, dragStartY int
	status                 string
}

func NewGame(sim *rts.Sim, watcher *prefabs.Watcher, debug bool) *Game {
	g := &Game{
		sim:     sim,
		watcher: watcher,
		debug:   debug,
		cam:     ecs.Camera{Zoom: 1},
	}
	g.centerCamera()
	sim.SetDebug(debug)
	return g
}

func (g *Game) Update() error {
	g.frames++
	dt := 1.0 / float64(ebiten.TPS())

	if g.watcher != nil {
		g.sim.ApplyAll(g.watcher.Poll())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
		g.sim.SetDebug(g.debug)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.sim.Overlay().Arrows = !g.sim.Overlay().Arrows
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.sim.Overlay().Heat = !g.sim.Overlay().Heat
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		g.centerCamera()
	}
	g.updateCamera(dt)
	g.updateSelection()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if err := g.sim.MoveSelected(g.cursorWorld()); err != nil {
			g.status = err.Error()
			log.Printf("order: %v", err)
		} else {
			g.status = ""
		}
	}

	if !g.paused {
		g.sim.Step(dt)
	}
	return nil
}

func (g *Game) updateCamera(dt float64) {
	step := panSpeed * dt / g.cam.Zoom
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.X -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.X += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Y -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Y += step
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		zoom := g.cam.Zoom * (1 + wy*0.1)
		if zoom < 0.25 {
			zoom = 0.25
		}
		if zoom > 4 {
			zoom = 4
		}
		g.cam.Zoom = zoom
	}
}

// updateSelection handles click-to-select and drag-box selection.
func (g *Game) updateSelection() {
	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.dragStartX, g.dragStartY = mx, my
	}
	if !g.dragging || !inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		return
	}
	g.dragging = false

	if abs(mx-g.dragStartX) < dragDeadZone && abs(my-g.dragStartY) < dragDeadZone {
		if id, ok := g.sim.UnitAt(g.cursorWorld()); ok {
			g.sim.Select(id)
		} else {
			g.sim.Select()
		}
		return
	}
	ax, ay := g.cam.ScreenToWorld(float64(g.dragStartX), float64(g.dragStartY))
	bx, by := g.cam.ScreenToWorld(float64(mx), float64(my))
	g.sim.Select(g.sim.UnitsIn(rts.Point{X: ax, Y: ay}, rts.Point{X: bx, Y: by})...)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{16, 16, 20, 255})
	g.sim.Draw(screen, g.cam)

	if g.dragging {
		mx, my := ebiten.CursorPosition()
		x0, y0 := float32(min(mx, g.dragStartX)), float32(min(my, g.dragStartY))
		w, h := float32(abs(mx-g.dragStartX)), float32(abs(my-g.dragStartY))
		vector.StrokeRect(screen, x0, y0, w, h, 1, colornames.Lime, false)
	}

	if g.debug {
		system.DrawNavigationDebug(g.sim.World(), screen)
	}

	hud := fmt.Sprintf("Frames: %d    FPS: %.2f    Units: %d    Selected: %d", g.frames, ebiten.ActualFPS(), len(g.sim.Units()), len(g.sim.Selected()))
	if g.paused {
		hud += "    PAUSED"
	}
	ebitenutil.DebugPrintAt(screen, hud, 10, baseHeight-40)
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 10, baseHeight-20)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) cursorWorld() rts.Point {
	mx, my := ebiten.CursorPosition()
	x, y := g.cam.ScreenToWorld(float64(mx), float64(my))
	return rts.Point{X: x, Y: y}
}

func (g *Game) centerCamera() {
	t := g.sim.Terrain()
	size := g.sim.Navigation().CellSize
	g.cam.X = float64(t.Width)*size/2 - baseWidth/(2*g.cam.Zoom)
	g.cam.Y = float64(t.Height)*size/2 - baseHeight/(2*g.cam.Zoom)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
