package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
	"github.com/milk9111/skirmish/prefabs"
	"github.com/milk9111/skirmish/rts"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

const (
	baseWidthEditor  = 1280
	baseHeightEditor = 760
	panelWidth       = 320
	thumbSize        = 96
)

type Editor struct {
	sim *rts.Sim
	ui  *EditorUI

	brush   component.CellType
	burning bool

	dragGoal bool
	lastGoal flowfield.Cell

	thumbs       [3]*ebiten.Image
	thumbsFields *flowfield.Fields

	clipboardOK bool
	watcher     *prefabs.Watcher
}

func NewEditor(sim *rts.Sim, clipboardOK bool) *Editor {
	e := &Editor{
		sim:         sim,
		brush:       component.CellGround,
		clipboardOK: clipboardOK,
	}
	sim.Overlay().Heat = true
	sim.Overlay().Arrows = true

	e.ui = BuildEditorUI(panelWidth, EditorActions{
		OnGoal:         e.goalFromInputs,
		OnBrush:        func(t component.CellType) { e.brush = t },
		OnBurning:      e.toggleBurning,
		OnConnectivity: e.toggleConnectivity,
		OnPropagation:  e.togglePropagation,
		OnRebuild:      func() { e.rebuild() },
		OnCopy:         e.copyFields,
		OnSave:         e.save,
		OnLoad:         e.load,
	}, component.CellTypes())
	e.ui.SetFileName(sim.MapName())
	e.syncPanel()
	return e
}

func (e *Editor) Update() error {
	suppressHotkeys := false
	if fw := e.ui.UI.GetFocusedWidget(); fw != nil {
		if _, ok := fw.(*widget.TextInput); ok {
			suppressHotkeys = true
		}
	}

	if !suppressHotkeys {
		if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
			os.Exit(0)
		}
		ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
		switch {
		case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
			e.save(e.ui.fileName.GetText())
		case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC):
			e.copyFields()
		case inpututil.IsKeyJustPressed(ebiten.KeyC):
			e.toggleConnectivity()
		case inpututil.IsKeyJustPressed(ebiten.KeyP):
			e.togglePropagation()
		case inpututil.IsKeyJustPressed(ebiten.KeyR):
			e.rebuild()
		case inpututil.IsKeyJustPressed(ebiten.KeyH):
			e.sim.Overlay().Heat = !e.sim.Overlay().Heat
		case inpututil.IsKeyJustPressed(ebiten.KeyA):
			e.sim.Overlay().Arrows = !e.sim.Overlay().Arrows
		}
	}

	e.ui.UI.Update()

	if e.watcher != nil {
		e.sim.ApplyAll(e.watcher.Poll())
	}

	cell, inCanvas := e.cellUnderCursor()
	if inCanvas && !ebuiinput.UIHovered {
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			e.paint(cell)
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
			e.dragGoal = true
		}
	}
	if e.dragGoal && ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		if inCanvas && (!e.sim.Navigation().HasGoal || cell != e.lastGoal) {
			e.setGoal(cell)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		e.dragGoal = false
	}

	// Systems run with no elapsed time so units hold still while the
	// navigation system picks up terrain edits.
	e.sim.Step(0)
	return nil
}

func (e *Editor) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{24, 24, 28, 255})

	cam := e.camera()
	canvas := screen.SubImage(screen.Bounds().Intersect(canvasRect())).(*ebiten.Image)
	e.sim.Draw(canvas, cam)

	if cell, ok := e.cellUnderCursor(); ok {
		size := e.sim.Navigation().CellSize
		x, y := cam.WorldToScreen(float64(cell.X)*size, float64(cell.Y)*size)
		s := float32(size * cam.Zoom)
		vector.StrokeRect(screen, float32(x), float32(y), s, s, 1, colornames.Yellow, false)
	}

	e.ui.UI.Draw(screen)
	e.drawThumbnails(screen)

	nav := e.sim.Navigation()
	goal := "none"
	if nav.HasGoal {
		goal = nav.Goal.String()
	}
	instr := fmt.Sprintf("Left: paint %s   Right: set target   C: connectivity   P: propagation   H/A: heat/arrows   Ctrl+S: save   Ctrl+C: copy\nmap=%s  %dx%d  goal=%s",
		e.brushLabel(), e.sim.MapName(), e.sim.Terrain().Width, e.sim.Terrain().Height, goal)
	ebitenutil.DebugPrintAt(screen, instr, 8, baseHeightEditor-36)
}

func (e *Editor) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidthEditor, baseHeightEditor
}

func (e *Editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("Layout called; use LayoutF instead")
}

func canvasRect() image.Rectangle {
	return image.Rect(0, 0, baseWidthEditor-panelWidth, baseHeightEditor-40)
}

// camera fits the whole map into the canvas.
func (e *Editor) camera() ecs.Camera {
	t := e.sim.Terrain()
	size := e.sim.Navigation().CellSize
	r := canvasRect()
	if t.Width == 0 || t.Height == 0 {
		return ecs.Camera{Zoom: 1}
	}
	zoom := math.Min(float64(r.Dx())/(float64(t.Width)*size), float64(r.Dy())/(float64(t.Height)*size))
	return ecs.Camera{Zoom: zoom}
}

func (e *Editor) cellUnderCursor() (flowfield.Cell, bool) {
	mx, my := ebiten.CursorPosition()
	r := canvasRect()
	if mx < r.Min.X || my < r.Min.Y || mx >= r.Max.X || my >= r.Max.Y {
		return flowfield.Cell{}, false
	}
	wx, wy := e.camera().ScreenToWorld(float64(mx), float64(my))
	cell := e.sim.Navigation().CellAt(wx, wy)
	return cell, e.sim.Terrain().Grid().Contains(cell)
}

func (e *Editor) paint(cell flowfield.Cell) {
	tc := component.TerrainCell{Type: e.brush}
	if e.burning {
		tc.Properties |= component.PropertyBurning
	}
	e.sim.Paint(cell, tc)
}

func (e *Editor) setGoal(cell flowfield.Cell) {
	e.lastGoal = cell
	if err := e.sim.SetGoal(cell); err != nil {
		e.ui.SetStatus(fmt.Sprintf("target %s: %v", cell, err))
		return
	}
	e.ui.SetGoal(strconv.Itoa(cell.X), strconv.Itoa(cell.Y))
	e.rebuild()
}

func (e *Editor) goalFromInputs(xs, ys string) {
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		e.ui.SetStatus("target must be two integers")
		return
	}
	e.setGoal(flowfield.Cell{X: x, Y: y})
}

func (e *Editor) rebuild() *flowfield.Fields {
	fields, err := e.sim.Rebuild()
	if err != nil {
		e.ui.SetStatus(fmt.Sprintf("rebuild: %v", err))
		return nil
	}
	e.ui.SetStatus(fmt.Sprintf("built gen %d, max %d", fields.Generation, fields.Integration.Max()))
	return fields
}

func (e *Editor) toggleConnectivity() {
	cfg := e.sim.Navigation().Builder.Config()
	if cfg.Connectivity == flowfield.Connect4 {
		cfg.Connectivity = flowfield.Connect8
	} else {
		cfg.Connectivity = flowfield.Connect4
	}
	e.sim.SetFlowConfig(cfg)
	e.syncPanel()
	e.rebuild()
}

func (e *Editor) togglePropagation() {
	cfg := e.sim.Navigation().Builder.Config()
	if cfg.Propagation == flowfield.PropagateWavefront {
		cfg.Propagation = flowfield.PropagateDijkstra
	} else {
		cfg.Propagation = flowfield.PropagateWavefront
	}
	e.sim.SetFlowConfig(cfg)
	e.syncPanel()
	e.rebuild()
}

func (e *Editor) toggleBurning() {
	e.burning = !e.burning
	e.ui.SetBurning(e.burning)
}

func (e *Editor) syncPanel() {
	cfg := e.sim.Navigation().Builder.Config()
	e.ui.SetFlowLabels(cfg.Connectivity.String(), cfg.Propagation.String())
	if nav := e.sim.Navigation(); nav.HasGoal {
		e.lastGoal = nav.Goal
		e.ui.SetGoal(strconv.Itoa(nav.Goal.X), strconv.Itoa(nav.Goal.Y))
	}
}

func (e *Editor) copyFields() {
	fields := e.sim.Fields()
	if fields == nil {
		e.ui.SetStatus("nothing to copy")
		return
	}
	data, err := exportFields(fields)
	if err != nil {
		e.ui.SetStatus(fmt.Sprintf("copy: %v", err))
		return
	}
	if !e.clipboardOK {
		os.Stdout.Write(data)
		e.ui.SetStatus("clipboard unavailable; printed to stdout")
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	e.ui.SetStatus(fmt.Sprintf("copied %d bytes", len(data)))
}

func (e *Editor) save(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		e.ui.SetStatus("no map name; save aborted")
		return
	}
	path, err := e.sim.SaveMap(name)
	if err != nil {
		log.Printf("Save failed: %v", err)
		e.ui.SetStatus(fmt.Sprintf("save: %v", err))
		return
	}
	e.ui.SetStatus("saved " + path)
}

func (e *Editor) load(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		e.ui.SetStatus("no map name")
		return
	}
	if err := e.sim.LoadMap(name); err != nil {
		e.ui.SetStatus(fmt.Sprintf("load: %v (have %s)", err, strings.Join(prefabs.ListMaps(), ", ")))
		return
	}
	e.syncPanel()
	e.rebuild()
}

func (e *Editor) brushLabel() string {
	if e.burning {
		return "burning " + e.brush.String()
	}
	return e.brush.String()
}

// drawThumbnails shows the cost, integration and flow images under the
// panel, regenerated whenever a new snapshot is built.
func (e *Editor) drawThumbnails(screen *ebiten.Image) {
	fields := e.sim.Fields()
	if fields == nil {
		return
	}
	if fields != e.thumbsFields {
		e.thumbsFields = fields
		e.thumbs[0] = ebiten.NewImageFromImage(flowfield.CostImage(fields.Costs, fields.Goal))
		e.thumbs[1] = ebiten.NewImageFromImage(flowfield.IntegrationImage(fields.Integration, fields.Goal))
		e.thumbs[2] = ebiten.NewImageFromImage(flowfield.FlowImage(fields.Flow, fields.Goal))
	}

	labels := []string{"cost", "integration", "flow"}
	x0 := baseWidthEditor - panelWidth + 8
	y0 := baseHeightEditor - thumbSize - 56
	for i, img := range e.thumbs {
		if img == nil {
			continue
		}
		b := img.Bounds()
		scale := math.Min(thumbSize/float64(b.Dx()), thumbSize/float64(b.Dy()))
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		x := float64(x0 + i*(thumbSize+8))
		op.GeoM.Translate(x, float64(y0))
		op.Filter = ebiten.FilterNearest
		screen.DrawImage(img, op)
		ebitenutil.DebugPrintAt(screen, labels[i], int(x), y0+thumbSize+2)
	}
}

func exportFields(fields *flowfield.Fields) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "goal %s connectivity %s propagation %s\n", fields.Goal, fields.Config.Connectivity, fields.Config.Propagation)
	if err := flowfield.WriteIntegration(&buf, fields.Integration); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	if err := flowfield.WriteFlow(&buf, fields.Flow, fields.Goal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
