package main

import (
	"bytes"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/skirmish/ecs/component"
	"golang.org/x/image/font/gofont/goregular"
)

// EditorActions are the callbacks the panel triggers.
type EditorActions struct {
	OnGoal         func(x, y string)
	OnBrush        func(t component.CellType)
	OnBurning      func()
	OnConnectivity func()
	OnPropagation  func()
	OnRebuild      func()
	OnCopy         func()
	OnSave         func(name string)
	OnLoad         func(name string)
}

// EditorUI is the right-hand panel plus the widgets the editor updates.
type EditorUI struct {
	UI *ebitenui.UI

	goalX, goalY *widget.TextInput
	fileName     *widget.TextInput
	burning      *widget.Button
	connectivity *widget.Button
	propagation  *widget.Button
	status       *widget.Label
}

func BuildEditorUI(panelWidth int, actions EditorActions, brushes []component.CellType) *EditorUI {
	ui := &ebitenui.UI{}

	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic("Failed to load font: " + err.Error())
	}
	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}
	ui.PrimaryTheme = newEditorTheme(&fontFace)
	theme := ui.PrimaryTheme

	eu := &EditorUI{UI: ui}

	panel := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth, 400),
		),
		widget.ContainerOpts.BackgroundImage(solidNineSlice(panelBackground)),
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionVertical),
				widget.RowLayoutOpts.Spacing(8),
				widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 8, Right: 8}),
			),
		),
	)

	// Goal
	submitGoal := func(string) {
		if actions.OnGoal != nil {
			actions.OnGoal(eu.goalX.GetText(), eu.goalY.GetText())
		}
	}
	eu.goalX = newTextInput(&fontFace, 60, submitGoal)
	eu.goalY = newTextInput(&fontFace, 60, submitGoal)
	panel.AddChild(newLabel("Target", &fontFace))
	panel.AddChild(newRow(6,
		newLabel("X", &fontFace), eu.goalX,
		newLabel("Y", &fontFace), eu.goalY,
		newButton(theme, &fontFace, "Set", func() { submitGoal("") }),
	))

	// Flow options
	eu.connectivity = newButton(theme, &fontFace, "Connectivity: 4", actions.OnConnectivity)
	eu.propagation = newButton(theme, &fontFace, "Propagation: wavefront", actions.OnPropagation)
	panel.AddChild(newLabel("Flow", &fontFace))
	panel.AddChild(eu.connectivity)
	panel.AddChild(eu.propagation)
	panel.AddChild(newButton(theme, &fontFace, "Rebuild", actions.OnRebuild))

	// Terrain brush
	panel.AddChild(newLabel("Brush", &fontFace))
	brushRow := widget.NewContainer(
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
				widget.RowLayoutOpts.Spacing(4),
			),
		),
	)
	var brushButtons []*widget.Button
	for _, t := range brushes {
		btn := widget.NewButton(
			widget.ButtonOpts.Image(theme.ButtonTheme.Image),
			widget.ButtonOpts.Text(t.String(), &fontFace, buttonTextColor),
			widget.ButtonOpts.ToggleMode(),
			widget.ButtonOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(56, 28),
			),
		)
		brushButtons = append(brushButtons, btn)
		brushRow.AddChild(btn)
	}
	elements := make([]widget.RadioGroupElement, 0, len(brushButtons))
	for _, b := range brushButtons {
		elements = append(elements, b)
	}
	group := widget.NewRadioGroup(
		widget.RadioGroupOpts.Elements(elements...),
		widget.RadioGroupOpts.ChangedHandler(func(args *widget.RadioGroupChangedEventArgs) {
			if actions.OnBrush == nil {
				return
			}
			for idx, b := range brushButtons {
				if args.Active == b {
					actions.OnBrush(brushes[idx])
					return
				}
			}
		}),
	)
	if len(brushButtons) > 1 {
		group.SetActive(brushButtons[1])
	}
	panel.AddChild(brushRow)
	eu.burning = newButton(theme, &fontFace, "Burning: Off", actions.OnBurning)
	panel.AddChild(eu.burning)

	// File
	eu.fileName = newTextInput(&fontFace, 160, nil)
	panel.AddChild(newLabel("Map", &fontFace))
	panel.AddChild(eu.fileName)
	panel.AddChild(newRow(6,
		newButton(theme, &fontFace, "Save", func() {
			if actions.OnSave != nil {
				actions.OnSave(eu.fileName.GetText())
			}
		}),
		newButton(theme, &fontFace, "Load", func() {
			if actions.OnLoad != nil {
				actions.OnLoad(eu.fileName.GetText())
			}
		}),
		newButton(theme, &fontFace, "Copy", actions.OnCopy),
	))

	eu.status = widget.NewLabel(widget.LabelOpts.Text("", &fontFace, &widget.LabelColor{Idle: color.RGBA{200, 220, 255, 255}}))
	panel.AddChild(eu.status)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	panel.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionEnd,
		VerticalPosition:   widget.AnchorLayoutPositionStart,
		StretchVertical:    true,
	}
	root.AddChild(panel)
	ui.Container = root
	return eu
}

func (eu *EditorUI) SetGoal(x, y string) {
	eu.goalX.SetText(x)
	eu.goalY.SetText(y)
}

func (eu *EditorUI) SetFileName(name string) {
	eu.fileName.SetText(name)
}

func (eu *EditorUI) SetFlowLabels(connectivity, propagation string) {
	setButtonLabel(eu.connectivity, "Connectivity: "+connectivity)
	setButtonLabel(eu.propagation, "Propagation: "+propagation)
}

func (eu *EditorUI) SetBurning(on bool) {
	label := "Burning: Off"
	if on {
		label = "Burning: On"
	}
	setButtonLabel(eu.burning, label)
}

func (eu *EditorUI) SetStatus(msg string) {
	eu.status.Label = msg
}

func setButtonLabel(b *widget.Button, label string) {
	if b == nil {
		return
	}
	if t := b.Text(); t != nil {
		t.Label = label
	}
}
