package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skirmish/flowfield"
	"github.com/milk9111/skirmish/prefabs"
	"github.com/milk9111/skirmish/rts"
	"golang.design/x/clipboard"
)

func main() {
	mapName := flag.String("map", "", "map under prefabs/maps to open (empty: open ground grid)")
	width := flag.Int("width", 0, "open grid width (default: navigation.yaml)")
	height := flag.Int("height", 0, "open grid height (default: navigation.yaml)")
	watch := flag.Bool("watch", true, "hot reload prefabs from disk")
	flag.Parse()

	navSpec, err := prefabs.LoadNavigationSpec()
	if err != nil {
		log.Printf("navigation spec: %v; using defaults", err)
		navSpec = prefabs.DefaultNavigationSpec()
	}
	if *width > 0 {
		navSpec.Grid.Width = *width
	}
	if *height > 0 {
		navSpec.Grid.Height = *height
	}

	sim, err := rts.Init(rts.Config{Map: *mapName, Navigation: &navSpec})
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer sim.Shutdown()

	if !sim.Navigation().HasGoal {
		t := sim.Terrain()
		if err := sim.SetGoal(flowfield.Cell{X: t.Width / 2, Y: t.Height / 2}); err != nil {
			log.Printf("default goal: %v", err)
		}
	}

	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
		clipboardOK = false
	}

	editor := NewEditor(sim, clipboardOK)
	editor.rebuild()

	if *watch {
		w, err := prefabs.NewWatcher("prefabs")
		if err != nil {
			log.Printf("prefab watcher disabled: %v", err)
		} else {
			defer w.Close()
			editor.watcher = w
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidthEditor, baseHeightEditor)
	ebiten.SetWindowTitle("skirmish flow field editor")

	if err := ebiten.RunGame(editor); err != nil {
		log.Fatal(err)
	}
}
