package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skirmish/prefabs"
	"github.com/milk9111/skirmish/rts"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	mapName := flag.String("map", "skirmish", "map name in prefabs/maps (basename, .yaml optional)")
	physics := flag.Bool("physics", true, "resolve unit collisions with chipmunk")
	watch := flag.Bool("watch", true, "hot reload prefabs from disk")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("skirmish")

	sim, err := rts.Init(rts.Config{Map: *mapName, Physics: *physics})
	if err != nil {
		log.Fatalf("failed to start %s: %v", *mapName, err)
	}
	defer sim.Shutdown()

	var watcher *prefabs.Watcher
	if *watch {
		watcher, err = prefabs.NewWatcher("prefabs")
		if err != nil {
			log.Printf("prefab watcher disabled: %v", err)
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	game := NewGame(sim, watcher, *debug)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
