package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
	"github.com/milk9111/skirmish/prefabs"
)

func main() {
	mapName := flag.String("map", "", "map under prefabs/maps (empty: open ground grid)")
	width := flag.Int("width", 16, "open grid width when -map is empty")
	height := flag.Int("height", 16, "open grid height when -map is empty")
	goalFlag := flag.String("goal", "", "goal cell as x,y (default: map goal or grid centre)")
	conn := flag.String("conn", "", "connectivity: 4 or 8 (default: navigation.yaml)")
	mode := flag.String("mode", "", "propagation: wavefront or dijkstra (default: navigation.yaml)")
	pngPath := flag.String("png", "", "write cost, integration and flow images side by side to this file")
	quiet := flag.Bool("q", false, "skip the text dump")
	scale := flag.Int("scale", 8, "pixels per cell in the png")
	flag.Parse()

	navSpec, err := prefabs.LoadNavigationSpec()
	if err != nil {
		log.Printf("navigation spec: %v; using defaults", err)
		navSpec = prefabs.DefaultNavigationSpec()
	}
	cfg := navSpec.Flow
	if *conn != "" {
		if err := cfg.Connectivity.UnmarshalText([]byte(*conn)); err != nil {
			log.Fatal(err)
		}
	}
	if *mode != "" {
		if err := cfg.Propagation.UnmarshalText([]byte(*mode)); err != nil {
			log.Fatal(err)
		}
	}

	terrain := component.NewTerrain(*width, *height, component.CellGround)
	goal := flowfield.Cell{X: *width / 2, Y: *height / 2}
	if *mapName != "" {
		spec, err := prefabs.LoadMap(*mapName)
		if err != nil {
			log.Fatal(err)
		}
		terrain, err = spec.Terrain()
		if err != nil {
			log.Fatal(err)
		}
		goal = spec.GoalCell(terrain.Grid())
	}
	if *goalFlag != "" {
		goal, err = parseCell(*goalFlag)
		if err != nil {
			log.Fatalf("-goal: %v", err)
		}
	}

	costs := terrain.CostField(navSpec.Costs.TerrainCosts())
	costs.SetGoal(goal)

	fields, err := flowfield.NewBuilder(cfg).Build(costs, goal)
	if err != nil {
		log.Fatalf("build %s toward %s: %v", cfg.Connectivity, goal, err)
	}

	if !*quiet {
		out := bufio.NewWriter(os.Stdout)
		fmt.Fprintf(out, "grid %dx%d goal %s connectivity %s propagation %s\n\n",
			costs.Width, costs.Height, goal, cfg.Connectivity, cfg.Propagation)
		if err := flowfield.WriteIntegration(out, fields.Integration); err != nil {
			log.Fatal(err)
		}
		fmt.Fprintln(out)
		if err := flowfield.WriteFlow(out, fields.Flow, goal); err != nil {
			log.Fatal(err)
		}
		if err := out.Flush(); err != nil {
			log.Fatal(err)
		}
	}

	if *pngPath != "" {
		if err := writePNG(*pngPath, fields, *scale); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", *pngPath)
	}
}

func parseCell(s string) (flowfield.Cell, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return flowfield.Cell{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return flowfield.Cell{}, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return flowfield.Cell{}, err
	}
	return flowfield.Cell{X: x, Y: y}, nil
}

// writePNG lays the three field images out left to right with a one cell
// gap, each cell scaled to a square of scale pixels.
func writePNG(path string, fields *flowfield.Fields, scale int) error {
	if scale < 1 {
		scale = 1
	}
	panels := []*image.RGBA{
		flowfield.CostImage(fields.Costs, fields.Goal),
		flowfield.IntegrationImage(fields.Integration, fields.Goal),
		flowfield.FlowImage(fields.Flow, fields.Goal),
	}
	w, h := fields.Costs.Width, fields.Costs.Height
	gap := 1
	out := image.NewRGBA(image.Rect(0, 0, (w*3+gap*2)*scale, h*scale))

	for i, panel := range panels {
		offset := i * (w + gap) * scale
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r := image.Rect(offset+x*scale, y*scale, offset+(x+1)*scale, (y+1)*scale)
				draw.Draw(out, r, &image.Uniform{C: panel.RGBAAt(x, y)}, image.Point{}, draw.Src)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
