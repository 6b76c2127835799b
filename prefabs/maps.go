package prefabs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
	"gopkg.in/yaml.v3"
)

// MapSpec is a terrain layout written one row of characters per line:
//
//	# none  . ground  , mud  ~ water  ^ burning ground  % burning mud
type MapSpec struct {
	Name  string        `yaml:"name"`
	Goal  *[2]int       `yaml:"goal,omitempty"`
	Rows  []string      `yaml:"rows"`
	Units []MapUnitSpec `yaml:"units,omitempty"`
}

// MapUnitSpec places a unit at the centre of a cell when the map loads.
type MapUnitSpec struct {
	Unit string `yaml:"unit"`
	Cell [2]int `yaml:"cell"`
}

func LoadMap(name string) (MapSpec, error) {
	spec, err := LoadSpec[MapSpec](specPath("maps", name))
	if err != nil {
		return MapSpec{}, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return spec, nil
}

// ListMaps returns the names accepted by LoadMap.
func ListMaps() []string {
	return List("maps")
}

// Terrain decodes the rows. Every row must have the same number of cells.
func (m MapSpec) Terrain() (*component.Terrain, error) {
	height := len(m.Rows)
	width := 0
	if height > 0 {
		width = utf8.RuneCountInString(m.Rows[0])
	}

	t := component.NewTerrain(width, height, component.CellNone)
	for y, row := range m.Rows {
		if n := utf8.RuneCountInString(row); n != width {
			return nil, fmt.Errorf("prefabs: map %s: row %d has %d cells, want %d", m.Name, y, n, width)
		}
		x := 0
		for _, r := range row {
			cell, ok := component.ParseTerrainRune(r)
			if !ok {
				return nil, fmt.Errorf("prefabs: map %s: unknown terrain %q at (%d,%d)", m.Name, r, x, y)
			}
			t.Cells[y*width+x] = cell
			x++
		}
	}
	return t, nil
}

// GoalCell returns the stored goal, or the grid centre when none is set.
func (m MapSpec) GoalCell(g flowfield.Grid) flowfield.Cell {
	if m.Goal != nil {
		return flowfield.Cell{X: m.Goal[0], Y: m.Goal[1]}
	}
	return flowfield.Cell{X: g.Width / 2, Y: g.Height / 2}
}

// MapFromTerrain encodes t back into rows.
func MapFromTerrain(name string, t *component.Terrain, goal *flowfield.Cell) MapSpec {
	spec := MapSpec{Name: name, Rows: make([]string, 0, t.Height)}
	var b strings.Builder
	for y := 0; y < t.Height; y++ {
		b.Reset()
		for x := 0; x < t.Width; x++ {
			b.WriteRune(t.At(flowfield.Cell{X: x, Y: y}).Rune())
		}
		spec.Rows = append(spec.Rows, b.String())
	}
	if goal != nil {
		spec.Goal = &[2]int{goal.X, goal.Y}
	}
	return spec
}

// SaveMap writes spec to path, creating parent directories.
func SaveMap(path string, spec MapSpec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("prefabs: marshal map %s: %w", spec.Name, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prefabs: save map %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("prefabs: save map %s: %w", path, err)
	}
	return nil
}

// MapDiskPath is where SaveMap writes a map so LoadMap prefers it over the
// embedded copy.
func MapDiskPath(name string) string {
	return diskPrefabPath(specPath("maps", name))
}
