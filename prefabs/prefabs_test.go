package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
	"gopkg.in/yaml.v3"
)

func TestLoadNavigationSpec(t *testing.T) {
	spec, err := LoadNavigationSpec()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Grid.Width != 48 || spec.Grid.Height != 32 || spec.Grid.CellSize != 16 {
		t.Fatalf("unexpected grid %+v", spec.Grid)
	}
	if spec.Flow.Connectivity != flowfield.Connect8 || spec.Flow.Propagation != flowfield.PropagateDijkstra {
		t.Fatalf("unexpected flow config %+v", spec.Flow)
	}
	costs := spec.Costs.TerrainCosts()
	if costs.Water != flowfield.CostImpassable || costs.Mud != 4 || costs.Burning != 8 {
		t.Fatalf("unexpected costs %+v", costs)
	}
}

func TestTerrainCostSpecDefaults(t *testing.T) {
	var spec TerrainCostSpec
	if err := yaml.Unmarshal([]byte("mud: 9\nground: impassable\n"), &spec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	costs := spec.TerrainCosts()
	def := component.DefaultTerrainCosts()
	if costs.Mud != 9 || costs.Ground != flowfield.CostImpassable {
		t.Fatalf("overrides not applied: %+v", costs)
	}
	if costs.Water != def.Water || costs.Burning != def.Burning {
		t.Fatalf("defaults not kept: %+v", costs)
	}

	if err := yaml.Unmarshal([]byte("mud: 70000\n"), &spec); err == nil {
		t.Fatalf("expected out-of-range cost to fail")
	}
}

func TestMapTerrain(t *testing.T) {
	tests := []struct {
		name    string
		rows    []string
		wantErr bool
		check   func(t *testing.T, terr *component.Terrain)
	}{
		{
			name: "all_runes",
			rows: []string{"#.,~", "^%.."},
			check: func(t *testing.T, terr *component.Terrain) {
				if terr.Width != 4 || terr.Height != 2 {
					t.Fatalf("unexpected size %dx%d", terr.Width, terr.Height)
				}
				want := []component.TerrainCell{
					{Type: component.CellNone},
					{Type: component.CellGround},
					{Type: component.CellMud},
					{Type: component.CellWater},
					{Type: component.CellGround, Properties: component.PropertyBurning},
					{Type: component.CellMud, Properties: component.PropertyBurning},
				}
				for i, w := range want {
					if terr.Cells[i] != w {
						t.Fatalf("cell %d: want %+v, got %+v", i, w, terr.Cells[i])
					}
				}
			},
		},
		{name: "ragged", rows: []string{"...", ".."}, wantErr: true},
		{name: "unknown_rune", rows: []string{"..x"}, wantErr: true},
		{
			name: "empty",
			rows: nil,
			check: func(t *testing.T, terr *component.Terrain) {
				if terr.Width != 0 || terr.Height != 0 || len(terr.Cells) != 0 {
					t.Fatalf("expected empty terrain, got %+v", terr)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			terr, err := MapSpec{Name: tc.name, Rows: tc.rows}.Terrain()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("terrain: %v", err)
			}
			tc.check(t, terr)
		})
	}
}

func TestMapRoundTrip(t *testing.T) {
	spec, err := LoadMap("skirmish")
	if err != nil {
		t.Fatalf("load map: %v", err)
	}
	terr, err := spec.Terrain()
	if err != nil {
		t.Fatalf("terrain: %v", err)
	}
	goal := spec.GoalCell(terr.Grid())
	if goal != (flowfield.Cell{X: 40, Y: 16}) {
		t.Fatalf("unexpected goal %s", goal)
	}
	if len(spec.Units) == 0 {
		t.Fatalf("expected unit placements")
	}

	out := MapFromTerrain(spec.Name, terr, &goal)
	if !slices.Equal(out.Rows, spec.Rows) {
		t.Fatalf("rows changed on round trip")
	}

	path := filepath.Join(t.TempDir(), "maps", "copy.yaml")
	if err := SaveMap(path, out); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var back MapSpec
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Goal == nil || back.Goal[0] != 40 || back.Goal[1] != 16 {
		t.Fatalf("goal lost: %+v", back.Goal)
	}
}

func TestGoalCellDefaultsToCentre(t *testing.T) {
	got := MapSpec{}.GoalCell(flowfield.NewGrid(16, 12))
	if got != (flowfield.Cell{X: 8, Y: 6}) {
		t.Fatalf("unexpected default goal %s", got)
	}
}

func TestListAndUnits(t *testing.T) {
	maps := ListMaps()
	for _, want := range []string{"corridor", "skirmish"} {
		if !slices.Contains(maps, want) {
			t.Fatalf("expected %s in %v", want, maps)
		}
	}

	spec, err := LoadUnitSpec("units/scout.yaml")
	if err != nil {
		t.Fatalf("load unit: %v", err)
	}
	if spec.Script != "scout.tengo" || spec.MoveSpeed != 90 {
		t.Fatalf("unexpected scout %+v", spec)
	}
	u := spec.Unit()
	if u.Health != u.MaxHealth || u.Radius != 4 {
		t.Fatalf("unexpected unit %+v", u)
	}
	if got := spec.Color.Or(color.White); got != (color.NRGBA{R: 0x70, G: 0xc0, B: 0xe0, A: 0xff}) {
		t.Fatalf("unexpected color %v", got)
	}

	if _, err := LoadScript(spec.Script); err != nil {
		t.Fatalf("load script: %v", err)
	}
	if _, err := LoadUnitSpec("missing"); err == nil {
		t.Fatalf("expected missing unit to fail")
	}
}

func TestYAMLColor(t *testing.T) {
	var c YAMLColor
	if err := yaml.Unmarshal([]byte(`"#10203080"`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Color != (color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}) {
		t.Fatalf("unexpected color %v", c.Color)
	}
	if err := yaml.Unmarshal([]byte(`"#12"`), &c); err == nil {
		t.Fatalf("expected short color to fail")
	}
	var nilColor *YAMLColor
	if nilColor.Or(color.Black) != color.Black {
		t.Fatalf("expected fallback")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want ChangeKind
		name string
	}{
		{path: "prefabs/navigation.yaml", want: ChangeNavigation, name: "navigation"},
		{path: "prefabs/maps/skirmish.yaml", want: ChangeMap, name: "skirmish"},
		{path: "prefabs/units/scout.yml", want: ChangeUnit, name: "scout"},
		{path: "prefabs/scripts/scout.tengo", want: ChangeScript, name: "scout.tengo"},
		{path: "prefabs/other.yaml", want: ChangeNone},
		{path: "prefabs/maps/notes.txt", want: ChangeNone},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got := Classify(tc.path)
			if got.Kind != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got.Kind)
			}
			if tc.want != ChangeNone && got.Name != tc.name {
				t.Fatalf("want name %s, got %s", tc.name, got.Name)
			}
		})
	}
}

func TestDebouncer(t *testing.T) {
	d := debouncer{window: watchDebounce, last: map[string]time.Time{}}
	now := time.Now()
	if !d.allow("a.yaml", now) {
		t.Fatalf("first event should pass")
	}
	if d.allow("a.yaml", now.Add(50*time.Millisecond)) {
		t.Fatalf("event inside window should be dropped")
	}
	if !d.allow("b.yaml", now.Add(50*time.Millisecond)) {
		t.Fatalf("other files are independent")
	}
	if !d.allow("a.yaml", now.Add(200*time.Millisecond)) {
		t.Fatalf("event after window should pass")
	}
}
