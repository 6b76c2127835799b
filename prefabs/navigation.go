package prefabs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
	"gopkg.in/yaml.v3"
)

const NavigationSpecFile = "navigation.yaml"

type NavigationSpec struct {
	Grid  GridSpec         `yaml:"grid"`
	Flow  flowfield.Config `yaml:"flow"`
	Costs TerrainCostSpec  `yaml:"costs"`
}

type GridSpec struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	CellSize float64 `yaml:"cell_size"`
}

// TerrainCostSpec is the yaml form of component.TerrainCosts. Omitted
// entries keep the built-in defaults.
type TerrainCostSpec struct {
	None    *CostValue `yaml:"none"`
	Ground  *CostValue `yaml:"ground"`
	Mud     *CostValue `yaml:"mud"`
	Water   *CostValue `yaml:"water"`
	Burning *CostValue `yaml:"burning"`
}

// CostValue is a traversal cost written either as an integer or as
// "impassable".
type CostValue flowfield.Cost

func (c *CostValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("cost must be a scalar")
	}
	s := strings.ToLower(strings.TrimSpace(value.Value))
	if s == "impassable" || s == "blocked" {
		*c = CostValue(flowfield.CostImpassable)
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return fmt.Errorf("invalid cost %q", value.Value)
	}
	*c = CostValue(v)
	return nil
}

func (c CostValue) MarshalYAML() (any, error) {
	if flowfield.Cost(c) == flowfield.CostImpassable {
		return "impassable", nil
	}
	return int(c), nil
}

func (s TerrainCostSpec) TerrainCosts() component.TerrainCosts {
	out := component.DefaultTerrainCosts()
	pick := func(dst *flowfield.Cost, v *CostValue) {
		if v != nil {
			*dst = flowfield.Cost(*v)
		}
	}
	pick(&out.None, s.None)
	pick(&out.Ground, s.Ground)
	pick(&out.Mud, s.Mud)
	pick(&out.Water, s.Water)
	pick(&out.Burning, s.Burning)
	return out
}

// DefaultNavigationSpec is used when navigation.yaml is missing fields.
func DefaultNavigationSpec() NavigationSpec {
	return NavigationSpec{
		Grid: GridSpec{Width: flowfield.DefaultGridSize, Height: flowfield.DefaultGridSize, CellSize: 16},
		Flow: flowfield.DefaultConfig(),
	}
}

func LoadNavigationSpec() (NavigationSpec, error) {
	spec, err := LoadSpec[NavigationSpec](NavigationSpecFile)
	if err != nil {
		return NavigationSpec{}, err
	}
	def := DefaultNavigationSpec()
	if spec.Grid.Width <= 0 {
		spec.Grid.Width = def.Grid.Width
	}
	if spec.Grid.Height <= 0 {
		spec.Grid.Height = def.Grid.Height
	}
	if spec.Grid.CellSize <= 0 {
		spec.Grid.CellSize = def.Grid.CellSize
	}
	if spec.Flow.Connectivity == 0 {
		spec.Flow.Connectivity = flowfield.Connect4
	}
	return spec, nil
}
