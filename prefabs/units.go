package prefabs

import (
	"path/filepath"
	"strings"

	"github.com/milk9111/skirmish/ecs/component"
	"golang.org/x/image/colornames"
)

type UnitSpec struct {
	Name      string     `yaml:"name"`
	Health    float64    `yaml:"health"`
	Mana      float64    `yaml:"mana"`
	Damage    float64    `yaml:"damage"`
	Armor     float64    `yaml:"armor"`
	MoveSpeed float64    `yaml:"move_speed"`
	Radius    float64    `yaml:"radius"`
	Mass      float64    `yaml:"mass"`
	Script    string     `yaml:"script"`
	Color     *YAMLColor `yaml:"color"`
}

func LoadUnitSpec(name string) (UnitSpec, error) {
	spec, err := LoadSpec[UnitSpec](specPath("units", name))
	if err != nil {
		return UnitSpec{}, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return spec, nil
}

func ListUnits() []string {
	return List("units")
}

// Unit converts the spec into the runtime component. Health starts full.
func (s UnitSpec) Unit() component.Unit {
	radius := s.Radius
	if radius <= 0 {
		radius = 6
	}
	return component.Unit{
		Name:      s.Name,
		Health:    s.Health,
		MaxHealth: s.Health,
		Mana:      s.Mana,
		Damage:    s.Damage,
		Armor:     s.Armor,
		MoveSpeed: s.MoveSpeed,
		Radius:    radius,
		Color:     s.Color.Or(colornames.Steelblue),
	}
}
