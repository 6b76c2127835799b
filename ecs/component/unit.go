package component

import "image/color"

// Unit holds the combat and movement stats of a spawned unit.
type Unit struct {
	Name      string
	Health    float64
	MaxHealth float64
	Mana      float64
	Damage    float64
	Armor     float64
	MoveSpeed float64 // pixels per second
	Radius    float64
	Color     color.Color
}

var UnitComponent = NewComponent[Unit]()

// UnitMoveState is the per-unit half of a move order. The shared flow field
// steers every moving unit toward the navigation goal.
type UnitMoveState struct {
	TargetX float64
	TargetY float64
	Moving  bool
}

var UnitMoveStateComponent = NewComponent[UnitMoveState]()

// UnitScript attaches a tengo behaviour script to a unit.
type UnitScript struct {
	Path string
}

var UnitScriptComponent = NewComponent[UnitScript]()
