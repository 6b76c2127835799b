package rts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/ecs/system"
	"github.com/milk9111/skirmish/flowfield"
	"github.com/milk9111/skirmish/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallNavigation() *prefabs.NavigationSpec {
	return &prefabs.NavigationSpec{
		Grid: prefabs.GridSpec{Width: 10, Height: 10, CellSize: 10},
		Flow: flowfield.DefaultConfig(),
	}
}

func newSmallSim(t *testing.T) *Sim {
	t.Helper()
	s, err := Init(Config{Navigation: smallNavigation()})
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)
	return s
}

func stepUntilStopped(s *Sim, id UnitID, maxSteps int) int {
	for i := 0; i < maxSteps; i++ {
		s.Step(0.1)
		if !s.Moving(id) {
			return i + 1
		}
	}
	return maxSteps
}

func TestInitOpenGrid(t *testing.T) {
	s := newSmallSim(t)
	assert.Equal(t, 10, s.Terrain().Width)
	assert.Equal(t, 10, s.Terrain().Height)
	assert.Nil(t, s.Fields())
	assert.Empty(t, s.Units())

	s.Step(0.1)
	assert.Nil(t, s.Fields(), "no goal, no build")
}

func TestMoveToReachesGoal(t *testing.T) {
	s := newSmallSim(t)
	id := s.Spawn(prefabs.UnitSpec{Name: "runner", Health: 10, MoveSpeed: 50}, Point{X: 5, Y: 5})

	require.NoError(t, s.MoveTo(id, Point{X: 95, Y: 5}))
	assert.True(t, s.Moving(id))

	steps := stepUntilStopped(s, id, 100)
	assert.Less(t, steps, 100)
	require.NotNil(t, s.Fields())
	assert.Equal(t, flowfield.Cell{X: 9, Y: 0}, s.Fields().Goal)

	p, ok := s.Position(id)
	require.True(t, ok)
	assert.Equal(t, flowfield.Cell{X: 9, Y: 0}, s.Navigation().CellAt(p.X, p.Y))
	assert.InDelta(t, 5, p.Y, 1e-9)
}

func TestMoveToRejects(t *testing.T) {
	s := newSmallSim(t)
	id := s.Spawn(prefabs.UnitSpec{Name: "runner", MoveSpeed: 10}, Point{X: 5, Y: 5})
	require.True(t, s.Paint(flowfield.Cell{X: 3, Y: 3}, component.TerrainCell{Type: component.CellWater}))

	assert.ErrorIs(t, s.MoveTo(id, Point{X: 35, Y: 35}), system.ErrBlockedTarget)
	assert.ErrorIs(t, s.MoveTo(id, Point{X: 500, Y: 5}), flowfield.ErrInvalidGoal)
	assert.ErrorIs(t, s.MoveTo(id, Point{X: -1, Y: 5}), flowfield.ErrInvalidConfig)
	assert.ErrorIs(t, s.MoveTo(UnitID(9999), Point{X: 5, Y: 5}), ErrUnknownUnit)
	assert.False(t, s.Moving(id))
	assert.False(t, s.Navigation().HasGoal)
}

func TestSharedGoalHaltsOtherUnits(t *testing.T) {
	s := newSmallSim(t)
	a := s.Spawn(prefabs.UnitSpec{Name: "a", MoveSpeed: 1}, Point{X: 5, Y: 5})
	b := s.Spawn(prefabs.UnitSpec{Name: "b", MoveSpeed: 1}, Point{X: 5, Y: 95})

	require.NoError(t, s.MoveTo(a, Point{X: 95, Y: 5}))
	s.Step(0.1)
	require.True(t, s.Moving(a))

	require.NoError(t, s.MoveTo(b, Point{X: 95, Y: 95}))
	s.Step(0.1)
	assert.False(t, s.Moving(a))
	assert.True(t, s.Moving(b))
	assert.Equal(t, flowfield.Cell{X: 9, Y: 9}, s.Fields().Goal)
}

func TestAttack(t *testing.T) {
	s := newSmallSim(t)
	attacker := s.Spawn(prefabs.UnitSpec{Name: "knight", Health: 30, Damage: 12}, Point{X: 5, Y: 5})
	target := s.Spawn(prefabs.UnitSpec{Name: "dummy", Health: 20, Armor: 2}, Point{X: 15, Y: 5})

	require.NoError(t, s.Attack(attacker, target))
	s.Step(0.1)
	u, ok := s.Unit(target)
	require.True(t, ok)
	assert.Equal(t, 10.0, u.Health)

	require.NoError(t, s.Attack(attacker, target))
	s.Step(0.1)
	_, ok = s.Unit(target)
	assert.False(t, ok)
	assert.Equal(t, []UnitID{attacker}, s.Units())

	assert.ErrorIs(t, s.Attack(attacker, target), ErrUnknownUnit)
	assert.ErrorIs(t, s.Attack(attacker, attacker), ErrSelfAttack)
}

func TestSelection(t *testing.T) {
	s := newSmallSim(t)
	a := s.Spawn(prefabs.UnitSpec{Name: "a", Radius: 4}, Point{X: 15, Y: 15})
	b := s.Spawn(prefabs.UnitSpec{Name: "b", Radius: 4}, Point{X: 45, Y: 15})
	s.Spawn(prefabs.UnitSpec{Name: "c", Radius: 4}, Point{X: 85, Y: 85})

	got, ok := s.UnitAt(Point{X: 17, Y: 14})
	require.True(t, ok)
	assert.Equal(t, a, got)
	_, ok = s.UnitAt(Point{X: 30, Y: 30})
	assert.False(t, ok)

	s.Select(s.UnitsIn(Point{X: 50, Y: 0}, Point{X: 0, Y: 20})...)
	assert.Equal(t, []UnitID{a, b}, s.Selected())

	require.NoError(t, s.MoveSelected(Point{X: 55, Y: 55}))
	s.Step(0.1)
	assert.True(t, s.Moving(a))
	assert.True(t, s.Moving(b))

	s.Select()
	assert.Empty(t, s.Selected())
}

func TestLoadMapCorridor(t *testing.T) {
	s, err := Init(Config{Map: "corridor"})
	require.NoError(t, err)
	defer s.Shutdown()

	assert.Equal(t, "corridor", s.MapName())
	assert.Equal(t, 16, s.Terrain().Width)
	assert.Equal(t, 12, s.Terrain().Height)
	require.True(t, s.Navigation().HasGoal)
	assert.Equal(t, flowfield.Cell{X: 8, Y: 6}, s.Navigation().Goal)

	s.Step(0.1)
	fields := s.Fields()
	require.NotNil(t, fields)
	assert.True(t, fields.Integration.Reachable(flowfield.Cell{X: 0, Y: 0}), "reachable through the gap")
	assert.False(t, fields.Integration.Reachable(flowfield.Cell{X: 3, Y: 5}), "wall cell")
}

func TestLoadMapSkirmish(t *testing.T) {
	s, err := Init(Config{Map: "skirmish", Physics: true})
	require.NoError(t, err)
	defer s.Shutdown()

	assert.Len(t, s.Units(), 6)
	assert.Equal(t, flowfield.Cell{X: 40, Y: 16}, s.Navigation().Goal)

	for i := 0; i < 10; i++ {
		s.Step(1.0 / 60)
	}
	require.NotNil(t, s.Fields())
	assert.Equal(t, flowfield.Cell{X: 40, Y: 16}, s.Fields().Goal)

	assert.Error(t, s.LoadMap("missing"))
	assert.Len(t, s.Units(), 6, "failed load keeps the running map")
}

func TestSaveAndReloadMap(t *testing.T) {
	t.Chdir(t.TempDir())

	s := newSmallSim(t)
	require.True(t, s.Paint(flowfield.Cell{X: 2, Y: 2}, component.TerrainCell{Type: component.CellMud, Properties: component.PropertyBurning}))
	require.NoError(t, s.SetGoal(flowfield.Cell{X: 7, Y: 7}))
	_, err := s.SpawnNamed("footman", Point{X: 15, Y: 25})
	require.NoError(t, err)

	path, err := s.SaveMap("sandbox")
	require.NoError(t, err)
	assert.FileExists(t, path)

	require.NoError(t, s.LoadMap("sandbox"))
	assert.Equal(t, component.TerrainCell{Type: component.CellMud, Properties: component.PropertyBurning}, s.Terrain().At(flowfield.Cell{X: 2, Y: 2}))
	assert.Equal(t, flowfield.Cell{X: 7, Y: 7}, s.Navigation().Goal)
	require.Len(t, s.Units(), 1)
	u, _ := s.Unit(s.Units()[0])
	assert.Equal(t, "footman", u.Name)
}

func TestApplyNavigationChange(t *testing.T) {
	s := newSmallSim(t)
	require.Equal(t, flowfield.Connect4, s.Navigation().Builder.Config().Connectivity)

	require.NoError(t, s.Apply(prefabs.Change{Kind: prefabs.ChangeNavigation, Name: "navigation"}))
	assert.Equal(t, flowfield.Connect8, s.Navigation().Builder.Config().Connectivity)
	assert.Equal(t, flowfield.PropagateDijkstra, s.Navigation().Builder.Config().Propagation)
	assert.Equal(t, flowfield.Cost(4), s.Navigation().Costs.Mud)

	assert.NoError(t, s.Apply(prefabs.Change{Kind: prefabs.ChangeMap, Name: "not-loaded"}))
}

func TestRebuild(t *testing.T) {
	s := newSmallSim(t)
	_, err := s.Rebuild()
	assert.ErrorIs(t, err, flowfield.ErrInvalidGoal)

	require.NoError(t, s.SetGoal(flowfield.Cell{X: 0, Y: 0}))
	fields, err := s.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, flowfield.Integration(18), fields.Integration.At(flowfield.Cell{X: 9, Y: 9}))

	s.SetFlowConfig(flowfield.Config{Connectivity: flowfield.Connect8, Propagation: flowfield.PropagateDijkstra})
	fields, err = s.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, flowfield.Integration(9), fields.Integration.At(flowfield.Cell{X: 9, Y: 9}))
}

func TestShutdown(t *testing.T) {
	s, err := Init(Config{Navigation: smallNavigation()})
	require.NoError(t, err)
	id := s.Spawn(prefabs.UnitSpec{Name: "a"}, Point{X: 5, Y: 5})

	s.Shutdown()
	assert.Empty(t, s.Units())
	assert.ErrorIs(t, s.MoveTo(id, Point{X: 15, Y: 5}), ErrShutdown)
	assert.ErrorIs(t, s.Attack(id, UnitID(2)), ErrShutdown)
	s.Step(0.1)
	s.Shutdown()
}

func TestLoadMapFailureKeepsRunningMap(t *testing.T) {
	t.Chdir(t.TempDir())

	s := newSmallSim(t)
	id, err := s.SpawnNamed("footman", Point{X: 15, Y: 15})
	require.NoError(t, err)
	require.True(t, s.Paint(flowfield.Cell{X: 4, Y: 4}, component.TerrainCell{Type: component.CellMud}))
	require.NoError(t, s.SetGoal(flowfield.Cell{X: 8, Y: 8}))
	s.Step(0.1)
	fields := s.Fields()
	require.NotNil(t, fields)

	small := component.NewTerrain(4, 2, component.CellGround)
	for name, units := range map[string][]prefabs.MapUnitSpec{
		"unknown_unit": {{Unit: "footman", Cell: [2]int{0, 0}}, {Unit: "doesnotexist", Cell: [2]int{1, 1}}},
		"off_map":      {{Unit: "footman", Cell: [2]int{0, 0}}, {Unit: "footman", Cell: [2]int{7, 7}}},
	} {
		spec := prefabs.MapFromTerrain(name, small, &flowfield.Cell{X: 1, Y: 1})
		spec.Units = units
		require.NoError(t, prefabs.SaveMap(prefabs.MapDiskPath(name), spec))
	}

	assert.Error(t, s.LoadMap("unknown_unit"))
	assert.ErrorIs(t, s.LoadMap("off_map"), ErrPlacement)

	assert.Equal(t, "", s.MapName())
	assert.Equal(t, 10, s.Terrain().Width)
	assert.Equal(t, 10, s.Terrain().Height)
	assert.Equal(t, component.CellMud, s.Terrain().At(flowfield.Cell{X: 4, Y: 4}).Type)
	assert.Equal(t, []UnitID{id}, s.Units())
	assert.Equal(t, flowfield.Cell{X: 8, Y: 8}, s.Navigation().Goal)
	assert.Same(t, fields, s.Fields())
}

func TestApplyUnitChangeResizesBody(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := Init(Config{Navigation: smallNavigation(), Physics: true})
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	id, err := s.SpawnNamed("footman", Point{X: 50, Y: 50})
	require.NoError(t, err)
	s.Step(0.1)

	body, ok := ecs.Get(s.World(), ecs.Entity(id), component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	oldShape := body.Shape
	require.NotNil(t, oldShape)

	require.NoError(t, os.MkdirAll(filepath.Join("prefabs", "units"), 0o755))
	data := "name: footman\nhealth: 120\ndamage: 12\narmor: 3\nmove_speed: 48\nradius: 9\nmass: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join("prefabs", "units", "footman.yaml"), []byte(data), 0o644))

	require.NoError(t, s.Apply(prefabs.Change{Kind: prefabs.ChangeUnit, Name: "footman"}))
	s.Step(0.1)

	assert.Equal(t, 9.0, body.Radius)
	assert.Equal(t, 3.0, body.Mass)
	require.NotNil(t, body.Shape)
	assert.NotSame(t, oldShape, body.Shape)
}
