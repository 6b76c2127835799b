// Package rts wires the ECS world, navigation and unit systems into a
// steppable simulation. The game and the editor drive it; tests drive it
// headless.
package rts

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/ecs/system"
	"github.com/milk9111/skirmish/flowfield"
	"github.com/milk9111/skirmish/prefabs"
)

// UnitID identifies a spawned unit. It stays unique after the unit dies.
type UnitID ecs.Entity

func (id UnitID) String() string {
	return ecs.Entity(id).String()
}

// Point is a world position in pixels.
type Point struct {
	X float64
	Y float64
}

type Config struct {
	// Map is loaded from prefabs/maps. Empty starts on an open ground grid
	// sized by the navigation spec.
	Map string
	// Navigation overrides prefabs/navigation.yaml.
	Navigation *prefabs.NavigationSpec
	// Physics gives units chipmunk bodies so they push each other apart.
	Physics bool
	// ScriptLoader replaces prefabs.LoadScript.
	ScriptLoader func(path string) ([]byte, error)
}

// Sim owns one world with a single shared navigation goal.
type Sim struct {
	world *ecs.World

	navEntity ecs.Entity
	nav       *component.Navigation
	terrain   *component.Terrain
	navSpec   prefabs.NavigationSpec

	scripts *system.ScriptSystem
	physics *system.PhysicsSystem

	overlay      *system.FlowFieldOverlay
	terrainDraw  *system.TerrainRenderer
	physicsDebug *system.PhysicsDebugRenderer

	mapName  string
	specs    map[UnitID]string
	usePhys  bool
	shutdown bool
}

func Init(cfg Config) (*Sim, error) {
	navSpec := prefabs.DefaultNavigationSpec()
	if cfg.Navigation != nil {
		navSpec = *cfg.Navigation
	} else if spec, err := prefabs.LoadNavigationSpec(); err == nil {
		navSpec = spec
	} else {
		log.Printf("rts: navigation spec: %v; using defaults", err)
	}
	if navSpec.Grid.CellSize <= 0 {
		navSpec.Grid.CellSize = prefabs.DefaultNavigationSpec().Grid.CellSize
	}

	s := &Sim{
		world:   ecs.NewWorld(),
		navSpec: navSpec,
		specs:   make(map[UnitID]string),
		usePhys: cfg.Physics,
	}

	s.nav = component.NewNavigation(navSpec.Grid.CellSize, navSpec.Flow, navSpec.Costs.TerrainCosts())
	s.terrain = component.NewTerrain(navSpec.Grid.Width, navSpec.Grid.Height, component.CellGround)
	s.navEntity = ecs.CreateEntity(s.world)
	if err := ecs.Add(s.world, s.navEntity, component.NavigationComponent.Kind(), s.nav); err != nil {
		return nil, err
	}
	if err := ecs.Add(s.world, s.navEntity, component.TerrainComponent.Kind(), s.terrain); err != nil {
		return nil, err
	}
	if err := ecs.Add(s.world, s.navEntity, component.NavigationTagComponent.Kind(), &component.NavigationTag{}); err != nil {
		return nil, err
	}

	s.scripts = system.NewScriptSystem()
	if cfg.ScriptLoader != nil {
		s.scripts.SetLoader(cfg.ScriptLoader)
	}
	s.world.AddSystem(s.scripts)
	s.world.AddSystem(system.NewOrderSystem())
	s.world.AddSystem(system.NewNavigationSystem())
	s.world.AddSystem(system.NewMovementSystem())
	if cfg.Physics {
		s.physics = system.NewPhysicsSystem()
		s.world.AddSystem(s.physics)
	}
	s.world.AddSystem(system.NewCombatSystem())

	s.terrainDraw = system.NewTerrainRenderer()
	s.overlay = system.NewFlowFieldOverlay()
	s.overlay.Heat, s.overlay.Arrows = false, false
	s.physicsDebug = system.NewPhysicsDebugRenderer(s.physics)
	s.world.AddRenderer(s.terrainDraw)
	s.world.AddRenderer(s.overlay)
	s.world.AddRenderer(system.NewUnitRenderer())
	s.world.AddRenderer(s.physicsDebug)

	if cfg.Map != "" {
		if err := s.LoadMap(cfg.Map); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Step advances the simulation by dt seconds.
func (s *Sim) Step(dt float64) {
	if s == nil || s.shutdown {
		return
	}
	s.world.Update(dt)
}

// Shutdown destroys every entity. Later calls on the Sim are no-ops or
// return ErrShutdown.
func (s *Sim) Shutdown() {
	if s == nil || s.shutdown {
		return
	}
	for _, e := range ecs.Entities(s.world) {
		ecs.DestroyEntity(s.world, e)
	}
	if s.physics != nil {
		s.physics.Reset()
	}
	s.specs = map[UnitID]string{}
	s.shutdown = true
}

func (s *Sim) World() *ecs.World                 { return s.world }
func (s *Sim) Navigation() *component.Navigation { return s.nav }
func (s *Sim) Terrain() *component.Terrain       { return s.terrain }
func (s *Sim) MapName() string                   { return s.mapName }

// Fields returns the current flow field snapshot, or nil before the first
// successful build.
func (s *Sim) Fields() *flowfield.Fields {
	if s == nil || s.nav == nil {
		return nil
	}
	return s.nav.Fields
}

// Overlay controls the flow-field debug drawing.
func (s *Sim) Overlay() *system.FlowFieldOverlay { return s.overlay }

// SetDebug toggles every debug layer at once.
func (s *Sim) SetDebug(on bool) {
	s.overlay.Heat, s.overlay.Arrows = on, on
	s.terrainDraw.Grid = on
	s.physicsDebug.Enabled = on && s.physics != nil
}

// Draw renders terrain, overlays and units through the world renderers.
func (s *Sim) Draw(screen *ebiten.Image, cam ecs.Camera) {
	if s == nil || s.shutdown {
		return
	}
	s.world.Draw(screen, cam)
}

// Spawn places a unit built from spec at pos.
func (s *Sim) Spawn(spec prefabs.UnitSpec, pos Point) UnitID {
	if s == nil || s.shutdown {
		return 0
	}
	w := s.world
	e := ecs.CreateEntity(w)
	unit := spec.Unit()
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y})
	_ = ecs.Add(w, e, component.UnitComponent.Kind(), &unit)
	_ = ecs.Add(w, e, component.UnitMoveStateComponent.Kind(), &component.UnitMoveState{})
	if spec.Script != "" {
		_ = ecs.Add(w, e, component.UnitScriptComponent.Kind(), &component.UnitScript{Path: spec.Script})
	}
	if s.usePhys {
		_ = ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Radius: unit.Radius,
			Mass:   spec.Mass,
		})
	}
	return UnitID(e)
}

// SpawnNamed loads prefabs/units/<name>.yaml and spawns it at pos.
func (s *Sim) SpawnNamed(name string, pos Point) (UnitID, error) {
	if s == nil || s.shutdown {
		return 0, ErrShutdown
	}
	spec, err := prefabs.LoadUnitSpec(name)
	if err != nil {
		return 0, err
	}
	id := s.Spawn(spec, pos)
	s.specs[id] = name
	return id, nil
}

// MoveTo orders unit toward pos. The target is checked now; the shared
// goal moves on the next Step.
func (s *Sim) MoveTo(unit UnitID, pos Point) error {
	if s == nil || s.shutdown {
		return ErrShutdown
	}
	e := ecs.Entity(unit)
	if !ecs.Has(s.world, e, component.UnitMoveStateComponent.Kind()) {
		return fmt.Errorf("%w: %s", ErrUnknownUnit, unit)
	}
	cell := s.nav.CellAt(pos.X, pos.Y)
	if err := system.CheckTarget(s.nav, s.terrain, cell); err != nil {
		return fmt.Errorf("rts: move %s to %s: %w", unit, cell, err)
	}
	return ecs.Add(s.world, e, component.MoveRequestComponent.Kind(), &component.MoveRequest{X: pos.X, Y: pos.Y})
}

// Attack queues one attack from attacker on target for the next Step.
func (s *Sim) Attack(attacker, target UnitID) error {
	if s == nil || s.shutdown {
		return ErrShutdown
	}
	if attacker == target {
		return ErrSelfAttack
	}
	for _, id := range []UnitID{attacker, target} {
		if !ecs.Has(s.world, ecs.Entity(id), component.UnitComponent.Kind()) {
			return fmt.Errorf("%w: %s", ErrUnknownUnit, id)
		}
	}
	return ecs.Add(s.world, ecs.Entity(attacker), component.AttackRequestComponent.Kind(), &component.AttackRequest{Target: uint64(target)})
}

// Units returns every live unit in spawn order.
func (s *Sim) Units() []UnitID {
	if s == nil {
		return nil
	}
	ents := ecs.Query(s.world, component.UnitComponent.Kind())
	sort.Slice(ents, func(i, j int) bool { return ents[i] < ents[j] })
	out := make([]UnitID, len(ents))
	for i, e := range ents {
		out[i] = UnitID(e)
	}
	return out
}

// Unit returns a copy of the unit's stats.
func (s *Sim) Unit(id UnitID) (component.Unit, bool) {
	u, ok := ecs.Get(s.world, ecs.Entity(id), component.UnitComponent.Kind())
	if !ok {
		return component.Unit{}, false
	}
	return *u, true
}

func (s *Sim) Position(id UnitID) (Point, bool) {
	t, ok := ecs.Get(s.world, ecs.Entity(id), component.TransformComponent.Kind())
	if !ok {
		return Point{}, false
	}
	return Point{X: t.X, Y: t.Y}, true
}

// Moving reports whether the unit still has an order.
func (s *Sim) Moving(id UnitID) bool {
	move, ok := ecs.Get(s.world, ecs.Entity(id), component.UnitMoveStateComponent.Kind())
	return ok && move.Moving
}

// UnitAt returns the unit whose circle contains pos, nearest centre first.
func (s *Sim) UnitAt(pos Point) (UnitID, bool) {
	best, bestDist := UnitID(0), math.Inf(1)
	ecs.ForEach2(s.world, component.TransformComponent.Kind(), component.UnitComponent.Kind(), func(e ecs.Entity, t *component.Transform, u *component.Unit) {
		d := math.Hypot(t.X-pos.X, t.Y-pos.Y)
		if d <= u.Radius && d < bestDist {
			best, bestDist = UnitID(e), d
		}
	})
	return best, bestDist < math.Inf(1)
}

// UnitsIn returns the units whose centre lies inside the rectangle spanned
// by a and b.
func (s *Sim) UnitsIn(a, b Point) []UnitID {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	var out []UnitID
	for _, id := range s.Units() {
		p, _ := s.Position(id)
		if p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY {
			out = append(out, id)
		}
	}
	return out
}

// Select replaces the selection.
func (s *Sim) Select(ids ...UnitID) {
	for _, e := range ecs.Query(s.world, component.SelectedTagComponent.Kind()) {
		ecs.Remove(s.world, e, component.SelectedTagComponent.Kind())
	}
	for _, id := range ids {
		e := ecs.Entity(id)
		if ecs.Has(s.world, e, component.UnitComponent.Kind()) {
			_ = ecs.Add(s.world, e, component.SelectedTagComponent.Kind(), &component.SelectedTag{})
		}
	}
}

func (s *Sim) Selected() []UnitID {
	ents := ecs.Query(s.world, component.SelectedTagComponent.Kind())
	sort.Slice(ents, func(i, j int) bool { return ents[i] < ents[j] })
	out := make([]UnitID, len(ents))
	for i, e := range ents {
		out[i] = UnitID(e)
	}
	return out
}

// MoveSelected orders every selected unit toward pos and returns the first
// rejection.
func (s *Sim) MoveSelected(pos Point) error {
	for _, id := range s.Selected() {
		if err := s.MoveTo(id, pos); err != nil {
			return err
		}
	}
	return nil
}

// SetGoal moves the shared goal without ordering any unit.
func (s *Sim) SetGoal(cell flowfield.Cell) error {
	if err := system.CheckTarget(s.nav, s.terrain, cell); err != nil {
		return err
	}
	s.nav.SetGoal(cell)
	return nil
}

// Rebuild recomputes the field now instead of on the next Step.
func (s *Sim) Rebuild() (*flowfield.Fields, error) {
	if !s.nav.HasGoal {
		return nil, flowfield.ErrInvalidGoal
	}
	s.nav.Dirty = false
	s.nav.MarkBuilt(s.terrain)
	return system.RebuildNavigation(s.nav, s.terrain)
}

// Paint changes one terrain cell. The field is rebuilt on the next Step.
func (s *Sim) Paint(cell flowfield.Cell, t component.TerrainCell) bool {
	return s.terrain.Set(cell, t)
}

// SetFlowConfig changes connectivity and propagation for later builds.
func (s *Sim) SetFlowConfig(cfg flowfield.Config) {
	s.nav.Builder.SetConfig(cfg)
	s.navSpec.Flow = cfg
	s.nav.Dirty = true
}

// LoadMap replaces the terrain and units with prefabs/maps/<name>.yaml and
// points the goal at the map's goal cell. The map and every unit it places
// are loaded first; on error the running map is left as it was.
func (s *Sim) LoadMap(name string) error {
	if s == nil || s.shutdown {
		return ErrShutdown
	}
	spec, err := prefabs.LoadMap(name)
	if err != nil {
		return err
	}
	terr, err := spec.Terrain()
	if err != nil {
		return err
	}

	type placement struct {
		name string
		spec prefabs.UnitSpec
		cell flowfield.Cell
	}
	placements := make([]placement, 0, len(spec.Units))
	grid := terr.Grid()
	for _, p := range spec.Units {
		cell := flowfield.Cell{X: p.Cell[0], Y: p.Cell[1]}
		if !grid.Contains(cell) {
			return fmt.Errorf("rts: map %s: unit %s at %s: %w", name, p.Unit, cell, ErrPlacement)
		}
		unitSpec, err := prefabs.LoadUnitSpec(p.Unit)
		if err != nil {
			return fmt.Errorf("rts: map %s: spawn %s: %w", name, p.Unit, err)
		}
		placements = append(placements, placement{name: p.Unit, spec: unitSpec, cell: cell})
	}

	for _, id := range s.Units() {
		ecs.DestroyEntity(s.world, ecs.Entity(id))
	}
	s.specs = make(map[UnitID]string)

	version := s.terrain.Version + 1
	*s.terrain = *terr
	s.terrain.Version = version
	s.nav.Fields = nil
	s.nav.HasGoal = false
	s.mapName = name

	goal := spec.GoalCell(s.terrain.Grid())
	if err := s.SetGoal(goal); err != nil {
		log.Printf("rts: map %s: goal %s unusable: %v", name, goal, err)
	}

	for _, p := range placements {
		x, y := s.nav.CellCenter(p.cell)
		id := s.Spawn(p.spec, Point{X: x, Y: y})
		s.specs[id] = p.name
	}
	return nil
}

// SaveMap writes the current terrain and goal to prefabs/maps on disk.
func (s *Sim) SaveMap(name string) (string, error) {
	var goal *flowfield.Cell
	if s.nav.HasGoal {
		g := s.nav.Goal
		goal = &g
	}
	spec := prefabs.MapFromTerrain(name, s.terrain, goal)
	for _, id := range s.Units() {
		unitName, ok := s.specs[id]
		if !ok {
			continue
		}
		p, _ := s.Position(id)
		c := s.nav.CellAt(p.X, p.Y)
		spec.Units = append(spec.Units, prefabs.MapUnitSpec{Unit: unitName, Cell: [2]int{c.X, c.Y}})
	}
	path := prefabs.MapDiskPath(name)
	if err := prefabs.SaveMap(path, spec); err != nil {
		return "", err
	}
	return path, nil
}
