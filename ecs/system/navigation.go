package system

import (
	"log"

	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
)

// NavigationSystem rebuilds the shared flow field when the goal moves or the
// terrain changes. A failed rebuild keeps the previous field.
type NavigationSystem struct{}

func NewNavigationSystem() *NavigationSystem {
	return &NavigationSystem{}
}

func (s *NavigationSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	_, nav, terr, ok := navigationState(w)
	if !ok || !nav.HasGoal {
		return
	}
	if !nav.Dirty && !nav.Stale(terr) {
		return
	}
	nav.Dirty = false
	nav.MarkBuilt(terr)

	fields, err := RebuildNavigation(nav, terr)
	if err != nil {
		log.Printf("navigation: rebuild for goal %s failed: %v", nav.Goal, err)
		w.Events().Push(ecs.Event{Type: ecs.EventNavigationFailed, Data: err})
		haltUnitsTargeting(w, nav, nav.Goal)
		return
	}
	w.Events().Push(ecs.Event{Type: ecs.EventNavigationBuilt, Data: fields.Generation})
}

// RebuildNavigation derives costs from terrain and runs a full build toward
// nav.Goal. nav.Fields only changes on success.
func RebuildNavigation(nav *component.Navigation, terr *component.Terrain) (*flowfield.Fields, error) {
	costs := terr.CostField(nav.Costs)
	if costs.Grid.Contains(nav.Goal) {
		costs.SetGoal(nav.Goal)
	}
	fields, err := nav.Builder.Build(costs, nav.Goal)
	if err != nil {
		nav.LastError = err
		return nil, err
	}
	nav.Fields = fields
	nav.LastError = nil
	return fields, nil
}

// navigationState returns the singleton holding Navigation and Terrain.
func navigationState(w *ecs.World) (ecs.Entity, *component.Navigation, *component.Terrain, bool) {
	e, ok := ecs.First(w, component.NavigationComponent.Kind())
	if !ok {
		return 0, nil, nil, false
	}
	nav, ok := ecs.Get(w, e, component.NavigationComponent.Kind())
	if !ok || nav.Builder == nil {
		return 0, nil, nil, false
	}
	terr, ok := ecs.Get(w, e, component.TerrainComponent.Kind())
	if !ok {
		return 0, nil, nil, false
	}
	return e, nav, terr, true
}

// haltUnitsTargeting stops every moving unit whose order points at goal.
func haltUnitsTargeting(w *ecs.World, nav *component.Navigation, goal flowfield.Cell) {
	ecs.ForEach(w, component.UnitMoveStateComponent.Kind(), func(e ecs.Entity, move *component.UnitMoveState) {
		if move.Moving && nav.CellAt(move.TargetX, move.TargetY) == goal {
			halt(w, e, move)
		}
	})
}

// halt clears a move order and zeroes any physics velocity.
func halt(w *ecs.World, e ecs.Entity, move *component.UnitMoveState) {
	move.Moving = false
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && body.Body != nil {
		body.Body.SetVelocity(0, 0)
	}
}
