package system

import (
	"log"

	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
)

// OrderSystem turns MoveRequests into a navigation goal plus per-unit move
// state. There is one shared field, so a new goal halts units still heading
// somewhere else.
type OrderSystem struct{}

func NewOrderSystem() *OrderSystem {
	return &OrderSystem{}
}

func (s *OrderSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	_, nav, terr, hasNav := navigationState(w)

	for _, e := range ecs.Query(w, component.MoveRequestComponent.Kind()) {
		req, _ := ecs.Get(w, e, component.MoveRequestComponent.Kind())
		target := *req
		ecs.Remove(w, e, component.MoveRequestComponent.Kind())

		move, ok := ecs.Get(w, e, component.UnitMoveStateComponent.Kind())
		if !ok {
			continue
		}
		if !hasNav {
			log.Printf("order: entity=%s move ignored: no navigation", e)
			continue
		}
		cell := nav.CellAt(target.X, target.Y)
		if err := CheckTarget(nav, terr, cell); err != nil {
			log.Printf("order: entity=%s move to %s rejected: %v", e, cell, err)
			continue
		}

		if !nav.HasGoal || nav.Goal != cell {
			haltUnitsAwayFrom(w, nav, cell)
		}
		nav.SetGoal(cell)
		move.TargetX, move.TargetY = target.X, target.Y
		move.Moving = true
	}
}

// CheckTarget reports whether cell can serve as a navigation goal.
func CheckTarget(nav *component.Navigation, terr *component.Terrain, cell flowfield.Cell) error {
	if !terr.Grid().Contains(cell) {
		return flowfield.ErrInvalidGoal
	}
	if nav.Costs.CostOf(terr.At(cell)) == flowfield.CostImpassable {
		return ErrBlockedTarget
	}
	return nil
}

func haltUnitsAwayFrom(w *ecs.World, nav *component.Navigation, goal flowfield.Cell) {
	ecs.ForEach(w, component.UnitMoveStateComponent.Kind(), func(e ecs.Entity, move *component.UnitMoveState) {
		if move.Moving && nav.CellAt(move.TargetX, move.TargetY) != goal {
			halt(w, e, move)
		}
	})
}
