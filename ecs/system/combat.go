package system

import (
	"log"
	"math"

	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
)

// CombatSystem resolves AttackRequests. Each request deals the attacker's
// damage minus the target's armor, never less than zero. Units at or below
// zero health are destroyed and announced with EventUnitDied.
type CombatSystem struct{}

func NewCombatSystem() *CombatSystem {
	return &CombatSystem{}
}

func (s *CombatSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	var dead []ecs.Entity

	for _, attacker := range ecs.Query(w, component.AttackRequestComponent.Kind()) {
		req, _ := ecs.Get(w, attacker, component.AttackRequestComponent.Kind())
		target := ecs.Entity(req.Target)
		ecs.Remove(w, attacker, component.AttackRequestComponent.Kind())

		a, ok := ecs.Get(w, attacker, component.UnitComponent.Kind())
		if !ok {
			continue
		}
		t, ok := ecs.Get(w, target, component.UnitComponent.Kind())
		if !ok || t.Health <= 0 {
			continue
		}

		dmg := Damage(a, t)
		t.Health -= dmg
		if t.Health <= 0 {
			t.Health = 0
			dead = append(dead, target)
		}
	}

	for _, e := range dead {
		if !ecs.IsAlive(w, e) {
			continue
		}
		name := ""
		if u, ok := ecs.Get(w, e, component.UnitComponent.Kind()); ok {
			name = u.Name
		}
		log.Printf("combat: entity=%s (%s) died", e, name)
		ecs.DestroyEntity(w, e)
		w.Events().Push(ecs.Event{Type: ecs.EventUnitDied, Data: e})
	}
}

// Damage is the health an attack from a removes from t.
func Damage(a, t *component.Unit) float64 {
	return math.Max(a.Damage-t.Armor, 0)
}
