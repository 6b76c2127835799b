package system

import (
	"math"

	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
)

// MovementSystem steers moving units along the shared flow field. Units with
// a physics body get a velocity; the rest are integrated here directly.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

func (s *MovementSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	_, nav, _, hasNav := navigationState(w)
	dt := w.DeltaTime()

	ecs.ForEach3(w, component.TransformComponent.Kind(), component.UnitComponent.Kind(), component.UnitMoveStateComponent.Kind(),
		func(e ecs.Entity, t *component.Transform, u *component.Unit, move *component.UnitMoveState) {
			body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
			if !move.Moving {
				setVelocity(body, 0, 0)
				return
			}
			if !hasNav || nav.Fields == nil {
				setVelocity(body, 0, 0)
				return
			}

			fields := nav.Fields
			cell := nav.CellAt(t.X, t.Y)
			if cell == fields.Goal {
				halt(w, e, move)
				w.Events().Push(ecs.Event{Type: ecs.EventUnitArrived, Data: e})
				return
			}

			if !fields.Costs.Grid.Contains(cell) {
				// No flow outside the grid; the order cannot complete.
				halt(w, e, move)
				return
			}

			dir := fields.Direction(cell)
			if dir.IsZero() {
				// Unreachable: hold position.
				setVelocity(body, 0, 0)
				return
			}
			vx, vy := dir.Vector()
			vx, vy = vx*u.MoveSpeed, vy*u.MoveSpeed
			if body != nil && body.Body != nil {
				body.Body.SetVelocity(vx, vy)
				return
			}

			// A step that would carry the unit past the goal centre lands on it.
			gx, gy := nav.CellCenter(fields.Goal)
			if math.Hypot(gx-t.X, gy-t.Y) <= u.MoveSpeed*dt {
				t.X, t.Y = gx, gy
				halt(w, e, move)
				w.Events().Push(ecs.Event{Type: ecs.EventUnitArrived, Data: e})
				return
			}
			t.X += vx * dt
			t.Y += vy * dt
		})
}

func setVelocity(body *component.PhysicsBody, vx, vy float64) {
	if body == nil || body.Body == nil {
		return
	}
	body.Body.SetVelocity(vx, vy)
}
