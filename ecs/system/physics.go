package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
)

const (
	collisionTypeUnit cp.CollisionType = iota + 1
	collisionTypeWall
)

// PhysicsSystem keeps units apart with Chipmunk2D circle bodies and blocks
// impassable terrain with static boxes. There is no gravity; the movement
// system drives velocities.
type PhysicsSystem struct {
	space *cp.Space

	entities map[ecs.Entity]*bodyInfo

	walls        []*cp.Shape
	wallsBuilt   bool
	wallsVersion int
	wallsGrid    flowfield.Grid
}

type bodyInfo struct {
	body  *cp.Body
	shape *cp.Shape
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		space:    newSpace(),
		entities: make(map[ecs.Entity]*bodyInfo),
	}
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})
	space.SetDamping(0.2)
	return space
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.space = newSpace()
		ps.entities = make(map[ecs.Entity]*bodyInfo)
		ps.wallsBuilt = false
	}

	ps.syncWalls(w)
	ps.cleanupEntities(w)
	ps.syncEntities(w)

	if dt := w.DeltaTime(); dt > 0 {
		ps.space.Step(dt)
	}

	ps.syncTransforms(w)
}

// Reset drops every body and wall. The next Update rebuilds from the world.
func (ps *PhysicsSystem) Reset() {
	if ps == nil {
		return
	}
	ps.space = nil
	ps.entities = nil
	ps.walls = nil
}

// Refresh drops the body of e so the next Update recreates it from the
// current PhysicsBody radius and mass.
func (ps *PhysicsSystem) Refresh(e ecs.Entity) {
	if ps == nil || ps.space == nil {
		return
	}
	info, ok := ps.entities[e]
	if !ok {
		return
	}
	ps.space.RemoveShape(info.shape)
	ps.space.RemoveBody(info.body)
	delete(ps.entities, e)
}

func (ps *PhysicsSystem) syncWalls(w *ecs.World) {
	_, nav, terr, ok := navigationState(w)
	if !ok {
		return
	}
	if ps.wallsBuilt && ps.wallsVersion == terr.Version && ps.wallsGrid == terr.Grid() {
		return
	}

	for _, shape := range ps.walls {
		ps.space.RemoveShape(shape)
	}
	ps.walls = ps.walls[:0]

	size := nav.CellSize
	static := ps.space.StaticBody
	addWall := func(shape *cp.Shape) {
		shape.SetFriction(0)
		shape.SetElasticity(0)
		shape.SetCollisionType(collisionTypeWall)
		ps.space.AddShape(shape)
		ps.walls = append(ps.walls, shape)
	}

	grid := terr.Grid()
	for idx, cell := range terr.Cells {
		if nav.Costs.CostOf(cell) != flowfield.CostImpassable {
			continue
		}
		c := grid.CellAt(idx)
		bb := cp.BB{L: float64(c.X) * size, T: float64(c.Y+1) * size, R: float64(c.X+1) * size, B: float64(c.Y) * size}
		addWall(cp.NewBox2(static, bb, 0))
	}

	// Map border.
	mw, mh := float64(grid.Width)*size, float64(grid.Height)*size
	corners := []cp.Vector{{X: 0, Y: 0}, {X: mw, Y: 0}, {X: mw, Y: mh}, {X: 0, Y: mh}}
	for i := range corners {
		addWall(cp.NewSegment(static, corners[i], corners[(i+1)%len(corners)], 1))
	}

	ps.wallsBuilt = true
	ps.wallsVersion = terr.Version
	ps.wallsGrid = grid
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		ps.space.RemoveShape(info.shape)
		ps.space.RemoveBody(info.body)
		delete(ps.entities, e)
	}
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, bodyComp *component.PhysicsBody, t *component.Transform) {
			if info, ok := ps.entities[e]; ok {
				bodyComp.Body = info.body
				bodyComp.Shape = info.shape
				return
			}

			radius := bodyComp.Radius
			if radius <= 0 {
				radius = 6
			}
			mass := bodyComp.Mass
			if mass <= 0 {
				mass = 1
			}

			body := cp.NewBody(mass, math.Inf(1))
			body.SetPosition(cp.Vector{X: t.X, Y: t.Y})

			shape := cp.NewCircle(body, radius, cp.Vector{})
			shape.SetFriction(bodyComp.Friction)
			shape.SetElasticity(bodyComp.Elasticity)
			shape.SetCollisionType(collisionTypeUnit)

			ps.space.AddBody(body)
			ps.space.AddShape(shape)

			ps.entities[e] = &bodyInfo{body: body, shape: shape}
			bodyComp.Body = body
			bodyComp.Shape = shape
		})
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, bodyComp *component.PhysicsBody, t *component.Transform) {
			if bodyComp.Body == nil {
				return
			}
			pos := bodyComp.Body.Position()
			t.X = pos.X
			t.Y = pos.Y
		})
}
