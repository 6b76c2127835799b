package ecs

import "github.com/milk9111/skirmish/ecs/component"

// System updates a world once per tick. Systems run in the order they were
// added; later systems see the writes of earlier ones within the same tick.
type System interface {
	Update(w *World)
}

// World owns entities, component stores, and system order.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]*SparseSet
	systems   []System
	renderers []RenderSystem
	events    EventQueue

	tick uint64
	dt   float64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil || s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// Update runs all systems once with a tick duration of dt seconds. Events
// published during the previous tick move to Events().Previous() first, so
// between two updates the queue holds exactly the last tick's events.
func (w *World) Update(dt float64) {
	if w == nil {
		return
	}
	w.events.flush()
	w.dt = dt
	w.tick++
	for _, s := range w.systems {
		s.Update(w)
	}
}

// DeltaTime returns the duration of the current tick in seconds.
func (w *World) DeltaTime() float64 {
	if w == nil {
		return 0
	}
	return w.dt
}

// Tick returns the number of completed or running updates.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]*SparseSet)
	}
	s, ok := w.stores[id]
	if !ok && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}
