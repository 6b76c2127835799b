package rts

import (
	"log"

	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/prefabs"
)

// Apply reloads whatever a changed prefab file affects. Errors leave the
// running state untouched.
func (s *Sim) Apply(change prefabs.Change) error {
	if s == nil || s.shutdown {
		return ErrShutdown
	}
	switch change.Kind {
	case prefabs.ChangeNavigation:
		return s.reloadNavigation()
	case prefabs.ChangeMap:
		if change.Name != s.mapName {
			return nil
		}
		return s.LoadMap(change.Name)
	case prefabs.ChangeUnit:
		return s.reloadUnit(change.Name)
	case prefabs.ChangeScript:
		s.scripts.Invalidate(change.Name)
	}
	return nil
}

// ApplyAll applies changes in order, logging failures.
func (s *Sim) ApplyAll(changes []prefabs.Change) {
	for _, change := range changes {
		if err := s.Apply(change); err != nil {
			log.Printf("rts: reload %s %s: %v", change.Kind, change.Path, err)
			continue
		}
		log.Printf("rts: reloaded %s %s", change.Kind, change.Name)
	}
}

// reloadNavigation applies new costs and flow options. Grid size and cell
// size only change with the next map load.
func (s *Sim) reloadNavigation() error {
	spec, err := prefabs.LoadNavigationSpec()
	if err != nil {
		return err
	}
	s.navSpec.Flow = spec.Flow
	s.navSpec.Costs = spec.Costs
	s.nav.Costs = spec.Costs.TerrainCosts()
	s.nav.Builder.SetConfig(spec.Flow)
	s.nav.Dirty = true
	return nil
}

// reloadUnit swaps the stats of every unit spawned from name. Health keeps
// its fraction of the maximum.
func (s *Sim) reloadUnit(name string) error {
	spec, err := prefabs.LoadUnitSpec(name)
	if err != nil {
		return err
	}
	next := spec.Unit()
	for id, specName := range s.specs {
		if specName != name {
			continue
		}
		e := ecs.Entity(id)
		u, ok := ecs.Get(s.world, e, component.UnitComponent.Kind())
		if !ok {
			delete(s.specs, id)
			continue
		}
		frac := 1.0
		if u.MaxHealth > 0 {
			frac = u.Health / u.MaxHealth
		}
		updated := next
		updated.Health = next.MaxHealth * frac
		*u = updated

		if body, ok := ecs.Get(s.world, e, component.PhysicsBodyComponent.Kind()); ok {
			body.Radius = next.Radius
			body.Mass = spec.Mass
			s.physics.Refresh(e)
		}
		if spec.Script != "" {
			_ = ecs.Add(s.world, e, component.UnitScriptComponent.Kind(), &component.UnitScript{Path: spec.Script})
		} else {
			ecs.Remove(s.world, e, component.UnitScriptComponent.Kind())
		}
	}
	return nil
}
