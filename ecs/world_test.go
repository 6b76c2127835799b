package ecs

import (
	"testing"

	"github.com/milk9111/skirmish/ecs/component"
)

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
		wantAlive    int
	}{
		{"single", 1, 0, 0},
		{"three_destroy_middle", 3, 1, 2},
		{"none_destroyed", 2, -1, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("destroying twice should fail")
				}
			}
			if got := len(Entities(w)); got != c.wantAlive {
				t.Fatalf("expected %d live entities, got %d", c.wantAlive, got)
			}
		})
	}
}

func TestEntityRecycleBumpsGeneration(t *testing.T) {
	w := NewWorld()
	old := CreateEntity(w)
	if !DestroyEntity(w, old) {
		t.Fatal("destroy failed")
	}
	fresh := CreateEntity(w)

	if fresh.id() != old.id() {
		t.Fatalf("expected id reuse, got %d and %d", old.id(), fresh.id())
	}
	if fresh.generation() == old.generation() {
		t.Fatalf("expected generation bump")
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle should not be alive")
	}

	kind := component.NewComponentKind[int]()
	if err := Add(w, old, kind, intPtr(1)); err != component.ErrEntityNotAlive {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func TestComponents(t *testing.T) {
	w := NewWorld()
	hInt := component.NewComponent[int]()
	hStr := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int",
			setup: func() error { return Add(w, e1, hInt.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, hInt.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
				if Has(w, e2, hInt.Kind()) {
					t.Fatalf("e2 should not have int")
				}
			},
			teardown: func() bool { return Remove(w, e1, hInt.Kind()) },
		},
		{
			name: "overwrite_keeps_single_entry",
			setup: func() error {
				if err := Add(w, e2, hStr.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, hStr.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				v, ok := Get(w, e2, hStr.Kind())
				if !ok || *v != "b" {
					t.Fatalf("expected b, got %v", v)
				}
				if n := len(Query(w, hStr.Kind())); n != 1 {
					t.Fatalf("expected 1 entity, got %d", n)
				}
			},
			teardown: func() bool { return Remove(w, e2, hStr.Kind()) },
		},
		{
			name:  "nil_rejected",
			setup: func() error { return nil },
			check: func(t *testing.T) {
				if err := Add(w, e1, hInt.Kind(), nil); err != component.ErrNilComponent {
					t.Fatalf("expected ErrNilComponent, got %v", err)
				}
				var zero component.ComponentKind[int]
				if err := Add(w, e1, zero, intPtr(1)); err != component.ErrInvalidComponentKind {
					t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
				}
			},
			teardown: func() bool { return !Has(w, e1, hInt.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)

	if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var ents []Entity
	ForEach(w, h.Kind(), func(e Entity, v *int) {
		*v *= 10
		ents = append(ents, e)
	})
	set := toSet(ents)
	if _, ok := set[e2]; ok {
		t.Fatalf("did not expect e2 in ForEach result")
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(set))
	}
	if v, _ := Get(w, e3, h.Kind()); *v != 30 {
		t.Fatalf("expected in-place mutation, got %d", *v)
	}
}

func TestForEachIntersections(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "two",
			run: func(t *testing.T) {
				w := NewWorld()
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[string]()
				e1, e2 := CreateEntity(w), CreateEntity(w)
				_ = Add(w, e1, ka, intPtr(1))
				_ = Add(w, e2, ka, intPtr(2))
				_ = Add(w, e2, kb, stringPtr("x"))

				var res []Entity
				ForEach2(w, ka, kb, func(e Entity, _ *int, _ *string) { res = append(res, e) })
				if len(res) != 1 || res[0] != e2 {
					t.Fatalf("expected only e2, got %v", res)
				}
			},
		},
		{
			name: "three_ignores_dead",
			run: func(t *testing.T) {
				w := NewWorld()
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()
				e := CreateEntity(w)
				_ = Add(w, e, ka, intPtr(1))
				_ = Add(w, e, kb, intPtr(2))
				_ = Add(w, e, kc, intPtr(3))
				DestroyEntity(w, e)

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty result after destroy, got %v", res)
				}
			},
		},
		{
			name: "four_missing_store",
			run: func(t *testing.T) {
				w := NewWorld()
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()
				kd := component.NewComponentKind[int]()
				e := CreateEntity(w)
				_ = Add(w, e, ka, intPtr(1))
				_ = Add(w, e, kb, intPtr(1))
				_ = Add(w, e, kc, intPtr(1))

				called := false
				ForEach4(w, ka, kb, kc, kd, func(Entity, *int, *int, *int, *int) { called = true })
				if called {
					t.Fatalf("expected no callback when a store is missing")
				}
			},
		},
		{
			name: "destroy_during_iteration",
			run: func(t *testing.T) {
				w := NewWorld()
				ka := component.NewComponentKind[int]()
				for i := 0; i < 5; i++ {
					_ = Add(w, CreateEntity(w), ka, intPtr(i))
				}
				visited := 0
				ForEach(w, ka, func(e Entity, _ *int) {
					visited++
					DestroyEntity(w, e)
				})
				if visited != 5 || len(Entities(w)) != 0 {
					t.Fatalf("expected 5 visits and no survivors, got %d and %d", visited, len(Entities(w)))
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

type recordSystem struct {
	name string
	log  *[]string
}

func (s recordSystem) Update(w *World) {
	*s.log = append(*s.log, s.name)
	w.Events().Push(Event{Type: s.name})
}

func TestWorldUpdate(t *testing.T) {
	w := NewWorld()
	var order []string
	w.AddSystem(recordSystem{name: "a", log: &order})
	w.AddSystem(nil)
	w.AddSystem(recordSystem{name: "b", log: &order})

	w.Update(0.5)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order %v", order)
	}
	if w.DeltaTime() != 0.5 || w.Tick() != 1 {
		t.Fatalf("unexpected dt=%v tick=%d", w.DeltaTime(), w.Tick())
	}
	if n := len(w.Events().Peek()); n != 2 {
		t.Fatalf("expected 2 events after update, got %d", n)
	}

	w.Update(0.5)
	if n := len(w.Events().Previous()); n != 2 {
		t.Fatalf("expected last tick's events in Previous, got %d", n)
	}
	if n := len(w.Events().Drain()); n != 2 {
		t.Fatalf("expected only this tick's events, got %d", n)
	}
}

func TestFirst(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()
	if _, ok := First(w, k); ok {
		t.Fatalf("expected no entity")
	}
	e := CreateEntity(w)
	_ = Add(w, e, k, intPtr(1))
	got, ok := First(w, k)
	if !ok || got != e {
		t.Fatalf("expected %v, got %v", e, got)
	}
}
