package system

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/skirmish/ecs"
	"github.com/milk9111/skirmish/ecs/component"
	"github.com/milk9111/skirmish/flowfield"
	"github.com/milk9111/skirmish/prefabs"
)

// Every script defines setup(engine, state) and update(engine, state). The
// whole file is re-run each phase, so anything that must survive between
// ticks lives in state.
const scriptDispatch = `
if __phase == "setup" {
	setup(__engine, __state)
} else if __phase == "update" {
	update(__engine, __state)
}
`

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
	ready    bool
	failed   bool
}

// ScriptSystem runs tengo behaviour scripts attached with UnitScript.
type ScriptSystem struct {
	runtimes map[ecs.Entity]*scriptRuntime
	load     func(path string) ([]byte, error)
}

func NewScriptSystem() *ScriptSystem {
	return &ScriptSystem{
		runtimes: make(map[ecs.Entity]*scriptRuntime),
		load:     prefabs.LoadScript,
	}
}

// SetLoader replaces the script source lookup.
func (s *ScriptSystem) SetLoader(load func(path string) ([]byte, error)) {
	if s == nil || load == nil {
		return
	}
	s.load = load
	s.runtimes = make(map[ecs.Entity]*scriptRuntime)
}

// Invalidate drops compiled scripts loaded from path so they are recompiled
// (and set up again) on the next tick. An empty path drops everything.
func (s *ScriptSystem) Invalidate(path string) {
	if s == nil {
		return
	}
	want := scriptName(path)
	for e, rt := range s.runtimes {
		if path == "" || scriptName(rt.path) == want {
			delete(s.runtimes, e)
		}
	}
}

func (s *ScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if s.runtimes == nil {
		s.runtimes = make(map[ecs.Entity]*scriptRuntime)
	}
	for e := range s.runtimes {
		if !ecs.IsAlive(w, e) || !ecs.Has(w, e, component.UnitScriptComponent.Kind()) {
			delete(s.runtimes, e)
		}
	}

	events := map[string]bool{}
	for _, ev := range w.Events().Previous() {
		events[ev.Type] = true
	}

	ecs.ForEach(w, component.UnitScriptComponent.Kind(), func(e ecs.Entity, sc *component.UnitScript) {
		rt, err := s.runtime(e, sc.Path)
		if err != nil {
			log.Printf("script: entity=%s load %q: %v", e, sc.Path, err)
			return
		}
		if rt.failed {
			return
		}

		engine := buildScriptEngine(w, e, events)
		if !rt.ready {
			if err := rt.run("setup", engine); err != nil {
				log.Printf("script: entity=%s setup: %v", e, err)
				rt.failed = true
				return
			}
			rt.ready = true
		}
		if err := rt.run("update", engine); err != nil {
			log.Printf("script: entity=%s update: %v", e, err)
			rt.failed = true
		}
	})
}

// State returns the persistent script state of e, or nil.
func (s *ScriptSystem) State(e ecs.Entity) map[string]any {
	if s == nil {
		return nil
	}
	rt, ok := s.runtimes[e]
	if !ok || rt.state == nil {
		return nil
	}
	out, _ := objectToAny(rt.state).(map[string]any)
	return out
}

func (s *ScriptSystem) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoScript
	}
	if rt, ok := s.runtimes[e]; ok && rt.path == path {
		return rt, nil
	}

	src, err := s.load(path)
	if err != nil {
		s.runtimes[e] = &scriptRuntime{path: path, failed: true}
		return nil, err
	}
	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		s.runtimes[e] = &scriptRuntime{path: path, failed: true}
		return nil, err
	}
	rt := &scriptRuntime{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.runtimes[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) run(phase string, engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func scriptName(path string) string {
	s := strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func buildScriptEngine(w *ecs.World, e ecs.Entity, events map[string]bool) *tengo.ImmutableMap {
	_, nav, _, hasNav := navigationState(w)
	values := map[string]tengo.Object{}

	fn := func(name string, f tengo.CallableFunc) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}

	position := func() (float64, float64, bool) {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return 0, 0, false
		}
		return t.X, t.Y, true
	}

	fn("get_position", func(args ...tengo.Object) (tengo.Object, error) {
		x, y, _ := position()
		return floatPair(x, y), nil
	})

	fn("get_cell", func(args ...tengo.Object) (tengo.Object, error) {
		x, y, ok := position()
		if !ok || !hasNav {
			return tengo.UndefinedValue, nil
		}
		return cellObject(nav.CellAt(x, y)), nil
	})

	fn("goal", func(args ...tengo.Object) (tengo.Object, error) {
		if !hasNav || nav.Fields == nil {
			return tengo.UndefinedValue, nil
		}
		return cellObject(nav.Fields.Goal), nil
	})

	fn("is_moving", func(args ...tengo.Object) (tengo.Object, error) {
		move, ok := ecs.Get(w, e, component.UnitMoveStateComponent.Kind())
		return boolObject(ok && move.Moving), nil
	})

	fn("move_to", func(args ...tengo.Object) (tengo.Object, error) {
		x, y, ok := argPair(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		err := ecs.Add(w, e, component.MoveRequestComponent.Kind(), &component.MoveRequest{X: x, Y: y})
		return boolObject(err == nil), nil
	})

	fn("move_to_cell", func(args ...tengo.Object) (tengo.Object, error) {
		cx, cy, ok := argPair(args)
		if !ok || !hasNav {
			return tengo.FalseValue, nil
		}
		x, y := nav.CellCenter(flowfield.Cell{X: int(cx), Y: int(cy)})
		err := ecs.Add(w, e, component.MoveRequestComponent.Kind(), &component.MoveRequest{X: x, Y: y})
		return boolObject(err == nil), nil
	})

	fn("follow", func(args ...tengo.Object) (tengo.Object, error) {
		move, ok := ecs.Get(w, e, component.UnitMoveStateComponent.Kind())
		if !ok || !hasNav || nav.Fields == nil {
			return tengo.FalseValue, nil
		}
		move.TargetX, move.TargetY = nav.CellCenter(nav.Fields.Goal)
		move.Moving = true
		return tengo.TrueValue, nil
	})

	fn("flow_at", func(args ...tengo.Object) (tengo.Object, error) {
		cx, cy, ok := argPair(args)
		if !ok || !hasNav || nav.Fields == nil {
			return floatPair(0, 0), nil
		}
		d := nav.Fields.Direction(flowfield.Cell{X: int(cx), Y: int(cy)})
		return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(d.DX)}, &tengo.Int{Value: int64(d.DY)}}}, nil
	})

	fn("integration_at", func(args ...tengo.Object) (tengo.Object, error) {
		cx, cy, ok := argPair(args)
		if !ok || !hasNav || nav.Fields == nil {
			return &tengo.Int{Value: -1}, nil
		}
		v := nav.Fields.Integration.At(flowfield.Cell{X: int(cx), Y: int(cy)})
		if v == flowfield.Unreached {
			return &tengo.Int{Value: -1}, nil
		}
		return &tengo.Int{Value: int64(v)}, nil
	})

	fn("health", func(args ...tengo.Object) (tengo.Object, error) {
		u, ok := ecs.Get(w, e, component.UnitComponent.Kind())
		if !ok {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: u.Health}, nil
	})

	fn("dt", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: w.DeltaTime()}, nil
	})

	fn("tick", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.Tick())}, nil
	})

	fn("units_near", func(args ...tengo.Object) (tengo.Object, error) {
		out := &tengo.Array{}
		if len(args) < 1 {
			return out, nil
		}
		r, ok := tengo.ToFloat64(args[0])
		x, y, hasPos := position()
		if !ok || !hasPos {
			return out, nil
		}
		for _, other := range unitsWithin(w, e, x, y, r) {
			out.Value = append(out.Value, &tengo.Int{Value: int64(other)})
		}
		return out, nil
	})

	fn("attack", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		id, ok := tengo.ToInt64(args[0])
		target := ecs.Entity(uint64(id))
		if !ok || target == e || !ecs.Has(w, target, component.UnitComponent.Kind()) {
			return tengo.FalseValue, nil
		}
		err := ecs.Add(w, e, component.AttackRequestComponent.Kind(), &component.AttackRequest{Target: uint64(target)})
		return boolObject(err == nil), nil
	})

	fn("event", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		return boolObject(events[objectAsString(args[0])]), nil
	})

	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Printf("script: entity=%s: %s", e, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

// unitsWithin returns the other units within r of (x, y), nearest first.
func unitsWithin(w *ecs.World, self ecs.Entity, x, y, r float64) []ecs.Entity {
	type hit struct {
		e ecs.Entity
		d float64
	}
	var hits []hit
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.UnitComponent.Kind(), func(other ecs.Entity, t *component.Transform, _ *component.Unit) {
		if other == self {
			return
		}
		d := math.Hypot(t.X-x, t.Y-y)
		if d <= r {
			hits = append(hits, hit{e: other, d: d})
		}
	})
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].d != hits[j].d {
			return hits[i].d < hits[j].d
		}
		return hits[i].e < hits[j].e
	})
	out := make([]ecs.Entity, len(hits))
	for i, h := range hits {
		out[i] = h.e
	}
	return out
}

func argPair(args []tengo.Object) (float64, float64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	a, okA := tengo.ToFloat64(args[0])
	b, okB := tengo.ToFloat64(args[1])
	return a, b, okA && okB
}

func floatPair(a, b float64) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: a}, &tengo.Float{Value: b}}}
}

func cellObject(c flowfield.Cell) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(c.X)}, &tengo.Int{Value: int64(c.Y)}}}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
