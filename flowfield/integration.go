package flowfield

import (
	"container/heap"
	"log"
	"math"
)

// Integration is a cumulative cost to the goal.
type Integration uint32

// Unreached marks cells propagation never reached. It is never produced by
// accumulation, which saturates one below it.
const Unreached Integration = math.MaxUint32

// IntegrationField is the cost-to-goal of every cell.
type IntegrationField struct {
	Grid
	Values []Integration
}

// At returns the value of c, or Unreached outside the grid.
func (f *IntegrationField) At(c Cell) Integration {
	if f == nil || !f.Contains(c) {
		return Unreached
	}
	return f.Values[f.Index(c)]
}

// Reachable reports whether c has a finite value.
func (f *IntegrationField) Reachable(c Cell) bool {
	return f.At(c) != Unreached
}

// Max returns the largest finite value, or 0 when nothing is reachable.
func (f *IntegrationField) Max() Integration {
	var hi Integration
	if f == nil {
		return hi
	}
	for _, v := range f.Values {
		if v != Unreached && v > hi {
			hi = v
		}
	}
	return hi
}

// Clone returns a deep copy.
func (f *IntegrationField) Clone() *IntegrationField {
	if f == nil {
		return nil
	}
	return &IntegrationField{Grid: f.Grid, Values: append([]Integration(nil), f.Values...)}
}

func accumulate(base Integration, cost Cost) Integration {
	sum := uint64(base) + uint64(cost)
	if sum >= uint64(Unreached) {
		return Unreached - 1
	}
	return Integration(sum)
}

// BuildIntegrationField propagates cost outward from goal. costs is not
// modified; the returned field is owned by the caller.
func BuildIntegrationField(costs *CostField, goal Cell, cfg Config) (*IntegrationField, error) {
	if err := costs.Validate(); err != nil {
		return nil, err
	}
	g := costs.Grid
	if g.Size() == 0 {
		return &IntegrationField{Grid: g, Values: []Integration{}}, nil
	}
	if err := g.validateGoal(goal); err != nil {
		return nil, err
	}

	if n := costs.zeroCostCells(goal); n > 0 {
		log.Printf("flowfield: %d cells other than goal %s have zero cost", n, goal)
	}

	field := &IntegrationField{Grid: g, Values: make([]Integration, g.Size())}
	for i := range field.Values {
		field.Values[i] = Unreached
	}
	field.Values[g.Index(goal)] = 0

	dirs := cfg.Connectivity.Neighbors()
	switch cfg.Propagation {
	case PropagateDijkstra:
		propagateDijkstra(costs, field, goal, dirs)
	default:
		propagateWavefront(costs, field, goal, dirs)
	}
	return field, nil
}

// propagateWavefront fixes each cell's value on first discovery.
func propagateWavefront(costs *CostField, field *IntegrationField, goal Cell, dirs []Direction) {
	g := field.Grid
	visited := make([]bool, g.Size())
	queue := make([]int, 0, g.Size())

	goalIdx := g.Index(goal)
	visited[goalIdx] = true
	queue = append(queue, goalIdx)

	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		cur := g.CellAt(idx)
		for _, d := range dirs {
			n, ok := g.Neighbor(cur, d)
			if !ok {
				continue
			}
			nIdx := g.Index(n)
			if visited[nIdx] {
				continue
			}
			cost := costs.Costs[nIdx]
			if cost == CostImpassable {
				continue
			}
			visited[nIdx] = true
			queue = append(queue, nIdx)
			field.Values[nIdx] = accumulate(field.Values[idx], cost)
		}
	}
}

type openItem struct {
	idx  int
	dist Integration
}

type openSet []openItem

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].dist < o[j].dist }
func (o openSet) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x any)        { *o = append(*o, x.(openItem)) }
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	*o = old[:n-1]
	return item
}

// propagateDijkstra relaxes cells in order of cumulative cost.
func propagateDijkstra(costs *CostField, field *IntegrationField, goal Cell, dirs []Direction) {
	g := field.Grid
	open := &openSet{}
	heap.Push(open, openItem{idx: g.Index(goal), dist: 0})

	for open.Len() > 0 {
		cur := heap.Pop(open).(openItem)
		if cur.dist > field.Values[cur.idx] {
			continue
		}
		c := g.CellAt(cur.idx)
		for _, d := range dirs {
			n, ok := g.Neighbor(c, d)
			if !ok {
				continue
			}
			nIdx := g.Index(n)
			cost := costs.Costs[nIdx]
			if cost == CostImpassable {
				continue
			}
			next := accumulate(cur.dist, cost)
			if next < field.Values[nIdx] {
				field.Values[nIdx] = next
				heap.Push(open, openItem{idx: nIdx, dist: next})
			}
		}
	}
}
