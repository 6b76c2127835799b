package flowfield

// FlowField holds one direction per cell.
type FlowField struct {
	Grid
	Directions []Direction
}

// At returns the direction at c, or DirNone outside the grid.
func (f *FlowField) At(c Cell) Direction {
	if f == nil || !f.Contains(c) {
		return DirNone
	}
	return f.Directions[f.Index(c)]
}

// Clone returns a deep copy.
func (f *FlowField) Clone() *FlowField {
	if f == nil {
		return nil
	}
	return &FlowField{Grid: f.Grid, Directions: append([]Direction(nil), f.Directions...)}
}

// BuildFlowField points every cell at its lowest-valued neighbor. The goal
// and unreachable cells go through the same rule. Unreached neighbors are
// never chosen, and ties resolve to the earliest direction in the fixed
// enumeration order, so output is deterministic.
func BuildFlowField(field *IntegrationField, goal Cell, conn Connectivity) (*FlowField, error) {
	if field == nil {
		return nil, ErrInvalidGrid
	}
	g := field.Grid
	if err := g.validate(len(field.Values)); err != nil {
		return nil, err
	}
	if g.Size() == 0 {
		return &FlowField{Grid: g, Directions: []Direction{}}, nil
	}
	if err := g.validateGoal(goal); err != nil {
		return nil, err
	}

	dirs := conn.Neighbors()
	flow := &FlowField{Grid: g, Directions: make([]Direction, g.Size())}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := Cell{X: x, Y: y}
			best := DirNone
			bestValue := Unreached
			for _, d := range dirs {
				n, ok := g.Neighbor(c, d)
				if !ok {
					continue
				}
				if v := field.Values[g.Index(n)]; v < bestValue {
					bestValue = v
					best = d
				}
			}
			flow.Directions[g.Index(c)] = best
		}
	}
	return flow, nil
}
