package flowfield

import (
	"fmt"
	"strings"
)

// Propagation selects how the integration field is accumulated.
type Propagation int

const (
	// PropagateWavefront is a breadth-first pass where each cell is fixed the
	// first time it is discovered. Exact for uniform costs only.
	PropagateWavefront Propagation = iota
	// PropagateDijkstra relaxes cells through a priority queue and yields the
	// true minimum cumulative cost.
	PropagateDijkstra
)

func (p Propagation) String() string {
	switch p {
	case PropagateDijkstra:
		return "dijkstra"
	default:
		return "wavefront"
	}
}

// UnmarshalText accepts "wavefront"/"bfs" and "dijkstra"/"shortest".
func (p *Propagation) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "wavefront", "bfs", "":
		*p = PropagateWavefront
	case "dijkstra", "shortest":
		*p = PropagateDijkstra
	default:
		return fmt.Errorf("%w: unknown propagation %q", ErrInvalidConfig, text)
	}
	return nil
}

func (p Propagation) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Config holds the build options shared by both passes.
type Config struct {
	Connectivity Connectivity `yaml:"connectivity"`
	Propagation  Propagation  `yaml:"propagation"`
}

// DefaultConfig reproduces the classic single-visit 4-connected wavefront.
func DefaultConfig() Config {
	return Config{Connectivity: Connect4, Propagation: PropagateWavefront}
}
