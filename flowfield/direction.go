package flowfield

import (
	"fmt"
	"math"
	"strings"
)

// Direction is a unit grid step. The zero value means "no improving neighbor".
type Direction struct {
	DX int8
	DY int8
}

var (
	DirNone      = Direction{}
	DirRight     = Direction{DX: 1, DY: 0}
	DirLeft      = Direction{DX: -1, DY: 0}
	DirUp        = Direction{DX: 0, DY: -1}
	DirDown      = Direction{DX: 0, DY: 1}
	DirUpRight   = Direction{DX: 1, DY: -1}
	DirUpLeft    = Direction{DX: -1, DY: -1}
	DirDownRight = Direction{DX: 1, DY: 1}
	DirDownLeft  = Direction{DX: -1, DY: 1}
)

// neighborOrder is the fixed enumeration order. The first four entries are
// the 4-connected set; ties in the flow pass go to the earliest entry.
var neighborOrder = [8]Direction{
	DirRight, DirLeft, DirUp, DirDown,
	DirUpRight, DirUpLeft, DirDownRight, DirDownLeft,
}

// IsZero reports whether d is DirNone.
func (d Direction) IsZero() bool {
	return d == DirNone
}

// Diagonal reports whether d moves on both axes.
func (d Direction) Diagonal() bool {
	return d.DX != 0 && d.DY != 0
}

// Vector returns d as a unit-length float pair.
func (d Direction) Vector() (float64, float64) {
	if d.IsZero() {
		return 0, 0
	}
	x, y := float64(d.DX), float64(d.DY)
	if d.Diagonal() {
		return x / math.Sqrt2, y / math.Sqrt2
	}
	return x, y
}

func (d Direction) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirRight:
		return "right"
	case DirLeft:
		return "left"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirUpRight:
		return "up-right"
	case DirUpLeft:
		return "up-left"
	case DirDownRight:
		return "down-right"
	case DirDownLeft:
		return "down-left"
	default:
		return fmt.Sprintf("(%d,%d)", d.DX, d.DY)
	}
}

// Arrow returns a single rune for text dumps.
func (d Direction) Arrow() rune {
	switch d {
	case DirRight:
		return '→'
	case DirLeft:
		return '←'
	case DirUp:
		return '↑'
	case DirDown:
		return '↓'
	case DirUpRight:
		return '↗'
	case DirUpLeft:
		return '↖'
	case DirDownRight:
		return '↘'
	case DirDownLeft:
		return '↙'
	default:
		return '·'
	}
}

// Connectivity selects the neighbor model.
type Connectivity int

const (
	Connect4 Connectivity = 4
	Connect8 Connectivity = 8
)

// Neighbors returns the ordered candidate directions for c. Unknown values
// fall back to 4-connectivity.
func (c Connectivity) Neighbors() []Direction {
	if c == Connect8 {
		return neighborOrder[:]
	}
	return neighborOrder[:4]
}

func (c Connectivity) String() string {
	if c == Connect8 {
		return "8"
	}
	return "4"
}

// UnmarshalText accepts "4", "8", "four" and "eight".
func (c *Connectivity) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "4", "four", "":
		*c = Connect4
	case "8", "eight":
		*c = Connect8
	default:
		return fmt.Errorf("%w: unknown connectivity %q", ErrInvalidConfig, text)
	}
	return nil
}

func (c Connectivity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
