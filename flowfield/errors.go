package flowfield

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is the root of every rejected build request.
	ErrInvalidConfig = errors.New("flowfield: invalid configuration")
	ErrInvalidGoal   = fmt.Errorf("%w: goal out of bounds", ErrInvalidConfig)
	ErrInvalidGrid   = fmt.Errorf("%w: grid size mismatch", ErrInvalidConfig)
)
