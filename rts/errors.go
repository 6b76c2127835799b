package rts

import "errors"

var (
	ErrShutdown    = errors.New("rts: simulation is shut down")
	ErrUnknownUnit = errors.New("rts: unknown unit")
	ErrSelfAttack  = errors.New("rts: unit cannot attack itself")
	ErrPlacement   = errors.New("rts: unit placed outside the map")
)
