package system

import "errors"

var (
	ErrBlockedTarget = errors.New("system: target cell is impassable")
	ErrNoScript      = errors.New("system: unit has no script")
)
