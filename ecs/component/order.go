package component

// MoveRequest asks the order system to send a unit to a world position.
// Consumed on the next tick.
type MoveRequest struct {
	X float64
	Y float64
}

var MoveRequestComponent = NewComponent[MoveRequest]()

// AttackRequest asks the combat system to resolve one attack on Target.
type AttackRequest struct {
	Target uint64 // ecs.Entity is uint64
}

var AttackRequestComponent = NewComponent[AttackRequest]()
