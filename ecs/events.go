package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventUnitArrived      = "unit.arrived"
	EventNavigationBuilt  = "navigation.built"
	EventNavigationFailed = "navigation.failed"
	EventUnitDied         = "unit.died"
)

// EventQueue is a simple FIFO queue. The world rotates it once per tick so
// systems can still read what the previous tick published.
type EventQueue struct {
	items []Event
	prev  []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Peek returns the queued events without removing them.
func (q *EventQueue) Peek() []Event {
	if q == nil {
		return nil
	}
	return q.items
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Previous returns the events published during the previous tick.
func (q *EventQueue) Previous() []Event {
	if q == nil {
		return nil
	}
	return q.prev
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.prev = q.items
	q.items = nil
}
