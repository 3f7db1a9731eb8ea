package scheduler

import "fmt"

// Callback is invoked when an event is due. cyclesLate is the number
// of cycles between the cycle the event was scheduled for and the
// cycle at which it was actually dispatched, and is never negative.
type Callback func(cyclesLate int64)

// Event is a schedulable callback. Events are owned by the component
// that creates them and are registered once, so scheduling never
// allocates. An event can be queued at most once at any time.
type Event struct {
	Name     string // diagnostic only
	Priority int    // lower fires first when two events share a cycle

	fn        Callback
	when      int64
	scheduled bool
	next      *Event
}

// NewEvent returns a new event with the given name, priority and
// callback.
func NewEvent(name string, priority int, fn Callback) *Event {
	if fn == nil {
		panic(fmt.Sprintf("scheduler: event %q has no callback", name))
	}
	return &Event{
		Name:     name,
		Priority: priority,
		fn:       fn,
	}
}

// Reset removes the event from any queue bookkeeping without
// touching its name, priority or callback.
func (e *Event) Reset() {
	e.when = 0
	e.scheduled = false
	e.next = nil
}

func (e *Event) String() string {
	return fmt.Sprintf("%s@%d", e.Name, e.when)
}
