package scheduler

import (
	"fmt"
	"strings"

	"github.com/thelolagemann/gbatimers/internal/types"
)

// Scheduler is a simple event scheduler that can be used to schedule events
// to be executed at a specific cycle.
//
// The scheduler is a linked list of events, sorted by the cycle at which
// they should be executed, and then by their priority. When an event is
// scheduled, it is inserted into the list in the correct position, and when
// the scheduler is ticked, every event that has become due is removed from
// the list and executed, in order.
type Scheduler struct {
	cycles int64
	root   *Event
}

// NewScheduler returns a new scheduler starting at cycle 0.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Cycle returns the current cycle. While an event is being executed, this
// is the cycle at which it was dispatched, not the cycle it was scheduled
// for.
func (s *Scheduler) Cycle() int64 {
	return s.cycles
}

// Tick advances the scheduler by the given number of cycles. This will
// execute all scheduled events up to and including the new current cycle,
// passing each one the number of cycles it was dispatched late. Events
// scheduled by a callback that are already due are executed in the same
// call.
func (s *Scheduler) Tick(c int64) {
	s.cycles += c
	s.dispatch()
}

// Skip advances the scheduler to the cycle of the next scheduled event and
// executes every event due at that cycle. It is a no-op if nothing is
// scheduled. This is useful when the CPU is halted, and nothing but
// scheduled events can change the state of the system.
func (s *Scheduler) Skip() {
	if s.root == nil {
		return
	}
	if s.root.when > s.cycles {
		s.cycles = s.root.when
	}
	s.dispatch()
}

// Next returns the number of cycles until the next scheduled event, and
// false if no event is scheduled.
func (s *Scheduler) Next() (int64, bool) {
	if s.root == nil {
		return 0, false
	}
	return s.root.when - s.cycles, true
}

func (s *Scheduler) dispatch() {
	for s.root != nil && s.root.when <= s.cycles {
		event := s.root
		s.root = event.next
		event.next = nil
		event.scheduled = false

		// execute the event
		event.fn(s.cycles - event.when)
	}
}

// ScheduleEvent schedules an event to be executed the given number of cycles
// from now. The delay may be negative, in which case the event is overdue
// and is executed on the next dispatch with the corresponding lateness. If
// the event was already scheduled, it is moved.
func (s *Scheduler) ScheduleEvent(event *Event, cycles int64) {
	if event.scheduled {
		s.DescheduleEvent(event)
	}

	event.when = s.cycles + cycles
	event.scheduled = true
	event.next = nil

	// find the first event that should be executed after this one,
	// events sharing a cycle are ordered by priority, and then by
	// the order in which they were scheduled
	var prev *Event
	this := s.root
	for this != nil {
		if event.when < this.when || (event.when == this.when && event.Priority < this.Priority) {
			break
		}
		prev = this
		this = this.next
	}

	event.next = this
	if prev == nil {
		s.root = event
	} else {
		prev.next = event
	}
}

// DescheduleEvent removes the event from the scheduler. Descheduling an
// event that isn't scheduled does nothing.
func (s *Scheduler) DescheduleEvent(event *Event) {
	if !event.scheduled {
		return
	}

	var prev *Event
	for this := s.root; this != nil; this = this.next {
		if this == event {
			if prev == nil {
				s.root = this.next
			} else {
				prev.next = this.next
			}
			break
		}
		prev = this
	}

	event.next = nil
	event.scheduled = false
}

// IsScheduled returns true if the event is waiting to be executed.
func (s *Scheduler) IsScheduled(event *Event) bool {
	return event.scheduled
}

// Until returns the number of cycles until the event is due, which is
// negative for overdue events. It returns 0 if the event is not scheduled.
func (s *Scheduler) Until(event *Event) int64 {
	if !event.scheduled {
		return 0
	}
	return event.when - s.cycles
}

// Reset removes all the scheduled events and rewinds the scheduler to
// cycle 0.
func (s *Scheduler) Reset() {
	s.clear()
	s.cycles = 0
}

func (s *Scheduler) clear() {
	for event := s.root; event != nil; {
		next := event.next
		event.Reset()
		event = next
	}
	s.root = nil
}

func (s *Scheduler) String() string {
	var b strings.Builder
	for event := s.root; event != nil; event = event.next {
		fmt.Fprintf(&b, "%s:%d->", event.Name, event.when)
	}
	return b.String()
}

var _ types.Stater = (*Scheduler)(nil)

// Load implements the types.Stater interface. Every queued event is
// dropped, as the components owning them restore their own events
// relative to the loaded cycle.
//
// The values are loaded in the following order:
//   - cycles (int64)
func (s *Scheduler) Load(st *types.State) {
	s.clear()
	s.cycles = st.Read64()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - cycles (int64)
func (s *Scheduler) Save(st *types.State) {
	st.Write64(s.cycles)
}
