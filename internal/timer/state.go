package timer

import (
	"github.com/thelolagemann/gbatimers/internal/scheduler"
	"github.com/thelolagemann/gbatimers/internal/types"
)

var _ types.Stater = (*Controller)(nil)

// Load implements the types.Stater interface. The scheduler must have
// been loaded first, as pending events are restored relative to its
// current cycle.
//
// The values are loaded in the following order, for each timer:
//   - reload (uint16)
//   - flags (uint8)
//   - lastEvent (int64)
//   - forcedPrescale (uint8)
//   - counter (uint16)
//   - overflow event scheduled (bool), cycles until due (int64)
//   - IRQ event scheduled (bool), cycles until due (int64)
func (c *Controller) Load(s *types.State) {
	for i := range c.channels {
		ch := &c.channels[i]
		ch.reload = s.Read16()
		ch.flags = Flags(s.Read8())
		ch.lastEvent = s.Read64()
		ch.forcedPrescale = s.Read8()
		*ch.counter = s.Read16()
		c.loadEvent(s, ch.overflowEvent)
		c.loadEvent(s, ch.irqEvent)
	}
}

// Save implements the types.Stater interface.
//
// The values are saved in the same order as they are loaded.
func (c *Controller) Save(s *types.State) {
	for i := range c.channels {
		ch := &c.channels[i]
		s.Write16(ch.reload)
		s.Write8(uint8(ch.flags))
		s.Write64(ch.lastEvent)
		s.Write8(ch.forcedPrescale)
		s.Write16(*ch.counter)
		c.saveEvent(s, ch.overflowEvent)
		c.saveEvent(s, ch.irqEvent)
	}
}

func (c *Controller) loadEvent(s *types.State, e *scheduler.Event) {
	scheduled := s.ReadBool()
	until := s.Read64()

	c.s.DescheduleEvent(e)
	if scheduled {
		c.s.ScheduleEvent(e, until)
	}
}

func (c *Controller) saveEvent(s *types.State, e *scheduler.Event) {
	s.WriteBool(c.s.IsScheduled(e))
	s.Write64(c.s.Until(e))
}
