package timer

import (
	"fmt"

	"github.com/thelolagemann/gbatimers/internal/interrupts"
)

// updateRegister brings the visible counter of a free-running timer up
// to date, as observed skew cycles in the past, and schedules the
// overflow event if it isn't already scheduled. Overflows are never
// detected here: the counter simply wraps, and the overflow event is
// responsible for reloading it.
func (c *Controller) updateRegister(ch *Channel, skew int64) {
	if !ch.flags.Running() {
		return
	}

	prescaleBits := ch.flags.PrescaleBits()
	observedAt := c.s.Cycle() - skew
	currentTime := observedAt &^ ch.flags.tickMask()

	ticks := (currentTime - ch.lastEvent) >> prescaleBits
	ch.lastEvent = currentTime
	*ch.counter += uint16(ticks)

	if !c.s.IsScheduled(ch.overflowEvent) {
		untilOverflow := (0x10000 - int64(*ch.counter)) << prescaleBits
		c.s.ScheduleEvent(ch.overflowEvent, ReloadDelay+untilOverflow+currentTime-observedAt)
	}
}

// handleOverflow is the callback of a timer's overflow event.
func (c *Controller) handleOverflow(i int, cyclesLate int64) {
	if !c.channels[i].flags.Running() {
		panic(fmt.Sprintf("timer: overflow event fired for stopped timer %d", i))
	}

	// the FIFOs sample the state before the reload
	c.sampleAudio(i, cyclesLate)
	c.reload(i, cyclesLate)
	c.trace(i, TraceOverflow)

	if i+1 < Channels {
		c.countUp(i+1, cyclesLate)
	}
}

// reload processes the overflow of timer i: the counter is reloaded,
// the next overflow is scheduled, and the IRQ is armed if requested.
func (c *Controller) reload(i int, cyclesLate int64) {
	ch := &c.channels[i]

	*ch.counter = ch.reload
	// the prescaler may have changed since the overflow was scheduled
	ch.lastEvent = (c.s.Cycle() - cyclesLate) &^ ch.flags.tickMask()
	if ch.flags.Running() {
		c.rearm(ch)
	}

	if ch.flags.DoIRQ() {
		ch.flags = ch.flags.WithIRQPending(true)
		if !c.s.IsScheduled(ch.irqEvent) {
			c.s.ScheduleEvent(ch.irqEvent, IRQDelay-cyclesLate)
		}
	}
}

// rearm schedules the next overflow of a free-running timer one period
// after lastEvent, however late the last one was dispatched.
func (c *Controller) rearm(ch *Channel) {
	period := (0x10000 - int64(ch.reload)) << ch.flags.PrescaleBits()
	due := ch.lastEvent + ReloadDelay + period
	if c.s.Cycle() < due {
		// commits the ticks elapsed since the overflow
		c.updateRegister(ch, 0)
		return
	}

	// a whole period was missed, the overflow is due again right away
	c.s.ScheduleEvent(ch.overflowEvent, due-c.s.Cycle())
}

// countUp ticks timer i if it is cascaded from its predecessor, which
// has just overflowed. If the tick overflows timer i in turn, it is
// reloaded and cascades into its own successor.
func (c *Controller) countUp(i int, cyclesLate int64) {
	ch := &c.channels[i]
	// TODO: verify on hardware whether a disabled count-up timer
	// still ticks; it does here, but never overflows.
	if !ch.flags.CountUp() {
		return
	}

	*ch.counter++
	c.trace(i, TraceCountUp)
	if *ch.counter != 0 || !ch.flags.Enabled() {
		return
	}

	c.Debugf("timer %d: cascaded overflow", i)
	c.reload(i, cyclesLate)
	c.trace(i, TraceOverflow)

	if i+1 < Channels {
		c.countUp(i+1, cyclesLate)
	}
}

// handleIRQ is the callback of a timer's deferred interrupt event.
func (c *Controller) handleIRQ(i int) {
	ch := &c.channels[i]
	if !ch.flags.IRQPending() {
		return
	}

	ch.flags = ch.flags.WithIRQPending(false)
	c.irq.Request(interrupts.Timer(i))
	c.trace(i, TraceIRQ)
}

// sampleAudio clocks every sound FIFO using timer i as its sample
// clock.
func (c *Controller) sampleAudio(i int, cyclesLate int64) {
	if c.audio == nil || !c.audio.Enabled() {
		return
	}
	for side := 0; side < 2; side++ {
		if timer, enabled := c.audio.Output(side); enabled && timer == i {
			c.audio.SampleFIFO(side, cyclesLate)
		}
	}
}
