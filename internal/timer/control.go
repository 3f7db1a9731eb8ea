package timer

import "github.com/thelolagemann/gbatimers/pkg/bits"

// prescaleSelect maps the 2-bit prescaler selector of the control
// register to prescale bits: 1, 64, 256 and 1024 cycles per tick.
var prescaleSelect = [4]uint8{0, 6, 8, 10}

// MaxForcedPrescale is the largest forced prescale that still fits in
// the flags with the slowest prescaler selected.
const MaxForcedPrescale = MaxPrescaleBits - 10

const (
	controlCountUp = 2
	controlIRQ     = 6
	controlEnable  = 7
)

// WriteReload sets the value loaded into the counter when the timer is
// started and every time it overflows (a TMxCNT_L write).
func (c *Controller) WriteReload(i int, value uint16) {
	c.channel(i).reload = value
}

// WriteControl handles a write to the control register of the timer
// (TMxCNT_H).
//
//	Bit 0-1: prescaler (1, 64, 256, 1024 cycles)
//	Bit 2:   count-up, ignored for timer 0
//	Bit 6:   IRQ on overflow
//	Bit 7:   enable
func (c *Controller) WriteControl(i int, control uint16) {
	ch := c.channel(i)

	// commit the ticks elapsed under the old configuration
	c.updateRegister(ch, 0)

	oldPrescale := ch.flags.PrescaleBits()
	wasEnabled := ch.flags.Enabled()
	wasCountUp := ch.flags.CountUp()

	prescaleBits := prescaleSelect[control&3] + ch.forcedPrescale
	ch.flags = ch.flags.
		WithPrescaleBits(prescaleBits).
		WithCountUp(i > 0 && bits.Test16(control, controlCountUp)).
		WithDoIRQ(bits.Test16(control, controlIRQ)).
		WithEnable(bits.Test16(control, controlEnable))

	switch {
	case !wasEnabled && ch.flags.Enabled():
		c.s.DescheduleEvent(ch.overflowEvent)
		*ch.counter = ch.reload
		c.restart(ch)
	case wasEnabled && !ch.flags.Enabled():
		c.s.DescheduleEvent(ch.overflowEvent)
	case ch.flags.CountUp():
		// cascaded timers are only ticked by their predecessor
		c.s.DescheduleEvent(ch.overflowEvent)
	case ch.flags.Enabled() && (prescaleBits != oldPrescale || wasCountUp):
		// start afresh at the new granularity
		c.s.DescheduleEvent(ch.overflowEvent)
		c.restart(ch)
	}

	c.Debugf("timer %d: control 0x%04X (prescale %d, count-up %t, irq %t, enable %t)",
		i, control, prescaleBits, ch.flags.CountUp(), ch.flags.DoIRQ(), ch.flags.Enabled())
	c.trace(i, TraceControl)
}

// restart aligns the timer to its prescaler as of StartupDelay cycles
// ago and schedules its next overflow.
func (c *Controller) restart(ch *Channel) {
	ch.lastEvent = (c.s.Cycle() - StartupDelay) &^ ch.flags.tickMask()
	c.updateRegister(ch, StartupDelay)
}

// ReadControl returns the control register of the timer as software
// reads it back.
func (c *Controller) ReadControl(i int) uint16 {
	ch := c.channel(i)

	var control uint16
	for selector, prescaleBits := range prescaleSelect {
		if prescaleBits+ch.forcedPrescale == ch.flags.PrescaleBits() {
			control = uint16(selector)
			break
		}
	}
	if ch.flags.CountUp() {
		control |= 1 << controlCountUp
	}
	if ch.flags.DoIRQ() {
		control |= 1 << controlIRQ
	}
	if ch.flags.Enabled() {
		control |= 1 << controlEnable
	}
	return control
}

// SyncRegister brings the visible counter of a free-running timer up
// to date for a read by the CPU. The read is considered to happen
// cyclesLate cycles ago, and further back by however far the
// prefetcher has run ahead of the program counter.
func (c *Controller) SyncRegister(i int, cyclesLate int64) {
	ch := c.channel(i)
	if !ch.flags.Running() {
		return
	}

	prefetchSkew := cyclesLate
	if c.cpu != nil {
		if pc, prefetched := c.cpu.ProgramCounter(), c.cpu.LastPrefetched(); prefetched > pc {
			prefetchSkew += int64(prefetched-pc) * int64(c.cpu.SeqCycles16()) / thumbWordSize
		}
	}
	c.updateRegister(ch, prefetchSkew)
}

// ReadCounter synchronizes the timer and returns its visible counter
// (a TMxCNT_L read).
func (c *Controller) ReadCounter(i int) uint16 {
	c.SyncRegister(i, 0)
	return *c.channel(i).counter
}
