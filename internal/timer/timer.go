// Package timer provides an implementation of the four GBA
// timers. Rather than stepping every cycle, each timer computes
// its counter lazily whenever it is observed, and schedules a
// single event for the cycle at which it will next overflow.
//
// Timers may be cascaded: timer n+1 in count-up mode ticks once
// every time timer n overflows. Timers 0 and 1 may additionally
// be used as the sample clock of the DMA sound FIFOs.
package timer

import (
	"fmt"

	"github.com/thelolagemann/gbatimers/internal/interrupts"
	"github.com/thelolagemann/gbatimers/internal/scheduler"
	"github.com/thelolagemann/gbatimers/pkg/log"
	"github.com/thelolagemann/gbatimers/pkg/utils"
)

const (
	// Channels is the number of timers.
	Channels = 4

	// IRQDelay is the number of cycles between an overflow and the
	// interrupt request reaching the interrupt controller.
	IRQDelay = 7
	// ReloadDelay is the number of cycles between the counter
	// wrapping and the reload value being visible.
	ReloadDelay = 0
	// StartupDelay is the number of cycles between a timer being
	// enabled (or its prescaler changed) and the counter running.
	StartupDelay = 2

	// overflow events fire before IRQ events of any timer sharing
	// their cycle, lower timers first
	overflowPriority = 0x20
	irqPriority      = 0x28

	thumbWordSize = 2
)

// Interrupter accepts interrupt requests.
type Interrupter interface {
	Request(irq interrupts.IRQ)
}

// FIFOSampler is the DMA sound side of the timers. Each of the two
// FIFO channels (side 0 is A, side 1 is B) is clocked by the overflow
// of timer 0 or timer 1.
type FIFOSampler interface {
	// Enabled reports whether the sound hardware is powered.
	Enabled() bool
	// Output returns the timer clocking the side, and whether
	// either of the side's left or right outputs is enabled.
	Output(side int) (timer int, enabled bool)
	// SampleFIFO consumes the next sample of the side.
	SampleFIFO(side int, cyclesLate int64)
}

// Pipeline exposes the CPU prefetch state, used to skew counter
// reads by the cycles the prefetcher has run ahead of execution.
type Pipeline interface {
	ProgramCounter() uint32
	LastPrefetched() uint32
	SeqCycles16() int32
}

// Channel is a single timer.
type Channel struct {
	reload         uint16
	flags          Flags
	lastEvent      int64 // tick aligned cycle the counter was last brought up to date
	forcedPrescale uint8

	counter *uint16 // visible counter, owned by the register file

	overflowEvent *scheduler.Event
	irqEvent      *scheduler.Event
}

// Controller is the bank of the four timers.
type Controller struct {
	channels [Channels]Channel
	cells    [Channels]uint16 // counter storage when no register file is attached

	s        *scheduler.Scheduler
	irq      Interrupter
	audio    FIFOSampler
	cpu      Pipeline
	observer func(Trace)

	log.Logger
}

// Opt configures a Controller.
type Opt func(c *Controller)

// WithLogger sets the logger used for debug output.
func WithLogger(l log.Logger) Opt {
	return func(c *Controller) {
		c.Logger = l
	}
}

// WithAudio attaches the DMA sound FIFOs clocked by timers 0 and 1.
func WithAudio(a FIFOSampler) Opt {
	return func(c *Controller) {
		c.audio = a
	}
}

// WithPipeline attaches the CPU prefetch state used by SyncRegister.
func WithPipeline(p Pipeline) Opt {
	return func(c *Controller) {
		c.cpu = p
	}
}

// WithCounters makes the timers use the given cells as their visible
// counter registers, instead of the controller's own storage.
func WithCounters(counters [Channels]*uint16) Opt {
	return func(c *Controller) {
		for i, cell := range counters {
			if cell == nil {
				panic(fmt.Sprintf("timer: no counter cell for timer %d", i))
			}
			c.channels[i].counter = cell
		}
	}
}

// WithForcedPrescale adds the given number of prescale bits to every
// prescaler setting written afterwards. It is clamped to
// MaxForcedPrescale, so that the total fits in the flags.
func WithForcedPrescale(bits uint8) Opt {
	return func(c *Controller) {
		for i := range c.channels {
			c.channels[i].forcedPrescale = utils.Clamp(0, bits, MaxForcedPrescale)
		}
	}
}

// WithObserver registers a function called with a Trace of every
// overflow, cascade tick, interrupt request and control write.
func WithObserver(fn func(Trace)) Opt {
	return func(c *Controller) {
		c.observer = fn
	}
}

// NewController returns the four timers, registering their overflow
// and IRQ events. The timers are disabled, with a reload and counter
// of 0.
func NewController(s *scheduler.Scheduler, irq Interrupter, opts ...Opt) *Controller {
	c := &Controller{
		s:      s,
		irq:    irq,
		Logger: log.NewNullLogger(),
	}
	for i := range c.channels {
		i := i
		ch := &c.channels[i]
		ch.counter = &c.cells[i]
		ch.overflowEvent = scheduler.NewEvent(
			fmt.Sprintf("GBA Timer %d", i),
			overflowPriority+i,
			func(cyclesLate int64) {
				c.handleOverflow(i, cyclesLate)
			},
		)
		ch.irqEvent = scheduler.NewEvent(
			fmt.Sprintf("GBA Timer %d IRQ", i),
			irqPriority+i,
			func(cyclesLate int64) {
				c.handleIRQ(i)
			},
		)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Reset returns every timer to its power-on state: disabled, with a
// reload and counter of 0 and nothing scheduled. The forced prescale
// and attached collaborators are kept.
func (c *Controller) Reset() {
	for i := range c.channels {
		ch := &c.channels[i]
		c.s.DescheduleEvent(ch.overflowEvent)
		c.s.DescheduleEvent(ch.irqEvent)
		ch.reload = 0
		ch.flags = 0
		ch.lastEvent = 0
		*ch.counter = 0
	}
}

func (c *Controller) channel(i int) *Channel {
	if i < 0 || i >= Channels {
		panic(fmt.Sprintf("timer: illegal timer index %d", i))
	}
	return &c.channels[i]
}

// Counter returns the visible counter of the timer as last brought
// up to date, without synchronizing it.
func (c *Controller) Counter(i int) uint16 {
	return *c.channel(i).counter
}

// Reload returns the reload value of the timer.
func (c *Controller) Reload(i int) uint16 {
	return c.channel(i).reload
}

// Flags returns the flags of the timer.
func (c *Controller) Flags(i int) Flags {
	return c.channel(i).flags
}

// LastEvent returns the cycle the timer's counter was last brought
// up to date at.
func (c *Controller) LastEvent(i int) int64 {
	return c.channel(i).lastEvent
}

// OverflowEvent returns the overflow event of the timer.
func (c *Controller) OverflowEvent(i int) *scheduler.Event {
	return c.channel(i).overflowEvent
}

// IRQEvent returns the deferred interrupt event of the timer.
func (c *Controller) IRQEvent(i int) *scheduler.Event {
	return c.channel(i).irqEvent
}

func (c *Controller) trace(i int, kind TraceKind) {
	if c.observer == nil {
		return
	}
	c.observer(Trace{
		Cycle:   c.s.Cycle(),
		Timer:   i,
		Kind:    kind,
		Counter: *c.channels[i].counter,
	})
}
