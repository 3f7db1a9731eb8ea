// Package gba wires the timers to the rest of a GBA: the event
// scheduler driving them, the interrupt controller they raise IRQs
// on, the DMA sound FIFOs they clock, the CPU prefetch state skewing
// their reads, and the IO page software accesses them through.
package gba

import (
	"fmt"

	"github.com/thelolagemann/gbatimers/internal/apu"
	"github.com/thelolagemann/gbatimers/internal/cpu"
	"github.com/thelolagemann/gbatimers/internal/interrupts"
	"github.com/thelolagemann/gbatimers/internal/io"
	"github.com/thelolagemann/gbatimers/internal/scheduler"
	"github.com/thelolagemann/gbatimers/internal/timer"
	"github.com/thelolagemann/gbatimers/internal/types"
	"github.com/thelolagemann/gbatimers/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the GBA.
	ClockSpeed = 16777216 // 16.78 MHz
	// CyclesPerFrame is the number of clock cycles per frame.
	CyclesPerFrame = 280896
)

// GBA represents the timer-related hardware of a GBA.
type GBA struct {
	Scheduler  *scheduler.Scheduler
	Interrupts *interrupts.Service
	APU        *apu.APU
	CPU        *cpu.Pipeline
	Timers     *timer.Controller
	Bus        *io.Bus

	log.Logger

	forcedPrescale uint8
	observer       func(timer.Trace)
	sink           apu.Sink
	refill         func(side int)
	state          []byte
}

// New returns a GBA with every timer disabled, at cycle 0. If a state
// was given with WithState, it is loaded before returning.
func New(opts ...Opt) (*GBA, error) {
	g := &GBA{
		Logger: log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.Scheduler = scheduler.NewScheduler()
	g.Interrupts = interrupts.NewService()
	g.CPU = cpu.NewPipeline()
	g.APU = apu.New(
		apu.WithLogger(g.Logger),
		apu.WithSink(g.sink),
		apu.WithRefill(g.requestRefill),
	)
	g.Bus = io.NewBus(g.Logger)

	timerOpts := []timer.Opt{
		timer.WithLogger(g.Logger),
		timer.WithCounters(g.Bus.Counters()),
		timer.WithAudio(g.APU),
		timer.WithPipeline(g.CPU),
		timer.WithForcedPrescale(g.forcedPrescale),
	}
	if g.observer != nil {
		timerOpts = append(timerOpts, timer.WithObserver(g.observer))
	}
	g.Timers = timer.NewController(g.Scheduler, g.Interrupts, timerOpts...)
	g.Bus.Attach(g.Timers, g.APU, g.Interrupts)

	if g.state != nil {
		if err := g.LoadState(g.state); err != nil {
			return nil, err
		}
		g.state = nil
	}

	return g, nil
}

func (g *GBA) requestRefill(side int) {
	g.Debugf("gba: FIFO %c requests a refill at cycle %d", 'A'+side, g.Scheduler.Cycle())
	if g.refill != nil {
		g.refill(side)
	}
}

// Cycle returns the current cycle.
func (g *GBA) Cycle() int64 {
	return g.Scheduler.Cycle()
}

// Step advances the system by the given number of cycles, executing
// every event that becomes due.
func (g *GBA) Step(cycles int64) {
	if cycles < 0 {
		panic(fmt.Sprintf("gba: cannot step %d cycles", cycles))
	}
	g.Scheduler.Tick(cycles)
}

// RunUntilEvent advances the system to the next scheduled event and
// executes it, as a halted CPU would. It returns false if nothing is
// scheduled.
func (g *GBA) RunUntilEvent() bool {
	if _, ok := g.Scheduler.Next(); !ok {
		return false
	}
	g.Scheduler.Skip()
	return true
}

// Read16 reads the IO register at address.
func (g *GBA) Read16(address uint32) uint16 {
	return g.Bus.Read16(address)
}

// Write16 writes the IO register at address.
func (g *GBA) Write16(address uint32, value uint16) {
	g.Bus.Write16(address, value)
}

// Write32 writes the pair of IO registers at address.
func (g *GBA) Write32(address uint32, value uint32) {
	g.Bus.Write32(address, value)
}

// Reset returns the system to its power-on state at cycle 0.
func (g *GBA) Reset() {
	for _, c := range g.components() {
		c.Reset()
	}
	g.Infof("gba: reset")
}

// components returns the hardware in the order it is reset. The
// scheduler comes first, so the timers deschedule from an empty queue.
func (g *GBA) components() []types.Resettable {
	return []types.Resettable{g.Scheduler, g.Interrupts, g.APU, g.CPU, g.Timers, g.Bus}
}

var _ types.Stater = (*GBA)(nil)

// Load implements the types.Stater interface. The scheduler is loaded
// first, as the timers restore their events relative to it.
//
// The values are loaded in the following order:
//   - scheduler
//   - interrupts
//   - APU
//   - CPU pipeline
//   - timers
//   - IO bus
func (g *GBA) Load(s *types.State) {
	g.Scheduler.Load(s)
	g.Interrupts.Load(s)
	g.APU.Load(s)
	g.CPU.Load(s)
	g.Timers.Load(s)
	g.Bus.Load(s)
}

// Save implements the types.Stater interface.
func (g *GBA) Save(s *types.State) {
	g.Scheduler.Save(s)
	g.Interrupts.Save(s)
	g.APU.Save(s)
	g.CPU.Save(s)
	g.Timers.Save(s)
	g.Bus.Save(s)
}

// State returns a snapshot of the system.
func (g *GBA) State() []byte {
	s := types.NewState()
	g.Save(s)
	return s.Bytes()
}

// LoadState restores a snapshot returned by State. A truncated
// snapshot leaves the system reset.
func (g *GBA) LoadState(b []byte) error {
	s := types.StateFromBytes(b)
	g.Load(s)
	if err := s.Err(); err != nil {
		g.Reset()
		return fmt.Errorf("gba: loading state: %w", err)
	}
	g.Infof("gba: loaded state at cycle %d", g.Scheduler.Cycle())
	return nil
}
