// Package io provides the IO page of the GBA: the 16-bit hardware
// registers through which software drives the timers, the DMA sound
// FIFOs and the interrupt controller.
package io

import (
	"github.com/thelolagemann/gbatimers/internal/apu"
	"github.com/thelolagemann/gbatimers/internal/interrupts"
	"github.com/thelolagemann/gbatimers/internal/timer"
	"github.com/thelolagemann/gbatimers/internal/types"
	"github.com/thelolagemann/gbatimers/pkg/log"
)

// Bus is the IO page. It owns the visible counter registers of the
// timers, which the timer controller borrows (see Counters).
type Bus struct {
	counters [timer.Channels]uint16
	fifoLow  [2]uint16 // low halves of FIFO_A and FIFO_B, pushed on the high half write

	hardware types.HardwareRegisters

	timers *timer.Controller
	audio  *apu.APU
	irq    *interrupts.Service

	log.Logger
}

// NewBus returns an IO page with no hardware attached.
func NewBus(l log.Logger) *Bus {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &Bus{Logger: l}
}

// Counters returns the counter register cells, to be handed to the
// timer controller with timer.WithCounters.
func (b *Bus) Counters() [timer.Channels]*uint16 {
	var cells [timer.Channels]*uint16
	for i := range b.counters {
		cells[i] = &b.counters[i]
	}
	return cells
}

// Attach maps the registers of the timers, the sound FIFOs and the
// interrupt controller. It panics if called twice.
func (b *Bus) Attach(timers *timer.Controller, audio *apu.APU, irq *interrupts.Service) {
	b.timers = timers
	b.audio = audio
	b.irq = irq

	for i := 0; i < timer.Channels; i++ {
		i := i
		b.hardware.RegisterHardware(
			types.TimerCounter(i),
			func(v uint16) {
				timers.WriteReload(i, v)
			},
			func() uint16 {
				return timers.ReadCounter(i)
			},
		)
		b.hardware.RegisterHardware(
			types.TimerControl(i),
			func(v uint16) {
				timers.WriteControl(i, v)
			},
			func() uint16 {
				return timers.ReadControl(i)
			},
		)
	}

	b.hardware.RegisterHardware(types.SOUNDCNT_H, audio.WriteControl, audio.ReadControl)
	b.hardware.RegisterHardware(types.SOUNDCNT_X, audio.WriteMaster, audio.ReadMaster)
	for side, address := range [2]types.HardwareAddress{types.FIFO_A, types.FIFO_B} {
		side := side
		b.hardware.RegisterHardware(address, func(v uint16) {
			b.fifoLow[side] = v
		}, nil)
		b.hardware.RegisterHardware(address+2, func(v uint16) {
			audio.WriteFIFO(side, uint32(v)<<16|uint32(b.fifoLow[side]))
		}, nil)
	}

	b.hardware.RegisterHardware(types.IE, irq.WriteEnable, func() uint16 {
		return irq.Enable
	}, types.WithWriteHandler(b.checkInterrupts))
	b.hardware.RegisterHardware(types.IF, irq.WriteFlag, func() uint16 {
		return irq.Flag
	}, types.WithWriteHandler(b.checkInterrupts))
	b.hardware.RegisterHardware(types.IME, irq.WriteMaster, irq.ReadMaster, types.WithWriteHandler(b.checkInterrupts))
}

// checkInterrupts commits a write to one of the interrupt registers
// and reports an interrupt becoming deliverable.
func (b *Bus) checkInterrupts(writeFn func()) {
	pending := b.irq.Pending()
	writeFn()
	if !pending && b.irq.Pending() {
		b.Debugf("io: IRQ pending (IE 0x%04X, IF 0x%04X)", b.irq.Enable, b.irq.Flag)
	}
}

// Read16 reads the halfword register at address. Unmapped registers
// read as 0.
func (b *Bus) Read16(address uint32) uint16 {
	address &^= 1
	if !b.hardware.Has(address) {
		b.Debugf("io: read from unmapped register 0x%08X", address)
	}
	return b.hardware.Read(address)
}

// Read32 reads the word at address as two halfword reads, low half
// first.
func (b *Bus) Read32(address uint32) uint32 {
	address &^= 3
	return uint32(b.Read16(address)) | uint32(b.Read16(address+2))<<16
}

// Write16 writes the halfword register at address. Writes to
// unmapped registers are ignored.
func (b *Bus) Write16(address uint32, value uint16) {
	address &^= 1
	if !b.hardware.Has(address) {
		b.Debugf("io: write 0x%04X to unmapped register 0x%08X", value, address)
		return
	}
	b.hardware.Write(address, value)
}

// Write32 writes the word at address as two halfword writes, low half
// first.
func (b *Bus) Write32(address uint32, value uint32) {
	address &^= 3
	b.Write16(address, uint16(value))
	b.Write16(address+2, uint16(value>>16))
}

// Reset clears the latched FIFO halves. The attached hardware is
// reset by its owner.
func (b *Bus) Reset() {
	b.fifoLow = [2]uint16{}
}

var _ types.Stater = (*Bus)(nil)

// Load implements the types.Stater interface. Only the latched FIFO
// halves belong to the bus, the attached hardware is loaded by its
// owner.
func (b *Bus) Load(s *types.State) {
	for side := range b.fifoLow {
		b.fifoLow[side] = s.Read16()
	}
}

// Save implements the types.Stater interface.
func (b *Bus) Save(s *types.State) {
	for _, low := range b.fifoLow {
		s.Write16(low)
	}
}
