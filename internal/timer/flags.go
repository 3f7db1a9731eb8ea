package timer

import "github.com/thelolagemann/gbatimers/pkg/bits"

// Flags packs the configuration and transient state of a timer
// channel. It is a value type: every With* method returns an updated
// copy, and call sites replace the stored flags with the result.
//
//	Bit 0-3: prescale bits (cycles per tick = 1 << bits)
//	Bit 4:   count-up (cascade) mode
//	Bit 5:   request an IRQ on overflow
//	Bit 6:   IRQ pending delivery
//	Bit 7:   enabled
type Flags uint8

const (
	prescaleShift = 0
	prescaleWidth = 4
	countUpBit    = 4
	doIRQBit      = 5
	irqPendingBit = 6
	enableBit     = 7

	// MaxPrescaleBits is the largest prescale the flags can hold.
	MaxPrescaleBits = 1<<prescaleWidth - 1
)

// PrescaleBits returns the number of low cycle bits masked off per tick.
func (f Flags) PrescaleBits() uint8 {
	return bits.Field(uint8(f), prescaleShift, prescaleWidth)
}

// WithPrescaleBits returns f with the prescale bits replaced.
func (f Flags) WithPrescaleBits(v uint8) Flags {
	return Flags(bits.PutField(uint8(f), prescaleShift, prescaleWidth, v))
}

func (f Flags) CountUp() bool { return bits.Test(uint8(f), countUpBit) }

func (f Flags) WithCountUp(v bool) Flags { return Flags(bits.Put(uint8(f), countUpBit, v)) }

func (f Flags) DoIRQ() bool { return bits.Test(uint8(f), doIRQBit) }

func (f Flags) WithDoIRQ(v bool) Flags { return Flags(bits.Put(uint8(f), doIRQBit, v)) }

func (f Flags) IRQPending() bool { return bits.Test(uint8(f), irqPendingBit) }

func (f Flags) WithIRQPending(v bool) Flags { return Flags(bits.Put(uint8(f), irqPendingBit, v)) }

func (f Flags) Enabled() bool { return bits.Test(uint8(f), enableBit) }

func (f Flags) WithEnable(v bool) Flags { return Flags(bits.Put(uint8(f), enableBit, v)) }

// Running reports whether the channel counts cycles on its own, i.e.
// it is enabled and not cascaded from its predecessor.
func (f Flags) Running() bool {
	return f.Enabled() && !f.CountUp()
}

// tickMask returns the mask of the cycle bits below one tick.
func (f Flags) tickMask() int64 {
	return int64(1)<<f.PrescaleBits() - 1
}
