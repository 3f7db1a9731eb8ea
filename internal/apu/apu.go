// Package apu provides the DMA sound half of the GBA audio
// processing unit: two FIFO channels (A and B) that play back
// signed 8-bit samples, one sample per overflow of timer 0 or
// timer 1. The PSG channels are not emulated.
package apu

import (
	"github.com/thelolagemann/gbatimers/internal/types"
	"github.com/thelolagemann/gbatimers/pkg/bits"
	"github.com/thelolagemann/gbatimers/pkg/log"
)

const (
	// SideA is the index of DMA sound channel A.
	SideA = 0
	// SideB is the index of DMA sound channel B.
	SideB = 1
)

// Sink receives every sample played by a DMA sound channel.
type Sink interface {
	Sample(side int, sample int8, cyclesLate int64)
}

type channel struct {
	fifo        FIFO
	current     int8
	fullVolume  bool
	right, left bool
	timer       int
}

// APU is the DMA sound unit.
//
// SOUNDCNT_H (types.SOUNDCNT_H) is laid out as follows:
//
//	Bit 2:  channel A volume (0 = 50%, 1 = 100%)
//	Bit 3:  channel B volume (0 = 50%, 1 = 100%)
//	Bit 8:  channel A enable right
//	Bit 9:  channel A enable left
//	Bit 10: channel A timer select
//	Bit 11: channel A FIFO reset (write only)
//	Bit 12: channel B enable right
//	Bit 13: channel B enable left
//	Bit 14: channel B timer select
//	Bit 15: channel B FIFO reset (write only)
type APU struct {
	enabled  bool
	psg      uint16 // bits 0-1 of SOUNDCNT_H, kept for read back
	channels [2]channel

	sink   Sink
	refill func(side int)

	log.Logger
}

// Opt configures an APU.
type Opt func(a *APU)

// WithSink sets the sink receiving played samples.
func WithSink(s Sink) Opt {
	return func(a *APU) {
		a.sink = s
	}
}

// WithRefill sets the function called when a FIFO runs low, which
// is where a sound DMA transfer would be triggered.
func WithRefill(fn func(side int)) Opt {
	return func(a *APU) {
		a.refill = fn
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l log.Logger) Opt {
	return func(a *APU) {
		a.Logger = l
	}
}

// New returns a new, disabled APU.
func New(opts ...Opt) *APU {
	a := &APU{
		Logger: log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether the sound hardware is powered
// (SOUNDCNT_X bit 7).
func (a *APU) Enabled() bool {
	return a.enabled
}

// Output returns the timer clocking the side, and whether either of
// its outputs is enabled.
func (a *APU) Output(side int) (int, bool) {
	ch := &a.channels[side]
	return ch.timer, ch.left || ch.right
}

// SampleFIFO plays the next sample of the side. If the FIFO is empty
// the previous sample keeps playing.
func (a *APU) SampleFIFO(side int, cyclesLate int64) {
	ch := &a.channels[side]
	if sample, ok := ch.fifo.Pop(); ok {
		ch.current = sample
	}
	if ch.fifo.Len() <= refillThreshold && a.refill != nil {
		a.refill(side)
	}
	if a.sink != nil {
		a.sink.Sample(side, a.Current(side), cyclesLate)
	}
}

// Current returns the sample currently played by the side, with its
// volume applied.
func (a *APU) Current(side int) int8 {
	ch := &a.channels[side]
	if ch.fullVolume {
		return ch.current
	}
	return ch.current >> 1
}

// Len returns the number of samples queued in the side's FIFO.
func (a *APU) Len(side int) int {
	return a.channels[side].fifo.Len()
}

// WriteFIFO pushes four samples into the side's FIFO (a FIFO_A or
// FIFO_B write).
func (a *APU) WriteFIFO(side int, v uint32) {
	a.channels[side].fifo.Write32(v)
}

// WriteControl handles a write to SOUNDCNT_H.
func (a *APU) WriteControl(v uint16) {
	a.psg = v & 0x3
	for side := range a.channels {
		ch := &a.channels[side]
		shift := uint8(side * 4)
		ch.fullVolume = bits.Test16(v, 2+uint8(side))
		ch.right = bits.Test16(v, 8+shift)
		ch.left = bits.Test16(v, 9+shift)
		ch.timer = int(v>>(10+shift)) & 1
		if bits.Test16(v, 11+shift) {
			ch.fifo.Reset()
			ch.current = 0
		}
	}
	a.Debugf("apu: SOUNDCNT_H 0x%04X", v)
}

// ReadControl returns SOUNDCNT_H as software reads it back.
func (a *APU) ReadControl() uint16 {
	v := a.psg
	for side := range a.channels {
		ch := &a.channels[side]
		shift := side * 4
		if ch.fullVolume {
			v |= 1 << (2 + side)
		}
		if ch.right {
			v |= 1 << (8 + shift)
		}
		if ch.left {
			v |= 1 << (9 + shift)
		}
		v |= uint16(ch.timer) << (10 + shift)
	}
	return v
}

// WriteMaster handles a write to SOUNDCNT_X. Powering the sound
// hardware off silences both channels.
func (a *APU) WriteMaster(v uint16) {
	a.enabled = bits.Test16(v, 7)
	if !a.enabled {
		for side := range a.channels {
			a.channels[side].current = 0
		}
	}
}

// ReadMaster returns SOUNDCNT_X as software reads it back.
func (a *APU) ReadMaster() uint16 {
	if a.enabled {
		return 0x80
	}
	return 0
}

// Reset powers the sound hardware off and clears both channels.
func (a *APU) Reset() {
	a.enabled = false
	a.psg = 0
	a.channels = [2]channel{}
}

var _ types.Stater = (*APU)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - enabled (bool)
//   - SOUNDCNT_H (uint16)
//   - for each channel: current sample (uint8), FIFO
func (a *APU) Load(s *types.State) {
	a.enabled = s.ReadBool()
	control := s.Read16()
	for side := range a.channels {
		a.channels[side].fifo.Reset()
	}
	a.WriteControl(control &^ (1<<11 | 1<<15))
	for side := range a.channels {
		a.channels[side].current = int8(s.Read8())
		a.channels[side].fifo.load(s)
	}
}

// Save implements the types.Stater interface.
func (a *APU) Save(s *types.State) {
	s.WriteBool(a.enabled)
	s.Write16(a.ReadControl())
	for side := range a.channels {
		s.Write8(uint8(a.channels[side].current))
		a.channels[side].fifo.save(s)
	}
}
