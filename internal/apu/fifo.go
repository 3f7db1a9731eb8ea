package apu

import "github.com/thelolagemann/gbatimers/internal/types"

const (
	// fifoSize is the capacity of a sound FIFO in samples.
	fifoSize = 32
	// refillThreshold is the number of samples at or below which a
	// FIFO requests a DMA refill.
	refillThreshold = 16
)

// FIFO is one of the two DMA sound sample queues. Software (or DMA)
// pushes 32 bits at a time, and each overflow of the channel's timer
// pops a single signed 8-bit sample.
type FIFO struct {
	samples [fifoSize]int8
	read    uint8
	size    uint8
}

// Write32 pushes the four samples of v, lowest byte first. Samples
// pushed into a full FIFO are dropped.
func (f *FIFO) Write32(v uint32) {
	for i := 0; i < 4; i++ {
		if f.size == fifoSize {
			return
		}
		f.samples[(f.read+f.size)%fifoSize] = int8(v >> (8 * i))
		f.size++
	}
}

// Pop removes and returns the oldest sample, and false if the FIFO
// is empty.
func (f *FIFO) Pop() (int8, bool) {
	if f.size == 0 {
		return 0, false
	}
	sample := f.samples[f.read]
	f.read = (f.read + 1) % fifoSize
	f.size--
	return sample, true
}

// Len returns the number of queued samples.
func (f *FIFO) Len() int {
	return int(f.size)
}

// Reset empties the FIFO.
func (f *FIFO) Reset() {
	*f = FIFO{}
}

func (f *FIFO) load(s *types.State) {
	buf := make([]byte, fifoSize)
	s.ReadData(buf)
	for i, b := range buf {
		f.samples[i] = int8(b)
	}
	f.read = s.Read8() % fifoSize
	f.size = s.Read8()
	if f.size > fifoSize {
		f.size = fifoSize
	}
}

func (f *FIFO) save(s *types.State) {
	buf := make([]byte, fifoSize)
	for i, sample := range f.samples {
		buf[i] = byte(sample)
	}
	s.WriteData(buf)
	s.Write8(f.read)
	s.Write8(f.size)
}
