// Package wavwriter records the output of the sound FIFOs to a WAV
// file. Samples are buffered in memory in their entirety, and written
// to disk on Close, so it is only suitable for short recordings.
package wavwriter

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/thelolagemann/gbatimers/internal/apu"
)

const bitDepth = 16

// WavWriter implements the apu.Sink interface. FIFO A is written to
// the left channel and FIFO B to the right.
type WavWriter struct {
	filename   string
	sampleRate int
	buffers    [2][]int
}

var _ apu.Sink = (*WavWriter)(nil)

// New returns a WavWriter that will write to filename. The sample rate
// is the overflow frequency of the timers clocking the FIFOs.
func New(filename string, sampleRate int) (*WavWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wavwriter: invalid sample rate %d", sampleRate)
	}
	return &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
	}, nil
}

// Sample implements the apu.Sink interface.
func (aw *WavWriter) Sample(side int, sample int8, cyclesLate int64) {
	aw.buffers[side] = append(aw.buffers[side], int(sample)<<(bitDepth-8))
}

// Len returns the number of frames that will be written.
func (aw *WavWriter) Len() int {
	return max(len(aw.buffers[apu.SideA]), len(aw.buffers[apu.SideB]))
}

// Close writes the recorded samples to disk. A side that played fewer
// samples than the other holds its last sample.
func (aw *WavWriter) Close() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	frames := aw.Len()
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: aw.sampleRate},
		Data:           make([]int, 0, frames*2),
		SourceBitDepth: 8,
	}
	var last [2]int
	for i := 0; i < frames; i++ {
		for side := range aw.buffers {
			if i < len(aw.buffers[side]) {
				last[side] = aw.buffers[side][i]
			}
			buf.Data = append(buf.Data, last[side])
		}
	}

	enc := wav.NewEncoder(f, aw.sampleRate, bitDepth, 2, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return nil
}
