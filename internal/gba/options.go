package gba

import (
	"github.com/thelolagemann/gbatimers/internal/apu"
	"github.com/thelolagemann/gbatimers/internal/timer"
	"github.com/thelolagemann/gbatimers/pkg/log"
)

// Opt is a function that modifies a GBA
// instance.
type Opt func(g *GBA)

func WithLogger(log log.Logger) Opt {
	return func(g *GBA) {
		g.Logger = log
	}
}

// WithState loads the given snapshot once the system is built.
func WithState(b []byte) Opt {
	return func(g *GBA) {
		g.state = b
	}
}

// WithForcedPrescale slows every timer down by 2^bits.
func WithForcedPrescale(bits uint8) Opt {
	return func(g *GBA) {
		g.forcedPrescale = bits
	}
}

// WithObserver receives a trace of the timers' activity.
func WithObserver(fn func(timer.Trace)) Opt {
	return func(g *GBA) {
		g.observer = fn
	}
}

// WithSink receives every sample played by the sound FIFOs.
func WithSink(s apu.Sink) Opt {
	return func(g *GBA) {
		g.sink = s
	}
}

// WithRefill is called whenever a sound FIFO requests a DMA refill.
func WithRefill(fn func(side int)) Opt {
	return func(g *GBA) {
		g.refill = fn
	}
}
