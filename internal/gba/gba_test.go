package gba

import (
	"testing"

	"github.com/thelolagemann/gbatimers/internal/apu"
	"github.com/thelolagemann/gbatimers/internal/interrupts"
	"github.com/thelolagemann/gbatimers/internal/timer"
	"github.com/thelolagemann/gbatimers/internal/types"
)

type sampleRecorder struct {
	samples []int8
}

func (r *sampleRecorder) Sample(side int, sample int8, cyclesLate int64) {
	r.samples = append(r.samples, sample)
}

func newGBA(t *testing.T, opts ...Opt) *GBA {
	t.Helper()
	g, err := New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	g.Step(100)
	return g
}

func TestGBA_Wraparound(t *testing.T) {
	var traces []timer.Trace
	g := newGBA(t, WithObserver(func(tr timer.Trace) {
		if tr.Kind == timer.TraceOverflow {
			traces = append(traces, tr)
		}
	}))
	g.Write16(types.TM0CNT_L, 0xFFFF)
	g.Write16(types.TM0CNT_H, 0x0080)

	g.Step(1)
	if len(traces) != 1 || traces[0].Cycle != 101 {
		t.Fatalf("expected a single overflow at cycle 101, got %+v", traces)
	}
	if traces[0].Counter != 0xFFFF {
		t.Errorf("expected the counter to be reloaded with 0xFFFF, got 0x%04X", traces[0].Counter)
	}
}

func TestGBA_Cascade(t *testing.T) {
	g := newGBA(t)
	g.Write16(types.TM1CNT_L, 0)
	g.Write16(types.TM1CNT_H, 0x0084)
	g.Write16(types.TM0CNT_L, 0xFFFE)
	g.Write16(types.TM0CNT_H, 0x0080)

	g.Step(2)
	if got := g.Read16(types.TM1CNT_L); got != 1 {
		t.Errorf("expected timer 1 to count up to 1, got %d", got)
	}
	if g.Scheduler.IsScheduled(g.Timers.IRQEvent(1)) {
		t.Errorf("expected timer 1 not to overflow")
	}
}

func TestGBA_IRQ(t *testing.T) {
	setup := func(t *testing.T) *GBA {
		g := newGBA(t)
		g.Write16(types.IE, 1<<interrupts.Timer0)
		g.Write16(types.IME, 1)
		g.Write16(types.TM0CNT_L, 0xFFF0)
		g.Write16(types.TM0CNT_H, 0x00C0)
		return g
	}

	t.Run("on time", func(t *testing.T) {
		g := setup(t)
		// overflow at 116, IRQ 7 cycles later
		g.Step(22)
		if g.Read16(types.IF) != 0 {
			t.Fatalf("expected no IRQ before cycle 123, got IF 0x%04X", g.Read16(types.IF))
		}
		g.Step(1)
		if g.Read16(types.IF) != 1<<interrupts.Timer0 || !g.Interrupts.Pending() {
			t.Errorf("expected the timer 0 IRQ at cycle 123, got IF 0x%04X", g.Read16(types.IF))
		}
	})
	t.Run("late", func(t *testing.T) {
		g := setup(t)
		g.Step(30)
		if g.Interrupts.Requested(interrupts.Timer0) != 1 {
			t.Errorf("expected a single timer 0 IRQ, got %d", g.Interrupts.Requested(interrupts.Timer0))
		}
		// the reloaded counter runs from the nominal overflow cycle
		if got := g.Read16(types.TM0CNT_L); got != 0xFFF0+14 {
			t.Errorf("expected counter 0x%04X, got 0x%04X", 0xFFF0+14, got)
		}
	})
}

func TestGBA_Prescale(t *testing.T) {
	for selector, bits := range []uint{0, 6, 8, 10} {
		g := newGBA(t)
		g.Write16(types.TM2CNT_L, 0x1000)
		g.Write16(types.TM2CNT_H, 0x0080|uint16(selector))
		start := int64(98) &^ (1<<bits - 1)

		for _, step := range []int64{1, 63, 640, 5000} {
			g.Step(step)
			now := g.Cycle() &^ (1<<bits - 1)
			want := uint16(0x1000 + (now-start)>>bits)
			if got := g.Read16(types.TM2CNT_L); got != want {
				t.Errorf("prescale %d at cycle %d: expected 0x%04X, got 0x%04X", bits, g.Cycle(), want, got)
			}
		}
	}
}

func TestGBA_RunUntilEvent(t *testing.T) {
	g := newGBA(t)
	if g.RunUntilEvent() {
		t.Fatalf("expected nothing to be scheduled")
	}

	g.Write16(types.TM0CNT_L, 0xFF00)
	g.Write16(types.TM0CNT_H, 0x0080)
	if !g.RunUntilEvent() {
		t.Fatalf("expected the overflow to be scheduled")
	}
	if g.Cycle() != 356 {
		t.Errorf("expected to skip to cycle 356, got %d", g.Cycle())
	}
	if got := g.Read16(types.TM0CNT_L); got != 0xFF00 {
		t.Errorf("expected the reloaded counter 0xFF00, got 0x%04X", got)
	}
}

func TestGBA_Audio(t *testing.T) {
	r := &sampleRecorder{}
	var refills int
	g := newGBA(t, WithSink(r), WithRefill(func(side int) {
		refills++
	}))
	g.Write16(types.SOUNDCNT_H, 0x0304)
	g.Write16(types.SOUNDCNT_X, 0x0080)
	g.Write32(types.FIFO_A, 0x04030201)
	g.Write16(types.TM0CNT_L, 0xFFFF)
	g.Write16(types.TM0CNT_H, 0x0080)

	g.Step(1)
	if len(r.samples) != 1 || r.samples[0] != 1 {
		t.Fatalf("expected a single sample 1, got %v", r.samples)
	}
	g.Step(3)
	if len(r.samples) != 4 || r.samples[3] != 4 {
		t.Errorf("expected 4 samples ending in 4, got %v", r.samples)
	}
	if refills != 4 {
		t.Errorf("expected a refill request per sample, got %d", refills)
	}
}

func TestGBA_State(t *testing.T) {
	g := newGBA(t)
	g.Write16(types.IE, 0x0078)
	g.Write16(types.IME, 1)
	g.Write16(types.TM0CNT_L, 0xF000)
	g.Write16(types.TM0CNT_H, 0x00C0)
	g.Write16(types.TM1CNT_H, 0x00C4)
	g.Write16(types.TM3CNT_L, 0x8000)
	g.Write16(types.TM3CNT_H, 0x0082)
	g.Step(4000)

	loaded, err := New(WithState(g.State()))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Cycle() != g.Cycle() {
		t.Fatalf("expected cycle %d, got %d", g.Cycle(), loaded.Cycle())
	}

	for _, step := range []int64{1, 100, 4096, 70000} {
		g.Step(step)
		loaded.Step(step)
		for i := 0; i < timer.Channels; i++ {
			if want, got := g.Read16(types.TimerCounter(i)), loaded.Read16(types.TimerCounter(i)); want != got {
				t.Errorf("timer %d at cycle %d: expected 0x%04X, got 0x%04X", i, g.Cycle(), want, got)
			}
		}
		if g.Interrupts.Flag != loaded.Interrupts.Flag {
			t.Errorf("expected IF 0x%04X, got 0x%04X", g.Interrupts.Flag, loaded.Interrupts.Flag)
		}
	}

	t.Run("truncated", func(t *testing.T) {
		state := g.State()
		if _, err := New(WithState(state[:len(state)/2])); err == nil {
			t.Errorf("expected an error loading a truncated state")
		}
	})
	t.Run("fifo latch", func(t *testing.T) {
		g := newGBA(t)
		g.Write16(types.FIFO_B, 0x0201)
		loaded, err := New(WithState(g.State()))
		if err != nil {
			t.Fatal(err)
		}

		loaded.Write16(types.FIFO_B+2, 0x0403)
		loaded.Write16(types.SOUNDCNT_H, 0x0008) // full volume
		loaded.APU.SampleFIFO(apu.SideB, 0)
		if got := loaded.APU.Current(apu.SideB); got != 1 {
			t.Errorf("expected the latched low half to survive the snapshot, got sample %d", got)
		}
	})
}

func TestGBA_Reset(t *testing.T) {
	g := newGBA(t)
	g.Write16(types.TM0CNT_L, 0x1234)
	g.Write16(types.TM0CNT_H, 0x0080)
	g.Step(10)
	g.Reset()

	if g.Cycle() != 0 {
		t.Errorf("expected cycle 0, got %d", g.Cycle())
	}
	if g.Read16(types.TM0CNT_L) != 0 || g.Read16(types.TM0CNT_H) != 0 {
		t.Errorf("expected timer 0 to be cleared")
	}
	if _, ok := g.Scheduler.Next(); ok {
		t.Errorf("expected nothing to be scheduled, got %s", g.Scheduler)
	}
}
