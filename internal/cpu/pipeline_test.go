package cpu

import (
	"testing"

	"github.com/thelolagemann/gbatimers/internal/types"
)

func TestPipeline(t *testing.T) {
	p := NewPipeline()
	p.Jump(0x08000100)
	p.Prefetch(4)
	if p.ProgramCounter() != 0x08000100 || p.LastPrefetched() != 0x08000104 {
		t.Errorf("expected pc 0x08000100 prefetched 0x08000104, got 0x%08X 0x%08X", p.ProgramCounter(), p.LastPrefetched())
	}

	p.SeqCycles = 2
	st := types.NewState()
	p.Save(st)

	loaded := NewPipeline()
	loaded.Load(types.StateFromBytes(st.Bytes()))
	if *loaded != *p {
		t.Errorf("expected %+v, got %+v", *p, *loaded)
	}

	p.Reset()
	if *p != *NewPipeline() {
		t.Errorf("expected the power-on pipeline, got %+v", *p)
	}
}
