package interrupts

import (
	"testing"

	"github.com/thelolagemann/gbatimers/internal/types"
)

func TestService_Request(t *testing.T) {
	s := NewService()
	s.Request(Timer(2))

	if s.Flag != 1<<6 {
		t.Errorf("expected IF 0x0040, got 0x%04X", s.Flag)
	}
	if s.Requested(Timer2) != 1 {
		t.Errorf("expected 1 request, got %d", s.Requested(Timer2))
	}
	if s.Pending() {
		t.Errorf("expected no pending interrupt while disabled")
	}

	s.WriteEnable(1 << 6)
	s.WriteMaster(1)
	if !s.Pending() {
		t.Errorf("expected pending interrupt once enabled")
	}

	s.WriteFlag(1 << 6)
	if s.Flag != 0 {
		t.Errorf("expected IF to be acknowledged, got 0x%04X", s.Flag)
	}
}

func TestService_State(t *testing.T) {
	s := NewService()
	s.Request(Timer0)
	s.WriteEnable(0xFFFF)
	s.WriteMaster(1)

	st := types.NewState()
	s.Save(st)

	loaded := NewService()
	loaded.Load(types.StateFromBytes(st.Bytes()))
	if loaded.Flag != s.Flag || loaded.Enable != s.Enable || loaded.Master != s.Master {
		t.Errorf("expected %+v, got %+v", s, loaded)
	}
}
