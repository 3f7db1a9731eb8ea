package wavwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/thelolagemann/gbatimers/internal/apu"
)

func TestWavWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fifo.wav")
	aw, err := New(path, 32768)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []int8{1, -1, 127, -128} {
		aw.Sample(apu.SideA, s, 0)
	}
	aw.Sample(apu.SideB, 64, 0)
	if aw.Len() != 4 {
		t.Errorf("expected 4 frames, got %d", aw.Len())
	}
	if err := aw.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatalf("expected a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate != 32768 || dec.NumChans != 2 {
		t.Errorf("expected 32768Hz stereo, got %dHz %d channels", dec.SampleRate, dec.NumChans)
	}

	want := []int{256, 64 << 8, -256, 64 << 8, 127 << 8, 64 << 8, -128 << 8, 64 << 8}
	if len(buf.Data) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(buf.Data))
	}
	for i, v := range want {
		if buf.Data[i] != v {
			t.Errorf("value %d: expected %d, got %d", i, v, buf.Data[i])
		}
	}
}

func TestNew_InvalidRate(t *testing.T) {
	if _, err := New("unused.wav", 0); err == nil {
		t.Errorf("expected an error for a zero sample rate")
	}
}
