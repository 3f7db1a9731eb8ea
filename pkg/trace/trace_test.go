package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/gbatimers/internal/timer"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder(3)
	for i := 0; i < 5; i++ {
		r.Observe(timer.Trace{Cycle: int64(i), Timer: i % 2, Kind: timer.TraceOverflow, Counter: uint16(i)})
	}

	records := r.Records()
	if len(records) != 3 || records[0].Cycle != 2 || records[2].Cycle != 4 {
		t.Fatalf("expected the last 3 records, got %+v", records)
	}
	if records[0].Kind != "overflow" {
		t.Errorf("expected kind overflow, got %s", records[0].Kind)
	}
	if got := r.Count(0, timer.TraceOverflow); got != 2 {
		t.Errorf("expected 2 overflows of timer 0, got %d", got)
	}
}

func TestPlot(t *testing.T) {
	var records []Record
	for cycle := int64(0); cycle < 1000; cycle += 10 {
		records = append(records, Record{Cycle: cycle, Timer: 0, Kind: "count-up", Counter: uint16(cycle)})
	}
	records = append(records, Record{Cycle: 1000, Timer: 0, Kind: "overflow", Counter: 0})

	var buf bytes.Buffer
	if err := Plot(records, &buf, 320, 240); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("expected a 320x240 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestHub(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for h.Connected() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected the client to be registered")
		}
		time.Sleep(time.Millisecond)
	}

	h.Observe(timer.Trace{Cycle: 123, Timer: 2, Kind: timer.TraceIRQ, Counter: 0xBEEF})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var rec Record
	if err := json.Unmarshal(msg, &rec); err != nil {
		t.Fatal(err)
	}
	want := Record{Cycle: 123, Timer: 2, Kind: "irq", Counter: 0xBEEF}
	if rec != want {
		t.Errorf("expected %+v, got %+v", want, rec)
	}
}
