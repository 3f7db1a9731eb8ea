// Package trace collects the activity of the timers for inspection:
// a Recorder keeps it in memory, Plot renders it as a graph, and a
// Hub streams it live to websocket clients.
package trace

import (
	"sync"

	"github.com/thelolagemann/gbatimers/internal/timer"
)

// Record is a single timer event.
type Record struct {
	Cycle   int64  `json:"cycle"`
	Timer   int    `json:"timer"`
	Kind    string `json:"kind"`
	Counter uint16 `json:"counter"`
}

// FromTrace converts a trace emitted by the timer controller.
func FromTrace(tr timer.Trace) Record {
	return Record{
		Cycle:   tr.Cycle,
		Timer:   tr.Timer,
		Kind:    tr.Kind.String(),
		Counter: tr.Counter,
	}
}

// Recorder accumulates records, keeping at most limit of the most
// recent ones. A limit of 0 keeps everything.
type Recorder struct {
	mu      sync.Mutex
	records []Record
	limit   int
}

// NewRecorder returns an empty Recorder.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Observe records a trace. It can be passed to gba.WithObserver.
func (r *Recorder) Observe(tr timer.Trace) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, FromTrace(tr))
	if r.limit > 0 && len(r.records) > r.limit {
		r.records = append(r.records[:0], r.records[len(r.records)-r.limit:]...)
	}
}

// Records returns a copy of the recorded traces, oldest first.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}

// Count returns how many records of the given kind were made for the
// timer.
func (r *Recorder) Count(index int, kind timer.TraceKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, rec := range r.records {
		if rec.Timer == index && rec.Kind == kind.String() {
			n++
		}
	}
	return n
}
