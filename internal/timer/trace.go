package timer

// TraceKind identifies what a Trace records.
type TraceKind uint8

const (
	// TraceOverflow is emitted after a timer overflowed and reloaded.
	TraceOverflow TraceKind = iota
	// TraceCountUp is emitted after a cascaded timer ticked.
	TraceCountUp
	// TraceIRQ is emitted when a timer's interrupt is requested.
	TraceIRQ
	// TraceControl is emitted after a control register write.
	TraceControl
)

func (k TraceKind) String() string {
	switch k {
	case TraceOverflow:
		return "overflow"
	case TraceCountUp:
		return "count-up"
	case TraceIRQ:
		return "irq"
	case TraceControl:
		return "control"
	}
	return "unknown"
}

// Trace is a single observation of a timer, passed to the observer
// registered with WithObserver.
type Trace struct {
	Cycle   int64
	Timer   int
	Kind    TraceKind
	Counter uint16
}
