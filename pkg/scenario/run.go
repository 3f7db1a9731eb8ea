package scenario

import (
	"fmt"
	"io"

	"github.com/thelolagemann/gbatimers/internal/gba"
	"github.com/thelolagemann/gbatimers/pkg/log"
)

// ExpectError is returned when an expect command reads an unexpected
// value.
type ExpectError struct {
	Line      int
	Register  string
	Cycle     int64
	Want, Got uint16
}

func (e *ExpectError) Error() string {
	return fmt.Sprintf("scenario: line %d: cycle %d: expected %s = 0x%04X, got 0x%04X",
		e.Line, e.Cycle, e.Register, e.Want, e.Got)
}

// Runner executes scripts against a system. Snapshots taken by save
// commands are kept across scripts.
type Runner struct {
	g     *gba.GBA
	out   io.Writer
	slots map[string][]byte

	log.Logger
}

// NewRunner returns a Runner printing the result of read16 commands
// to out.
func NewRunner(g *gba.GBA, out io.Writer, l log.Logger) *Runner {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &Runner{
		g:      g,
		out:    out,
		slots:  make(map[string][]byte),
		Logger: l,
	}
}

// Run executes the script, stopping at the first failing command.
func (r *Runner) Run(script Script) error {
	for _, cmd := range script {
		r.Debugf("scenario: cycle %d: %s", r.g.Cycle(), cmd.Text)
		if err := r.exec(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) exec(cmd Command) error {
	g := r.g
	switch cmd.Op {
	case OpWrite16:
		g.Write16(cmd.Address, uint16(cmd.Value))
	case OpWrite32:
		g.Write32(cmd.Address, uint32(cmd.Value))
	case OpRead16:
		fmt.Fprintf(r.out, "%d: %s = 0x%04X\n", g.Cycle(), RegisterName(cmd.Address), g.Read16(cmd.Address))
	case OpExpect:
		if got := g.Read16(cmd.Address); got != uint16(cmd.Value) {
			return &ExpectError{
				Line:     cmd.Line,
				Register: RegisterName(cmd.Address),
				Cycle:    g.Cycle(),
				Want:     uint16(cmd.Value),
				Got:      got,
			}
		}
	case OpRun:
		g.Step(int64(cmd.Value))
	case OpSkip:
		if !g.RunUntilEvent() {
			r.Infof("scenario: line %d: nothing scheduled", cmd.Line)
		}
	case OpPC:
		g.CPU.Jump(uint32(cmd.Value))
		g.CPU.Prefetch(uint32(cmd.Extra))
	case OpSave:
		r.slots[cmd.Slot] = g.State()
	case OpLoad:
		state, ok := r.slots[cmd.Slot]
		if !ok {
			return fmt.Errorf("scenario: line %d: no snapshot in slot %q", cmd.Line, cmd.Slot)
		}
		if err := g.LoadState(state); err != nil {
			return fmt.Errorf("scenario: line %d: %w", cmd.Line, err)
		}
	case OpReset:
		g.Reset()
	default:
		panic(fmt.Sprintf("scenario: illegal op %d", cmd.Op))
	}
	return nil
}

// RegisterName returns the name of the register at address, or the
// address in hexadecimal if it has none.
func RegisterName(address uint32) string {
	for name, a := range Registers {
		if a == address {
			return name
		}
	}
	return fmt.Sprintf("0x%08X", address)
}
