// Package scenario runs scripted register accesses against the timer
// hardware. A script is a list of commands, one per line:
//
//	write16 <register> <value>   write a halfword register
//	write32 <register> <value>   write a pair of registers
//	read16 <register>            read a register and print it
//	expect <register> <value>    read a register and fail unless it matches
//	run <cycles>                 advance the system
//	skip                         advance to the next scheduled event
//	pc <address> [<prefetched>]  move the CPU, with the prefetcher ahead by n bytes
//	save <slot>                  snapshot the system
//	load <slot>                  restore a snapshot
//	reset                        reset the system
//
// Registers are named (TM0CNT_L, SOUNDCNT_H, IF, ...) or given as an
// address. Numbers may be decimal, or hexadecimal with a 0x prefix.
// Everything after a '#' is a comment.
package scenario

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thelolagemann/gbatimers/internal/types"
)

// Op identifies a command.
type Op uint8

const (
	OpWrite16 Op = iota
	OpWrite32
	OpRead16
	OpExpect
	OpRun
	OpSkip
	OpPC
	OpSave
	OpLoad
	OpReset
)

var ops = map[string]struct {
	op        Op
	min, max  int // operand count
	addressed bool
}{
	"write16": {OpWrite16, 2, 2, true},
	"write32": {OpWrite32, 2, 2, true},
	"read16":  {OpRead16, 1, 1, true},
	"expect":  {OpExpect, 2, 2, true},
	"run":     {OpRun, 1, 1, false},
	"skip":    {OpSkip, 0, 0, false},
	"pc":      {OpPC, 1, 2, false},
	"save":    {OpSave, 1, 1, false},
	"load":    {OpLoad, 1, 1, false},
	"reset":   {OpReset, 0, 0, false},
}

// Registers maps register names to their address.
var Registers = map[string]uint32{
	"SOUNDCNT_H": types.SOUNDCNT_H,
	"SOUNDCNT_X": types.SOUNDCNT_X,
	"FIFO_A":     types.FIFO_A,
	"FIFO_B":     types.FIFO_B,
	"TM0CNT_L":   types.TM0CNT_L,
	"TM0CNT_H":   types.TM0CNT_H,
	"TM1CNT_L":   types.TM1CNT_L,
	"TM1CNT_H":   types.TM1CNT_H,
	"TM2CNT_L":   types.TM2CNT_L,
	"TM2CNT_H":   types.TM2CNT_H,
	"TM3CNT_L":   types.TM3CNT_L,
	"TM3CNT_H":   types.TM3CNT_H,
	"IE":         types.IE,
	"IF":         types.IF,
	"IME":        types.IME,
}

// Command is a single parsed line of a script.
type Command struct {
	Line    int
	Op      Op
	Address uint32
	Value   uint64
	Extra   uint64 // prefetch distance of pc
	Slot    string
	Text    string // the line as written, for messages
}

// Script is a parsed scenario.
type Script []Command

// SyntaxError is returned for a malformed line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("scenario: line %d: %s", e.Line, e.Msg)
}

// Parse reads a script.
func Parse(r io.Reader) (Script, error) {
	var script Script
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		cmd, err := parseCommand(line, fields)
		if err != nil {
			return nil, err
		}
		cmd.Text = strings.Join(fields, " ")
		script = append(script, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return script, nil
}

func parseCommand(line int, fields []string) (Command, error) {
	name, operands := strings.ToLower(fields[0]), fields[1:]
	def, ok := ops[name]
	if !ok {
		return Command{}, &SyntaxError{line, fmt.Sprintf("unknown command %q", fields[0])}
	}
	if len(operands) < def.min || len(operands) > def.max {
		return Command{}, &SyntaxError{line, fmt.Sprintf("%s takes %d operand(s), got %d", name, def.max, len(operands))}
	}

	cmd := Command{Line: line, Op: def.op}
	if def.addressed {
		address, err := parseAddress(operands[0])
		if err != nil {
			return Command{}, &SyntaxError{line, err.Error()}
		}
		cmd.Address = address
		operands = operands[1:]
	}

	var err error
	switch def.op {
	case OpWrite16, OpExpect:
		cmd.Value, err = strconv.ParseUint(operands[0], 0, 16)
	case OpWrite32:
		cmd.Value, err = strconv.ParseUint(operands[0], 0, 32)
	case OpRun:
		cmd.Value, err = strconv.ParseUint(operands[0], 0, 63)
	case OpPC:
		cmd.Value, err = strconv.ParseUint(operands[0], 0, 32)
		if err == nil && len(operands) > 1 {
			cmd.Extra, err = strconv.ParseUint(operands[1], 0, 32)
		}
	case OpSave, OpLoad:
		cmd.Slot = operands[0]
	}
	if err != nil {
		return Command{}, &SyntaxError{line, err.Error()}
	}
	return cmd, nil
}

func parseAddress(s string) (uint32, error) {
	if address, ok := Registers[strings.ToUpper(s)]; ok {
		return address, nil
	}
	address, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown register %q", s)
	}
	return uint32(address), nil
}
