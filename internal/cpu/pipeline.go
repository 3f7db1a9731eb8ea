// Package cpu provides the parts of the ARM7TDMI that other
// components observe. Instruction execution is not emulated: the
// pipeline is driven by whoever runs the system.
package cpu

import "github.com/thelolagemann/gbatimers/internal/types"

// Pipeline is the prefetch state of the CPU. The prefetcher runs
// ahead of execution, so a bus read issued by the current instruction
// happens some cycles before the latest prefetch completed.
type Pipeline struct {
	PC         uint32 // address of the executing instruction
	Prefetched uint32 // address of the last prefetched halfword or word
	SeqCycles  int32  // cycles of a sequential 16-bit access in the active region
}

// NewPipeline returns a pipeline at the start of the cartridge ROM,
// with the default 16-bit sequential access time of wait state 0.
func NewPipeline() *Pipeline {
	return &Pipeline{
		PC:         0x08000000,
		Prefetched: 0x08000000,
		SeqCycles:  3,
	}
}

func (p *Pipeline) ProgramCounter() uint32 { return p.PC }

func (p *Pipeline) LastPrefetched() uint32 { return p.Prefetched }

func (p *Pipeline) SeqCycles16() int32 { return p.SeqCycles }

// Jump moves execution to pc, flushing the prefetcher.
func (p *Pipeline) Jump(pc uint32) {
	p.PC = pc
	p.Prefetched = pc
}

// Prefetch records the prefetcher running n bytes ahead of the
// executing instruction.
func (p *Pipeline) Prefetch(n uint32) {
	p.Prefetched = p.PC + n
}

// Reset returns the pipeline to its power-on state.
func (p *Pipeline) Reset() {
	*p = *NewPipeline()
}

var _ types.Stater = (*Pipeline)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - PC (uint32)
//   - Prefetched (uint32)
//   - SeqCycles (uint32)
func (p *Pipeline) Load(s *types.State) {
	p.PC = s.Read32()
	p.Prefetched = s.Read32()
	p.SeqCycles = int32(s.Read32())
}

// Save implements the types.Stater interface.
func (p *Pipeline) Save(s *types.State) {
	s.Write32(p.PC)
	s.Write32(p.Prefetched)
	s.Write32(uint32(p.SeqCycles))
}
