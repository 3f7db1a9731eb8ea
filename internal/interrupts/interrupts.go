package interrupts

import (
	"github.com/thelolagemann/gbatimers/internal/types"
)

// IRQ identifies an interrupt line, and is the bit index of the
// line in the IE and IF registers.
type IRQ uint8

const (
	// VBlank is requested when the PPU enters vertical blank.
	VBlank IRQ = iota
	// HBlank is requested when the PPU enters horizontal blank.
	HBlank
	// VCounter is requested when the current scanline matches
	// DISPSTAT's vertical counter setting.
	VCounter
	// Timer0 is requested by timer 0 overflowing with its IRQ
	// bit set. Timer1-Timer3 follow consecutively.
	Timer0
	Timer1
	Timer2
	Timer3
	Serial
	DMA0
	DMA1
	DMA2
	DMA3
	Keypad
	GamePak
)

// Timer returns the interrupt line of the given timer.
func Timer(index int) IRQ {
	return Timer0 + IRQ(index)
}

// Service is the interrupt service, used to request
// interrupts and to check for pending interrupts.
//
// When an interrupt is requested, the corresponding bit
// in the Flag register is set. When an interrupt is
// enabled, the corresponding bit in the Enable register
// is set. When an interrupt is requested and enabled,
// and the Master enable is set, the CPU takes the IRQ
// exception. Software acknowledges an interrupt by writing
// a 1 to its bit in the Flag register.
type Service struct {
	Flag   uint16 // interrupt Flag (types.IF)
	Enable uint16 // interrupt Enable (types.IE)
	Master bool   // interrupt master enable (types.IME)

	requested [GamePak + 1]uint64
}

// NewService returns a new Service.
func NewService() *Service {
	return &Service{}
}

// Request requests the specified interrupt, by setting
// the corresponding bit in the Flag register.
func (s *Service) Request(irq IRQ) {
	s.Flag |= 1 << irq
	s.requested[irq]++
}

// Requested returns how many times the interrupt has been
// requested since the service was created or reset.
func (s *Service) Requested(irq IRQ) uint64 {
	return s.requested[irq]
}

// HasInterrupts returns true if there are any interrupts
// that are requested and enabled, regardless of the
// master enable.
func (s *Service) HasInterrupts() bool {
	return s.Enable&s.Flag&0x3FFF != 0
}

// Pending returns true if the CPU would take an IRQ.
func (s *Service) Pending() bool {
	return s.Master && s.HasInterrupts()
}

// WriteFlag acknowledges the interrupts set in v.
func (s *Service) WriteFlag(v uint16) {
	s.Flag &^= v
}

// WriteEnable sets the interrupt enable register.
func (s *Service) WriteEnable(v uint16) {
	s.Enable = v & 0x3FFF
}

// WriteMaster sets the interrupt master enable register.
func (s *Service) WriteMaster(v uint16) {
	s.Master = v&1 != 0
}

// ReadMaster returns the interrupt master enable register.
func (s *Service) ReadMaster() uint16 {
	if s.Master {
		return 1
	}
	return 0
}

// Reset clears all the interrupt registers.
func (s *Service) Reset() {
	*s = Service{}
}

var _ types.Stater = (*Service)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - Flag (uint16)
//   - Enable (uint16)
//   - Master (bool)
func (s *Service) Load(st *types.State) {
	s.Flag = st.Read16()
	s.Enable = st.Read16()
	s.Master = st.ReadBool()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - Flag (uint16)
//   - Enable (uint16)
//   - Master (bool)
func (s *Service) Save(st *types.State) {
	st.Write16(s.Flag)
	st.Write16(s.Enable)
	st.WriteBool(s.Master)
}
