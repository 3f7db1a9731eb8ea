package types

import (
	"fmt"
)

// ioRegisters is the number of halfword registers in the IO page.
const ioRegisters = 0x200

// HardwareRegisters is the set of hardware IO registers of a single
// system, indexed by the offset of the register into the IO page
// divided by 2.
type HardwareRegisters struct {
	registers [ioRegisters]*HardwareRegister
}

// Has reports whether a hardware register is registered at the address.
func (h *HardwareRegisters) Has(address HardwareAddress) bool {
	i, ok := index(address)
	return ok && h.registers[i] != nil
}

// Read returns the value of the hardware register for the given
// address. Unmapped addresses, and registers without a read
// function, read as 0.
func (h *HardwareRegisters) Read(address HardwareAddress) uint16 {
	i, ok := index(address)
	if !ok || h.registers[i] == nil || h.registers[i].read == nil {
		return 0
	}
	return h.registers[i].read()
}

// Write writes the given value to the hardware register for the
// given address. Writes to unmapped addresses, or to registers
// without a write function, are ignored.
func (h *HardwareRegisters) Write(address HardwareAddress, value uint16) {
	i, ok := index(address)
	if !ok || h.registers[i] == nil {
		return
	}
	h.registers[i].Write(value)
}

func index(address HardwareAddress) (int, bool) {
	if address < IOBase || address >= IOBase+ioRegisters*2 {
		return 0, false
	}
	return int(address-IOBase) >> 1, true
}

// HardwareRegister represents a hardware register of the GBA. The
// hardware IO are used to control and read the state of the hardware.
type HardwareRegister struct {
	address HardwareAddress
	write   func(v uint16)
	read    func() uint16

	writeHandler WriteHandler
}

// HardwareOpt is a function that configures a hardware register.
type HardwareOpt func(*HardwareRegister)

// RegisterHardware registers a hardware register with the given
// address and read/write functions. The read and write functions
// are optional, and may be nil, in which case the register is
// write-only or read-only, respectively. Registering the same
// address twice panics.
func (h *HardwareRegisters) RegisterHardware(address HardwareAddress, write func(v uint16), read func() uint16, opts ...HardwareOpt) {
	i, ok := index(address)
	if !ok || address&1 != 0 {
		panic(fmt.Sprintf("hardware: illegal address 0x%08X", address))
	}
	if h.registers[i] != nil {
		panic(fmt.Sprintf("hardware: address 0x%08X has already been registered", address))
	}

	r := &HardwareRegister{
		address: address,
		write:   write,
		read:    read,
	}
	for _, opt := range opts {
		opt(r)
	}
	h.registers[i] = r
}

// WithWriteHandler wraps every write to the register, so that work
// can be done before or after the write is committed.
func WithWriteHandler(writeHandler WriteHandler) HardwareOpt {
	return func(h *HardwareRegister) {
		h.writeHandler = writeHandler
	}
}

// WriteHandler is called with the function committing a write.
type WriteHandler func(writeFn func())

func (h *HardwareRegister) Write(value uint16) {
	if h.write == nil {
		return
	}
	if h.writeHandler != nil {
		h.writeHandler(func() {
			h.write(value)
		})
		return
	}
	h.write(value)
}
