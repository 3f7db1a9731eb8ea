package types

// HardwareAddress represents the address of a hardware
// register of the GBA. The hardware IO are mapped
// to memory addresses 0x04000000 - 0x040003FE, and every
// register is 16 bits wide and halfword aligned.
type HardwareAddress = uint32

// IOBase is the first address of the IO page.
const IOBase HardwareAddress = 0x04000000

const (
	// SOUNDCNT_H is the address of the DMA sound control register. It
	// selects, for each of the two FIFO channels, the left/right outputs,
	// the timer used as the sample clock, and resets the FIFOs.
	SOUNDCNT_H HardwareAddress = 0x04000082
	// SOUNDCNT_X is the address of the master sound enable register. Only
	// bit 7 is relevant to the FIFO channels.
	SOUNDCNT_X HardwareAddress = 0x04000084
	// FIFO_A is the address of the 32-bit sound FIFO A. Each write pushes
	// four signed 8-bit samples.
	FIFO_A HardwareAddress = 0x040000A0
	// FIFO_B is the address of the 32-bit sound FIFO B.
	FIFO_B HardwareAddress = 0x040000A4

	// TM0CNT_L is the address of the timer 0 counter/reload register.
	// Reads return the current counter, writes set the reload value.
	TM0CNT_L HardwareAddress = 0x04000100
	// TM0CNT_H is the address of the timer 0 control register.
	TM0CNT_H HardwareAddress = 0x04000102
	TM1CNT_L HardwareAddress = 0x04000104
	TM1CNT_H HardwareAddress = 0x04000106
	TM2CNT_L HardwareAddress = 0x04000108
	TM2CNT_H HardwareAddress = 0x0400010A
	TM3CNT_L HardwareAddress = 0x0400010C
	TM3CNT_H HardwareAddress = 0x0400010E

	// IE is the address of the interrupt enable register.
	IE HardwareAddress = 0x04000200
	// IF is the address of the interrupt request flags register. Writing
	// a 1 to a bit acknowledges the corresponding interrupt.
	IF HardwareAddress = 0x04000202
	// IME is the address of the interrupt master enable register.
	IME HardwareAddress = 0x04000208
)

// TimerCounter returns the address of the counter/reload register
// of the given timer.
func TimerCounter(timer int) HardwareAddress {
	return TM0CNT_L + HardwareAddress(timer)<<2
}

// TimerControl returns the address of the control register of the
// given timer.
func TimerControl(timer int) HardwareAddress {
	return TM0CNT_H + HardwareAddress(timer)<<2
}
