package bits

// Val returns the value of the bit at the given index.
func Val(b uint8, i uint8) uint8 {
	return (b >> i) & 1
}

// Reset resets the bit at the given index.
func Reset(b, i uint8) uint8 {
	return b &^ (1 << i)
}

// Set sets the bit at the given index.
func Set(b, i uint8) uint8 {
	return b | (1 << i)
}

// Test tests the bit at the given index.
func Test(b, i uint8) bool {
	return (b>>i)&1 != 0
}

// Put sets or resets the bit at the given index depending on v.
func Put(b, i uint8, v bool) uint8 {
	if v {
		return Set(b, i)
	}
	return Reset(b, i)
}

// Field returns the width bits of b starting at bit i.
func Field(b, i, width uint8) uint8 {
	return (b >> i) & (1<<width - 1)
}

// PutField replaces the width bits of b starting at bit i with v.
// Bits of v above width are discarded.
func PutField(b, i, width, v uint8) uint8 {
	mask := uint8(1<<width-1) << i
	return b&^mask | (v<<i)&mask
}

// Test16 tests the bit at the given index of a halfword.
func Test16(h uint16, i uint8) bool {
	return (h>>i)&1 != 0
}
