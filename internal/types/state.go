package types

import (
	"errors"
)

// ErrShortState is returned by State.Err when a read ran past the
// end of the state data.
var ErrShortState = errors.New("state: unexpected end of data")

// Resettable is an interface that allows an object to be reset.
type Resettable interface {
	Reset() // Reset the state of the object
}

// State represents the emulated system state. This is used to
// save and load states between runs. Values are stored little
// endian, in the order they are written.
type State struct {
	raw           []byte // raw state data (for serialization)
	readPosition  int    // current read position
	writePosition int    // current write position
	err           error  // first read error
}

// Stater is an interface that allows an object to be saved
// and loaded from a state.
type Stater interface {
	Load(*State) // Load the state of the object
	Save(*State) // Save the state of the object
}

// NewState creates a new state.
func NewState() *State {
	return &State{
		raw: make([]byte, 0),
	}
}

// StateFromBytes creates a new state from the given bytes.
func StateFromBytes(raw []byte) *State {
	return &State{
		raw: raw,
	}
}

func (s *State) Write8(value uint8) {
	s.raw = append(s.raw, value)
	s.writePosition++
}

func (s *State) Write16(value uint16) {
	s.raw = append(s.raw, byte(value), byte(value>>8))
	s.writePosition += 2
}

func (s *State) Write32(value uint32) {
	s.raw = append(s.raw, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
	s.writePosition += 4
}

// Write64 writes a signed 64-bit value, used for cycle stamps.
func (s *State) Write64(value int64) {
	s.Write32(uint32(value))
	s.Write32(uint32(uint64(value) >> 32))
}

func (s *State) WriteBool(value bool) {
	if value {
		s.raw = append(s.raw, 1)
	} else {
		s.raw = append(s.raw, 0)
	}
	s.writePosition++
}

func (s *State) WriteData(data []byte) {
	s.raw = append(s.raw, data...)
	s.writePosition += len(data)
}

// need reports whether n more bytes can be read, recording
// ErrShortState otherwise.
func (s *State) need(n int) bool {
	if s.readPosition+n > len(s.raw) {
		if s.err == nil {
			s.err = ErrShortState
		}
		s.readPosition = len(s.raw)
		return false
	}
	return true
}

func (s *State) Read8() uint8 {
	if !s.need(1) {
		return 0
	}
	value := s.raw[s.readPosition]
	s.readPosition++
	return value
}

func (s *State) Read16() uint16 {
	if !s.need(2) {
		return 0
	}
	value := uint16(s.raw[s.readPosition]) | uint16(s.raw[s.readPosition+1])<<8
	s.readPosition += 2
	return value
}

func (s *State) Read32() uint32 {
	if !s.need(4) {
		return 0
	}
	value := uint32(s.raw[s.readPosition]) | uint32(s.raw[s.readPosition+1])<<8 | uint32(s.raw[s.readPosition+2])<<16 | uint32(s.raw[s.readPosition+3])<<24
	s.readPosition += 4
	return value
}

// Read64 reads a signed 64-bit value written by Write64.
func (s *State) Read64() int64 {
	lo := uint64(s.Read32())
	hi := uint64(s.Read32())
	return int64(hi<<32 | lo)
}

func (s *State) ReadBool() bool {
	if !s.need(1) {
		return false
	}
	value := s.raw[s.readPosition] != 0
	s.readPosition++
	return value
}

func (s *State) ReadData(p []byte) {
	if !s.need(len(p)) {
		return
	}
	copy(p, s.raw[s.readPosition:])
	s.readPosition += len(p)
}

// Err returns ErrShortState if any read ran past the end of the data.
func (s *State) Err() error {
	return s.err
}

func (s *State) Bytes() []byte {
	return s.raw
}
