// Package savestate stores system snapshots on disk. A snapshot is
// wrapped in a small header identifying the format and checksumming
// its payload, and the payload is compressed with brotli.
package savestate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
)

// Save state format constants
const (
	Version = 1

	magic      = "GBATimers\x00"
	headerSize = len(magic) + 2 + 8 // magic + version(2) + payload hash(8)

	// quality is the brotli compression level, matching what the web
	// player used for frames.
	quality = 7
)

var (
	// ErrInvalidMagic is returned when decoding data that isn't a
	// save state.
	ErrInvalidMagic = errors.New("savestate: invalid magic")
	// ErrUnsupportedVersion is returned when decoding a save state
	// written by an incompatible version.
	ErrUnsupportedVersion = errors.New("savestate: unsupported version")
	// ErrChecksumMismatch is returned when the decoded payload doesn't
	// match the checksum recorded in the header.
	ErrChecksumMismatch = errors.New("savestate: checksum mismatch")
)

// Encode wraps the payload in a save state.
func Encode(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(payload)/2)

	header := make([]byte, headerSize)
	copy(header, magic)
	binary.LittleEndian.PutUint16(header[len(magic):], Version)
	binary.LittleEndian.PutUint64(header[len(magic)+2:], xxhash.Sum64(payload))
	buf.Write(header)

	w := brotli.NewWriterLevel(&buf, quality)
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("savestate: compressing: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("savestate: compressing: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode verifies a save state and returns its payload.
func Decode(data []byte) ([]byte, error) {
	if len(data) < headerSize || string(data[:len(magic)]) != magic {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint16(data[len(magic):]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	sum := binary.LittleEndian.Uint64(data[len(magic)+2:])

	payload, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data[headerSize:])))
	if err != nil {
		return nil, fmt.Errorf("savestate: decompressing: %w", err)
	}
	if xxhash.Sum64(payload) != sum {
		return nil, ErrChecksumMismatch
	}

	return payload, nil
}

// WriteFile encodes the payload and writes it to path. The state is
// written to a temporary file first, which is then renamed over path,
// so an existing state is never left half written.
func WriteFile(path string, payload []byte) error {
	data, err := Encode(payload)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile reads and decodes the save state at path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	payload, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return payload, nil
}
