package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// LoadFile loads the given file and performs decompression if necessary.
// Archives (.zip and .7z) yield their first file.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	// try to assert the compression type from the file extension
	var decoder io.Reader
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".gz":
		decoder, err = gzip.NewReader(bytes.NewReader(data))
	case ".zip":
		zipReader, zerr := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if zerr != nil {
			return nil, zerr
		}
		if len(zipReader.File) == 0 {
			return nil, fmt.Errorf("%s: empty archive", filename)
		}
		decoder, err = zipReader.File[0].Open()
	case ".7z":
		r, zerr := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if zerr != nil {
			return nil, zerr
		}
		if len(r.File) == 0 {
			return nil, fmt.Errorf("%s: empty archive", filename)
		}
		decoder, err = r.File[0].Open()
	default:
		// return the data as is
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if c, ok := decoder.(io.Closer); ok {
		defer c.Close()
	}

	// read the decompressed data into a byte slice
	return io.ReadAll(decoder)
}
