// Package loader provides program image loading for the SVM.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// ImageSize is the size of the memory image handed to the machine.
const ImageSize = 4096

// HeaderSize is the length of the magic header at the front of an
// image file.
const HeaderSize = 4

// MaxFileSize is the largest valid image file: header plus a full
// memory image.
const MaxFileSize = HeaderSize + ImageSize

// ErrBadImage reports a file that is not a valid program image.
var ErrBadImage = errors.New("bad image")

// magic identifies a program image file.
var magic = []byte{0xde, 0xad, 0xbe, 0xef}

// Program represents a validated program image ready for execution.
type Program struct {
	// Image is the zero-padded 4096-byte memory image: the file payload
	// with the magic header stripped.
	Image []byte
}

// Load reads and validates a program image file.
func Load(path string) (*Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}

	return New(raw)
}

// New validates the raw bytes of an image file and builds the memory
// image.
func New(raw []byte) (*Program, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: file shorter than the %d-byte header",
			ErrBadImage, HeaderSize)
	}
	if len(raw) > MaxFileSize {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes",
			ErrBadImage, ImageSize)
	}
	if !bytes.Equal(raw[:HeaderSize], magic) {
		return nil, fmt.Errorf("%w: missing magic header", ErrBadImage)
	}

	image := make([]byte, ImageSize)
	copy(image, raw[HeaderSize:])

	return &Program{Image: image}, nil
}
