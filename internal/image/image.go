// Package image owns the in-memory volume buffer and its mirroring to the
// backing file. Persistence is wholesale: the entire buffer is read on load
// and written on save, never incrementally.
package image

import (
	"fmt"
	"os"

	"github.com/flatvol/go-flatvol/internal/layout"
)

// Image is the fixed-size byte buffer representing one volume. It is owned by
// exactly one storage engine for the lifetime of the process.
type Image struct {
	path string
	buf  []byte
}

// New creates a zeroed image buffer backed by the file at path. The backing
// file is not touched until Load or Save is called.
func New(path string) *Image {
	return &Image{
		path: path,
		buf:  make([]byte, layout.ImageSize),
	}
}

// Load reads the backing file into the buffer. A missing file is not an
// error: it signals a fresh volume, reported through the returned bool so the
// caller can initialize the directory and free-list regions.
func (img *Image) Load() (fresh bool, err error) {
	data, err := os.ReadFile(img.path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read image file %s: %w", img.path, err)
	}
	if len(data) != layout.ImageSize {
		return false, fmt.Errorf("image file %s has size %d, expected %d", img.path, len(data), layout.ImageSize)
	}
	copy(img.buf, data)
	return false, nil
}

// Save writes the entire buffer back to the backing file.
func (img *Image) Save() error {
	if err := os.WriteFile(img.path, img.buf, 0644); err != nil {
		return fmt.Errorf("failed to write image file %s: %w", img.path, err)
	}
	return nil
}

// Bytes returns the underlying buffer. Callers mutate it in place; the next
// Save persists whatever state the buffer holds.
func (img *Image) Bytes() []byte {
	return img.buf
}

// Path returns the backing file path.
func (img *Image) Path() string {
	return img.path
}
