// Package directory manages the fixed-capacity file table at the start of the
// image. A slot's valid flag, not compaction, marks occupancy: invalidating an
// entry leaves its name, size, and first-block bytes in place as a cheap
// tombstone, hidden from lookup and listing until the slot is reused.
package directory

import (
	"bytes"
	"encoding/binary"

	"github.com/flatvol/go-flatvol/internal/image"
	"github.com/flatvol/go-flatvol/internal/layout"
)

// Entry is the decoded form of one directory slot.
type Entry struct {
	Name       string
	FirstBlock int32
	Size       int32
	Valid      bool
	Checksum   uint64
}

// Directory decodes and encodes directory slots on one image.
type Directory struct {
	img *image.Image
}

// New creates a directory over img.
func New(img *image.Image) *Directory {
	return &Directory{img: img}
}

// Find returns the slot holding a valid entry with the given name. Name
// comparison is case-sensitive, exact byte match. At most one valid entry
// can carry a given name.
func (d *Directory) Find(name string) (slot int, e Entry, found bool) {
	for i := 0; i < layout.MaxFiles; i++ {
		e := d.Entry(i)
		if e.Valid && e.Name == name {
			return i, e, true
		}
	}
	return 0, Entry{}, false
}

// FindFreeSlot returns the first invalid slot, scanning linearly.
func (d *Directory) FindFreeSlot() (slot int, ok bool) {
	buf := d.img.Bytes()
	for i := 0; i < layout.MaxFiles; i++ {
		if buf[layout.EntryOffset(i)+layout.EntryValidOffset] == 0 {
			return i, true
		}
	}
	return 0, false
}

// Insert writes e into slot and marks it valid. The caller guarantees the
// slot was free and the name is not already present.
func (d *Directory) Insert(slot int, e Entry) {
	buf := d.img.Bytes()
	off := layout.EntryOffset(slot)

	nameField := buf[off+layout.EntryNameOffset : off+layout.EntryFirstBlockOffset]
	clear(nameField)
	copy(nameField, e.Name)

	binary.LittleEndian.PutUint32(buf[off+layout.EntryFirstBlockOffset:], uint32(e.FirstBlock))
	binary.LittleEndian.PutUint32(buf[off+layout.EntrySizeOffset:], uint32(e.Size))
	buf[off+layout.EntryValidOffset] = 1
	binary.LittleEndian.PutUint64(buf[off+layout.EntryChecksumOffset:], e.Checksum)
}

// Invalidate clears the slot's valid flag. The remaining entry bytes are left
// untouched; releasing the entry's chain is the caller's job.
func (d *Directory) Invalidate(slot int) {
	d.img.Bytes()[layout.EntryOffset(slot)+layout.EntryValidOffset] = 0
}

// Entry decodes slot n.
func (d *Directory) Entry(n int) Entry {
	buf := d.img.Bytes()
	off := layout.EntryOffset(n)

	nameField := buf[off+layout.EntryNameOffset : off+layout.EntryFirstBlockOffset]
	name := nameField
	if i := bytes.IndexByte(nameField, 0); i >= 0 {
		name = nameField[:i]
	}

	return Entry{
		Name:       string(name),
		FirstBlock: int32(binary.LittleEndian.Uint32(buf[off+layout.EntryFirstBlockOffset:])),
		Size:       int32(binary.LittleEndian.Uint32(buf[off+layout.EntrySizeOffset:])),
		Valid:      buf[off+layout.EntryValidOffset] == 1,
		Checksum:   binary.LittleEndian.Uint64(buf[off+layout.EntryChecksumOffset:]),
	}
}

// Valid returns every valid entry, in slot order.
func (d *Directory) Valid() []Entry {
	var entries []Entry
	for i := 0; i < layout.MaxFiles; i++ {
		if e := d.Entry(i); e.Valid {
			entries = append(entries, e)
		}
	}
	return entries
}
