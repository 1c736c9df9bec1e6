// Package freelist tracks which blocks of the Data Region are available.
//
// The persisted form lives at the start of the Free-List Region: a 4-byte
// free count followed by one flag byte per block (1 = free, 0 = used). The
// in-memory FIFO queue is the allocation source of truth while running; on
// load it is rebuilt by scanning the flag bytes in ascending block order, and
// the flags, not the stored count, decide which blocks are free.
package freelist

import (
	"encoding/binary"
	"errors"

	"github.com/flatvol/go-flatvol/internal/image"
	"github.com/flatvol/go-flatvol/internal/layout"
)

// ErrExhausted is returned by Allocate when no free blocks remain.
var ErrExhausted = errors.New("no free blocks available")

// FreeList is the free-block allocator for one image.
type FreeList struct {
	img   *image.Image
	queue []int32
}

// New creates an allocator over img. The caller must follow up with either
// InitializeEmpty (fresh volume) or Rebuild (loaded volume) before allocating.
func New(img *image.Image) *FreeList {
	return &FreeList{img: img}
}

// InitializeEmpty marks every block free and persists the flags. Used when no
// backing file existed at load time.
func (f *FreeList) InitializeEmpty() {
	buf := f.img.Bytes()
	f.queue = f.queue[:0]
	for i := int32(0); i < layout.TotalBlocks; i++ {
		buf[flagOffset(i)] = 1
		f.queue = append(f.queue, i)
	}
	f.writeCount()
}

// Rebuild reconstructs the in-memory queue from the persisted flag bytes,
// scanning in ascending block order. The flags are authoritative; the stored
// count is rewritten to match them.
func (f *FreeList) Rebuild() {
	buf := f.img.Bytes()
	f.queue = f.queue[:0]
	for i := int32(0); i < layout.TotalBlocks; i++ {
		if buf[flagOffset(i)] == 1 {
			f.queue = append(f.queue, i)
		}
	}
	f.writeCount()
}

// Allocate removes and returns the head of the free queue, marking the block
// used. It fails with ErrExhausted when the queue is empty, in which case no
// block has been reserved.
func (f *FreeList) Allocate() (int32, error) {
	if len(f.queue) == 0 {
		return layout.EndOfChain, ErrExhausted
	}
	block := f.queue[0]
	f.queue = f.queue[1:]
	f.img.Bytes()[flagOffset(block)] = 0
	f.writeCount()
	return block, nil
}

// Release returns a block to the pool. Out-of-range indices and blocks that
// are already free are ignored, so releasing twice is harmless. The block's
// header and payload are zeroed so a stale chain walk cannot read old data
// through it.
func (f *FreeList) Release(block int32) {
	if block < 0 || block >= layout.TotalBlocks {
		return
	}
	buf := f.img.Bytes()
	if buf[flagOffset(block)] == 1 {
		return
	}
	off := layout.BlockOffset(block)
	clear(buf[off : off+layout.BlockSize])
	buf[flagOffset(block)] = 1
	f.queue = append(f.queue, block)
	f.writeCount()
}

// IsFree reports whether the persisted flag marks the block free.
func (f *FreeList) IsFree(block int32) bool {
	if block < 0 || block >= layout.TotalBlocks {
		return false
	}
	return f.img.Bytes()[flagOffset(block)] == 1
}

// FreeCount returns the number of blocks currently available.
func (f *FreeList) FreeCount() int {
	return len(f.queue)
}

func (f *FreeList) writeCount() {
	binary.LittleEndian.PutUint32(
		f.img.Bytes()[layout.FreeListRegionStart:layout.FreeListRegionStart+4],
		uint32(len(f.queue)))
}

func flagOffset(block int32) int {
	return layout.FreeListRegionStart + 4 + int(block)
}
