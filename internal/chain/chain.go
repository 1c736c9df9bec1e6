// Package chain reads and writes the linked block chains that hold file
// content. Each block starts with a 4-byte little-endian next-block index;
// the index -1 terminates the chain. Payload bytes fill the rest of the
// block, with unused tail bytes zero-filled so the first zero byte acts as
// the content terminator on read-back.
package chain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/flatvol/go-flatvol/internal/freelist"
	"github.com/flatvol/go-flatvol/internal/image"
	"github.com/flatvol/go-flatvol/internal/layout"
)

// ErrAllocationFailed is returned by WriteChain when the allocator ran out of
// blocks partway through a write. Every block reserved during that call has
// been released before the error surfaces.
var ErrAllocationFailed = errors.New("could not allocate blocks for chain")

// Codec writes, walks, and releases block chains on one image.
type Codec struct {
	img   *image.Image
	alloc *freelist.FreeList
}

// New creates a codec over img using alloc as its block source.
func New(img *image.Image, alloc *freelist.FreeList) *Codec {
	return &Codec{img: img, alloc: alloc}
}

// WriteChain stores content in a fresh chain and returns its first block
// index, or layout.EndOfChain for empty content. All blocks the chain needs
// are reserved up front; if the allocator is exhausted partway, every block
// obtained so far is released and ErrAllocationFailed is returned, so the
// operation never leaks a partial reservation.
func (c *Codec) WriteChain(content []byte) (int32, error) {
	needed := layout.BlocksNeeded(len(content))
	if needed == 0 {
		return layout.EndOfChain, nil
	}

	blocks := make([]int32, 0, needed)
	for i := 0; i < needed; i++ {
		block, err := c.alloc.Allocate()
		if err != nil {
			for _, b := range blocks {
				c.alloc.Release(b)
			}
			return layout.EndOfChain, fmt.Errorf("%w: needed %d blocks, got %d: %w",
				ErrAllocationFailed, needed, i, err)
		}
		blocks = append(blocks, block)
	}

	for i, block := range blocks {
		next := int32(layout.EndOfChain)
		if i+1 < len(blocks) {
			next = blocks[i+1]
		}
		start := i * layout.BlockPayloadSize
		end := start + layout.BlockPayloadSize
		if end > len(content) {
			end = len(content)
		}
		c.writeBlock(block, next, content[start:end])
	}

	return blocks[0], nil
}

// ReadChain follows next-pointers from first until the end-of-chain sentinel,
// concatenating payload bytes. Within each block it stops consuming at the
// first zero byte, but keeps following the chain: a block's zero tail does
// not necessarily end the whole file. Callers bound the result with the
// directory entry's recorded size. A malformed chain yields the content
// collected up to the bad pointer.
func (c *Codec) ReadChain(first int32) []byte {
	var content []byte
	buf := c.img.Bytes()
	blocks, _ := c.Walk(first)
	for _, cur := range blocks {
		off := layout.BlockOffset(cur)
		payload := buf[off+layout.BlockHeaderSize : off+layout.BlockSize]
		if i := bytes.IndexByte(payload, 0); i >= 0 {
			payload = payload[:i]
		}
		content = append(content, payload...)
	}
	return content
}

// ReleaseChain returns every block of the chain starting at first to the
// allocator. The indices are collected before any block is released, so a
// next-pointer is never destroyed before it has been read.
func (c *Codec) ReleaseChain(first int32) {
	for _, block := range c.Blocks(first) {
		c.alloc.Release(block)
	}
}

// Blocks returns the block indices of the chain starting at first, in chain
// order. An EndOfChain first yields an empty slice. Malformed chains end the
// walk early; callers that need the defect reported use Walk.
func (c *Codec) Blocks(first int32) []int32 {
	blocks, _ := c.Walk(first)
	return blocks
}

// Walk returns the block indices of the chain starting at first, in chain
// order. Pointers on disk are untrusted: an index outside the data region or
// a chain that loops back on itself ends the walk with an error describing
// the defect. The blocks collected before the bad pointer are still returned.
func (c *Codec) Walk(first int32) ([]int32, error) {
	var blocks []int32
	seen := make(map[int32]bool)
	for cur := first; cur != layout.EndOfChain; cur = c.next(cur) {
		if cur < 0 || cur >= layout.TotalBlocks {
			return blocks, fmt.Errorf("chain references block %d outside the data region", cur)
		}
		if seen[cur] {
			return blocks, fmt.Errorf("chain loops back to block %d", cur)
		}
		seen[cur] = true
		blocks = append(blocks, cur)
	}
	return blocks, nil
}

func (c *Codec) writeBlock(block, next int32, payload []byte) {
	buf := c.img.Bytes()
	off := layout.BlockOffset(block)
	clear(buf[off : off+layout.BlockSize])
	binary.LittleEndian.PutUint32(buf[off:off+layout.BlockHeaderSize], uint32(next))
	copy(buf[off+layout.BlockHeaderSize:off+layout.BlockSize], payload)
}

func (c *Codec) next(block int32) int32 {
	off := layout.BlockOffset(block)
	return int32(binary.LittleEndian.Uint32(c.img.Bytes()[off : off+layout.BlockHeaderSize]))
}
