package freelist

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatvol/go-flatvol/internal/image"
	"github.com/flatvol/go-flatvol/internal/layout"
)

func newTestFreeList() (*image.Image, *FreeList) {
	img := image.New("unused.img")
	f := New(img)
	f.InitializeEmpty()
	return img, f
}

func persistedCount(img *image.Image) uint32 {
	return binary.LittleEndian.Uint32(img.Bytes()[layout.FreeListRegionStart:])
}

func TestInitializeEmpty(t *testing.T) {
	img, f := newTestFreeList()

	assert.Equal(t, layout.TotalBlocks, f.FreeCount())
	assert.Equal(t, uint32(layout.TotalBlocks), persistedCount(img))
	assert.True(t, f.IsFree(0))
	assert.True(t, f.IsFree(layout.TotalBlocks-1))
}

func TestAllocateIsFIFO(t *testing.T) {
	_, f := newTestFreeList()

	first, err := f.Allocate()
	require.NoError(t, err)
	second, err := f.Allocate()
	require.NoError(t, err)

	assert.Equal(t, int32(0), first)
	assert.Equal(t, int32(1), second)
	assert.False(t, f.IsFree(first))
	assert.Equal(t, layout.TotalBlocks-2, f.FreeCount())

	// A released block goes to the tail, not the head.
	f.Release(first)
	third, err := f.Allocate()
	require.NoError(t, err)
	assert.Equal(t, int32(2), third)
}

func TestAllocateExhausted(t *testing.T) {
	img, f := newTestFreeList()

	for i := 0; i < layout.TotalBlocks; i++ {
		_, err := f.Allocate()
		require.NoError(t, err)
	}

	_, err := f.Allocate()
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 0, f.FreeCount())
	assert.Equal(t, uint32(0), persistedCount(img))
}

func TestReleaseZeroesBlock(t *testing.T) {
	img, f := newTestFreeList()

	block, err := f.Allocate()
	require.NoError(t, err)

	off := layout.BlockOffset(block)
	for i := 0; i < layout.BlockSize; i++ {
		img.Bytes()[off+i] = 0xFF
	}

	f.Release(block)
	assert.True(t, f.IsFree(block))
	for i := 0; i < layout.BlockSize; i++ {
		require.Equal(t, byte(0), img.Bytes()[off+i], "byte %d not zeroed", i)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	_, f := newTestFreeList()

	block, err := f.Allocate()
	require.NoError(t, err)

	f.Release(block)
	f.Release(block)
	assert.Equal(t, layout.TotalBlocks, f.FreeCount())

	// Out-of-range releases are ignored.
	f.Release(-1)
	f.Release(layout.TotalBlocks)
	assert.Equal(t, layout.TotalBlocks, f.FreeCount())
}

func TestRebuildFromFlags(t *testing.T) {
	img, f := newTestFreeList()

	_, err := f.Allocate()
	require.NoError(t, err)
	_, err = f.Allocate()
	require.NoError(t, err)

	// Corrupt the stored count; the flags are authoritative on rebuild.
	binary.LittleEndian.PutUint32(img.Bytes()[layout.FreeListRegionStart:], 7)

	rebuilt := New(img)
	rebuilt.Rebuild()

	assert.Equal(t, layout.TotalBlocks-2, rebuilt.FreeCount())
	assert.Equal(t, uint32(layout.TotalBlocks-2), persistedCount(img))

	// Ascending scan order: the lowest free block comes out first.
	block, err := rebuilt.Allocate()
	require.NoError(t, err)
	assert.Equal(t, int32(2), block)
}
