package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatvol/go-flatvol/internal/layout"
)

func tempImagePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), uuid.NewString()+".img")
}

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := Open(tempImagePath(t))
	require.NoError(t, err)
	return eng
}

func TestCreateReadRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "short text", content: []byte("remember the milk")},
		{name: "empty content", content: nil},
		{name: "exactly one payload", content: bytes.Repeat([]byte{'p'}, layout.BlockPayloadSize)},
		{name: "multi-block content", content: bytes.Repeat([]byte{'q'}, 3*layout.BlockPayloadSize+17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := openTestEngine(t)

			require.NoError(t, eng.Create("file.txt", tt.content))
			got, err := eng.Read("file.txt")
			require.NoError(t, err)
			if len(tt.content) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.content, got)
			}
		})
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	eng := openTestEngine(t)

	require.NoError(t, eng.Create("dup.txt", []byte("one")))
	err := eng.Create("dup.txt", []byte("two"))
	assert.ErrorIs(t, err, ErrExists)

	// The original content is untouched.
	got, err := eng.Read("dup.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)
}

func TestCreateInvalidNames(t *testing.T) {
	eng := openTestEngine(t)

	tests := []struct {
		name     string
		fileName string
	}{
		{name: "empty name", fileName: ""},
		{name: "name too long", fileName: string(bytes.Repeat([]byte{'n'}, layout.MaxNameLen+1))},
		{name: "name with NUL", fileName: "bad\x00name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eng.Create(tt.fileName, []byte("content"))
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}

func TestReadNotFound(t *testing.T) {
	eng := openTestEngine(t)
	_, err := eng.Read("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsGuardedAgainstRepeat(t *testing.T) {
	eng := openTestEngine(t)
	require.NoError(t, eng.Create("gone.txt", []byte("soon gone")))

	assert.NoError(t, eng.Delete("gone.txt"))
	assert.ErrorIs(t, eng.Delete("gone.txt"), ErrNotFound)
}

func TestDeleteReclaimsBlocks(t *testing.T) {
	eng := openTestEngine(t)

	content := bytes.Repeat([]byte{'r'}, 4*layout.BlockPayloadSize)
	require.NoError(t, eng.Create("big.txt", content))
	assert.Equal(t, layout.TotalBlocks-4, eng.FreeBlocks())

	require.NoError(t, eng.Delete("big.txt"))
	assert.Equal(t, layout.TotalBlocks, eng.FreeBlocks())
}

func TestDirectoryCapacity(t *testing.T) {
	eng := openTestEngine(t)

	for i := 0; i < layout.MaxFiles; i++ {
		require.NoError(t, eng.Create(fmt.Sprintf("file-%03d", i), []byte("x")))
	}

	err := eng.Create("one-too-many", []byte("x"))
	assert.ErrorIs(t, err, ErrDirectoryFull)

	// Deleting one file frees a slot for one more create.
	require.NoError(t, eng.Delete("file-050"))
	assert.NoError(t, eng.Create("one-too-many", []byte("x")))
}

func TestSpaceExhaustionLeavesFreeCountUnchanged(t *testing.T) {
	eng := openTestEngine(t)

	// Occupy all but three blocks.
	filler := bytes.Repeat([]byte{'f'}, (layout.TotalBlocks-3)*layout.BlockPayloadSize)
	require.NoError(t, eng.Create("filler", filler))
	require.Equal(t, 3, eng.FreeBlocks())

	// Four blocks needed, three available.
	toBig := bytes.Repeat([]byte{'g'}, 3*layout.BlockPayloadSize+1)
	err := eng.Create("too-big", toBig)
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, eng.FreeBlocks(), "failed create must not leak blocks")

	_, readErr := eng.Read("too-big")
	assert.ErrorIs(t, readErr, ErrNotFound)
}

func TestAppendRewritesChain(t *testing.T) {
	eng := openTestEngine(t)

	require.NoError(t, eng.Create("log.txt", []byte("abc")))
	_, before, found := eng.dir.Find("log.txt")
	require.True(t, found)
	oldBlocks := eng.chains.Blocks(before.FirstBlock)

	require.NoError(t, eng.Append("log.txt", []byte("def")))

	got, err := eng.Read("log.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), got)

	_, after, found := eng.dir.Find("log.txt")
	require.True(t, found)
	newBlocks := eng.chains.Blocks(after.FirstBlock)
	for _, old := range oldBlocks {
		assert.NotContains(t, newBlocks, old, "append must allocate a fresh chain")
	}
}

func TestAppendMissingFile(t *testing.T) {
	eng := openTestEngine(t)
	assert.ErrorIs(t, eng.Append("missing.txt", []byte("x")), ErrNotFound)
}

func TestAppendSurvivesExhaustion(t *testing.T) {
	eng := openTestEngine(t)

	original := bytes.Repeat([]byte{'o'}, 2*layout.BlockPayloadSize)
	require.NoError(t, eng.Create("kept.txt", original))

	// Leave exactly enough space for the original to be rewritten, but not
	// for the original plus the suffix.
	filler := bytes.Repeat([]byte{'f'}, (layout.TotalBlocks-4)*layout.BlockPayloadSize)
	require.NoError(t, eng.Create("filler", filler))
	require.Equal(t, 2, eng.FreeBlocks())

	suffix := bytes.Repeat([]byte{'s'}, 3*layout.BlockPayloadSize)
	err := eng.Append("kept.txt", suffix)
	assert.ErrorIs(t, err, ErrAllocationFailed)

	// The file still holds its pre-append content.
	got, readErr := eng.Read("kept.txt")
	require.NoError(t, readErr)
	assert.Equal(t, original, got)
	assert.Equal(t, 2, eng.FreeBlocks())
}

func TestListSortsByName(t *testing.T) {
	eng := openTestEngine(t)

	require.NoError(t, eng.Create("b", []byte("2")))
	require.NoError(t, eng.Create("a", []byte("1")))
	require.NoError(t, eng.Create("c", []byte("3")))

	files := eng.List()
	require.Len(t, files, 3)
	assert.Equal(t, "a", files[0].Name)
	assert.Equal(t, "b", files[1].Name)
	assert.Equal(t, "c", files[2].Name)

	// Recorded size includes the trailing terminator.
	assert.Equal(t, int32(2), files[0].Size)
}

func TestPersistenceFidelity(t *testing.T) {
	path := tempImagePath(t)

	eng, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, eng.Create("alpha", []byte("first file")))
	require.NoError(t, eng.Create("beta", bytes.Repeat([]byte{'z'}, 2*layout.BlockPayloadSize)))
	require.NoError(t, eng.Close())

	reopened, err := Open(path)
	require.NoError(t, err)

	files := reopened.List()
	require.Len(t, files, 2)
	assert.Equal(t, "alpha", files[0].Name)
	assert.Equal(t, "beta", files[1].Name)

	got, err := reopened.Read("alpha")
	require.NoError(t, err)
	assert.Equal(t, []byte("first file"), got)

	got, err = reopened.Read("beta")
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{'z'}, 2*layout.BlockPayloadSize), got)

	assert.Equal(t, eng.FreeBlocks(), reopened.FreeBlocks())
}

func TestBlockConservation(t *testing.T) {
	eng := openTestEngine(t)

	require.NoError(t, eng.Create("a", bytes.Repeat([]byte{'a'}, layout.BlockPayloadSize*2)))
	require.NoError(t, eng.Create("b", []byte("b")))
	require.NoError(t, eng.Delete("a"))
	require.NoError(t, eng.Append("b", bytes.Repeat([]byte{'b'}, layout.BlockPayloadSize)))

	reachable := 0
	for _, entry := range eng.dir.Valid() {
		reachable += len(eng.chains.Blocks(entry.FirstBlock))
	}
	assert.Equal(t, layout.TotalBlocks, eng.FreeBlocks()+reachable)

	report := eng.Verify()
	assert.True(t, report.OK(), "issues: %v", report.Issues)
}

func TestVerifyDetectsCorruptContent(t *testing.T) {
	eng := openTestEngine(t)
	require.NoError(t, eng.Create("data.txt", []byte("pristine content")))

	_, entry, found := eng.dir.Find("data.txt")
	require.True(t, found)

	// Flip a payload byte behind the engine's back.
	off := layout.BlockOffset(entry.FirstBlock) + layout.BlockHeaderSize
	eng.img.Bytes()[off] ^= 0xFF

	report := eng.Verify()
	assert.False(t, report.OK())
	assert.Contains(t, report.Issues[0], "checksum mismatch")
}

func TestVerifyReportsDanglingFirstBlock(t *testing.T) {
	eng := openTestEngine(t)
	require.NoError(t, eng.Create("dangling.txt", []byte("soon orphaned")))

	// Point the entry's first block past the data region.
	slot, _, found := eng.dir.Find("dangling.txt")
	require.True(t, found)
	off := layout.EntryOffset(slot) + layout.EntryFirstBlockOffset
	binary.LittleEndian.PutUint32(eng.img.Bytes()[off:off+4], 5000)

	report := eng.Verify()
	assert.False(t, report.OK())
	assert.Contains(t, report.Issues, "dangling.txt: chain references block 5000 outside the data region")
}

func TestVerifyReportsCyclicChain(t *testing.T) {
	eng := openTestEngine(t)
	require.NoError(t, eng.Create("cycle.txt", bytes.Repeat([]byte{'z'}, 2*layout.BlockPayloadSize)))

	_, entry, found := eng.dir.Find("cycle.txt")
	require.True(t, found)
	blocks := eng.chains.Blocks(entry.FirstBlock)
	require.Len(t, blocks, 2)

	// Loop the second block back onto the first.
	off := layout.BlockOffset(blocks[1])
	binary.LittleEndian.PutUint32(eng.img.Bytes()[off:off+layout.BlockHeaderSize], uint32(blocks[0]))

	report := eng.Verify()
	assert.False(t, report.OK())
	assert.Contains(t, report.Issues, fmt.Sprintf("cycle.txt: chain loops back to block %d", blocks[0]))
}

func TestVerifyOnRead(t *testing.T) {
	path := tempImagePath(t)
	eng, err := Open(path, WithVerifyOnRead(true))
	require.NoError(t, err)

	require.NoError(t, eng.Create("safe.txt", []byte("content")))
	_, readErr := eng.Read("safe.txt")
	assert.NoError(t, readErr)

	_, entry, found := eng.dir.Find("safe.txt")
	require.True(t, found)
	off := layout.BlockOffset(entry.FirstBlock) + layout.BlockHeaderSize
	eng.img.Bytes()[off] ^= 0xFF

	_, readErr = eng.Read("safe.txt")
	assert.Error(t, readErr)
	assert.Contains(t, readErr.Error(), "checksum mismatch")
}

func TestStats(t *testing.T) {
	eng := openTestEngine(t)
	require.NoError(t, eng.Create("one.txt", bytes.Repeat([]byte{'1'}, layout.BlockPayloadSize+1)))

	s := eng.Stats()
	assert.Equal(t, 1, s.Files)
	assert.Equal(t, layout.MaxFiles, s.MaxFiles)
	assert.Equal(t, 2, s.UsedBlocks)
	assert.Equal(t, layout.TotalBlocks-2, s.FreeBlocks)
	assert.Equal(t, layout.ImageSize, s.ImageSize)
}
