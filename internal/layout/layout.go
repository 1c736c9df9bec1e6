// Package layout defines the on-disk geometry of a flatvol image.
//
// An image is a single fixed-size byte buffer split into three regions:
//
//	[Directory Region][Free-List Region][Data Region]
//
// The Directory Region holds a fixed-capacity array of directory entries at a
// fixed stride. The Free-List Region starts with a 4-byte free-block count
// followed by one flag byte per block (1 = free, 0 = used). The Data Region is
// an array of fixed-size blocks, each carrying a 4-byte next-block index
// followed by its payload. All integers are little-endian.
package layout

const (
	// BlockSize is the size of one block in the Data Region, header included.
	BlockSize = 512

	// BlockHeaderSize is the size of the next-block index stored at the start
	// of every block.
	BlockHeaderSize = 4

	// BlockPayloadSize is the number of content bytes one block can carry.
	BlockPayloadSize = BlockSize - BlockHeaderSize

	// TotalBlocks is the number of blocks in the Data Region.
	TotalBlocks = 2048

	// MaxFiles is the capacity of the directory table.
	MaxFiles = 100

	// MaxNameLen is the longest file name the directory accepts. The on-disk
	// name field is one byte larger to hold the NUL terminator.
	MaxNameLen = 99

	nameFieldSize = MaxNameLen + 1

	// EntrySize is the on-disk stride of one directory entry:
	// name[100] | first block int32 | size int32 | valid byte |
	// checksum uint64 | 3 pad bytes.
	EntrySize = 120

	// Entry field offsets, relative to the entry start.
	EntryNameOffset       = 0
	EntryFirstBlockOffset = nameFieldSize
	EntrySizeOffset       = EntryFirstBlockOffset + 4
	EntryValidOffset      = EntrySizeOffset + 4
	EntryChecksumOffset   = EntryValidOffset + 1

	DirectoryRegionStart = 0
	DirectoryRegionSize  = MaxFiles * EntrySize

	// The Free-List Region is a 4-byte free count plus one flag byte per block.
	FreeListRegionStart = DirectoryRegionStart + DirectoryRegionSize
	FreeListRegionSize  = 4 + TotalBlocks

	DataRegionStart = FreeListRegionStart + FreeListRegionSize
	DataRegionSize  = TotalBlocks * BlockSize

	// ImageSize is the total size of the image buffer and its backing file.
	ImageSize = DataRegionStart + DataRegionSize

	// EndOfChain is the next-block index that terminates a chain. It is also
	// the first-block value of a zero-length file.
	EndOfChain = -1
)

// BlockOffset returns the byte offset of block i inside the image. The index
// is not validated; callers must pass indices obtained from the allocator or
// from a chain walk.
func BlockOffset(i int32) int {
	return DataRegionStart + int(i)*BlockSize
}

// EntryOffset returns the byte offset of directory slot n inside the image.
func EntryOffset(n int) int {
	return DirectoryRegionStart + n*EntrySize
}

// BlocksNeeded returns how many blocks a chain must span to hold length
// content bytes. Zero-length content needs no blocks.
func BlocksNeeded(length int) int {
	return (length + BlockPayloadSize - 1) / BlockPayloadSize
}
