// Package engine is the storage facade over one flatvol image. It composes
// the directory, the free-block allocator, and the chain codec into the
// create/read/append/delete/list operations, and owns the image buffer and
// its wholesale mirroring to the backing file.
//
// The engine is single-owner and synchronous: one instance holds the image
// for the lifetime of the process, and every operation runs to completion
// before the next is accepted.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/exp/slices"

	"github.com/flatvol/go-flatvol/internal/chain"
	"github.com/flatvol/go-flatvol/internal/directory"
	"github.com/flatvol/go-flatvol/internal/freelist"
	"github.com/flatvol/go-flatvol/internal/image"
	"github.com/flatvol/go-flatvol/internal/layout"
)

// Engine is the storage engine for one volume image.
type Engine struct {
	img          *image.Image
	alloc        *freelist.FreeList
	chains       *chain.Codec
	dir          *directory.Directory
	verifyOnRead bool
}

// FileInfo describes one file for listing. Size is the recorded on-disk size,
// content bytes plus the trailing terminator.
type FileInfo struct {
	Name string
	Size int32
}

// Option configures an Engine at open time.
type Option func(*Engine)

// WithVerifyOnRead makes Read check the stored content checksum before
// returning.
func WithVerifyOnRead(enabled bool) Option {
	return func(e *Engine) { e.verifyOnRead = enabled }
}

// Open loads the image at path, or initializes a fresh volume if the file
// does not exist, and returns an engine owning it.
func Open(path string, opts ...Option) (*Engine, error) {
	img := image.New(path)
	fresh, err := img.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load volume: %w", err)
	}

	e := &Engine{
		img:   img,
		alloc: freelist.New(img),
	}
	e.chains = chain.New(img, e.alloc)
	e.dir = directory.New(img)

	if fresh {
		// A zeroed buffer already encodes an empty directory; only the
		// free-list flags need initializing.
		e.alloc.InitializeEmpty()
	} else {
		e.alloc.Rebuild()
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Create stores content under name. It fails with ErrExists on a duplicate
// name, ErrDirectoryFull when no slot is free, and ErrAllocationFailed
// (wrapping ErrExhausted) when the volume cannot hold the content. The
// checks run in that order, so no blocks are reserved before the name and
// slot checks pass, and a failed chain write rolls its reservation back.
func (e *Engine) Create(name string, content []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, _, found := e.dir.Find(name); found {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	slot, ok := e.dir.FindFreeSlot()
	if !ok {
		return fmt.Errorf("%w: limit of %d files reached", ErrDirectoryFull, layout.MaxFiles)
	}

	first, err := e.chains.WriteChain(content)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}

	e.dir.Insert(slot, directory.Entry{
		Name:       name,
		FirstBlock: first,
		Size:       int32(len(content)) + 1, // trailing terminator counts
		Valid:      true,
		Checksum:   xxh3.Hash(content),
	})
	return e.Save()
}

// Read returns the content stored under name.
func (e *Engine) Read(name string) ([]byte, error) {
	_, entry, found := e.dir.Find(name)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	content := e.readEntry(entry)
	if e.verifyOnRead && xxh3.Hash(content) != entry.Checksum {
		return nil, fmt.Errorf("checksum mismatch for %s", name)
	}
	return content, nil
}

// Delete removes the file stored under name. Its chain is released and the
// directory slot tombstoned; the stale entry bytes stay behind the cleared
// valid flag until the slot is reused.
func (e *Engine) Delete(name string) error {
	slot, entry, found := e.dir.Find(name)
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	e.chains.ReleaseChain(entry.FirstBlock)
	e.dir.Invalidate(slot)
	return e.Save()
}

// Append rewrites the file under name with its current content plus suffix.
// The old chain is always fully released and a fresh one allocated, even when
// the new content would fit in place. If the fresh allocation fails, the old
// content is re-stored from the blocks just freed, so the file survives the
// failed append unchanged.
func (e *Engine) Append(name string, suffix []byte) error {
	slot, entry, found := e.dir.Find(name)
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	old := e.readEntry(entry)
	e.chains.ReleaseChain(entry.FirstBlock)
	e.dir.Invalidate(slot)

	content := make([]byte, 0, len(old)+len(suffix))
	content = append(content, old...)
	content = append(content, suffix...)

	err := e.Create(name, content)
	if errors.Is(err, ErrAllocationFailed) {
		// Restore can only fail on persistence: the released chain covers the
		// old content's blocks, and the invalidated slot leaves the directory
		// with room and no duplicate under name.
		if restoreErr := e.Create(name, old); restoreErr != nil {
			return fmt.Errorf("append failed and restore failed (%v): %w", restoreErr, err)
		}
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return err
}

// List returns every stored file sorted by name in ascending byte order. It
// does not mutate state.
func (e *Engine) List() []FileInfo {
	entries := e.dir.Valid()
	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		files = append(files, FileInfo{Name: entry.Name, Size: entry.Size})
	}
	slices.SortFunc(files, func(a, b FileInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return files
}

// Save persists the entire image buffer to the backing file.
func (e *Engine) Save() error {
	if err := e.img.Save(); err != nil {
		return fmt.Errorf("failed to persist volume: %w", err)
	}
	return nil
}

// Close performs a best-effort save. A save failure is returned so the caller
// can surface the potential data loss, but the engine is finished either way.
func (e *Engine) Close() error {
	return e.Save()
}

// Path returns the backing image file path.
func (e *Engine) Path() string {
	return e.img.Path()
}

// FreeBlocks returns the number of unallocated blocks.
func (e *Engine) FreeBlocks() int {
	return e.alloc.FreeCount()
}

// readEntry reads an entry's chain and truncates the result at the recorded
// size. The chain walk already stops at the first zero byte within each
// block; the recorded size bounds content whose final block carries no
// explicit terminator.
func (e *Engine) readEntry(entry directory.Entry) []byte {
	content := e.chains.ReadChain(entry.FirstBlock)
	if max := int(entry.Size) - 1; max >= 0 && len(content) > max {
		content = content[:max]
	}
	return content
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if len(name) > layout.MaxNameLen {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidName, name, layout.MaxNameLen)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}
	return nil
}
