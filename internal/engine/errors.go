package engine

import (
	"errors"

	"github.com/flatvol/go-flatvol/internal/chain"
	"github.com/flatvol/go-flatvol/internal/freelist"
)

var (
	// ErrExists is returned by Create when a valid entry already carries the
	// requested name.
	ErrExists = errors.New("file already exists")

	// ErrNotFound is returned when no valid entry carries the requested name.
	ErrNotFound = errors.New("file not found")

	// ErrDirectoryFull is returned by Create when every directory slot is
	// occupied.
	ErrDirectoryFull = errors.New("directory is full")

	// ErrInvalidName is returned when a file name is empty, too long, or
	// contains a NUL byte.
	ErrInvalidName = errors.New("invalid file name")

	// ErrExhausted is the allocator's no-free-blocks condition, re-exported
	// so callers need not import the allocator package.
	ErrExhausted = freelist.ErrExhausted

	// ErrAllocationFailed is the chain writer's mid-operation shortfall. The
	// write has already rolled back every block it reserved.
	ErrAllocationFailed = chain.ErrAllocationFailed
)
