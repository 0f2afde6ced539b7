package cache

import (
	"fmt"

	"go.trai.ch/zerr"
)

var (
	// ErrOpen is returned when a store cannot be opened: the directory cannot
	// be created, the file is locked by another handle, or it does not exist
	// and Options.MustExist is set.
	ErrOpen = zerr.New("cache: open failed")

	// ErrCodec is returned when a key or value cannot be encoded or decoded.
	ErrCodec = zerr.New("cache: codec failure")

	// ErrIO is returned when the underlying database fails a read or write.
	ErrIO = zerr.New("cache: io failure")

	// ErrClosed is returned when opening through a registry that was shut down.
	ErrClosed = zerr.New("cache: registry closed")
)

// fail tags cause with kind so callers can match it with errors.Is, and
// attaches the store path as metadata.
func fail(kind, cause error, path string) error {
	return zerr.With(fmt.Errorf("%w: %w", kind, cause), "path", path)
}
