package storage

import (
	"errors"
	"fmt"
	"io"
)

var ErrNotExist = errors.New("blob does not exist")

// Storage defines the interface for blob storage operations. Blobs are
// raw bytes addressed by opaque keys; the metadata store holds the only
// back-reference to them.
type Storage interface {
	// Save streams r into a new blob named key and returns the blob's
	// resolved path, the value recorded on the file record.
	Save(key string, r io.Reader) (string, error)

	// Put writes data at an exact path, overwriting any prior blob there.
	// Used for derived variants, where last writer wins.
	Put(path string, data []byte) error

	// Open returns the blob's content for streaming. ErrNotExist when the
	// blob is absent.
	Open(path string) (io.ReadCloser, error)

	// Exists reports whether a blob is present at path.
	Exists(path string) bool

	// Delete removes a blob at path.
	Delete(path string) error

	// IsAlive reports whether the store is usable.
	IsAlive() bool
}

// VariantPath returns the conventional key for a derived variant of the
// blob at path, resized to the given target width.
func VariantPath(path string, width int) string {
	return fmt.Sprintf("%s_%d", path, width)
}
