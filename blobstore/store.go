package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist` so unwrapped filesystem errors satisfy it.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing whole named blobs.
//
// Condense persists each table as one blob and always reads and writes it in
// full, so the contract is deliberately coarse: no streaming, no range reads,
// no listing. Write must replace the previous content atomically, meaning a
// concurrent reader sees either the old bytes or the new bytes, never a mix.
// Implementations must be safe for concurrent use.
type Store interface {
	// Exists reports whether the named blob exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Read returns the full content of the named blob.
	// It returns ErrNotFound when the blob does not exist.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write atomically replaces the named blob with data, creating it if
	// needed.
	Write(ctx context.Context, name string, data []byte) error

	// Delete removes the named blob. Deleting a missing blob is not an
	// error.
	Delete(ctx context.Context, name string) error
}
