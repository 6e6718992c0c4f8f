// Package blobstore provides the storage abstraction condense tables persist
// through.
//
// Store is the interface for reading and writing whole named blobs: one blob
// per table, always read and written in full. Implementations must be safe
// for concurrent use.
//
// # Built-in Implementations
//
//   - Local: one file per blob on the local filesystem, replaced atomically
//   - Memory: in-process map, for tests and ephemeral tables
//   - Bolt: blobs as values in a single bbolt bucket, many tables per file
//   - Throttled: wraps another Store with a byte-rate limit
//   - minio.Store: MinIO and S3-compatible object storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Exists(ctx, name) (bool, error)
//	    Read(ctx, name) ([]byte, error)    // ErrNotFound when missing
//	    Write(ctx, name, data) error       // atomic replace
//	    Delete(ctx, name) error            // missing blob is not an error
//	}
package blobstore
