package blobstore

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

var boltBucket = []byte("blobs")

// Bolt implements Store on a bbolt database file, one blob per key in a
// single bucket. It is useful when many tables should live in one file
// instead of one file each; bbolt's transactions give the atomic-replace
// guarantee for free.
type Bolt struct {
	db *bbolt.DB
}

// NewBolt opens (or creates) a bbolt database at path and prepares the blob
// bucket. The returned store owns the database handle; call Close when done.
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o666, nil)
	if err != nil {
		return nil, fmt.Errorf("blobstore: open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blobstore: create bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

// Close releases the underlying database file.
func (s *Bolt) Close() error {
	return s.db.Close()
}

// Exists reports whether the named blob is present.
func (s *Bolt) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		// Seek instead of Get: Get returns nil for zero-length values,
		// which would make empty blobs look missing.
		k, _ := tx.Bucket(boltBucket).Cursor().Seek([]byte(name))
		ok = string(k) == name
		return nil
	})
	return ok, err
}

// Read returns a copy of the stored blob.
func (s *Bolt) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		k, v := tx.Bucket(boltBucket).Cursor().Seek([]byte(name))
		if string(k) != name {
			return ErrNotFound
		}
		// Bolt values are only valid inside the transaction.
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write replaces the blob in a single write transaction.
func (s *Bolt) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(name), data)
	})
}

// Delete removes the blob. Deleting a missing blob is a no-op.
func (s *Bolt) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(name))
	})
}
