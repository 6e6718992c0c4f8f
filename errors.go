package condense

import (
	"errors"
	"fmt"

	"github.com/lambdacasserole/condense/crypt"
	"github.com/lambdacasserole/condense/relation"
)

// Sentinel errors surfaced by Table operations. The collaborator packages
// define their own sentinels; the aliases below re-export them so callers can
// match everything with errors.Is against this package alone.
var (
	// ErrCorruptData is returned by Load when the stored blob cannot be
	// decoded back into a table. The codec's underlying error is wrapped and
	// available via errors.Unwrap.
	ErrCorruptData = errors.New("corrupt data")

	// ErrDecryption is returned by Load on a keyed table when the blob fails
	// authentication: wrong key, truncation or tampering. The failure mode is
	// deliberately indistinguishable.
	ErrDecryption = crypt.ErrDecryption

	// ErrNotFound is returned by First and Last when the projected result is
	// empty. A query that merely matches no rows is not an error.
	ErrNotFound = relation.ErrNotFound

	// ErrInvalidMatchSpec is returned by Join when the match key is empty or
	// malformed.
	ErrInvalidMatchSpec = relation.ErrInvalidMatchSpec

	// ErrBadPattern is returned by Like when the pattern does not compile.
	ErrBadPattern = relation.ErrBadPattern

	// ErrIndexOutOfRange is returned by Remove and Update when the index does
	// not name an existing row. Use errors.As with *IndexOutOfRangeError to
	// recover the offending index and the table length.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// IndexOutOfRangeError reports a mutating call with an invalid row index.
//
// It unwraps to ErrIndexOutOfRange.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for table of %d rows", e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

func checkIndex(index, n int) error {
	if index < 0 || index >= n {
		return &IndexOutOfRangeError{Index: index, Len: n}
	}
	return nil
}
