package relation

import "errors"

var (
	// ErrNotFound is returned by First and Last when the projected result is
	// empty. A query that merely matches no rows is not an error; it returns
	// an empty Table.
	ErrNotFound = errors.New("not found")

	// ErrInvalidMatchSpec is returned when a join is given an empty or
	// malformed match key.
	ErrInvalidMatchSpec = errors.New("invalid match specification")

	// ErrBadPattern is returned when Like is given a pattern that does not
	// compile.
	ErrBadPattern = errors.New("bad pattern")
)
