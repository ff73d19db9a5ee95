package storage

import "errors"

var (
	// ErrNotFound reports a CID or trait ref with no stored object behind it.
	ErrNotFound   = errors.New("storage: not found")
	ErrInvalidCID = errors.New("storage: invalid cid")
	// ErrCIDMismatch reports fetched bytes that do not hash to the requested CID.
	ErrCIDMismatch = errors.New("storage: cid mismatch")
	// ErrImmutable reports an attempt to overwrite stored content or to
	// rebind a trait ref to a different CID.
	ErrImmutable = errors.New("storage: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
