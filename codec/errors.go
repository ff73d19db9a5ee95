package codec

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic handling of decode failures.
//
// The set is closed: every decode-time failure in this module surfaces as
// one of these four conditions. Callers should branch on Kind rather than
// matching error strings.
//
// Encoding and canonicalization never produce these; they are decode-only.
type Kind string

const (
	// KindInvalidInteger marks a malformed or non-canonical compact integer:
	// a value that fits a smaller length band than the one its first byte
	// declares, a big-band prefix declaring more than eight value bytes, or
	// a decoded value out of range for a 32-bit context.
	KindInvalidInteger Kind = "InvalidInteger"

	// KindUnexpectedEOF marks input that ran out before a structure's
	// declared fields were satisfied.
	KindUnexpectedEOF Kind = "UnexpectedEof"

	// KindUnknownVariant marks a tag outside a closed variant set, including
	// option flags and booleans with byte values above 1.
	KindUnknownVariant Kind = "UnknownVariant"

	// KindDepthExceeded marks a recursive type tree nested past the decoder's
	// fixed depth bound.
	KindDepthExceeded Kind = "DepthExceeded"
)

// Error is the structured decode error carried by every failure in the
// pipeline. Offset is the byte position in the input at which the condition
// was detected. Message is for humans; do not match on it.
type Error struct {
	Kind    Kind
	Offset  int
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s at byte %d: %s", e.Kind, e.Offset, e.Message)
}

// NewError constructs a decode error at the given input offset.
func NewError(kind Kind, offset int, msg string) *Error {
	return &Error{Kind: kind, Offset: offset, Message: msg}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
