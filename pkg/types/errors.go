package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindBadMagic        ErrKind = iota // wrong format signature
	ErrKindTruncated                      // read past the end of the buffer
	ErrKindUnsupportedType                // type tag with no codec
	ErrKindLimitExceeded                  // count or capacity over a configured bound
	ErrKindInvalidOffset                  // indirect offset outside the buffer or zero where required
	ErrKindInvalidGraph                   // relation to a missing node, or a self relation
)

// String returns a short lowercase name for the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindBadMagic:
		return "bad magic"
	case ErrKindTruncated:
		return "truncated"
	case ErrKindUnsupportedType:
		return "unsupported type"
	case ErrKindLimitExceeded:
		return "limit exceeded"
	case ErrKindInvalidOffset:
		return "invalid offset"
	case ErrKindInvalidGraph:
		return "invalid graph"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. This lets the
// sentinels below match errors built with Errorf.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Sentinels commonly returned by implementations.
var (
	// ErrBadMagic indicates the buffer does not carry the expected signature.
	ErrBadMagic = &Error{Kind: ErrKindBadMagic, Msg: "bad magic"}
	// ErrTruncated indicates a read past the end of the buffer.
	ErrTruncated = &Error{Kind: ErrKindTruncated, Msg: "truncated buffer"}
	// ErrUnsupportedType indicates a type tag that has no codec.
	ErrUnsupportedType = &Error{Kind: ErrKindUnsupportedType, Msg: "unsupported type"}
	// ErrLimitExceeded indicates a count or capacity above its configured maximum.
	ErrLimitExceeded = &Error{Kind: ErrKindLimitExceeded, Msg: "limit exceeded"}
	// ErrInvalidOffset indicates an indirect offset that cannot be followed.
	ErrInvalidOffset = &Error{Kind: ErrKindInvalidOffset, Msg: "invalid offset"}
	// ErrInvalidGraph indicates an expression relation that breaks graph invariants.
	ErrInvalidGraph = &Error{Kind: ErrKindInvalidGraph, Msg: "invalid expression graph"}
)
