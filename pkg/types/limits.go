package types

// ============================================================================
// Container Limits Constants
// ============================================================================

const (
	// DefaultMaxVariables bounds the variable count of a single container.
	// The on-disk count is a signed 16-bit field, so anything larger than
	// this is treated as corruption rather than truncated.
	DefaultMaxVariables = 0x4000

	// AbsoluteMaxVariables is the largest count the header field can carry.
	AbsoluteMaxVariables = 0x7FFF

	// StrictMaxVariables is a conservative bound for untrusted input.
	StrictMaxVariables = 1024

	// DefaultMaxBufferSize caps how large an encode buffer may grow (256 MB).
	DefaultMaxBufferSize = 256 << 20

	// StrictMaxBufferSize is a conservative buffer cap (16 MB).
	StrictMaxBufferSize = 16 << 20

	// DefaultMaxEmbedDepth bounds recursion through nested containers.
	DefaultMaxEmbedDepth = 32

	// StrictMaxEmbedDepth is a conservative nesting bound.
	StrictMaxEmbedDepth = 4
)

// Limits defines constraints applied while decoding and encoding to prevent
// resource exhaustion on malformed input.
type Limits struct {
	// MaxVariables is the maximum number of variables in one container.
	// A header count above it is a hard LimitExceeded failure; a count
	// equal to it is accepted.
	MaxVariables int

	// MaxBufferSize is the largest capacity an encode cursor may grow to.
	MaxBufferSize int

	// MaxEmbedDepth is the maximum nesting of embedded containers.
	MaxEmbedDepth int
}

// DefaultLimits returns the limits used when callers pass none.
func DefaultLimits() Limits {
	return Limits{
		MaxVariables:  DefaultMaxVariables,
		MaxBufferSize: DefaultMaxBufferSize,
		MaxEmbedDepth: DefaultMaxEmbedDepth,
	}
}

// RelaxedLimits allows the full range of the on-disk count fields.
func RelaxedLimits() Limits {
	return Limits{
		MaxVariables:  AbsoluteMaxVariables,
		MaxBufferSize: DefaultMaxBufferSize,
		MaxEmbedDepth: DefaultMaxEmbedDepth,
	}
}

// StrictLimits returns conservative limits for untrusted buffers.
func StrictLimits() Limits {
	return Limits{
		MaxVariables:  StrictMaxVariables,
		MaxBufferSize: StrictMaxBufferSize,
		MaxEmbedDepth: StrictMaxEmbedDepth,
	}
}

// WithDefaults fills zero fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxVariables <= 0 {
		l.MaxVariables = d.MaxVariables
	}
	if l.MaxBufferSize <= 0 {
		l.MaxBufferSize = d.MaxBufferSize
	}
	if l.MaxEmbedDepth <= 0 {
		l.MaxEmbedDepth = d.MaxEmbedDepth
	}
	return l
}
