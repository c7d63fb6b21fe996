// Package uvar reads and writes variable containers (.uvar files).
//
// # Overview
//
// A variable container is a flat little-endian buffer holding typed,
// named variables. Every variable-length field is reached through a 64-bit
// offset, so decoding jumps around the buffer and encoding writes fixed-size
// records first and patches their offsets once the payloads are placed.
//
// A container may embed further containers. An embed's offsets are relative
// to its own first byte, which lets it be cut out of (or pasted into) a
// parent without rewriting anything inside it.
//
// # Layout
//
//	header        revision, magic 'uvar', region offsets, name hash, counts
//	records       48 bytes per variable: GUID, name/value/expression offsets,
//	              type word, name hash
//	values        one per variable, each padded to 4 bytes
//	expressions   optional node graphs, 16-byte aligned
//	strings       display name, then every variable name (UTF-16LE)
//	embeds        offset table, then each embedded container on a 16-byte boundary
//	hash index    variables sorted by GUID and by name hash, with their indices
//
// # Reading and Writing
//
//	c, err := uvar.Decode(data, nil)
//	if err != nil {
//	    return err
//	}
//	v := c.AddVariable("Health", uvar.KindFloat32, 0)
//	v.Value.Floats[0] = 100
//	out, err := uvar.Encode(c, nil)
//
// Encode recomputes every name hash and rebuilds the hash index of the
// container tree before writing, so a caller never needs to call
// RecomputeHashes or RebuildIndex itself.
//
// # Values
//
// The type word of a variable selects its wire encoding. Its low 24 bits are
// the Kind; the top byte holds flags. FlagVector3 turns a numeric scalar
// into a fixed three-element vector:
//
//	KindFloat32                -> Floats[0]
//	KindFloat32 | FlagVector3  -> Floats[0:3]
//	KindInt16   | FlagVector3  -> Ints[0:3]
//
// Each (Kind, vector) pair maps to exactly one codec in a static table;
// pairs without a codec are rejected with types.ErrUnsupportedType.
//
// # Errors
//
// Decoding is all-or-nothing. Failures carry a types.ErrKind and match the
// sentinels in pkg/types:
//
//	if errors.Is(err, types.ErrLimitExceeded) {
//	    // more variables than Options.Limits.MaxVariables
//	}
package uvar
