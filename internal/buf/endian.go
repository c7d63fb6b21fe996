// Package buf contains the byte cursor used by the asset codecs together with
// bounds, alignment and endian helpers.
package buf

import "encoding/binary"

// PeekU16 reads a little-endian uint16 at off without a cursor.
// ok is false when the read would leave b.
func PeekU16(b []byte, off int) (uint16, bool) {
	s, ok := Slice(b, off, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(s), true
}

// PeekU32 reads a little-endian uint32 at off without a cursor.
func PeekU32(b []byte, off int) (uint32, bool) {
	s, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(s), true
}

// PeekU64 reads a little-endian uint64 at off without a cursor.
func PeekU64(b []byte, off int) (uint64, bool) {
	s, ok := Slice(b, off, 8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(s), true
}
