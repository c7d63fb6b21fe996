package buf

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"

	"github.com/joshuapare/reasset/pkg/types"
)

const minGrow = 256

// Cursor is a little-endian byte cursor over a read-only input or a growable
// output buffer.
//
// All offsets passed to or returned from a Cursor are relative to its base.
// A root cursor has base 0; Sub returns a view whose offset 0 is some
// absolute position in the same buffer, which is how embedded containers
// resolve their internal offsets.
//
// Reads return explicit errors. Writes are sticky: the first failure is
// recorded, later writes become no-ops, and Err reports it. Encoders check
// Err once at the end of a phase.
type Cursor struct {
	data     []byte
	base     int // absolute position of relative offset 0
	pos      int // absolute position
	end      int // readable length (reader) or high-water mark (writer)
	writable bool
	limit    int
	err      error
}

// NewReader returns a cursor reading data from offset 0.
func NewReader(data []byte) *Cursor {
	return &Cursor{data: data, end: len(data)}
}

// NewWriter returns an empty growable cursor. maxSize bounds the capacity the
// buffer may grow to; zero means types.DefaultMaxBufferSize.
func NewWriter(maxSize int) *Cursor {
	if maxSize <= 0 {
		maxSize = types.DefaultMaxBufferSize
	}
	return &Cursor{writable: true, limit: maxSize}
}

// Sub returns a reader whose offsets are relative to off. The sub-cursor
// shares the backing buffer and starts positioned at its own offset 0.
func (c *Cursor) Sub(off int) (*Cursor, error) {
	abs, ok := AddOverflowSafe(c.base, off)
	if off < 0 || !ok || abs > c.end {
		return nil, types.Errorf(types.ErrKindInvalidOffset,
			"sub-range at 0x%x outside buffer (size 0x%x)", off, c.end-c.base)
	}
	return &Cursor{data: c.data, base: abs, pos: abs, end: c.end, limit: c.limit}, nil
}

// Tell returns the current position relative to the base.
func (c *Cursor) Tell() int { return c.pos - c.base }

// Len returns the number of bytes addressable from the base.
func (c *Cursor) Len() int { return c.end - c.base }

// Bytes returns the written (or readable) bytes from the base to the end.
func (c *Cursor) Bytes() []byte { return c.data[c.base:c.end] }

// Err returns the first write error, if any.
func (c *Cursor) Err() error { return c.err }

// InBounds reports whether off addresses a byte inside the buffer.
func (c *Cursor) InBounds(off uint64) bool {
	return off < uint64(c.Len())
}

// Seek moves to off. Readers may not seek past the end; writers may, and the
// gap reads back as zero once written past.
func (c *Cursor) Seek(off int) error {
	if off < 0 || (!c.writable && off > c.Len()) {
		return types.Errorf(types.ErrKindInvalidOffset,
			"seek to 0x%x outside buffer (size 0x%x)", off, c.Len())
	}
	c.pos = c.base + off
	return nil
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) error {
	if !c.writable && c.pos+n > c.end {
		return truncated(c, n)
	}
	c.pos += n
	return nil
}

// Jump runs fn positioned at off and restores the previous position on
// return, whether or not fn fails.
func (c *Cursor) Jump(off int, fn func() error) error {
	saved := c.pos
	defer func() { c.pos = saved }()
	if err := c.Seek(off); err != nil {
		return err
	}
	return fn()
}

// JumpU64 is Jump for offsets read from 64-bit fields.
func (c *Cursor) JumpU64(off uint64, fn func() error) error {
	if off > uint64(c.Len()) {
		return types.Errorf(types.ErrKindInvalidOffset,
			"offset 0x%x outside buffer (size 0x%x)", off, c.Len())
	}
	return c.Jump(int(off), fn)
}

// Align moves to the next multiple of n relative to the base: readers skip,
// writers pad with zero bytes.
func (c *Cursor) Align(n int) error {
	pad := Padding(c.Tell(), n)
	if pad == 0 {
		return nil
	}
	if c.writable {
		c.WriteZeros(pad)
		return c.err
	}
	return c.Skip(pad)
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func truncated(c *Cursor, n int) error {
	return types.Errorf(types.ErrKindTruncated,
		"read %d bytes at 0x%x (size 0x%x)", n, c.Tell(), c.Len())
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos < c.base || c.pos+n > c.end {
		return nil, truncated(c, n)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadBytes returns a copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI8 reads a signed byte.
func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI16 reads a little-endian int16.
func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

// ReadU32 reads a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// ReadU64 reads a little-endian uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64 reads a little-endian int64.
func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadU64()
	return int64(v), err
}

// ReadF32 reads an IEEE-754 float32.
func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads an IEEE-754 float64.
func (c *Cursor) ReadF64() (float64, error) {
	v, err := c.ReadU64()
	return math.Float64frombits(v), err
}

// ReadGUID reads 16 raw bytes as a GUID.
func (c *Cursor) ReadGUID() (uuid.UUID, error) {
	var g uuid.UUID
	b, err := c.take(len(g))
	if err != nil {
		return g, err
	}
	copy(g[:], b)
	return g, nil
}

// ReadWString reads a NUL-terminated UTF-16LE string.
func (c *Cursor) ReadWString() (string, error) {
	start := c.pos
	for i := start; i+1 < c.end; i += 2 {
		if c.data[i] == 0 && c.data[i+1] == 0 {
			s, err := DecodeUTF16(c.data[start:i])
			if err != nil {
				return "", err
			}
			c.pos = i + 2
			return s, nil
		}
	}
	return "", types.Errorf(types.ErrKindTruncated, "unterminated UTF-16 string at 0x%x", c.Tell())
}

// ReadCString reads a NUL-terminated single-byte string.
func (c *Cursor) ReadCString() (string, error) {
	start := c.pos
	for i := start; i < c.end; i++ {
		if c.data[i] == 0 {
			s, err := DecodeSingleByte(c.data[start:i])
			if err != nil {
				return "", err
			}
			c.pos = i + 1
			return s, nil
		}
	}
	return "", types.Errorf(types.ErrKindTruncated, "unterminated string at 0x%x", c.Tell())
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

// room makes n bytes writable at the current position.
func (c *Cursor) room(n int) bool {
	if c.err != nil {
		return false
	}
	if !c.writable {
		c.err = types.Errorf(types.ErrKindInvalidOffset, "write on read-only cursor at 0x%x", c.Tell())
		return false
	}
	need, ok := AddOverflowSafe(c.pos, n)
	if !ok || need > c.limit {
		c.err = types.Errorf(types.ErrKindLimitExceeded,
			"buffer would grow to %d bytes (limit %d)", need, c.limit)
		return false
	}
	if need > len(c.data) {
		size := max(2*len(c.data), need, minGrow)
		size = min(size, c.limit)
		grown := make([]byte, size)
		copy(grown, c.data[:c.end])
		c.data = grown
	}
	if need > c.end {
		c.end = need
	}
	return true
}

// WriteBytes appends b at the current position.
func (c *Cursor) WriteBytes(b []byte) {
	if !c.room(len(b)) {
		return
	}
	c.pos += copy(c.data[c.pos:], b)
}

// WriteZeros writes n zero bytes.
func (c *Cursor) WriteZeros(n int) {
	if n <= 0 || !c.room(n) {
		return
	}
	clear(c.data[c.pos : c.pos+n])
	c.pos += n
}

// WriteU8 writes one byte.
func (c *Cursor) WriteU8(v uint8) {
	if !c.room(1) {
		return
	}
	c.data[c.pos] = v
	c.pos++
}

// WriteI8 writes a signed byte.
func (c *Cursor) WriteI8(v int8) { c.WriteU8(uint8(v)) }

// WriteU16 writes a little-endian uint16.
func (c *Cursor) WriteU16(v uint16) {
	if !c.room(2) {
		return
	}
	binary.LittleEndian.PutUint16(c.data[c.pos:], v)
	c.pos += 2
}

// WriteI16 writes a little-endian int16.
func (c *Cursor) WriteI16(v int16) { c.WriteU16(uint16(v)) }

// WriteU32 writes a little-endian uint32.
func (c *Cursor) WriteU32(v uint32) {
	if !c.room(4) {
		return
	}
	binary.LittleEndian.PutUint32(c.data[c.pos:], v)
	c.pos += 4
}

// WriteI32 writes a little-endian int32.
func (c *Cursor) WriteI32(v int32) { c.WriteU32(uint32(v)) }

// WriteU64 writes a little-endian uint64.
func (c *Cursor) WriteU64(v uint64) {
	if !c.room(8) {
		return
	}
	binary.LittleEndian.PutUint64(c.data[c.pos:], v)
	c.pos += 8
}

// WriteI64 writes a little-endian int64.
func (c *Cursor) WriteI64(v int64) { c.WriteU64(uint64(v)) }

// WriteF32 writes an IEEE-754 float32.
func (c *Cursor) WriteF32(v float32) { c.WriteU32(math.Float32bits(v)) }

// WriteF64 writes an IEEE-754 float64.
func (c *Cursor) WriteF64(v float64) { c.WriteU64(math.Float64bits(v)) }

// WriteGUID writes the 16 raw bytes of g.
func (c *Cursor) WriteGUID(g uuid.UUID) { c.WriteBytes(g[:]) }

// WriteWString writes s as NUL-terminated UTF-16LE.
func (c *Cursor) WriteWString(s string) {
	b, err := EncodeUTF16(s)
	if err != nil {
		c.fail(err)
		return
	}
	c.WriteBytes(b)
}

// WriteCString writes s as a NUL-terminated single-byte string.
func (c *Cursor) WriteCString(s string) {
	b, err := EncodeSingleByte(s)
	if err != nil {
		c.fail(err)
		return
	}
	c.WriteBytes(b)
}

// ReserveU64 writes a zero 64-bit placeholder and returns its offset, to be
// filled later with PatchU64At.
func (c *Cursor) ReserveU64() int {
	at := c.Tell()
	c.WriteU64(0)
	return at
}

func (c *Cursor) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// -----------------------------------------------------------------------------
// Patching
// -----------------------------------------------------------------------------

// patchSlot returns the n already-written bytes at off without moving the
// cursor.
func (c *Cursor) patchSlot(off, n int) []byte {
	if c.err != nil {
		return nil
	}
	abs := c.base + off
	if off < 0 || abs+n > c.end {
		c.fail(types.Errorf(types.ErrKindInvalidOffset,
			"patch of %d bytes at 0x%x beyond written data (0x%x)", n, off, c.Len()))
		return nil
	}
	return c.data[abs : abs+n]
}

// PatchU64At overwrites the uint64 at off.
func (c *Cursor) PatchU64At(off int, v uint64) {
	if s := c.patchSlot(off, 8); s != nil {
		binary.LittleEndian.PutUint64(s, v)
	}
}

// PatchI64At overwrites the int64 at off.
func (c *Cursor) PatchI64At(off int, v int64) { c.PatchU64At(off, uint64(v)) }

// PatchU32At overwrites the uint32 at off.
func (c *Cursor) PatchU32At(off int, v uint32) {
	if s := c.patchSlot(off, 4); s != nil {
		binary.LittleEndian.PutUint32(s, v)
	}
}

// PatchI32At overwrites the int32 at off.
func (c *Cursor) PatchI32At(off int, v int32) { c.PatchU32At(off, uint32(v)) }

// PatchU16At overwrites the uint16 at off.
func (c *Cursor) PatchU16At(off int, v uint16) {
	if s := c.patchSlot(off, 2); s != nil {
		binary.LittleEndian.PutUint16(s, v)
	}
}

// PatchHere fills the 64-bit placeholder at off with the current position.
func (c *Cursor) PatchHere(off int) {
	c.PatchU64At(off, uint64(c.Tell()))
}
