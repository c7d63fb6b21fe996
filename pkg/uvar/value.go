package uvar

import (
	"github.com/google/uuid"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/pkg/types"
)

// Value is the payload of a variable. Which slot is meaningful depends on
// Kind and Vector:
//
//	KindBool                       Bool
//	KindEnum, signed integers      Ints (1 element, 3 when Vector)
//	unsigned integers              Uints (1 element, 3 when Vector)
//	KindFloat32, KindFloat64       Floats (1 element, 3 when Vector)
//	KindVec2/Vec3/Vec4/Mat4        Floats (2, 3, 4, 16 elements, row-major)
//	KindC8, KindC16, KindString    Str
//	KindGUID                       GUID
//	KindTrigger, KindUnknown       nothing
//
// Missing slice elements encode as zero.
type Value struct {
	Kind   Kind
	Vector bool
	Bool   bool
	Ints   []int64
	Uints  []uint64
	Floats []float64
	Str    string
	GUID   uuid.UUID
}

// Len returns the number of elements the value carries on the wire for
// numeric kinds, and 1 otherwise.
func (v Value) Len() int {
	return elementCount(v.Kind, v.Vector)
}

func elementCount(k Kind, vector bool) int {
	switch k {
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4:
		return 4
	case KindMat4:
		return 16
	}
	if vector {
		return 3
	}
	return 1
}

// ZeroValue returns the default value for a kind, with every element
// present and zero.
func ZeroValue(k Kind, vector bool) Value {
	v := Value{Kind: k, Vector: vector}
	n := elementCount(k, vector)
	switch k {
	case KindEnum, KindInt8, KindInt16, KindInt32, KindInt64:
		v.Ints = make([]int64, n)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		v.Uints = make([]uint64, n)
	case KindFloat32, KindFloat64, KindVec2, KindVec3, KindVec4, KindMat4:
		v.Floats = make([]float64, n)
	}
	return v
}

// Interface returns the value as a plain Go value for display and
// serialization: bool, string, uuid.UUID, a number, a slice of numbers, or
// nil.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindC8, KindC16, KindString:
		return v.Str
	case KindGUID:
		return v.GUID
	case KindTrigger, KindUnknown:
		return nil
	}
	scalar := !v.Vector && v.Len() == 1
	switch {
	case v.Ints != nil:
		if scalar {
			return at(v.Ints, 0)
		}
		return v.Ints
	case v.Uints != nil:
		if scalar {
			return at(v.Uints, 0)
		}
		return v.Uints
	case v.Floats != nil:
		if scalar {
			return at(v.Floats, 0)
		}
		return v.Floats
	}
	return nil
}

func at[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}

// -----------------------------------------------------------------------------
// Dispatch table
// -----------------------------------------------------------------------------

type codec struct {
	decode func(c *buf.Cursor, v *Value) error
	encode func(c *buf.Cursor, v *Value)
}

func (cd codec) ok() bool { return cd.decode != nil }

const (
	plain  = 0
	vector = 1
)

// codecs is indexed by [kind][vector].
var codecs = [kindCount][2]codec{
	KindEnum:    {plain: ints(4, 1)},
	KindBool:    {plain: boolCodec},
	KindInt8:    {plain: ints(1, 1), vector: ints(1, 3)},
	KindUint8:   {plain: uints(1, 1), vector: uints(1, 3)},
	KindInt16:   {plain: ints(2, 1), vector: ints(2, 3)},
	KindUint16:  {plain: uints(2, 1), vector: uints(2, 3)},
	KindInt32:   {plain: ints(4, 1), vector: ints(4, 3)},
	KindUint32:  {plain: uints(4, 1), vector: uints(4, 3)},
	KindInt64:   {plain: ints(8, 1), vector: ints(8, 3)},
	KindUint64:  {plain: uints(8, 1), vector: uints(8, 3)},
	KindFloat32: {plain: floats(4, 1), vector: floats(4, 3)},
	KindFloat64: {plain: floats(8, 1), vector: floats(8, 3)},
	KindC8:      {plain: c8Codec},
	KindC16:     {plain: c16Codec},
	KindString:  {plain: stringCodec},
	KindTrigger: {plain: triggerCodec},
	KindVec2:    {plain: floats(4, 2)},
	KindVec3:    {plain: floats(4, 3)},
	KindVec4:    {plain: floats(4, 4)},
	KindMat4:    {plain: floats(4, 16)},
	KindGUID:    {plain: guidCodec},
}

func lookupCodec(k Kind, vec bool) (codec, error) {
	if k < kindCount {
		i := plain
		if vec {
			i = vector
		}
		if cd := codecs[k][i]; cd.ok() {
			return cd, nil
		}
	}
	if vec {
		return codec{}, types.Errorf(types.ErrKindUnsupportedType, "no encoding for %s vector value", k)
	}
	return codec{}, types.Errorf(types.ErrKindUnsupportedType, "no encoding for %s value", k)
}

func ints(width, n int) codec {
	return codec{
		decode: func(c *buf.Cursor, v *Value) error {
			v.Ints = make([]int64, n)
			for i := range v.Ints {
				x, err := readInt(c, width)
				if err != nil {
					return err
				}
				v.Ints[i] = x
			}
			return nil
		},
		encode: func(c *buf.Cursor, v *Value) {
			for i := range n {
				writeInt(c, width, at(v.Ints, i))
			}
		},
	}
}

func uints(width, n int) codec {
	return codec{
		decode: func(c *buf.Cursor, v *Value) error {
			v.Uints = make([]uint64, n)
			for i := range v.Uints {
				x, err := readUint(c, width)
				if err != nil {
					return err
				}
				v.Uints[i] = x
			}
			return nil
		},
		encode: func(c *buf.Cursor, v *Value) {
			for i := range n {
				writeUint(c, width, at(v.Uints, i))
			}
		},
	}
}

func floats(width, n int) codec {
	return codec{
		decode: func(c *buf.Cursor, v *Value) error {
			v.Floats = make([]float64, n)
			for i := range v.Floats {
				var x float64
				if width == 8 {
					f, err := c.ReadF64()
					if err != nil {
						return err
					}
					x = f
				} else {
					f, err := c.ReadF32()
					if err != nil {
						return err
					}
					x = float64(f)
				}
				v.Floats[i] = x
			}
			return nil
		},
		encode: func(c *buf.Cursor, v *Value) {
			for i := range n {
				if width == 8 {
					c.WriteF64(at(v.Floats, i))
				} else {
					c.WriteF32(float32(at(v.Floats, i)))
				}
			}
		},
	}
}

func readInt(c *buf.Cursor, width int) (int64, error) {
	switch width {
	case 1:
		x, err := c.ReadI8()
		return int64(x), err
	case 2:
		x, err := c.ReadI16()
		return int64(x), err
	case 4:
		x, err := c.ReadI32()
		return int64(x), err
	default:
		return c.ReadI64()
	}
}

func writeInt(c *buf.Cursor, width int, x int64) {
	switch width {
	case 1:
		c.WriteI8(int8(x))
	case 2:
		c.WriteI16(int16(x))
	case 4:
		c.WriteI32(int32(x))
	default:
		c.WriteI64(x)
	}
}

func readUint(c *buf.Cursor, width int) (uint64, error) {
	switch width {
	case 1:
		x, err := c.ReadU8()
		return uint64(x), err
	case 2:
		x, err := c.ReadU16()
		return uint64(x), err
	case 4:
		x, err := c.ReadU32()
		return uint64(x), err
	default:
		return c.ReadU64()
	}
}

func writeUint(c *buf.Cursor, width int, x uint64) {
	switch width {
	case 1:
		c.WriteU8(uint8(x))
	case 2:
		c.WriteU16(uint16(x))
	case 4:
		c.WriteU32(uint32(x))
	default:
		c.WriteU64(x)
	}
}

var boolCodec = codec{
	decode: func(c *buf.Cursor, v *Value) error {
		b, err := c.ReadU8()
		v.Bool = b != 0
		return err
	},
	encode: func(c *buf.Cursor, v *Value) {
		if v.Bool {
			c.WriteU8(1)
		} else {
			c.WriteU8(0)
		}
	},
}

// C8 and C16 values are an offset to the string, which encode places
// directly after the offset itself.
func indirectString(read func(c *buf.Cursor) (string, error), write func(c *buf.Cursor, s string)) codec {
	return codec{
		decode: func(c *buf.Cursor, v *Value) error {
			off, err := c.ReadU64()
			if err != nil {
				return err
			}
			if off == 0 {
				return types.Errorf(types.ErrKindInvalidOffset, "string value at 0x%x has a zero offset", c.Tell()-8)
			}
			return c.JumpU64(off, func() error {
				s, err := read(c)
				v.Str = s
				return err
			})
		},
		encode: func(c *buf.Cursor, v *Value) {
			c.WriteU64(uint64(c.Tell() + 8))
			write(c, v.Str)
		},
	}
}

var (
	c8Codec  = indirectString((*buf.Cursor).ReadCString, (*buf.Cursor).WriteCString)
	c16Codec = indirectString((*buf.Cursor).ReadWString, (*buf.Cursor).WriteWString)
)

var stringCodec = codec{
	decode: func(c *buf.Cursor, v *Value) error {
		s, err := c.ReadWString()
		v.Str = s
		return err
	},
	encode: func(c *buf.Cursor, v *Value) { c.WriteWString(v.Str) },
}

var triggerCodec = codec{
	decode: func(*buf.Cursor, *Value) error { return nil },
	encode: func(*buf.Cursor, *Value) {},
}

var guidCodec = codec{
	decode: func(c *buf.Cursor, v *Value) error {
		g, err := c.ReadGUID()
		v.GUID = g
		return err
	},
	encode: func(c *buf.Cursor, v *Value) { c.WriteGUID(v.GUID) },
}

func decodeValue(c *buf.Cursor, k Kind, vec bool) (Value, error) {
	cd, err := lookupCodec(k, vec)
	if err != nil {
		return Value{}, err
	}
	v := Value{Kind: k, Vector: vec}
	if err := cd.decode(c, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}
