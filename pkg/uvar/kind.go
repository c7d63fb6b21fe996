package uvar

import "fmt"

// Magic is the container signature, "uvar" read as a little-endian uint32.
const Magic uint32 = 0x72617675

// DefaultRevision is the revision written for new containers. Revisions
// below 3 carry an extra 64-bit header field.
const DefaultRevision uint32 = 3

// Kind is the 24-bit type tag of a variable.
type Kind uint32

const (
	KindUnknown Kind = iota
	KindEnum
	KindBool
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindC8
	KindC16
	KindString
	KindTrigger
	KindVec2
	KindVec3
	KindVec4
	KindMat4
	KindGUID

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown: "unknown",
	KindEnum:    "enum",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindUint8:   "uint8",
	KindInt16:   "int16",
	KindUint16:  "uint16",
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindC8:      "c8",
	KindC16:     "c16",
	KindString:  "string",
	KindTrigger: "trigger",
	KindVec2:    "vec2",
	KindVec3:    "vec3",
	KindVec4:    "vec4",
	KindMat4:    "mat4",
	KindGUID:    "guid",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// ParseKind returns the Kind named s, as printed by Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return KindUnknown, false
}

// FlagVector3 marks a numeric kind as a fixed three-element vector.
const FlagVector3 uint8 = 0x40

const (
	kindMask  = 0xFFFFFF
	flagShift = 24
)

func splitTypeWord(w uint32) (Kind, uint8) {
	return Kind(w & kindMask), uint8(w >> flagShift)
}

func typeWord(k Kind, flags uint8) uint32 {
	return uint32(k)&kindMask | uint32(flags)<<flagShift
}
