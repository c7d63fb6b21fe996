package buf

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/reasset/pkg/types"
)

// Names and string values are stored as UTF-16LE without a byte-order mark.
// Node names and 8-bit string values use a single-byte code page; Latin-1
// maps every byte to a rune and back, so decode/encode is lossless.
var (
	utf16LE    = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	singleByte = charmap.ISO8859_1
)

// UTF16Bytes returns the UTF-16LE encoding of s without a terminator.
func UTF16Bytes(s string) ([]byte, error) {
	b, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindUnsupportedType, Msg: "encode UTF-16 string", Err: err}
	}
	return b, nil
}

// EncodeUTF16 returns s as UTF-16LE followed by a two-byte NUL terminator.
func EncodeUTF16(s string) ([]byte, error) {
	b, err := UTF16Bytes(s)
	if err != nil {
		return nil, err
	}
	return append(b, 0, 0), nil
}

// DecodeUTF16 converts UTF-16LE bytes (without terminator) to a string.
func DecodeUTF16(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := utf16LE.NewDecoder().Bytes(b)
	if err != nil {
		return "", &types.Error{Kind: types.ErrKindUnsupportedType, Msg: "decode UTF-16 string", Err: err}
	}
	return string(out), nil
}

// EncodeSingleByte returns s in the single-byte code page followed by NUL.
// Runes outside the code page are an UnsupportedType error.
func EncodeSingleByte(s string) ([]byte, error) {
	b, err := singleByte.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindUnsupportedType, Msg: "encode single-byte string", Err: err}
	}
	return append(b, 0), nil
}

// DecodeSingleByte converts single-byte code page bytes to a string.
func DecodeSingleByte(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := singleByte.NewDecoder().Bytes(b)
	if err != nil {
		return "", &types.Error{Kind: types.ErrKindUnsupportedType, Msg: "decode single-byte string", Err: err}
	}
	return string(out), nil
}
