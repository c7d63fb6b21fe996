// Package strhash computes the 32-bit name hashes stored beside every
// variable, texture and parameter name.
//
// The algorithm is MurmurHash3 (x86, 32-bit) with a fixed seed of 0xffffffff:
//
//	h := strhash.UTF16("BaseColorMap") // hash of the UTF-16LE bytes
//	a := strhash.ASCII("BaseColorMap") // legacy single-byte hash
//
// The constants are part of the file formats and must never change.
package strhash

import (
	"encoding/binary"
	"math/bits"

	"github.com/joshuapare/reasset/internal/buf"
)

const (
	seed = 0xffffffff
	c1   = 0xcc9e2d51
	c2   = 0x1b873593
)

// Sum32 hashes b.
func Sum32(b []byte) uint32 {
	h := uint32(seed)
	n := len(b)

	blocks := n &^ 3
	for i := 0; i < blocks; i += 4 {
		k := binary.LittleEndian.Uint32(b[i:])
		h ^= mixK(k)
		h = bits.RotateLeft32(h, 13)
		h = h*5 + 0xe6546b64
	}

	// 1-3 byte tail: mixed into h without the block rotation
	var k uint32
	switch tail := b[blocks:]; len(tail) {
	case 3:
		k |= uint32(tail[2]) << 16
		fallthrough
	case 2:
		k |= uint32(tail[1]) << 8
		fallthrough
	case 1:
		k |= uint32(tail[0])
		h ^= mixK(k)
	}

	h ^= uint32(n)
	return fmix(h)
}

func mixK(k uint32) uint32 {
	k *= c1
	k = bits.RotateLeft32(k, 15)
	return k * c2
}

func fmix(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// UTF16 hashes the UTF-16LE encoding of s. This is the hash used for
// variable names, texture types and parameter names.
// Invalid UTF-8 hashes as U+FFFD.
func UTF16(s string) uint32 {
	b, err := buf.UTF16Bytes(s)
	if err != nil {
		return Sum32(nil)
	}
	return Sum32(b)
}

// ASCII hashes the ASCII bytes of s. Non-ASCII runes are dropped before
// hashing, so "é" hashes like the empty string.
func ASCII(s string) uint32 {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			b = append(b, byte(r))
		}
	}
	return Sum32(b)
}
