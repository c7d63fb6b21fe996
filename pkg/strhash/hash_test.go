package strhash

import (
	"testing"

	"github.com/joshuapare/reasset/internal/buf"
)

func TestSum32(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected uint32
	}{
		{"empty", "", 0x81f16f39},
		{"one byte tail", "a", 0x2a684527},
		{"two byte tail", "ab", 0xaf7dbde5},
		{"three byte tail", "abc", 0xfc80c2af},
		{"one block", "abcd", 0x2b7dc558},
		{"block and tail", "abcde", 0x894c6b74},
		{"utf-8 bytes", "é", 0xedc73709},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sum32([]byte(tt.input)); got != tt.expected {
				t.Errorf("Sum32(%q) = 0x%08x, want 0x%08x", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUTF16(t *testing.T) {
	tests := []struct {
		input    string
		expected uint32
	}{
		{"", 0x81f16f39},
		{"a", 0x7bfa8451},
		{"ab", 0x21732543},
		{"abcde", 0xfe1e2c38},
		{"TestVar", 0x46354d3b},
		{"layercolor_red", 0xc4f867a5},
		{"BaseColorMap", 0x8ed9fa26},
		{"é", 0xee577209},
	}

	for _, tt := range tests {
		if got := UTF16(tt.input); got != tt.expected {
			t.Errorf("UTF16(%q) = 0x%08x, want 0x%08x", tt.input, got, tt.expected)
		}
	}
}

func TestUTF16MatchesStoredEncoding(t *testing.T) {
	for _, s := range []string{"", "TestVar", "Überschrift", "\U0001D11E clef", "名前"} {
		b, err := buf.UTF16Bytes(s)
		if err != nil {
			t.Fatalf("UTF16Bytes(%q): %v", s, err)
		}
		if got, want := UTF16(s), Sum32(b); got != want {
			t.Errorf("UTF16(%q) = 0x%08x, want 0x%08x", s, got, want)
		}
	}
	// a surrogate pair is four bytes
	if b, _ := buf.UTF16Bytes("\U0001D11E"); len(b) != 4 {
		t.Errorf("surrogate pair encoded to %d bytes", len(b))
	}
	if UTF16("a\xffb") != UTF16("a\uFFFDb") {
		t.Errorf("invalid UTF-8 should hash as U+FFFD")
	}
}

func TestASCII(t *testing.T) {
	if got := ASCII("BaseColorMap"); got != 0x430a1fc4 {
		t.Errorf("ASCII(BaseColorMap) = 0x%08x", got)
	}
	if got := ASCII("TestVar"); got != 0xd8c46428 {
		t.Errorf("ASCII(TestVar) = 0x%08x", got)
	}
	// non-ASCII runes are dropped
	if ASCII("é") != ASCII("") {
		t.Errorf("ASCII should ignore non-ASCII runes")
	}
	if ASCII("aéb") != ASCII("ab") {
		t.Errorf("ASCII should ignore embedded non-ASCII runes")
	}
}

func BenchmarkUTF16(b *testing.B) {
	for range b.N {
		_ = UTF16("layercolor_red")
	}
}
