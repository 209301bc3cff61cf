// Package sanitize cleans text before it crosses a serialization boundary
// (cache write, terminal render, export).
package sanitize

import (
	"strings"
	"unicode/utf8"
)

// Replacement is written in place of every invalid code point.
const Replacement = "\uFFFD"

// String returns s with every invalid UTF-8 sequence replaced by U+FFFD.
//
// A lone surrogate (U+D800–U+DFFF) encoded as three bytes by a WTF-8 or
// CESU-8 writer becomes a single replacement; any other invalid byte is
// replaced one for one. Valid input is returned unchanged, so String is
// idempotent.
func String(s string) string {
	if s == "" || utf8.ValidString(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != utf8.RuneError || size > 1 {
			b.WriteString(s[i : i+size])
			i += size
			continue
		}
		if n := surrogateLen(s[i:]); n > 0 {
			b.WriteString(Replacement)
			i += n
			continue
		}
		b.WriteString(Replacement)
		i++
	}
	return b.String()
}

// Valid reports whether s encodes cleanly as UTF-8.
func Valid(s string) bool {
	return utf8.ValidString(s)
}

// Bytes is String for byte slices.
func Bytes(p []byte) []byte {
	if utf8.Valid(p) {
		return p
	}
	return []byte(String(string(p)))
}

// surrogateLen returns 3 when s starts with the generalized UTF-8 encoding
// of a surrogate code point (ED A0..BF 80..BF), else 0.
func surrogateLen(s string) int {
	if len(s) < 3 || s[0] != 0xED {
		return 0
	}
	if s[1] < 0xA0 || s[1] > 0xBF {
		return 0
	}
	if s[2] < 0x80 || s[2] > 0xBF {
		return 0
	}
	return 3
}
