// ABOUTME: Latin-1 text codec and filename helpers shared by schema and fxp
// ABOUTME: Patch archives predate Unicode; some people put weird things in their files
package util

import (
	"regexp"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var nonWord = regexp.MustCompile(`\W+`)

// EncodeLatin1 converts a UTF-8 string to Latin-1 bytes. Runes outside the
// Latin-1 range are replaced rather than failing the write.
func EncodeLatin1(s string) []byte {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported never returns an error for Latin-1.
		return []byte(s)
	}
	return b
}

// DecodeLatin1 converts Latin-1 bytes to a UTF-8 string. Every byte maps to
// a rune, so decoding is best-effort by construction.
func DecodeLatin1(b []byte) string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// SanitizeFileName strips characters unsuitable for a filename, leaving only
// word characters.
func SanitizeFileName(name string) string {
	return nonWord.ReplaceAllString(name, "")
}
