// Package fingerprint reduces raw SQL text to a canonical pattern so that
// queries differing only in literal values group together.
package fingerprint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	// A quoted literal may contain backslash-escaped characters, newlines
	// included, but no bare quote.
	stringLiteral = regexp.MustCompile(`'(?:[^'\\]|\\[\s\S])*'`)

	// An integer run not glued to a preceding identifier character. RE2 has no
	// look-behind, so the leading byte is captured and written back.
	numberLiteral = regexp.MustCompile(`(^|[^\w])\d+`)

	whitespace = regexp.MustCompile(`\s+`)
)

// Fingerprint normalizes sqlText. The steps run in a fixed order because the
// patterns overlap: digits inside strings must be gone before numbers are
// replaced.
func Fingerprint(sqlText string) string {
	fp := stringLiteral.ReplaceAllString(sqlText, "'?'")
	fp = numberLiteral.ReplaceAllString(fp, "${1}?")
	fp = whitespace.ReplaceAllString(fp, " ")
	return strings.TrimSpace(fp)
}

// Digest is a short stable identifier for a fingerprint: 16 hex characters of
// its xxhash64.
func Digest(fingerprint string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(fingerprint))
}
