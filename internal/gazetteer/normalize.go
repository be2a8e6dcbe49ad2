// Package gazetteer links free-text entity mentions to canonical records via
// normalized exact match with bounded fuzzy fallback.
package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes to NFD, removes combining marks, and
// recomposes. Built once; Transformers are stateless across Strings calls.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lowercases, strips diacritics, and collapses whitespace. The
// identical function is applied when building the index and per query, so
// exact-match lookups are normalization-invariant. Normalize is idempotent.
func Normalize(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}
