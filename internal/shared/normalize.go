package shared

import (
	"strings"
	"unicode"
)

// Normalize strips punctuation from a track title or artist name, keeping
// letters, digits, and whitespace. Search queries and match comparisons both
// run on normalized text so platform-specific decoration ("(Remastered)",
// "feat. …") doesn't defeat matching.
//
// Normalizing already-normalized text is a no-op.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
