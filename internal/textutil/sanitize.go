package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// quoteReplacer maps typographic quotes and dashes onto ASCII.
var quoteReplacer = strings.NewReplacer(
	"\u201c", "\"",
	"\u201d", "\"",
	"\u2018", "'",
	"\u2019", "'",
	"\u00a0", " ",
	"\u2013", "-",
	"\u2014", "-",
)

// CollapseSpace trims s and folds every whitespace run into a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanTitle normalizes punctuation, collapses whitespace and strips
// surrounding quotes and trailing sentence punctuation from a title fragment.
func CleanTitle(s string) string {
	s = CollapseSpace(quoteReplacer.Replace(s))
	s = strings.Trim(s, "\"' ")
	s = strings.TrimRight(s, ".,;:!")
	return strings.TrimSpace(strings.Trim(s, "\"' "))
}

// FoldAccents removes combining marks so "Café" becomes "Cafe". Characters
// without an ASCII decomposition are left untouched.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeToken lowercases value and keeps only ASCII letters, digits and
// whitespace, after folding accents.
func SanitizeToken(value string) string {
	value = strings.ToLower(FoldAccents(value))
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return b.String()
}
