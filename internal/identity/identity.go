// Package identity derives stable release identifiers and collapses duplicate
// drafts found across strategies and authors.
package identity

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
	"releasewatch/internal/textutil"
)

const (
	authorWords = 2
	titleWords  = 3
)

// GenerateID builds "<author words>_<title words>[_<year>]" from the first two
// author words and first three title words after lowercasing and stripping
// everything but letters, digits and whitespace. A year of 0 is omitted.
func GenerateID(title, author string, year int) string {
	parts := make([]string, 0, 3)
	if a := firstWords(author, authorWords); a != "" {
		parts = append(parts, a)
	}
	if t := firstWords(title, titleWords); t != "" {
		parts = append(parts, t)
	}
	if year > 0 {
		parts = append(parts, strconv.Itoa(year))
	}
	return strings.Join(parts, "_")
}

// DraftID returns the draft's explicit id or the derived one.
func DraftID(d release.Draft) string {
	if id := strings.TrimSpace(d.ID); id != "" {
		return id
	}
	return GenerateID(d.Title, d.Author, YearOf(d.ReleaseDate))
}

// YearOf returns the year of d, or 0 when d is absent.
func YearOf(d releasedate.Date) int {
	if d.IsZero() {
		return 0
	}
	return d.Year
}

func firstWords(value string, n int) string {
	words := strings.Fields(textutil.SanitizeToken(value))
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, "_")
}

// Key identifies a release by case-folded title and author.
type Key struct {
	Title  string
	Author string
}

// MatchKey returns the fuzzy identity used for deduplication and for matching
// drafts to existing records when ids differ.
func MatchKey(title, author string) Key {
	fold := cases.Fold()
	return Key{
		Title:  fold.String(textutil.CollapseSpace(title)),
		Author: fold.String(textutil.CollapseSpace(author)),
	}
}

// Deduplicate keeps the first draft for each MatchKey and drops later ones
// entirely, so strategy order and author order decide precedence.
func Deduplicate(drafts []release.Draft) []release.Draft {
	seen := make(map[Key]struct{}, len(drafts))
	out := make([]release.Draft, 0, len(drafts))
	for _, d := range drafts {
		key := MatchKey(d.Title, d.Author)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
