package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
	"releasewatch/internal/textutil"
)

const minPluralTitleLen = 4

var (
	comingOut = regexp.MustCompile(`(?i)coming\s+out`)

	// "<author> has a new book coming out on <date> called <title>."
	singularAnnouncement = regexp.MustCompile(`(?i)has\s+a\s+new\s+book\s+coming\s+out\s+on\s+(.+?)\s+called\s+(.+?)(?:\.(?:\s|$)|$)`)

	// "<author> has two new books coming out: ..."
	pluralAnnouncement = regexp.MustCompile(`(?i)has\s+(?:\S+\s+)?(?:new\s+)?books\s+coming\s+out`)

	// "<title> will be released on <date>", terminated by a period, a
	// semicolon or a joining ", and".
	releasePair = regexp.MustCompile(`(?i)([^.;]+?)\s+will\s+be\s+released\s+on\s+([^.;]+?)(?:\.|;|,?\s+and\s+|$)`)

	leadingAnd     = regexp.MustCompile(`(?i)^(?:and\s+)`)
	announcePrefix = regexp.MustCompile(`(?i)^.*?has.*?books?\s+coming\s+out:?\s*`)
	newBooksPrefix = regexp.MustCompile(`(?i)^.*?new\s+books?\s+coming\s+out:?\s*`)
)

// PatternText recognizes the announcement sentences author pages use.
// Singular announcements are high confidence; titles pulled from a plural
// announcement are medium.
type PatternText struct{}

func (PatternText) Name() string   { return "pattern_text" }
func (PatternText) Fallback() bool { return false }

func (p PatternText) Extract(page *Page) ([]release.Draft, []error) {
	var (
		drafts  []release.Draft
		skipped []error
	)
	seen := map[*html.Node]struct{}{}
	for _, root := range page.Document().Nodes {
		textNodes(root, func(n *html.Node) {
			if !comingOut.MatchString(n.Data) {
				return
			}
			block := blockAncestor(n)
			if block == nil {
				return
			}
			if _, done := seen[block]; done {
				return
			}
			seen[block] = struct{}{}
			d, s := p.extractBlock(page, nodeText(block))
			drafts = append(drafts, d...)
			skipped = append(skipped, s...)
		})
	}
	return drafts, skipped
}

func (PatternText) extractBlock(page *Page, text string) ([]release.Draft, []error) {
	var (
		drafts  []release.Draft
		skipped []error
	)

	for _, m := range singularAnnouncement.FindAllStringSubmatch(text, -1) {
		title := textutil.CleanTitle(m[2])
		if title == "" {
			continue
		}
		date, err := releasedate.Parse(m[1])
		if err != nil {
			skipped = append(skipped, fmt.Errorf("announcement for %q: %w", title, err))
			continue
		}
		drafts = append(drafts, page.newDraft(title, date, release.ConfidenceHigh, "faq", nil))
	}

	loc := pluralAnnouncement.FindStringIndex(text)
	if loc == nil {
		return drafts, skipped
	}
	for _, m := range releasePair.FindAllStringSubmatch(text[loc[0]:], -1) {
		title := cleanPluralTitle(m[1])
		if len(title) < minPluralTitleLen {
			continue
		}
		date, err := releasedate.Parse(m[2])
		if err != nil {
			skipped = append(skipped, fmt.Errorf("listed title %q: %w", title, err))
			continue
		}
		drafts = append(drafts, page.newDraft(title, date, release.ConfidenceMedium, "faq_multiple", nil))
	}
	return drafts, skipped
}

func cleanPluralTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = announcePrefix.ReplaceAllString(title, "")
	title = newBooksPrefix.ReplaceAllString(title, "")
	title = strings.TrimLeft(title, ",: ")
	title = leadingAnd.ReplaceAllString(title, "")
	return textutil.CleanTitle(title)
}
