package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
	"releasewatch/internal/textutil"
)

const minTitleLen = 3

var (
	romanNumeral = regexp.MustCompile(`(?i)^[ivxlcdm]+\.?$`)
	allDigits    = regexp.MustCompile(`^\d+\.?$`)
	bareYear     = regexp.MustCompile(`^\d{4}$`)
	ordinalDay   = regexp.MustCompile(`(?i)^\d{1,2}(?:st|nd|rd|th)?$`)
	numericDate  = regexp.MustCompile(`^\d{1,4}[/-]\d{1,2}[/-]\d{1,4}$`)
	itemSplitter = regexp.MustCompile(`\s+[-\x{2013}\x{2014}|]\s+|\s*\|\s*`)
)

var headerWords = map[string]struct{}{
	"title": {}, "titles": {}, "book": {}, "books": {}, "name": {},
	"date": {}, "dates": {}, "release": {}, "release date": {}, "released": {},
	"publication date": {}, "published": {}, "pub date": {},
	"series": {}, "format": {}, "publisher": {}, "status": {},
	"tbd": {}, "tba": {}, "unknown": {}, "n/a": {}, "na": {}, "coming soon": {},
}

// Listing scans tables and list items for "title ... date" rows. It is the
// least trusted strategy and only runs as a fallback.
type Listing struct{}

func (Listing) Name() string   { return "listing" }
func (Listing) Fallback() bool { return true }

func (l Listing) Extract(page *Page) ([]release.Draft, []error) {
	var drafts []release.Draft
	doc := page.Document()

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var headers []string
		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if i == 0 && cells.Length() > 0 && cells.Length() == row.Find("th").Length() {
				headers = cellTexts(cells)
				return
			}
			if d, ok := l.rowDraft(page, cellTexts(cells), headers); ok {
				drafts = append(drafts, d)
			}
		})
	})

	doc.Find("li").Each(func(_ int, item *goquery.Selection) {
		if d, ok := l.rowDraft(page, listItemCells(item), nil); ok {
			drafts = append(drafts, d)
		}
	})
	return drafts, nil
}

// rowDraft turns one row into a draft. The first cell is the title; the
// first later cell that parses as a specific date wins, and a bare year is
// only used when nothing more specific exists. Rows without any date are not
// release rows.
func (Listing) rowDraft(page *Page, cells []string, headers []string) (release.Draft, bool) {
	if len(cells) < 2 {
		return release.Draft{}, false
	}
	title := textutil.CleanTitle(cells[0])
	if !validTitle(title) {
		return release.Draft{}, false
	}

	var (
		date     releasedate.Date
		yearOnly releasedate.Date
		dateCell = -1
		yearCell = -1
	)
	for i := 1; i < len(cells); i++ {
		cell := cells[i]
		parsed, err := releasedate.Parse(cell)
		if err != nil {
			continue
		}
		if len(cell) > 4 && !bareYear.MatchString(cell) {
			date, dateCell = parsed, i
			break
		}
		if yearCell < 0 && bareYear.MatchString(cell) {
			yearOnly, yearCell = parsed, i
		}
	}
	if dateCell < 0 {
		if yearCell < 0 {
			return release.Draft{}, false
		}
		date, dateCell = yearOnly, yearCell
	}

	meta := map[string]string{}
	for i := 1; i < len(cells) && i < len(headers); i++ {
		if i == dateCell || cells[i] == "" {
			continue
		}
		if key := headerKey(headers[i]); key != "" {
			meta[key] = cells[i]
		}
	}
	return page.newDraft(title, date, release.ConfidenceLow, "listing", meta), true
}

func cellTexts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, textutil.CollapseSpace(cell.Text()))
	})
	return out
}

// listItemCells splits an <li> into cells: its element children when there
// are at least two, otherwise its text split on " - ", " | " and dashes.
func listItemCells(item *goquery.Selection) []string {
	if item.Find("li").Length() > 0 {
		return nil
	}
	if children := item.Children(); children.Length() >= 2 {
		cells := cellTexts(children)
		if len(cells) >= 2 && cells[0] != "" {
			return cells
		}
	}
	text := textutil.CollapseSpace(item.Text())
	parts := itemSplitter.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validTitle(title string) bool {
	if len(title) < minTitleLen {
		return false
	}
	if allDigits.MatchString(title) || romanNumeral.MatchString(title) {
		return false
	}
	if _, header := headerWords[strings.ToLower(title)]; header {
		return false
	}
	return !looksLikeDate(title)
}

// looksLikeDate reports whether every word of s is a date component, so a
// date sitting in the title column is not mistaken for a title.
func looksLikeDate(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		w = strings.Trim(w, ",.")
		switch {
		case w == "":
		case releasedate.IsMonthName(w):
		case ordinalDay.MatchString(w), bareYear.MatchString(w), numericDate.MatchString(w):
		default:
			return false
		}
	}
	return true
}

func headerKey(header string) string {
	return strings.Join(strings.Fields(textutil.SanitizeToken(header)), "_")
}
