package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
	"releasewatch/internal/textutil"
)

// dateFields are the schema.org properties that may carry a release date, in
// preference order.
var dateFields = []string{"datePublished", "publicationDate", "releaseDate", "datePublishedOriginal", "dateCreated"}

// StructuredData reads schema.org Book objects from JSON-LD script blocks.
type StructuredData struct{}

func (StructuredData) Name() string   { return "structured_data" }
func (StructuredData) Fallback() bool { return false }

func (s StructuredData) Extract(page *Page) ([]release.Draft, []error) {
	var (
		drafts  []release.Draft
		skipped []error
	)
	page.Document().Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			skipped = append(skipped, fmt.Errorf("json-ld block %d: %w", i, err))
			return
		}
		var books []map[string]any
		collectBooks(payload, &books)
		for _, book := range books {
			draft, err := s.draftFromBook(page, book)
			if err != nil {
				skipped = append(skipped, fmt.Errorf("json-ld block %d: %w", i, err))
				continue
			}
			drafts = append(drafts, draft)
		}
	})
	return drafts, skipped
}

func (StructuredData) draftFromBook(page *Page, book map[string]any) (release.Draft, error) {
	title := textutil.CleanTitle(stringField(book["name"]))
	if title == "" {
		return release.Draft{}, fmt.Errorf("book object has no name")
	}

	meta := map[string]string{}
	if publisher := namedField(book["publisher"]); publisher != "" {
		meta[release.MetaPublisher] = publisher
	}
	series := namedField(book["isPartOf"])
	if series == "" {
		series = namedField(book["series"])
	}
	if series != "" {
		meta[release.MetaSeries] = series
	}

	rawDate := firstDate(book)
	isbn := stringField(book["isbn"])
	for _, edition := range objects(book["workExample"]) {
		if rawDate == "" {
			rawDate = firstDate(edition)
		}
		if isbn == "" {
			isbn = stringField(edition["isbn"])
		}
	}

	var date releasedate.Date
	if rawDate != "" {
		parsed, err := releasedate.Parse(rawDate)
		if err != nil {
			// Keep the draft; only the date field is dropped.
			meta[release.MetaRawReleaseDate] = rawDate
		} else {
			date = parsed
		}
	}

	draft := page.newDraft(title, date, release.ConfidenceHigh, "json_ld", meta)
	if digits := normalizeISBN(isbn); digits != "" {
		draft.Metadata[release.MetaISBN] = digits
		draft.ID = "isbn-" + digits
	}
	return draft, nil
}

// collectBooks walks the container shapes JSON-LD uses (arrays, @graph,
// ItemList) and gathers every object typed as a Book.
func collectBooks(v any, out *[]map[string]any) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			collectBooks(item, out)
		}
	case map[string]any:
		if isBook(node) {
			*out = append(*out, node)
			return
		}
		for _, key := range []string{"@graph", "itemListElement", "item", "mainEntity"} {
			if child, ok := node[key]; ok {
				collectBooks(child, out)
			}
		}
	}
}

func isBook(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, "Book")
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.EqualFold(s, "Book") {
				return true
			}
		}
	}
	return false
}

func firstDate(node map[string]any) string {
	for _, field := range dateFields {
		if value := stringField(node[field]); value != "" {
			return value
		}
	}
	return ""
}

func objects(v any) []map[string]any {
	switch node := v.(type) {
	case map[string]any:
		return []map[string]any{node}
	case []any:
		out := make([]map[string]any, 0, len(node))
		for _, item := range node {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func stringField(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%.0f", value))
	case []any:
		if len(value) > 0 {
			return stringField(value[0])
		}
	}
	return ""
}

// namedField accepts either a plain string or an object with a name.
func namedField(v any) string {
	if m, ok := v.(map[string]any); ok {
		return textutil.CollapseSpace(stringField(m["name"]))
	}
	return textutil.CollapseSpace(stringField(v))
}

func normalizeISBN(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(value) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	switch b.Len() {
	case 10, 13:
		return b.String()
	}
	return ""
}
