package releasedate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseable is wrapped by every ParseError.
var ErrUnparseable = errors.New("unrecognized date")

// ParseError reports text that matched none of the supported formats.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type fieldOrder int

const (
	orderYMD fieldOrder = iota
	orderMDY
	orderMonthDayYear
	orderDayMonthYear
	orderMonthYear
	orderYear
)

type pattern struct {
	name  string
	re    *regexp.Regexp
	order fieldOrder
}

// Numeric runs are bounded by non-digits instead of \b so timestamps such as
// 2025-12-09T10:00:00Z still match the ISO form.
var patterns = []pattern{
	{"iso", regexp.MustCompile(`(?:^|\D)(\d{4})-(\d{1,2})-(\d{1,2})(?:\D|$)`), orderYMD},
	{"us_slash", regexp.MustCompile(`(?:^|\D)(\d{1,2})/(\d{1,2})/(\d{4})(?:\D|$)`), orderMDY},
	{"us_dash", regexp.MustCompile(`(?:^|\D)(\d{1,2})-(\d{1,2})-(\d{4})(?:\D|$)`), orderMDY},
	{"month_day_year", regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})(?:\D|$)`), orderMonthDayYear},
	{"day_month_year", regexp.MustCompile(`(?i)(?:^|\D)(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]{3,9})\.?,?\s+(\d{4})(?:\D|$)`), orderDayMonthYear},
	{"month_year", regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?,?\s+(\d{4})(?:\D|$)`), orderMonthYear},
	{"year", regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`), orderYear},
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var whitespace = regexp.MustCompile(`\s+`)

// Parse converts a free-text date expression into a Date. Formats are tried in
// a fixed order and the first valid candidate wins; a candidate whose month
// name is unknown or whose fields are out of range is skipped and the search
// continues.
func Parse(text string) (Date, error) {
	cleaned := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if cleaned == "" {
		return Date{}, &ParseError{Input: text, Err: ErrUnparseable}
	}
	for _, p := range patterns {
		for _, match := range p.re.FindAllStringSubmatch(cleaned, -1) {
			if d, ok := build(p.order, match[1:]); ok {
				return d, nil
			}
		}
	}
	return Date{}, &ParseError{Input: text, Err: ErrUnparseable}
}

// MustParse is Parse for fixed inputs in tests and tables.
func MustParse(text string) Date {
	d, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return d
}

func build(order fieldOrder, fields []string) (Date, bool) {
	var (
		year, day int
		month     time.Month
		ok        bool
	)
	switch order {
	case orderYMD:
		year, month, day, ok = numeric(fields[0], fields[1], fields[2])
	case orderMDY:
		year, month, day, ok = numeric(fields[2], fields[0], fields[1])
	case orderMonthDayYear:
		month, ok = lookupMonth(fields[0])
		day = atoi(fields[1])
		year = atoi(fields[2])
	case orderDayMonthYear:
		day = atoi(fields[0])
		month, ok = lookupMonth(fields[1])
		year = atoi(fields[2])
	case orderMonthYear:
		month, ok = lookupMonth(fields[0])
		year = atoi(fields[1])
		day = 1
	case orderYear:
		year, month, day, ok = atoi(fields[0]), time.January, 1, true
	}
	if !ok {
		return Date{}, false
	}
	d, err := New(year, month, day)
	if err != nil {
		return Date{}, false
	}
	return d, true
}

func numeric(year, month, day string) (int, time.Month, int, bool) {
	return atoi(year), time.Month(atoi(month)), atoi(day), true
}

// IsMonthName reports whether word is a recognized full or abbreviated month
// name, ignoring case and a trailing period.
func IsMonthName(word string) bool {
	_, ok := lookupMonth(strings.TrimSuffix(word, "."))
	return ok
}

func lookupMonth(name string) (time.Month, bool) {
	m, ok := months[strings.ToLower(name)]
	return m, ok
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
