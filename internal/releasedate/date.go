package releasedate

import (
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone. The zero value means
// "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New validates the fields and returns the matching Date.
func New(year int, month time.Month, day int) (Date, error) {
	if year < 1 || year > 9999 {
		return Date{}, fmt.Errorf("year %d out of range", year)
	}
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day > daysIn(year, month) {
		return Date{}, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// FromTime returns the calendar day of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the local calendar day of now.
func Today(now time.Time) Date {
	return FromTime(now.Local())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsZero reports whether d is the absent date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// DaysUntil returns the number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// String renders YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(layout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	if value == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseISO(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseISO parses the stored form of a release date: YYYY-MM-DD, optionally
// followed by a time component ("2025-12-09T00:00:00Z").
func ParseISO(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(layout) && (value[len(layout)] == 'T' || value[len(layout)] == ' ') {
		value = value[:len(layout)]
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return Date{}, &ParseError{Input: value, Err: ErrUnparseable}
	}
	return FromTime(t), nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
