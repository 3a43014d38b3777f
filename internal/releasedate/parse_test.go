package releasedate_test

import (
	"errors"
	"testing"
	"time"

	"releasewatch/internal/releasedate"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025-12-09", "2025-12-09"},
		{"2025-12-09T10:30:00Z", "2025-12-09"},
		{"12/09/2025", "2025-12-09"},
		{"12-09-2025", "2025-12-09"},
		{"December 9, 2025", "2025-12-09"},
		{"Dec 9th, 2025", "2025-12-09"},
		{"Sept. 5 2025", "2025-09-05"},
		{"Tuesday, December 9, 2025", "2025-12-09"},
		{"9 December 2025", "2025-12-09"},
		{"21st March 2026", "2026-03-21"},
		{"December 2025", "2025-12-01"},
		{"  march   2026 ", "2026-03-01"},
		{"2025", "2025-01-01"},
		{"Released 2027", "2027-01-01"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := releasedate.Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.input, err)
			}
			if got.String() != tc.want {
				t.Fatalf("Parse(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseRejectsUnrecognizedText(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "coming soon", "TBA"} {
		_, err := releasedate.Parse(input)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		var parseErr *releasedate.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected *ParseError for %q, got %T", input, err)
		}
		if !errors.Is(err, releasedate.ErrUnparseable) {
			t.Fatalf("expected ErrUnparseable for %q", input)
		}
	}
}

func TestParseOutOfRangeFallsThrough(t *testing.T) {
	// Month 13 rejects the slash form; only the bare year remains usable.
	got, err := releasedate.Parse("13/45/2025")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got.String() != "2025-01-01" {
		t.Fatalf("unexpected fallback date %s", got)
	}

	// A word that is not a month name is skipped and the next candidate of the
	// same form is used.
	got, err = releasedate.Parse("Volume 3, 2024 edition returns June 9, 2026")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got.String() != "2026-06-09" {
		t.Fatalf("unexpected date %s", got)
	}
}

func TestParseISOAcceptsStoredForms(t *testing.T) {
	for _, input := range []string{"2025-12-09", "2025-12-09T00:00:00", "2025-12-09 08:00:00"} {
		got, err := releasedate.ParseISO(input)
		if err != nil {
			t.Fatalf("ParseISO(%q) returned error: %v", input, err)
		}
		if got != (releasedate.Date{Year: 2025, Month: time.December, Day: 9}) {
			t.Fatalf("ParseISO(%q) = %+v", input, got)
		}
	}
	if _, err := releasedate.ParseISO("December 9, 2025"); err == nil {
		t.Fatal("expected ParseISO to reject free text")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := releasedate.MustParse("2025-12-30")
	if got := d.AddDays(7).String(); got != "2026-01-06" {
		t.Fatalf("AddDays crossed year incorrectly: %s", got)
	}
	if got := d.AddDays(-180).String(); got != "2025-07-03" {
		t.Fatalf("AddDays(-180) = %s", got)
	}
	if !d.Before(d.AddDays(1)) || !d.AddDays(1).After(d) {
		t.Fatal("expected ordering helpers to agree")
	}
	if n := d.DaysUntil(d.AddDays(7)); n != 7 {
		t.Fatalf("DaysUntil = %d", n)
	}
	if !(releasedate.Date{}).IsZero() || (releasedate.Date{}).String() != "" {
		t.Fatal("zero date should be empty")
	}
}

func TestNewRejectsInvalidDay(t *testing.T) {
	if _, err := releasedate.New(2025, time.February, 29); err == nil {
		t.Fatal("expected 2025-02-29 to be rejected")
	}
	if _, err := releasedate.New(2024, time.February, 29); err != nil {
		t.Fatalf("leap day rejected: %v", err)
	}
}

func TestDateTextRoundTrip(t *testing.T) {
	d := releasedate.MustParse("2026-03-21")
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var back releasedate.Date
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != d {
		t.Fatalf("round trip mismatch: %v vs %v", back, d)
	}
}

func TestIsMonthName(t *testing.T) {
	for _, word := range []string{"Sept.", "december", "MAY", "Jan"} {
		if !releasedate.IsMonthName(word) {
			t.Errorf("expected %q to be a month name", word)
		}
	}
	for _, word := range []string{"Volume", "Ja", ""} {
		if releasedate.IsMonthName(word) {
			t.Errorf("expected %q not to be a month name", word)
		}
	}
}
