package release_test

import (
	"testing"
	"time"

	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
)

func TestStatusOn(t *testing.T) {
	today := releasedate.MustParse("2025-12-09")
	tests := []struct {
		name string
		date string
		want release.Status
	}{
		{"past", "2025-12-01", release.StatusReleased},
		{"today", "2025-12-09", release.StatusReleased},
		{"future", "2025-12-10", release.StatusUpcoming},
		{"absent", "", release.StatusUpcoming},
		{"unparseable", "sometime soon", release.StatusUpcoming},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := release.Record{ReleaseDate: tc.date}
			if got := rec.StatusOn(today); got != tc.want {
				t.Fatalf("StatusOn = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := release.Record{
		ID:                "a",
		Metadata:          map[string]string{"source": "faq"},
		NotificationsSent: []release.Event{{Type: release.EventDiscovery, Timestamp: time.Unix(0, 0)}},
		PendingDateChange: &release.DateChange{OldDate: "2025-01-01", NewDate: "2025-02-01"},
	}
	clone := orig.Clone()
	clone.Metadata["source"] = "listing"
	clone.NotificationsSent[0].Type = release.EventReminder
	clone.PendingDateChange.NewDate = "2025-03-01"

	if orig.Metadata["source"] != "faq" {
		t.Fatal("metadata aliased")
	}
	if orig.NotificationsSent[0].Type != release.EventDiscovery {
		t.Fatal("notifications aliased")
	}
	if orig.PendingDateChange.NewDate != "2025-02-01" {
		t.Fatal("pending change aliased")
	}
}

func TestHasEvent(t *testing.T) {
	rec := release.Record{NotificationsSent: []release.Event{{Type: release.EventDateChange}}}
	if !rec.HasEvent(release.EventDateChange) {
		t.Fatal("expected date_change event")
	}
	if rec.HasEvent(release.EventReminder) {
		t.Fatal("unexpected reminder event")
	}
}
