package schedule

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"releasewatch/internal/logging"
	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
)

func sampleSchedule() release.Schedule {
	ts := time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)
	return release.Schedule{
		LastUpdated: ts,
		Books: []release.Record{
			{
				ID:            "brandon_sanderson_wind_and_truth_2024",
				Title:         "Wind and Truth",
				Author:        "Brandon Sanderson",
				ReleaseDate:   "2024-12-06",
				Status:        release.StatusReleased,
				SourceURL:     "https://booknotification.com/author/brandon-sanderson",
				DiscoveryDate: ts,
				LastChecked:   ts,
				NotificationsSent: []release.Event{
					{Type: release.EventDiscovery, Timestamp: ts},
					{Type: release.EventDateChange, Timestamp: ts, OldDate: "2024-11-01", NewDate: "2024-12-06"},
				},
				Metadata: map[string]string{"source": "faq"},
			},
			{
				ID:                "x",
				Title:             "Unknown Date",
				Author:            "Someone",
				ReleaseDate:       "sometime in spring",
				Status:            release.StatusUpcoming,
				DiscoveryDate:     ts,
				LastChecked:       ts,
				NotificationsSent: []release.Event{},
				Metadata:          map[string]string{},
				PendingDateChange: &release.DateChange{ID: "x", OldDate: "2025-01-01", NewDate: "2025-02-01"},
			},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release_schedule.json")
	store := NewStore(path, logging.NewNop())

	want := sampleSchedule()
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestStoreDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release_schedule.json")
	store := NewStore(path, logging.NewNop())
	if err := store.Save(release.Schedule{Books: []release.Record{{ID: "a", Title: "A"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"books"`, `"last_updated"`, `"notifications_sent": []`, `"metadata": {}`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("document missing %s:\n%s", want, data)
		}
	}
	if strings.Contains(string(data), "pending_date_change") {
		t.Fatalf("empty pending change should be omitted:\n%s", data)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"), logging.NewNop())
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Books) != 0 {
		t.Fatalf("expected empty schedule, got %d books", len(got.Books))
	}
}

func TestStoreLoadAcceptsZonelessTimestamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "release_schedules.json")
	doc := `{
  "books": [
    {
      "id": "jane_doe_the_lost_city_2026",
      "title": "The Lost City",
      "author": "Jane Doe",
      "release_date": "2026-05-01",
      "status": "upcoming",
      "source_url": "https://booknotification.com/authors/jane-doe",
      "discovery_date": "2025-06-01T10:00:00.123456",
      "last_checked": "2025-06-02T08:30:00",
      "notifications_sent": [
        {"type": "discovery", "timestamp": "2025-06-01T10:00:05.5"}
      ],
      "metadata": {}
    }
  ],
  "last_updated": "2025-06-02T08:30:00+02:00"
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewStore(path, logging.NewNop()).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(got.Books))
	}
	rec := got.Books[0]
	if want := time.Date(2025, 6, 1, 10, 0, 0, 123456000, time.Local); !rec.DiscoveryDate.Equal(want) {
		t.Fatalf("DiscoveryDate = %v, want %v", rec.DiscoveryDate, want)
	}
	if want := time.Date(2025, 6, 2, 8, 30, 0, 0, time.Local); !rec.LastChecked.Equal(want) {
		t.Fatalf("LastChecked = %v, want %v", rec.LastChecked, want)
	}
	if len(rec.NotificationsSent) != 1 || !rec.HasEvent(release.EventDiscovery) {
		t.Fatalf("expected discovery event kept, got %+v", rec.NotificationsSent)
	}
	if want := time.Date(2025, 6, 1, 10, 0, 5, 500000000, time.Local); !rec.NotificationsSent[0].Timestamp.Equal(want) {
		t.Fatalf("event timestamp = %v, want %v", rec.NotificationsSent[0].Timestamp, want)
	}
	if want := time.Date(2025, 6, 2, 6, 30, 0, 0, time.UTC); !got.LastUpdated.Equal(want) {
		t.Fatalf("LastUpdated = %v, want %v", got.LastUpdated, want)
	}
	matches, _ := filepath.Glob(path + ".corrupt-*")
	if len(matches) != 0 {
		t.Fatalf("store should not be moved aside, found %v", matches)
	}
}

func TestStoreLoadRejectsMalformedTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release_schedule.json")
	if err := os.WriteFile(path, []byte(`{"books": [], "last_updated": "yesterday"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(path, logging.NewNop())
	store.now = func() time.Time { return time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC) }
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path + ".corrupt-20251209T000000Z"); err != nil {
		t.Fatalf("malformed timestamp should quarantine the file: %v", err)
	}
}

func TestStoreLoadCorruptMovesAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "release_schedule.json")
	if err := os.WriteFile(path, []byte(`{"books": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(path, logging.NewNop())
	store.now = func() time.Time { return time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC) }

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Books) != 0 {
		t.Fatalf("expected empty schedule, got %d books", len(got.Books))
	}
	if _, err := os.Stat(path + ".corrupt-20251209T000000Z"); err != nil {
		t.Fatalf("corrupt file not moved aside: %v", err)
	}
}

func TestPruneBoundary(t *testing.T) {
	today := releasedate.MustParse("2025-12-09")
	cutoff := today.AddDays(-180)
	schedule := release.Schedule{Books: []release.Record{
		{ID: "old", ReleaseDate: cutoff.AddDays(-1).String()},
		{ID: "edge", ReleaseDate: cutoff.String()},
		{ID: "recent", ReleaseDate: "2025-12-01"},
		{ID: "undated"},
		{ID: "garbage", ReleaseDate: "long ago"},
	}}

	kept, removed := Prune(schedule, today, 180)
	if len(removed) != 1 || removed[0].ID != "old" {
		t.Fatalf("removed = %+v, want only old", removed)
	}
	var ids []string
	for _, rec := range kept.Books {
		ids = append(ids, rec.ID)
	}
	if !reflect.DeepEqual(ids, []string{"edge", "recent", "undated", "garbage"}) {
		t.Fatalf("kept = %v", ids)
	}
	if len(schedule.Books) != 5 {
		t.Fatal("prune mutated its input")
	}
}
