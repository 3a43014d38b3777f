package reconcile_test

import (
	"reflect"
	"testing"
	"time"

	"releasewatch/internal/notify"
	"releasewatch/internal/reconcile"
	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
)

var now = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.Local)

func draft(title, author, date string) release.Draft {
	d := release.Draft{Title: title, Author: author, SourceURL: "https://example.test/a", Confidence: release.ConfidenceHigh}
	if date != "" {
		d.ReleaseDate = releasedate.MustParse(date)
	}
	return d
}

func record(id, title, author, date string) release.Record {
	return release.Record{
		ID:                id,
		Title:             title,
		Author:            author,
		ReleaseDate:       date,
		Status:            release.StatusUpcoming,
		DiscoveryDate:     now.AddDate(0, -1, 0),
		LastChecked:       now.AddDate(0, 0, -1),
		NotificationsSent: []release.Event{{Type: release.EventDiscovery, Timestamp: now.AddDate(0, -1, 0)}},
		Metadata:          map[string]string{"publisher": "Tor", "series": "Old"},
	}
}

func TestReconcileCreatesNewRecords(t *testing.T) {
	res := reconcile.Reconcile(release.Schedule{}, []release.Draft{
		draft("Isles of the Emberdark", "Brandon Sanderson", "2025-12-09"),
		draft("Already Out", "Brandon Sanderson", "2025-06-10"),
	}, now)

	if len(res.Schedule.Books) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Schedule.Books))
	}
	want := []string{"brandon_sanderson_isles_of_the_2025", "brandon_sanderson_already_out_2025"}
	if !reflect.DeepEqual(res.NewDiscoveries, want) {
		t.Fatalf("unexpected discoveries %v", res.NewDiscoveries)
	}
	first := res.Schedule.Books[0]
	if first.Status != release.StatusUpcoming || first.ReleaseDate != "2025-12-09" {
		t.Fatalf("unexpected first record %+v", first)
	}
	if !first.DiscoveryDate.Equal(now) || len(first.NotificationsSent) != 0 || first.Metadata == nil {
		t.Fatalf("unexpected new record bookkeeping %+v", first)
	}
	if res.Schedule.Books[1].Status != release.StatusReleased {
		t.Fatalf("expected same-day release to be released, got %s", res.Schedule.Books[1].Status)
	}
}

func TestReconcileStatusInvariant(t *testing.T) {
	current := release.Schedule{Books: []release.Record{
		record("past", "Past", "A", "2025-06-09"),
		record("today", "Today", "A", "2025-06-10"),
		record("future", "Future", "A", "2025-06-11"),
		record("none", "None", "A", ""),
		record("garbage", "Garbage", "A", "sometime"),
	}}
	current.Books[0].Status = release.StatusUpcoming

	res := reconcile.Reconcile(current, nil, now)
	want := map[string]release.Status{
		"past":    release.StatusReleased,
		"today":   release.StatusReleased,
		"future":  release.StatusUpcoming,
		"none":    release.StatusUpcoming,
		"garbage": release.StatusUpcoming,
	}
	for _, rec := range res.Schedule.Books {
		if rec.Status != want[rec.ID] {
			t.Errorf("%s: status %s want %s", rec.ID, rec.Status, want[rec.ID])
		}
		if !rec.LastChecked.Equal(now) {
			t.Errorf("%s: last_checked not refreshed", rec.ID)
		}
	}
	if res.Schedule.Books[4].ReleaseDate != "sometime" {
		t.Fatal("expected unparseable date preserved verbatim")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	drafts := []release.Draft{
		draft("Wind and Truth", "Brandon Sanderson", "2024-12-06"),
		draft("Isles of the Emberdark", "Brandon Sanderson", "2025-12-09"),
	}
	first := reconcile.Reconcile(release.Schedule{}, drafts, now)
	second := reconcile.Reconcile(first.Schedule, drafts, now)

	if len(second.NewDiscoveries) != 0 || len(second.DateChanges) != 0 {
		t.Fatalf("expected no discoveries or changes on second pass, got %v %v", second.NewDiscoveries, second.DateChanges)
	}
	if !reflect.DeepEqual(first.Schedule, second.Schedule) {
		t.Fatalf("expected identical schedules\nfirst:  %+v\nsecond: %+v", first.Schedule, second.Schedule)
	}
}

func TestReconcileIdentityPrecedence(t *testing.T) {
	current := release.Schedule{Books: []release.Record{
		record("isbn-9781250318541", "The Old Title", "Brandon Sanderson", "2025-12-09"),
		record("legacy-id", "Tailored Realities", "Brandon Sanderson", "2026-03-03"),
	}}
	byID := draft("The New Title", "Brandon Sanderson", "2025-12-09")
	byID.ID = "isbn-9781250318541"
	byKey := draft("TAILORED  realities", "brandon sanderson", "2026-03-03")

	res := reconcile.Reconcile(current, []release.Draft{byID, byKey}, now)
	if len(res.Schedule.Books) != 2 || len(res.NewDiscoveries) != 0 {
		t.Fatalf("expected both drafts to match, got %d records, discoveries %v", len(res.Schedule.Books), res.NewDiscoveries)
	}
	if res.Schedule.Books[0].Title != "The New Title" {
		t.Fatalf("expected id match to update title, got %q", res.Schedule.Books[0].Title)
	}
	if res.Schedule.Books[1].ID != "legacy-id" {
		t.Fatalf("expected key match to keep stored id, got %q", res.Schedule.Books[1].ID)
	}
}

func TestReconcileMatchesWithinSamePass(t *testing.T) {
	a := draft("Sunlit Man", "Brandon Sanderson", "2023-10-01")
	b := draft("sunlit man", "Brandon Sanderson", "2023-10-03")
	res := reconcile.Reconcile(release.Schedule{}, []release.Draft{a, b}, now)

	if len(res.Schedule.Books) != 1 {
		t.Fatalf("expected one record, got %+v", res.Schedule.Books)
	}
	if len(res.NewDiscoveries) != 1 || len(res.DateChanges) != 1 {
		t.Fatalf("expected one discovery and one change, got %v %v", res.NewDiscoveries, res.DateChanges)
	}
}

func TestReconcileFoldsStepsForSharedID(t *testing.T) {
	drafts := []release.Draft{
		draft("The Lost City Part One", "Jane Doe", "2026-05-01"),
		draft("The Lost City Part Two", "Jane Doe", "2026-09-01"),
	}
	first := reconcile.Reconcile(release.Schedule{}, drafts, now)
	if len(first.Schedule.Books) != 1 || first.Schedule.Books[0].ID != "jane_doe_the_lost_city_2026" {
		t.Fatalf("expected both drafts on one record, got %+v", first.Schedule.Books)
	}
	want := []release.DateChange{{ID: "jane_doe_the_lost_city_2026", OldDate: "2026-05-01", NewDate: "2026-09-01"}}
	if !reflect.DeepEqual(first.DateChanges, want) {
		t.Fatalf("DateChanges = %v, want %v", first.DateChanges, want)
	}

	announced := first.Schedule.Clone()
	announced.Books[0].NotificationsSent = []release.Event{{Type: release.EventDiscovery, Timestamp: now}}
	announced.Books[0].PendingDateChange = nil

	today := releasedate.Today(now)
	for cycle := 2; cycle <= 3; cycle++ {
		res := reconcile.Reconcile(announced, drafts, now)
		if len(res.DateChanges) != 0 {
			t.Fatalf("cycle %d: expected no net change, got %v", cycle, res.DateChanges)
		}
		rec := res.Schedule.Books[0]
		if rec.ReleaseDate != "2026-09-01" || rec.PendingDateChange != nil {
			t.Fatalf("cycle %d: unexpected record %+v", cycle, rec)
		}
		plan := notify.NewPlan(res.Schedule, res.DateChanges, today, 7)
		if len(plan.DateChange) != 0 {
			t.Fatalf("cycle %d: date change planned for %v", cycle, plan.DateChange)
		}
		announced = res.Schedule
	}
}

func TestReconcileDateChangeAndPending(t *testing.T) {
	current := release.Schedule{Books: []release.Record{record("b1", "Book One", "Author", "2025-09-01")}}

	moved := reconcile.Reconcile(current, []release.Draft{draft("Book One", "Author", "2025-10-01")}, now)
	if len(moved.DateChanges) != 1 {
		t.Fatalf("expected one change, got %v", moved.DateChanges)
	}
	change := moved.DateChanges[0]
	if change != (release.DateChange{ID: "b1", OldDate: "2025-09-01", NewDate: "2025-10-01"}) {
		t.Fatalf("unexpected change %+v", change)
	}
	rec := moved.Schedule.Books[0]
	if rec.ReleaseDate != "2025-10-01" || rec.PendingDateChange == nil || rec.PendingDateChange.OldDate != "2025-09-01" {
		t.Fatalf("unexpected record after change %+v", rec)
	}
	if len(rec.NotificationsSent) != 1 || !rec.DiscoveryDate.Equal(current.Books[0].DiscoveryDate) {
		t.Fatal("expected history and discovery date carried over")
	}

	again := reconcile.Reconcile(moved.Schedule, []release.Draft{draft("Book One", "Author", "2025-11-01")}, now)
	pending := again.Schedule.Books[0].PendingDateChange
	if pending == nil || pending.OldDate != "2025-09-01" || pending.NewDate != "2025-11-01" {
		t.Fatalf("expected oldest pending date kept, got %+v", pending)
	}

	back := reconcile.Reconcile(again.Schedule, []release.Draft{draft("Book One", "Author", "2025-09-01")}, now)
	if back.Schedule.Books[0].PendingDateChange != nil {
		t.Fatalf("expected pending change cleared, got %+v", back.Schedule.Books[0].PendingDateChange)
	}
}

func TestReconcileDatelessDraftNeverChangesDate(t *testing.T) {
	current := release.Schedule{Books: []release.Record{record("b1", "Book One", "Author", "2025-09-01")}}
	res := reconcile.Reconcile(current, []release.Draft{draft("Book One", "Author", "")}, now)
	if len(res.DateChanges) != 0 || res.Schedule.Books[0].ReleaseDate != "2025-09-01" {
		t.Fatalf("expected stored date kept, got %+v %v", res.Schedule.Books[0], res.DateChanges)
	}

	undated := release.Schedule{Books: []release.Record{record("b2", "Book Two", "Author", "")}}
	res = reconcile.Reconcile(undated, []release.Draft{draft("Book Two", "Author", "2026-01-15")}, now)
	if len(res.DateChanges) != 1 || res.DateChanges[0].OldDate != "" {
		t.Fatalf("expected change from absent date, got %v", res.DateChanges)
	}
}

func TestReconcileMergesMetadataAndRetainsUnmatched(t *testing.T) {
	current := release.Schedule{Books: []release.Record{
		record("b1", "Book One", "Author", "2025-09-01"),
		record("b2", "Forgotten", "Author", "2025-08-01"),
	}}
	d := draft("Book One", "Author", "2025-09-01")
	d.Metadata = map[string]string{"series": "New", "isbn": "123"}

	res := reconcile.Reconcile(current, []release.Draft{d}, now)
	meta := res.Schedule.Books[0].Metadata
	want := map[string]string{"publisher": "Tor", "series": "New", "isbn": "123"}
	if !reflect.DeepEqual(meta, want) {
		t.Fatalf("unexpected metadata %v", meta)
	}
	if len(res.Schedule.Books) != 2 || res.Schedule.Books[1].ID != "b2" {
		t.Fatalf("expected unmatched record retained, got %+v", res.Schedule.Books)
	}
	if current.Books[0].Metadata["series"] != "Old" {
		t.Fatal("input schedule was mutated")
	}
}
