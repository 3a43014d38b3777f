package notify

import (
	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
)

// Kinds lists notification kinds in dispatch order.
var Kinds = []release.EventType{
	release.EventDiscovery,
	release.EventDateChange,
	release.EventReminder,
	release.EventReleaseDay,
}

// Plan holds the qualifying record ids per notification kind, in schedule
// order.
type Plan struct {
	Discovery  []string
	DateChange []string
	Reminder   []string
	ReleaseDay []string

	// changes carries the date change observed this cycle for records that
	// have no pending marker to describe it.
	changes map[string]release.DateChange
}

// IDs returns the qualifying ids for kind.
func (p Plan) IDs(kind release.EventType) []string {
	switch kind {
	case release.EventDiscovery:
		return p.Discovery
	case release.EventDateChange:
		return p.DateChange
	case release.EventReminder:
		return p.Reminder
	case release.EventReleaseDay:
		return p.ReleaseDay
	}
	return nil
}

// Empty reports whether nothing qualifies.
func (p Plan) Empty() bool {
	return len(p.Discovery)+len(p.DateChange)+len(p.Reminder)+len(p.ReleaseDay) == 0
}

// NewPlan computes which records qualify for each notification kind on today.
//
// Discovery covers every record without a discovery event: this cycle's new
// records and any whose earlier announcement failed. Date change covers this
// cycle's changes plus every record carrying a pending change, except records
// that are about to be announced as discoveries with their current date.
func NewPlan(schedule release.Schedule, dateChanges []release.DateChange, today releasedate.Date, leadDays int) Plan {
	plan := Plan{changes: make(map[string]release.DateChange, len(dateChanges))}
	for _, change := range dateChanges {
		plan.changes[change.ID] = change
	}

	for _, rec := range schedule.Books {
		if !rec.HasEvent(release.EventDiscovery) {
			plan.Discovery = append(plan.Discovery, rec.ID)
		} else if _, changed := plan.changes[rec.ID]; changed || rec.PendingDateChange != nil {
			plan.DateChange = append(plan.DateChange, rec.ID)
		}

		date, ok := rec.Release()
		if !ok {
			continue
		}
		if ShouldRemind(rec, date, today, leadDays) {
			plan.Reminder = append(plan.Reminder, rec.ID)
		}
		if ShouldAnnounceRelease(rec, date, today) {
			plan.ReleaseDay = append(plan.ReleaseDay, rec.ID)
		}
	}
	return plan
}

// ShouldRemind reports whether today is exactly leadDays before date and no
// reminder was sent yet.
func ShouldRemind(rec release.Record, date, today releasedate.Date, leadDays int) bool {
	return today == date.AddDays(-leadDays) && !rec.HasEvent(release.EventReminder)
}

// ShouldAnnounceRelease reports whether today is the release date and no
// release-day alert was sent yet.
func ShouldAnnounceRelease(rec release.Record, date, today releasedate.Date) bool {
	return today == date && !rec.HasEvent(release.EventReleaseDay)
}
