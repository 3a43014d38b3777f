package schedule

import (
	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
)

// DefaultRetentionDays is how long a release stays tracked after its date.
const DefaultRetentionDays = 180

// Prune drops records whose release date parses and falls strictly before
// today minus retentionDays. Records without a usable date are kept. The
// removed records are returned for logging.
func Prune(schedule release.Schedule, today releasedate.Date, retentionDays int) (release.Schedule, []release.Record) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := today.AddDays(-retentionDays)

	out := release.Schedule{LastUpdated: schedule.LastUpdated, Books: make([]release.Record, 0, len(schedule.Books))}
	var removed []release.Record
	for _, rec := range schedule.Books {
		if date, ok := rec.Release(); ok && date.Before(cutoff) {
			removed = append(removed, rec.Clone())
			continue
		}
		out.Books = append(out.Books, rec.Clone())
	}
	return out, removed
}
