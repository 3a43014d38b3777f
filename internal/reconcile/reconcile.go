package reconcile

import (
	"maps"
	"strings"
	"time"

	"releasewatch/internal/identity"
	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
)

// Result is the outcome of one reconciliation pass.
type Result struct {
	Schedule       release.Schedule
	NewDiscoveries []string
	DateChanges    []release.DateChange
}

// index tracks record positions by id and by match key. Later writers never
// replace an earlier key owner, so the oldest record wins ambiguous matches.
type index struct {
	byID  map[string]int
	byKey map[identity.Key]int
}

func newIndex(size int) *index {
	return &index{byID: make(map[string]int, size), byKey: make(map[identity.Key]int, size)}
}

func (ix *index) add(pos int, rec release.Record) {
	if _, ok := ix.byID[rec.ID]; !ok {
		ix.byID[rec.ID] = pos
	}
	key := identity.MatchKey(rec.Title, rec.Author)
	if key.Title == "" || key.Author == "" {
		return
	}
	if _, ok := ix.byKey[key]; !ok {
		ix.byKey[key] = pos
	}
}

func (ix *index) lookup(id string, key identity.Key) (int, bool) {
	if pos, ok := ix.byID[id]; ok {
		return pos, true
	}
	pos, ok := ix.byKey[key]
	return pos, ok
}

// Reconcile folds drafts into current as of now. Drafts are processed in
// order; one that matches a record created or updated earlier in the same
// pass updates that record instead of adding a second one.
func Reconcile(current release.Schedule, drafts []release.Draft, now time.Time) Result {
	books := current.Clone().Books
	ix := newIndex(len(books) + len(drafts))
	for pos, rec := range books {
		ix.add(pos, rec)
	}

	var (
		discoveries []string
		changes     []release.DateChange
	)
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		id := identity.DraftID(draft)
		pos, ok := ix.lookup(id, identity.MatchKey(draft.Title, draft.Author))
		if !ok {
			rec := newRecord(id, draft, now)
			books = append(books, rec)
			ix.add(len(books)-1, rec)
			discoveries = append(discoveries, rec.ID)
			continue
		}

		rec, change, changed := merge(books[pos], draft, now)
		books[pos] = rec
		ix.add(pos, rec)
		if changed {
			changes = append(changes, change)
		}
	}

	today := releasedate.Today(now)
	for i := range books {
		books[i].LastChecked = now
		books[i].Status = books[i].StatusOn(today)
	}

	return Result{
		Schedule:       release.Schedule{Books: books, LastUpdated: now},
		NewDiscoveries: discoveries,
		DateChanges:    netChanges(changes),
	}
}

// netChanges folds the steps recorded for each id into one change from the
// first old date to the last new date, dropping ids that ended where they
// started. Ids keep the order of their first step.
func netChanges(steps []release.DateChange) []release.DateChange {
	if len(steps) == 0 {
		return nil
	}
	pos := make(map[string]int, len(steps))
	folded := make([]release.DateChange, 0, len(steps))
	for _, step := range steps {
		if i, ok := pos[step.ID]; ok {
			folded[i].NewDate = step.NewDate
			continue
		}
		pos[step.ID] = len(folded)
		folded = append(folded, step)
	}
	out := folded[:0]
	for _, change := range folded {
		if change.OldDate != change.NewDate {
			out = append(out, change)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func newRecord(id string, draft release.Draft, now time.Time) release.Record {
	meta := maps.Clone(draft.Metadata)
	if meta == nil {
		meta = map[string]string{}
	}
	return release.Record{
		ID:                id,
		Title:             strings.TrimSpace(draft.Title),
		Author:            strings.TrimSpace(draft.Author),
		ReleaseDate:       draft.ReleaseDate.String(),
		SourceURL:         draft.SourceURL,
		DiscoveryDate:     now,
		LastChecked:       now,
		NotificationsSent: []release.Event{},
		Metadata:          meta,
	}
}

// merge applies draft to rec. A draft without a date carries no date
// information, so only a dated draft whose date string differs from the
// stored one counts as a change.
func merge(rec release.Record, draft release.Draft, now time.Time) (release.Record, release.DateChange, bool) {
	var (
		change  release.DateChange
		changed bool
	)
	if !draft.ReleaseDate.IsZero() {
		if next := draft.ReleaseDate.String(); next != rec.ReleaseDate {
			change = release.DateChange{ID: rec.ID, OldDate: rec.ReleaseDate, NewDate: next}
			changed = true
			rec.PendingDateChange = nextPending(rec.PendingDateChange, change)
			rec.ReleaseDate = next
		}
	}

	if title := strings.TrimSpace(draft.Title); title != "" {
		rec.Title = title
	}
	if draft.SourceURL != "" {
		rec.SourceURL = draft.SourceURL
	}
	if rec.Metadata == nil {
		rec.Metadata = map[string]string{}
	}
	maps.Copy(rec.Metadata, draft.Metadata)
	rec.LastChecked = now
	return rec, change, changed
}

// nextPending folds change into the unsent date change. The oldest unsent
// date is kept so the eventual notification spans every move; moving back to
// that date leaves nothing to announce.
func nextPending(pending *release.DateChange, change release.DateChange) *release.DateChange {
	if pending == nil {
		c := change
		return &c
	}
	if pending.OldDate == change.NewDate {
		return nil
	}
	return &release.DateChange{ID: change.ID, OldDate: pending.OldDate, NewDate: change.NewDate}
}
