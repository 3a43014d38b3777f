package release

import (
	"maps"
	"slices"
	"time"

	"releasewatch/internal/releasedate"
)

// Status is the lifecycle state of a tracked release.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusReleased Status = "released"
)

// Confidence ranks how trustworthy an extraction strategy's output is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidences so that higher values are more trusted.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Well-known metadata keys written by extractors.
const (
	MetaSource         = "source"
	MetaConfidence     = "confidence"
	MetaPublisher      = "publisher"
	MetaSeries         = "series"
	MetaISBN           = "isbn"
	MetaRawReleaseDate = "raw_release_date"
)

// EventType names one kind of notification.
type EventType string

const (
	EventDiscovery  EventType = "discovery"
	EventDateChange EventType = "date_change"
	EventReminder   EventType = "reminder"
	EventReleaseDay EventType = "release_day"
)

// Event records one successfully sent notification.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	OldDate   string    `json:"old_date,omitempty"`
	NewDate   string    `json:"new_date,omitempty"`
}

// DateChange describes a release date moving from OldDate to NewDate.
// Either side may be empty when the date was or became unknown.
type DateChange struct {
	ID      string `json:"id,omitempty"`
	OldDate string `json:"old_date"`
	NewDate string `json:"new_date"`
}

// Record is one tracked release as persisted in the schedule.
type Record struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Author            string            `json:"author"`
	ReleaseDate       string            `json:"release_date,omitempty"`
	Status            Status            `json:"status"`
	SourceURL         string            `json:"source_url"`
	DiscoveryDate     time.Time         `json:"discovery_date"`
	LastChecked       time.Time         `json:"last_checked"`
	NotificationsSent []Event           `json:"notifications_sent"`
	Metadata          map[string]string `json:"metadata"`
	PendingDateChange *DateChange       `json:"pending_date_change,omitempty"`
}

// Release parses the stored release date. ok is false when the date is
// absent or unparseable.
func (r Record) Release() (releasedate.Date, bool) {
	if r.ReleaseDate == "" {
		return releasedate.Date{}, false
	}
	d, err := releasedate.ParseISO(r.ReleaseDate)
	if err != nil {
		return releasedate.Date{}, false
	}
	return d, true
}

// StatusOn derives the status for the given day.
func (r Record) StatusOn(today releasedate.Date) Status {
	if d, ok := r.Release(); ok && !d.After(today) {
		return StatusReleased
	}
	return StatusUpcoming
}

// HasEvent reports whether a notification of kind t was ever recorded.
func (r Record) HasEvent(t EventType) bool {
	for _, ev := range r.NotificationsSent {
		if ev.Type == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can derive new values without
// aliasing the original's slices or maps.
func (r Record) Clone() Record {
	out := r
	out.NotificationsSent = slices.Clone(r.NotificationsSent)
	if out.NotificationsSent == nil {
		out.NotificationsSent = []Event{}
	}
	out.Metadata = maps.Clone(r.Metadata)
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	if r.PendingDateChange != nil {
		pending := *r.PendingDateChange
		out.PendingDateChange = &pending
	}
	return out
}

// Draft is a candidate release produced by extraction. Drafts are never
// persisted.
type Draft struct {
	ID          string
	Title       string
	Author      string
	ReleaseDate releasedate.Date
	SourceURL   string
	Metadata    map[string]string
	Confidence  Confidence
}

// Schedule is the persisted set of tracked releases, unique by ID.
type Schedule struct {
	Books       []Record  `json:"books"`
	LastUpdated time.Time `json:"last_updated"`
}

// Clone deep-copies the schedule.
func (s Schedule) Clone() Schedule {
	out := Schedule{LastUpdated: s.LastUpdated, Books: make([]Record, len(s.Books))}
	for i, rec := range s.Books {
		out.Books[i] = rec.Clone()
	}
	return out
}

// Find returns the record with the given id.
func (s Schedule) Find(id string) (Record, bool) {
	for _, rec := range s.Books {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}
