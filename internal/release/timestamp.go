package release

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// localLayout matches ISO-8601 timestamps written without a zone offset.
// Fractional seconds are accepted by time.Parse even though the layout omits
// them.
const localLayout = "2006-01-02T15:04:05"

// isoTime decodes RFC 3339 timestamps and zone-less ISO-8601 timestamps. The
// latter are read as local time.
type isoTime time.Time

func (t *isoTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := parseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = isoTime(parsed)
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(localLayout, strings.Replace(value, " ", "T", 1), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: not ISO-8601", raw)
	}
	return ts, nil
}

// UnmarshalJSON accepts timestamps with or without a zone offset.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	aux := struct {
		*plain
		Timestamp isoTime `json:"timestamp"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Timestamp = time.Time(aux.Timestamp)
	return nil
}

// UnmarshalJSON accepts timestamps with or without a zone offset.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		DiscoveryDate isoTime `json:"discovery_date"`
		LastChecked   isoTime `json:"last_checked"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.DiscoveryDate = time.Time(aux.DiscoveryDate)
	r.LastChecked = time.Time(aux.LastChecked)
	return nil
}

// UnmarshalJSON accepts timestamps with or without a zone offset.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	type plain Schedule
	aux := struct {
		*plain
		LastUpdated isoTime `json:"last_updated"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.LastUpdated = time.Time(aux.LastUpdated)
	return nil
}
