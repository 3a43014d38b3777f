package logs

import (
	"encoding/json"
	"log/slog"
	"maps"
	"strings"
	"time"
)

// Entry is one decoded line of a daily log.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	RunID     string
	Author    string
	EventType string
	// Fields holds every remaining attribute.
	Fields map[string]any
}

var reservedKeys = []string{"ts", "level", "msg", "component", "run_id", "author", "event_type"}

// ParseEntry decodes one JSON log line. ok is false for blank or non-JSON
// lines.
func ParseEntry(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] != '{' {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{
		Level:     stringField(raw, "level"),
		Message:   stringField(raw, "msg"),
		Component: stringField(raw, "component"),
		RunID:     stringField(raw, "run_id"),
		Author:    stringField(raw, "author"),
		EventType: stringField(raw, "event_type"),
	}
	if ts := stringField(raw, "ts"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = parsed
		}
	}
	fields := maps.Clone(raw)
	for _, key := range reservedKeys {
		delete(fields, key)
	}
	if len(fields) > 0 {
		e.Fields = fields
	}
	return e, true
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// Filter selects entries. The zero Filter matches everything.
type Filter struct {
	RunID    string
	MinLevel slog.Level
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if f.RunID != "" && !strings.HasPrefix(e.RunID, f.RunID) {
		return false
	}
	return ParseLevel(e.Level) >= f.MinLevel
}

// ParseLevel maps a level name to its slog.Level; unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
