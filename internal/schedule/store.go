package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"releasewatch/internal/fileutil"
	"releasewatch/internal/logging"
	"releasewatch/internal/release"
)

// Store reads and writes the schedule document at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore returns a Store backed by path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "schedule"),
		now:    time.Now,
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted schedule. A missing file yields an empty
// schedule. An undecodable file is renamed to "<path>.corrupt-<ts>" and an
// empty schedule is returned; err is non-nil only when the file could not be
// read or moved.
func (s *Store) Load() (release.Schedule, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("schedule file not found; starting empty", logging.String("schedule_path", s.path))
			return empty(), nil
		}
		return empty(), fmt.Errorf("read schedule: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return empty(), nil
	}

	var doc release.Schedule
	if err := json.Unmarshal(data, &doc); err != nil {
		moved, moveErr := fileutil.MoveAside(s.path, "corrupt", s.now())
		if moveErr != nil {
			return empty(), fmt.Errorf("parse schedule: %w (move aside: %v)", err, moveErr)
		}
		logging.WarnWithContext(s.logger, "schedule file unreadable; starting empty", "schedule_corrupt",
			logging.Error(err),
			logging.String("moved_path", moved),
			logging.String(logging.FieldErrorHint, "inspect the moved file and restore it if needed"),
			logging.String(logging.FieldImpact, "previously tracked releases will be rediscovered"),
		)
		return empty(), nil
	}

	normalize(&doc)
	s.logger.Debug("loaded schedule", logging.Int("books", len(doc.Books)), logging.String("schedule_path", s.path))
	return doc, nil
}

// Save writes schedule atomically.
func (s *Store) Save(schedule release.Schedule) error {
	doc := schedule.Clone()
	normalize(&doc)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	s.logger.Debug("saved schedule", logging.Int("books", len(doc.Books)), logging.String("schedule_path", s.path))
	return nil
}

func empty() release.Schedule {
	return release.Schedule{Books: []release.Record{}}
}

// normalize replaces nil collections so the document always carries arrays
// and objects rather than nulls.
func normalize(doc *release.Schedule) {
	if doc.Books == nil {
		doc.Books = []release.Record{}
	}
	for i := range doc.Books {
		if doc.Books[i].NotificationsSent == nil {
			doc.Books[i].NotificationsSent = []release.Event{}
		}
		if doc.Books[i].Metadata == nil {
			doc.Books[i].Metadata = map[string]string{}
		}
	}
}
