package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different schema
// version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Run summarizes one tracking cycle.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         string
	DryRun         bool
	Authors        int
	AuthorFailures int
	Drafts         int
	NewDiscoveries int
	DateChanges    int
	Pruned         int
	Error          string
	Dispatches     []Dispatch
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Dispatch is one attempted notification batch.
type Dispatch struct {
	Kind    string
	BookIDs []string
	Success bool
	Error   string
}

// Store is the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open creates or opens the ledger at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start a new ledger)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Record stores run and its dispatches in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx, `INSERT INTO runs
			(id, started_at, finished_at, status, dry_run, authors, author_failures, drafts, new_discoveries, date_changes, pruned, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
			run.Status,
			boolToInt(run.DryRun),
			run.Authors,
			run.AuthorFailures,
			run.Drafts,
			run.NewDiscoveries,
			run.DateChanges,
			run.Pruned,
			run.Error,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, d := range run.Dispatches {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO dispatches (run_id, kind, book_ids, success, error) VALUES (?, ?, ?, ?, ?)",
				run.ID, d.Kind, strings.Join(d.BookIDs, ","), boolToInt(d.Success), d.Error,
			); err != nil {
				return fmt.Errorf("insert dispatch: %w", err)
			}
		}
		return tx.Commit()
	})
}

// Recent returns up to limit runs, newest first, with their dispatches.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, finished_at, status, dry_run, authors,
		author_failures, drafts, new_discoveries, date_changes, pruned, error
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	index := map[string]int{}
	for rows.Next() {
		var (
			run               Run
			started, finished string
			dryRun            int
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Status, &dryRun, &run.Authors,
			&run.AuthorFailures, &run.Drafts, &run.NewDiscoveries, &run.DateChanges, &run.Pruned, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		run.DryRun = dryRun != 0
		index[run.ID] = len(runs)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	if len(runs) == 0 {
		return runs, nil
	}

	if err := s.attachDispatches(ctx, runs, index); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *Store) attachDispatches(ctx context.Context, runs []Run, index map[string]int) error {
	placeholders := make([]string, 0, len(runs))
	args := make([]any, 0, len(runs))
	for _, run := range runs {
		placeholders = append(placeholders, "?")
		args = append(args, run.ID)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, kind, book_ids, success, error FROM dispatches WHERE run_id IN ("+strings.Join(placeholders, ",")+") ORDER BY id",
		args...)
	if err != nil {
		return fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			runID, bookIDs string
			success        int
			d              Dispatch
		)
		if err := rows.Scan(&runID, &d.Kind, &bookIDs, &success, &d.Error); err != nil {
			return fmt.Errorf("scan dispatch: %w", err)
		}
		if bookIDs != "" {
			d.BookIDs = strings.Split(bookIDs, ",")
		}
		d.Success = success != 0
		pos := index[runID]
		runs[pos].Dispatches = append(runs[pos].Dispatches, d)
	}
	return rows.Err()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// timeLayout has fixed-width fractions so stored values sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
