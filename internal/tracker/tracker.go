package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"releasewatch/internal/authors"
	"releasewatch/internal/config"
	"releasewatch/internal/history"
	"releasewatch/internal/identity"
	"releasewatch/internal/logging"
	"releasewatch/internal/notify"
	"releasewatch/internal/reconcile"
	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
	"releasewatch/internal/schedule"
)

// ErrAlreadyRunning is returned when another cycle holds the lock.
var ErrAlreadyRunning = errors.New("another releasewatch cycle is already running")

// ErrNoAuthors is returned when the authors file lists nobody to track.
var ErrNoAuthors = errors.New("no authors configured")

// ErrPanic wraps a panic recovered from a cycle.
var ErrPanic = errors.New("cycle panicked")

// Fetcher retrieves the drafts published for one author.
type Fetcher interface {
	FetchAndExtract(ctx context.Context, author authors.Author) ([]release.Draft, error)
}

// Ledger records finished cycles.
type Ledger interface {
	Record(ctx context.Context, run history.Run) error
}

// Dependencies are the collaborators a Tracker drives.
type Dependencies struct {
	Fetcher  Fetcher
	Notifier notify.Notifier
	Store    *schedule.Store
	// Ledger is optional.
	Ledger Ledger
	// Authors loads the author list at the start of every cycle.
	Authors func() ([]authors.Author, error)
}

// Options adjust a single cycle.
type Options struct {
	// DryRun computes the plan but sends and saves nothing.
	DryRun bool
}

// Result summarizes a cycle.
type Result struct {
	RunID          string
	DryRun         bool
	StartedAt      time.Time
	FinishedAt     time.Time
	Authors        int
	AuthorFailures int
	Drafts         int
	Books          int
	NewDiscoveries []string
	DateChanges    []release.DateChange
	Plan           notify.Plan
	Report         notify.Report
	Removed        []release.Record
}

// Tracker runs monitoring cycles.
type Tracker struct {
	cfg       *config.Config
	deps      Dependencies
	evaluator *notify.Evaluator
	logger    *slog.Logger
	now       func() time.Time
}

// New validates deps and returns a Tracker.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Tracker, error) {
	if cfg == nil {
		return nil, errors.New("tracker requires a config")
	}
	if deps.Fetcher == nil || deps.Notifier == nil || deps.Store == nil || deps.Authors == nil {
		return nil, errors.New("tracker requires fetcher, notifier, store and authors loader")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tracker{
		cfg:       cfg,
		deps:      deps,
		evaluator: notify.NewEvaluator(deps.Notifier, logger),
		logger:    logging.NewComponentLogger(logger, "tracker"),
		now:       time.Now,
	}, nil
}

// RunCycle executes one cycle. It returns ErrAlreadyRunning without doing
// anything when another cycle holds the lock.
func (t *Tracker) RunCycle(ctx context.Context, opts Options) (result Result, err error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	capture := logging.NewCaptureHandler(slog.LevelWarn, 20)
	logger := logging.WithContext(ctx, logging.TeeLogger(t.logger, capture))

	result = Result{RunID: runID, DryRun: opts.DryRun, StartedAt: t.now()}

	lockPath := t.cfg.LockPath()
	if mkErr := os.MkdirAll(filepath.Dir(lockPath), 0o755); mkErr != nil {
		return result, fmt.Errorf("ensure lock directory: %w", mkErr)
	}
	lock := flock.New(lockPath)
	ok, lockErr := lock.TryLock()
	if lockErr != nil {
		return result, fmt.Errorf("acquire lock: %w", lockErr)
	}
	if !ok {
		return result, ErrAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	logger.Info("cycle started",
		logging.Bool("dry_run", opts.DryRun),
		logging.String(logging.FieldEventType, "cycle_started"),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			logging.ErrorWithContext(logger, "cycle panicked", "cycle_panic",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
		}
		result.FinishedAt = t.now()
		if err != nil {
			logging.ErrorWithContext(logger, "cycle failed", "cycle_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "review the warnings above; the failure alert carries the same details"),
			)
			if !result.DryRun {
				t.sendFailureAlert(ctx, logger, result, err, capture.Lines())
			}
		} else {
			logger.Info("cycle finished",
				logging.Int("authors", result.Authors),
				logging.Int("drafts", result.Drafts),
				logging.Int("new_discoveries", len(result.NewDiscoveries)),
				logging.Int("date_changes", len(result.DateChanges)),
				logging.Int("notifications_sent", result.Report.Sent()),
				logging.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
				logging.String(logging.FieldEventType, "cycle_finished"),
			)
		}
		t.recordRun(ctx, logger, result, err)
	}()

	err = t.cycle(ctx, logger, opts, &result)
	return result, err
}

func (t *Tracker) cycle(ctx context.Context, logger *slog.Logger, opts Options, result *Result) error {
	all, err := t.deps.Authors()
	if err != nil {
		return fmt.Errorf("load authors: %w", err)
	}
	if len(all) == 0 {
		return fmt.Errorf("%w in %s", ErrNoAuthors, t.cfg.Paths.AuthorsFile)
	}
	active := authors.Active(all)
	result.Authors = len(active)
	if len(active) == 0 {
		logging.WarnWithContext(logger, "no active authors configured", "no_active_authors",
			logging.Int("configured", len(all)),
			logging.String(logging.FieldErrorHint, "set status: active on the authors to track"),
			logging.String(logging.FieldImpact, "no pages will be checked; existing releases are still evaluated"),
		)
	}

	current, err := t.deps.Store.Load()
	if err != nil {
		logging.WarnWithContext(logger, "schedule unavailable; continuing with an empty schedule", "schedule_load_failed",
			logging.Error(err),
			logging.String("schedule_path", t.deps.Store.Path()),
			logging.String(logging.FieldErrorHint, "check the schedule file permissions"),
			logging.String(logging.FieldImpact, "known releases will be treated as new"),
		)
		current = release.Schedule{Books: []release.Record{}}
	}

	drafts, failures, err := t.fetchAll(ctx, logger, active)
	if err != nil {
		return err
	}
	result.AuthorFailures = failures
	drafts = identity.Deduplicate(drafts)
	result.Drafts = len(drafts)

	now := t.now()
	today := releasedate.Today(now)
	reconciled := reconcile.Reconcile(current, drafts, now)
	result.NewDiscoveries = reconciled.NewDiscoveries
	result.DateChanges = reconciled.DateChanges
	for _, change := range reconciled.DateChanges {
		logger.Info("release date changed",
			logging.String(logging.FieldBookID, change.ID),
			logging.String("old_date", change.OldDate),
			logging.String("new_date", change.NewDate),
			logging.String(logging.FieldEventType, "date_changed"),
		)
	}

	plan := notify.NewPlan(reconciled.Schedule, reconciled.DateChanges, today, t.cfg.Tracking.ReminderDays)
	result.Plan = plan
	if opts.DryRun {
		_, removed := schedule.Prune(reconciled.Schedule, today, t.cfg.Tracking.RetentionDays)
		result.Removed = removed
		result.Books = len(reconciled.Schedule.Books) - len(removed)
		logger.Info("dry run; nothing sent or saved",
			logging.Int("discovery", len(plan.Discovery)),
			logging.Int("date_change", len(plan.DateChange)),
			logging.Int("reminder", len(plan.Reminder)),
			logging.Int("release_day", len(plan.ReleaseDay)),
			logging.String(logging.FieldEventType, "dry_run_plan"),
		)
		return nil
	}

	dispatched, report := t.evaluator.Dispatch(ctx, reconciled.Schedule, plan, now)
	result.Report = report

	kept, removed := schedule.Prune(dispatched, today, t.cfg.Tracking.RetentionDays)
	result.Removed = removed
	for _, rec := range removed {
		logger.Info("release pruned",
			logging.String(logging.FieldBookID, rec.ID),
			logging.String("title", rec.Title),
			logging.String("release_date", rec.ReleaseDate),
			logging.String(logging.FieldEventType, "release_pruned"),
		)
	}

	kept.LastUpdated = now
	if err := t.deps.Store.Save(kept); err != nil {
		return err
	}
	result.Books = len(kept.Books)

	t.cleanupLogs(logger, now)
	return nil
}

func (t *Tracker) cleanupLogs(logger *slog.Logger, now time.Time) {
	dir := strings.TrimSpace(t.cfg.Paths.LogDir)
	if dir == "" {
		return
	}
	target := logging.RetentionFor(dir)
	target.Exclude = []string{logging.DailyLogPath(dir, now)}
	if removed := logging.CleanupOldLogs(logger, t.cfg.Logging.RetentionDays, now, target); removed > 0 {
		logger.Debug("old log files removed", logging.Int("removed", removed))
	}
}

func (t *Tracker) sendFailureAlert(ctx context.Context, logger *slog.Logger, result Result, cause error, lines []string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s failed at %s\n\n%v\n", result.RunID, result.FinishedAt.Format(time.RFC1123), cause)
	if len(lines) > 0 {
		b.WriteString("\nRecent warnings and errors:\n")
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	alertCtx := context.WithoutCancel(ctx)
	alertCtx, cancel := context.WithTimeout(alertCtx, t.cfg.NotificationTimeout()+5*time.Second)
	defer cancel()
	if err := t.deps.Notifier.SendFailureAlert(alertCtx, b.String()); err != nil {
		logging.WarnWithContext(logger, "failure alert could not be sent", "failure_alert_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notification transport settings with releasewatch test-notify"),
			logging.String(logging.FieldImpact, "the failure is only visible in the logs"),
		)
	}
}

func (t *Tracker) recordRun(ctx context.Context, logger *slog.Logger, result Result, cause error) {
	if t.deps.Ledger == nil {
		return
	}
	run := history.Run{
		ID:             result.RunID,
		StartedAt:      result.StartedAt,
		FinishedAt:     result.FinishedAt,
		Status:         history.StatusSuccess,
		DryRun:         result.DryRun,
		Authors:        result.Authors,
		AuthorFailures: result.AuthorFailures,
		Drafts:         result.Drafts,
		NewDiscoveries: len(result.NewDiscoveries),
		DateChanges:    len(result.DateChanges),
		Pruned:         len(result.Removed),
	}
	if cause != nil {
		run.Status = history.StatusFailed
		run.Error = cause.Error()
	}
	for _, outcome := range result.Report.Outcomes {
		d := history.Dispatch{Kind: string(outcome.Kind), BookIDs: outcome.IDs, Success: outcome.Err == nil}
		if outcome.Err != nil {
			d.Error = outcome.Err.Error()
		}
		run.Dispatches = append(run.Dispatches, d)
	}
	if err := t.deps.Ledger.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "run not recorded in history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
			logging.String(logging.FieldImpact, "this cycle will be missing from releasewatch history"),
		)
	}
}
