package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"releasewatch/internal/logging"
	"releasewatch/internal/release"
)

// Notifier delivers batches of releases. A nil error means delivery was
// confirmed; anything else leaves the batch unrecorded so it can qualify
// again.
type Notifier interface {
	SendDiscovery(ctx context.Context, books []release.Record) error
	// SendDateChange receives records whose PendingDateChange describes the
	// move being announced.
	SendDateChange(ctx context.Context, books []release.Record) error
	SendReminder(ctx context.Context, books []release.Record) error
	SendReleaseDay(ctx context.Context, books []release.Record) error
	SendFailureAlert(ctx context.Context, details string) error
}

// Outcome is the result of one batch.
type Outcome struct {
	Kind release.EventType
	IDs  []string
	Err  error
}

// Report lists the batches attempted by one Dispatch call, in dispatch order.
type Report struct {
	Outcomes []Outcome
}

// Sent returns the number of records recorded as notified.
func (r Report) Sent() int {
	total := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			total += len(o.IDs)
		}
	}
	return total
}

// Err joins every failed batch's error.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Kind, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Evaluator sends planned batches and records confirmed deliveries.
type Evaluator struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(notifier Notifier, logger *slog.Logger) *Evaluator {
	return &Evaluator{notifier: notifier, logger: logging.NewComponentLogger(logger, "notify")}
}

// Dispatch sends one batch per non-empty kind in the order discovery,
// date_change, reminder, release_day and returns the schedule with events
// appended for every confirmed batch. A failed batch changes nothing.
func (e *Evaluator) Dispatch(ctx context.Context, schedule release.Schedule, plan Plan, now time.Time) (release.Schedule, Report) {
	out := schedule.Clone()
	positions := make(map[string]int, len(out.Books))
	for i, rec := range out.Books {
		positions[rec.ID] = i
	}
	logger := logging.WithContext(ctx, e.logger)

	var report Report
	for _, kind := range Kinds {
		ids := make([]string, 0, len(plan.IDs(kind)))
		books := make([]release.Record, 0, len(plan.IDs(kind)))
		for _, id := range plan.IDs(kind) {
			pos, ok := positions[id]
			if !ok {
				continue
			}
			rec := out.Books[pos].Clone()
			if kind == release.EventDateChange && rec.PendingDateChange == nil {
				change, ok := plan.changes[id]
				if !ok {
					continue
				}
				rec.PendingDateChange = &change
			}
			ids = append(ids, id)
			books = append(books, rec)
		}
		if len(books) == 0 {
			continue
		}

		err := ctx.Err()
		if err == nil {
			err = e.send(ctx, kind, books)
		}
		report.Outcomes = append(report.Outcomes, Outcome{Kind: kind, IDs: ids, Err: err})
		if err != nil {
			logging.ErrorWithContext(logger, "notification batch failed; will retry when it qualifies again", "notification_failed",
				logging.String("notification_type", string(kind)),
				logging.Int("books", len(books)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notification transport settings and connectivity"),
			)
			continue
		}

		for _, rec := range books {
			target := &out.Books[positions[rec.ID]]
			target.NotificationsSent = append(target.NotificationsSent, eventFor(kind, rec, now))
			if kind == release.EventDiscovery || kind == release.EventDateChange {
				target.PendingDateChange = nil
			}
		}
		logger.Info("notification batch sent",
			logging.String("notification_type", string(kind)),
			logging.Int("books", len(books)),
			logging.String(logging.FieldEventType, "notification_sent"),
		)
	}
	return out, report
}

func (e *Evaluator) send(ctx context.Context, kind release.EventType, books []release.Record) error {
	switch kind {
	case release.EventDiscovery:
		return e.notifier.SendDiscovery(ctx, books)
	case release.EventDateChange:
		return e.notifier.SendDateChange(ctx, books)
	case release.EventReminder:
		return e.notifier.SendReminder(ctx, books)
	case release.EventReleaseDay:
		return e.notifier.SendReleaseDay(ctx, books)
	}
	return fmt.Errorf("unknown notification kind %q", kind)
}

func eventFor(kind release.EventType, rec release.Record, now time.Time) release.Event {
	ev := release.Event{Type: kind, Timestamp: now}
	if kind == release.EventDateChange && rec.PendingDateChange != nil {
		ev.OldDate = rec.PendingDateChange.OldDate
		ev.NewDate = rec.PendingDateChange.NewDate
	}
	return ev
}
