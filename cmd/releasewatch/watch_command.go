package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/spf13/cobra"

	"releasewatch/internal/logging"
	"releasewatch/internal/tracker"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var cronFlag string
	var runNow bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run tracking cycles on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			spec := strings.TrimSpace(cronFlag)
			if spec == "" {
				spec = cfg.Schedule.Cron
			}
			expr, err := cronexpr.Parse(spec)
			if err != nil {
				return fmt.Errorf("parse cron expression %q: %w", spec, err)
			}
			if err := cfg.ValidateNotifications(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			t, closeTracker, err := tracker.Build(cfg, logger)
			if err != nil {
				return err
			}
			defer closeTracker()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			w := &watcher{
				tracker: t,
				expr:    expr,
				spec:    spec,
				logger:  logging.NewComponentLogger(logger, "watch"),
				now:     time.Now,
			}
			return w.loop(signalCtx, runNow)
		},
	}
	cmd.Flags().StringVar(&cronFlag, "cron", "", "Cron expression overriding schedule.cron")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run a cycle immediately before waiting for the first tick")
	return cmd
}

type cycleRunner interface {
	RunCycle(ctx context.Context, opts tracker.Options) (tracker.Result, error)
}

type watcher struct {
	tracker cycleRunner
	expr    *cronexpr.Expression
	spec    string
	logger  *slog.Logger
	now     func() time.Time
}

// loop runs one cycle per cron tick. Cycle failures are logged and the loop
// keeps going; it returns nil once ctx is cancelled.
func (w *watcher) loop(ctx context.Context, runNow bool) error {
	if runNow {
		w.runOnce(ctx)
	}
	for {
		next := w.expr.Next(w.now())
		if next.IsZero() {
			return fmt.Errorf("cron expression %q never fires", w.spec)
		}
		w.logger.Info("next cycle scheduled",
			logging.String("next_run", next.Format(time.RFC3339)),
			logging.String("cron", w.spec),
			logging.String(logging.FieldEventType, "watch_scheduled"),
		)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
			return nil
		case <-timer.C:
		}
		w.runOnce(ctx)
	}
}

func (w *watcher) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, err := w.tracker.RunCycle(ctx, tracker.Options{})
	switch {
	case err == nil:
	case errors.Is(err, tracker.ErrAlreadyRunning):
		logging.WarnWithContext(w.logger, "cycle skipped; another cycle is running", "cycle_skipped",
			logging.String(logging.FieldErrorHint, "check for a concurrent releasewatch run or cron job"),
			logging.String(logging.FieldImpact, "this tick is skipped"),
		)
	case errors.Is(err, context.Canceled):
	default:
		// RunCycle already logged and alerted; keep watching.
		w.logger.Debug("cycle returned error", logging.Error(err))
	}
}
