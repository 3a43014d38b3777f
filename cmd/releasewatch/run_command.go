package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"releasewatch/internal/notify"
	"releasewatch/internal/tracker"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one tracking cycle",
		Long: "Fetch every active author's page, reconcile the results with the saved schedule,\n" +
			"send the notifications that are due and save the schedule.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(cmd, ctx, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan notifications without sending them or saving the schedule")
	return cmd
}

func runCycle(cmd *cobra.Command, ctx *commandContext, dryRun bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	// A dry run never sends, so it works before a transport is configured.
	if !dryRun {
		if err := cfg.ValidateNotifications(); err != nil {
			return err
		}
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

	result, err := t.RunCycle(signalCtx, tracker.Options{DryRun: dryRun})
	if err != nil {
		return err
	}
	printCycleSummary(cmd.OutOrStdout(), result)
	return nil
}

func printCycleSummary(out io.Writer, result tracker.Result) {
	elapsed := result.FinishedAt.Sub(result.StartedAt).Round(10 * time.Millisecond)
	if result.DryRun {
		fmt.Fprintf(out, "Dry run %s finished in %s; nothing was sent or saved\n", result.RunID, elapsed)
	} else {
		fmt.Fprintf(out, "Cycle %s finished in %s\n", result.RunID, elapsed)
	}

	authors := strconv.Itoa(result.Authors)
	if result.AuthorFailures > 0 {
		authors = fmt.Sprintf("%d (%d skipped)", result.Authors, result.AuthorFailures)
	}
	rows := [][]string{
		{"Authors checked", authors},
		{"Releases found", strconv.Itoa(result.Drafts)},
		{"New discoveries", strconv.Itoa(len(result.NewDiscoveries))},
		{"Date changes", strconv.Itoa(len(result.DateChanges))},
		{"Tracked releases", strconv.Itoa(result.Books)},
		{"Pruned", strconv.Itoa(len(result.Removed))},
	}
	if !result.DryRun {
		rows = append(rows, []string{"Notifications sent", strconv.Itoa(result.Report.Sent())})
		if err := result.Report.Err(); err != nil {
			rows = append(rows, []string{"Notification errors", strings.ReplaceAll(err.Error(), "\n", "; ")})
		}
	}
	fmt.Fprintln(out, renderTable([]string{"Summary", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if !result.DryRun || result.Plan.Empty() {
		return
	}
	planRows := make([][]string, 0, len(notify.Kinds))
	for _, kind := range notify.Kinds {
		ids := result.Plan.IDs(kind)
		if len(ids) == 0 {
			continue
		}
		planRows = append(planRows, []string{string(kind), strconv.Itoa(len(ids)), strings.Join(ids, ", ")})
	}
	fmt.Fprintln(out, "Notifications that would be sent:")
	fmt.Fprintln(out, renderTable([]string{"Kind", "Books", "IDs"}, planRows, []columnAlignment{alignLeft, alignRight, alignLeft}))
}
