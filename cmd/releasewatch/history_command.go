package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"releasewatch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent tracking cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No cycles recorded yet")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, historyRow(run, colorize))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Duration", "Status", "Dry Run", "Authors", "New", "Changed", "Sent", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of cycles to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type runView struct {
	ID             string         `json:"id"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	Status         string         `json:"status"`
	DryRun         bool           `json:"dry_run"`
	Authors        int            `json:"authors"`
	AuthorFailures int            `json:"author_failures"`
	Drafts         int            `json:"drafts"`
	NewDiscoveries int            `json:"new_discoveries"`
	DateChanges    int            `json:"date_changes"`
	Pruned         int            `json:"pruned"`
	Error          string         `json:"error,omitempty"`
	Dispatches     []dispatchView `json:"dispatches"`
}

type dispatchView struct {
	Kind    string   `json:"kind"`
	BookIDs []string `json:"book_ids"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

func newRunView(run history.Run) runView {
	view := runView{
		ID:             run.ID,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		Status:         run.Status,
		DryRun:         run.DryRun,
		Authors:        run.Authors,
		AuthorFailures: run.AuthorFailures,
		Drafts:         run.Drafts,
		NewDiscoveries: run.NewDiscoveries,
		DateChanges:    run.DateChanges,
		Pruned:         run.Pruned,
		Error:          run.Error,
		Dispatches:     make([]dispatchView, 0, len(run.Dispatches)),
	}
	for _, d := range run.Dispatches {
		view.Dispatches = append(view.Dispatches, dispatchView(d))
	}
	return view
}

func historyRow(run history.Run, colorize bool) []string {
	status := run.Status
	if status == history.StatusFailed {
		status = paint(colorize, text.Colors{text.FgRed}, status)
	}
	authors := strconv.Itoa(run.Authors)
	if run.AuthorFailures > 0 {
		authors = fmt.Sprintf("%d (%d skipped)", run.Authors, run.AuthorFailures)
	}
	sent := 0
	for _, d := range run.Dispatches {
		if d.Success {
			sent += len(d.BookIDs)
		}
	}
	errText := run.Error
	if len(errText) > 60 {
		errText = errText[:57] + "..."
	}
	return []string{
		run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		run.Duration().Round(10 * time.Millisecond).String(),
		status,
		yesNo(run.DryRun),
		authors,
		strconv.Itoa(run.NewDiscoveries),
		strconv.Itoa(run.DateChanges),
		strconv.Itoa(sent),
		strings.ReplaceAll(errText, "\n", " "),
	}
}
