package main

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
	"releasewatch/internal/schedule"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show tracked releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			current, err := schedule.NewStore(cfg.Paths.ScheduleFile, logger).Load()
			if err != nil {
				return err
			}

			today := releasedate.Today(time.Now())
			books := visibleReleases(current.Books, today, all)
			if asJSON {
				if books == nil {
					books = []release.Record{}
				}
				return writeJSON(cmd, books)
			}

			out := cmd.OutOrStdout()
			if len(books) == 0 {
				if all {
					fmt.Fprintln(out, "No releases tracked yet")
				} else {
					fmt.Fprintln(out, "No upcoming releases (use --all to include released books)")
				}
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(books))
			for _, rec := range books {
				rows = append(rows, releaseRow(rec, today, cfg.Tracking.ReminderDays, colorize))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Release", "Days", "Title", "Author", "Status", "Notified"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "Include released books")
	return cmd
}

// visibleReleases orders records by release date with dateless records last,
// dropping released ones unless all is set.
func visibleReleases(books []release.Record, today releasedate.Date, all bool) []release.Record {
	var out []release.Record
	for _, rec := range books {
		if !all && rec.StatusOn(today) == release.StatusReleased {
			continue
		}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b release.Record) int {
		da, okA := a.Release()
		db, okB := b.Release()
		switch {
		case okA && okB:
			if c := da.Compare(db); c != 0 {
				return c
			}
		case okA:
			return -1
		case okB:
			return 1
		}
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
	return out
}

func releaseRow(rec release.Record, today releasedate.Date, leadDays int, colorize bool) []string {
	date, ok := rec.Release()
	dateCell, days := "unknown", ""
	status := rec.StatusOn(today)
	if ok {
		dateCell = date.String()
		days = strconv.Itoa(today.DaysUntil(date))
	}

	statusCell := string(status)
	switch {
	case status == release.StatusReleased:
		statusCell = paint(colorize, text.Colors{text.FgGreen}, statusCell)
	case ok && today.DaysUntil(date) <= leadDays:
		statusCell = paint(colorize, text.Colors{text.FgYellow, text.Bold}, statusCell)
	}

	sent := make([]string, 0, len(rec.NotificationsSent))
	for _, ev := range rec.NotificationsSent {
		if !slices.Contains(sent, string(ev.Type)) {
			sent = append(sent, string(ev.Type))
		}
	}
	if rec.PendingDateChange != nil {
		sent = append(sent, paint(colorize, text.Colors{text.FgRed}, "date_change pending"))
	}
	return []string{dateCell, days, rec.Title, rec.Author, statusCell, strings.Join(sent, ", ")}
}
