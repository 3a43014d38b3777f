package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"releasewatch/internal/logging"
	"releasewatch/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		runID  string
		level  string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show entries from the daily log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := strings.TrimSpace(cfg.Paths.LogDir)
			if dir == "" {
				return errors.New("paths.log_dir is not configured; no daily log is written")
			}
			day := time.Now()
			if strings.TrimSpace(date) != "" {
				day, err = time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
			}
			path := logging.DailyLogPath(dir, day)
			filter := logs.Filter{RunID: strings.TrimSpace(runID), MinLevel: logs.ParseLevel(level)}

			entries, offset, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, e := range entries {
				printLogEntry(out, e, colorize)
			}
			if !follow {
				if len(entries) == 0 {
					fmt.Fprintf(out, "No matching entries in %s\n", path)
				}
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return logs.Follow(signalCtx, path, offset, filter, 500*time.Millisecond, func(e logs.Entry) {
				printLogEntry(out, e, colorize)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries from this run id (prefix match)")
	cmd.Flags().StringVar(&level, "level", "info", "Minimum level: debug, info, warn or error")
	cmd.Flags().StringVar(&date, "date", "", "Day to read (YYYY-MM-DD), default today")
	return cmd
}

func printLogEntry(out io.Writer, e logs.Entry, colorize bool) {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(levelCell(e.Level, colorize))
	if e.Component != "" {
		b.WriteString(" [")
		b.WriteString(e.Component)
		b.WriteByte(']')
	}
	if e.Author != "" {
		b.WriteByte(' ')
		b.WriteString(e.Author)
	}
	b.WriteString(" – ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, e.Fields[key])
	}
	fmt.Fprintln(out, b.String())
}

func levelCell(level string, colorize bool) string {
	label := strings.ToUpper(level)
	switch label {
	case "ERROR":
		return paint(colorize, text.Colors{text.FgRed, text.Bold}, label)
	case "WARN":
		return paint(colorize, text.Colors{text.FgYellow}, label)
	case "DEBUG":
		return paint(colorize, text.Colors{text.Faint}, label)
	}
	return label
}
