package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"releasewatch/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check directories, authors, history, notifications and the source site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := paint(colorize, text.Colors{text.FgGreen}, "ok")
				if !r.Passed {
					status = paint(colorize, text.Colors{text.FgRed, text.Bold}, "fail")
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
