package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"releasewatch/internal/config"
	"releasewatch/internal/release"
	"releasewatch/internal/source"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var author string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract (URL|FILE)",
		Short: "Run the release extractor against one page",
		Long: "Fetch a live author page, or read a saved HTML file, and print the releases\n" +
			"the extractor finds. Nothing is saved and no notifications are sent.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			author = strings.TrimSpace(author)
			if author == "" {
				return errors.New("--author is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client := source.NewClient(cfg, logger)

			target := strings.TrimSpace(args[0])
			pageURL, body, err := openPage(cmd, client, target)
			if err != nil {
				return err
			}
			defer body.Close()

			drafts, err := client.Extract(pageURL, author, body)
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]draftView, 0, len(drafts))
				for _, d := range drafts {
					views = append(views, newDraftView(d))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(drafts) == 0 {
				fmt.Fprintf(out, "No releases found for %s\n", author)
				return nil
			}
			rows := make([][]string, 0, len(drafts))
			for _, d := range drafts {
				date := d.ReleaseDate.String()
				if date == "" {
					date = "unknown"
				}
				rows = append(rows, []string{date, d.Title, d.Author, string(d.Confidence), d.Metadata[release.MetaSource]})
			}
			fmt.Fprintln(out, renderTable([]string{"Release", "Title", "Author", "Confidence", "Strategy"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVarP(&author, "author", "a", "", "Author the page belongs to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func openPage(cmd *cobra.Command, client *source.Client, target string) (string, io.ReadCloser, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		body, err := client.Fetch(cmd.Context(), target)
		if err != nil {
			return "", nil, err
		}
		return target, body, nil
	}
	path, err := config.ExpandPath(target)
	if err != nil {
		return "", nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open page: %w", err)
	}
	return "file://" + path, file, nil
}

type draftView struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title"`
	Author      string            `json:"author"`
	ReleaseDate string            `json:"release_date,omitempty"`
	SourceURL   string            `json:"source_url"`
	Confidence  string            `json:"confidence"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func newDraftView(d release.Draft) draftView {
	return draftView{
		ID:          d.ID,
		Title:       d.Title,
		Author:      d.Author,
		ReleaseDate: d.ReleaseDate.String(),
		SourceURL:   d.SourceURL,
		Confidence:  string(d.Confidence),
		Metadata:    d.Metadata,
	}
}
