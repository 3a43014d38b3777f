package tracker

import (
	"fmt"
	"log/slog"

	"releasewatch/internal/authors"
	"releasewatch/internal/config"
	"releasewatch/internal/history"
	"releasewatch/internal/notifications"
	"releasewatch/internal/schedule"
	"releasewatch/internal/source"
)

// Build wires the production collaborators described by cfg. The returned
// close function releases the history database.
func Build(cfg *config.Config, logger *slog.Logger) (*Tracker, func() error, error) {
	notifier, err := notifications.NewService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	authorsFile := cfg.Paths.AuthorsFile
	t, err := New(cfg, Dependencies{
		Fetcher:  source.NewClient(cfg, logger),
		Notifier: notifier,
		Store:    schedule.NewStore(cfg.Paths.ScheduleFile, logger),
		Ledger:   ledger,
		Authors:  func() ([]authors.Author, error) { return authors.Load(authorsFile) },
	}, logger)
	if err != nil {
		_ = ledger.Close()
		return nil, nil, err
	}
	return t, ledger.Close, nil
}
