package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"releasewatch/internal/authors"
	"releasewatch/internal/logging"
	"releasewatch/internal/release"
	"releasewatch/internal/source"
)

// fetchAll fetches every author on a bounded pool. Each author's drafts land
// in that author's slot so the concatenated result follows author order
// regardless of completion order. Fetch failures are logged and counted; a
// panic in a worker fails the cycle.
func (t *Tracker) fetchAll(ctx context.Context, logger *slog.Logger, active []authors.Author) ([]release.Draft, int, error) {
	workers := t.cfg.Source.Concurrency
	if workers <= 0 {
		workers = 1
	}
	slots := make([][]release.Draft, len(active))
	errs := make([]error, len(active))
	panics := make([]error, len(active))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, author := range active {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panics[i] = fmt.Errorf("%w: fetching %s: %v", ErrPanic, author.Name, r)
				}
			}()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()
			slots[i], errs[i] = t.deps.Fetcher.FetchAndExtract(logging.WithAuthor(ctx, author.Name), author)
		}()
	}
	wg.Wait()

	if err := errors.Join(panics...); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var (
		drafts   []release.Draft
		failures int
	)
	for i, author := range active {
		if errs[i] != nil {
			failures++
			attrs := []logging.Attr{
				logging.String(logging.FieldAuthor, author.Name),
				logging.Error(errs[i]),
				logging.String(logging.FieldErrorHint, "check the author's source_id and that the page is reachable"),
				logging.String(logging.FieldImpact, "this author's releases were not refreshed this cycle"),
			}
			var fetchErr *source.FetchError
			if errors.As(errs[i], &fetchErr) {
				attrs = append(attrs, logging.String("url", fetchErr.URL))
				if fetchErr.Status != 0 {
					attrs = append(attrs, logging.Int("status", fetchErr.Status))
				}
			}
			logging.WarnWithContext(logger, "author skipped", "author_fetch_failed", attrs...)
			continue
		}
		logger.Debug("author fetched",
			logging.String(logging.FieldAuthor, author.Name),
			logging.Int("drafts", len(slots[i])),
		)
		drafts = append(drafts, slots[i]...)
	}
	return drafts, failures, nil
}
