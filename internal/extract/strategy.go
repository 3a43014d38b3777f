package extract

import (
	"log/slog"

	"releasewatch/internal/logging"
	"releasewatch/internal/release"
)

// Strategy extracts drafts from a page. skipped reports matches that were
// recognized but could not be turned into drafts; they never abort the page.
type Strategy interface {
	Name() string
	// Fallback strategies run only when every earlier strategy came up empty.
	Fallback() bool
	Extract(page *Page) (drafts []release.Draft, skipped []error)
}

// Chain runs strategies in priority order and concatenates their drafts.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain builds a chain over the given strategies, highest priority first.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		logger:     logging.NewComponentLogger(logger, "extract"),
	}
}

// DefaultChain is structured data, then announcement text, then listings.
func DefaultChain(logger *slog.Logger) *Chain {
	return NewChain(logger, StructuredData{}, PatternText{}, Listing{})
}

// Extract runs the chain against page.
func (c *Chain) Extract(page *Page) []release.Draft {
	var out []release.Draft
	for _, strategy := range c.strategies {
		if strategy.Fallback() && len(out) > 0 {
			c.logger.Debug("fallback strategy skipped",
				logging.Args(logging.DecisionAttrs("extract_fallback", "skipped", "higher-confidence strategies produced drafts")...)...,
			)
			continue
		}
		drafts, skipped := strategy.Extract(page)
		for _, err := range skipped {
			c.logger.Debug("extraction match skipped",
				logging.String("strategy", strategy.Name()),
				logging.String(logging.FieldAuthor, page.Author),
				logging.Error(err),
			)
		}
		if len(drafts) > 0 || len(skipped) > 0 {
			c.logger.Debug("strategy finished",
				logging.String("strategy", strategy.Name()),
				logging.Int("drafts", len(drafts)),
				logging.Int("skipped", len(skipped)),
			)
		}
		out = append(out, drafts...)
	}
	c.logger.Info("page extracted",
		logging.String(logging.FieldAuthor, page.Author),
		logging.String("url", page.URL),
		logging.Int("drafts", len(out)),
		logging.String(logging.FieldEventType, "page_extracted"),
	)
	return out
}
