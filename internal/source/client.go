package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"releasewatch/internal/authors"
	"releasewatch/internal/config"
	"releasewatch/internal/extract"
	"releasewatch/internal/logging"
	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
)

// maxPageBytes bounds how much of a page is read.
const maxPageBytes = 4 << 20

// Client fetches author pages.
type Client struct {
	baseURL     string
	userAgent   string
	includePast bool
	http        *http.Client
	limiter     *rate.Limiter
	chain       *extract.Chain
	logger      *slog.Logger
	now         func() time.Time
}

// NewClient builds a Client from the [source] configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	burst := cfg.Source.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.Source.BaseURL, "/"),
		userAgent:   cfg.Source.UserAgent,
		includePast: cfg.Source.IncludePast,
		http:        &http.Client{Timeout: cfg.SourceTimeout()},
		limiter:     rate.NewLimiter(rate.Limit(cfg.Source.RequestsPerSecond), burst),
		chain:       extract.DefaultChain(logger),
		logger:      logging.NewComponentLogger(logger, "source"),
		now:         time.Now,
	}
}

// AuthorURL returns the page tracked for author.
func (c *Client) AuthorURL(author authors.Author) string {
	return c.baseURL + "/authors/" + url.PathEscape(author.SourceID)
}

// FetchAndExtract downloads the author's page and returns the drafts found
// on it. Drafts dated before today are dropped unless include_past is set;
// drafts without a date are kept.
func (c *Client) FetchAndExtract(ctx context.Context, author authors.Author) ([]release.Draft, error) {
	pageURL := c.AuthorURL(author)
	body, err := c.fetch(ctx, author.Name, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	page, err := extract.NewPage(pageURL, author.Name, body)
	if err != nil {
		return nil, &FetchError{Author: author.Name, URL: pageURL, Err: fmt.Errorf("parse page: %w", err)}
	}
	drafts := c.chain.Extract(page)
	if c.includePast {
		return drafts, nil
	}
	return c.filterPast(drafts), nil
}

// Extract runs the extraction chain over an already retrieved document.
func (c *Client) Extract(pageURL, author string, r io.Reader) ([]release.Draft, error) {
	page, err := extract.NewPage(pageURL, author, r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return c.chain.Extract(page), nil
}

// Fetch retrieves an arbitrary URL through the shared limiter.
func (c *Client) Fetch(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	return c.fetch(ctx, "", pageURL)
}

func (c *Client) fetch(ctx context.Context, author, pageURL string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Author: author, URL: pageURL, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{Author: author, URL: pageURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	c.logger.Debug("fetching author page", logging.String(logging.FieldAuthor, author), logging.String("url", pageURL))
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Author: author, URL: pageURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &FetchError{
			Author: author,
			URL:    pageURL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: %s", ErrUnexpectedStatus, strings.TrimSpace(string(snippet))),
		}
	}
	c.logger.Debug("author page fetched",
		logging.String(logging.FieldAuthor, author),
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(start)),
	)
	return readCloser{Reader: io.LimitReader(resp.Body, maxPageBytes), Closer: resp.Body}, nil
}

func (c *Client) filterPast(drafts []release.Draft) []release.Draft {
	today := releasedate.Today(c.now())
	out := drafts[:0:0]
	for _, d := range drafts {
		if !d.ReleaseDate.IsZero() && d.ReleaseDate.Before(today) {
			c.logger.Debug("past release dropped",
				logging.String("title", d.Title),
				logging.String("release_date", d.ReleaseDate.String()),
			)
			continue
		}
		out = append(out, d)
	}
	return out
}

type readCloser struct {
	io.Reader
	io.Closer
}
