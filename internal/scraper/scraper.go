// Package scraper collects raw tyre records from external review and
// marketplace sites. Every scraper is best-effort: network errors, non-200
// responses and parse failures degrade to an empty result, never an error
// visible to the caller.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sethvargo/go-retry"

	"tyreadvisor/internal/model"
)

const userAgent = "TyreAdvisorBot/1.0"

// maxBodyBytes caps how much of a listing page is read.
const maxBodyBytes = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SiteScraper produces raw tyre records from one external site.
// Implementations never fail: any error degrades to an empty slice.
type SiteScraper interface {
	Name() string
	Scrape(ctx context.Context) []model.RawTyre
}

// Client fetches and parses listing pages with bounded retries.
type Client struct {
	http       HTTPClient
	retryDelay time.Duration
	maxRetries uint64
}

// NewClient creates a Client around the given HTTP client.
func NewClient(client HTTPClient) *Client {
	return &Client{
		http:       client,
		retryDelay: 500 * time.Millisecond,
		maxRetries: 2,
	}
}

// Get fetches a URL and returns the response body.
// Transient failures (network errors, 5xx) are retried.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("http get: %w", err))
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("server status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("read body: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Document fetches a URL and parses it into a goquery document.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// logScrapeResult logs a completed scrape in a uniform shape.
func logScrapeResult(log *slog.Logger, site string, count int) {
	log.Info("scrape complete", "site", site, "tyres", count)
}

// logScrapeFailure logs a degraded scrape. The scraper still returns an
// empty slice: callers cannot distinguish failure from an empty site.
func logScrapeFailure(log *slog.Logger, site string, err error) {
	log.Error("scrape failed", "site", site, "error", err)
}
