package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"tyreadvisor/internal/model"
)

// ReviewFeed scrapes an RSS/Atom feed of tyre reviews. Several review sites
// publish their latest reviews as a feed, which is far more stable than
// their HTML markup.
type ReviewFeed struct {
	client *Client
	log    *slog.Logger
	name   string
	url    string
}

// NewReviewFeed creates a scraper for one review feed. The name is used as
// the source label on scraped records.
func NewReviewFeed(client *Client, log *slog.Logger, name, url string) *ReviewFeed {
	return &ReviewFeed{client: client, log: log, name: name, url: url}
}

// Name returns the source label attached to scraped records.
func (s *ReviewFeed) Name() string { return s.name }

// Scrape fetches and parses the feed. Items whose title does not mention a
// tyre are skipped; the first title token is taken as the brand.
func (s *ReviewFeed) Scrape(ctx context.Context) []model.RawTyre {
	body, err := s.client.Get(ctx, s.url)
	if err != nil {
		logScrapeFailure(s.log, s.Name(), err)
		return nil
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		logScrapeFailure(s.log, s.Name(), err)
		return nil
	}

	var tyres []model.RawTyre
	now := time.Now().UTC()

	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		lower := strings.ToLower(title)
		if !strings.Contains(lower, "tyre") && !strings.Contains(lower, "tire") {
			continue
		}

		modelName := strings.TrimSpace(strings.TrimSuffix(title, " review"))
		if modelName == "" || item.Link == "" {
			continue
		}

		tyres = append(tyres, model.RawTyre{
			Model:       modelName,
			Brand:       brandFromTitle(modelName),
			Type:        detectType(title, item.Description),
			Description: strings.TrimSpace(item.Description),
			Source:      s.Name(),
			URL:         item.Link,
			ScrapedAt:   now,
		})
	}

	logScrapeResult(s.log, s.Name(), len(tyres))
	return tyres
}
