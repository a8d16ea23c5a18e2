package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tyreadvisor/internal/model"
)

// Pinkbike buy/sell searches for both spellings.
var pinkbikeURLs = []string{
	"https://www.pinkbike.com/buysell/list/?category=2&keywords=tyre",
	"https://www.pinkbike.com/buysell/list/?category=2&keywords=tire",
}

const pinkbikeReviewsURL = "https://www.pinkbike.com/reviews/"

// Pinkbike scrapes the Pinkbike buy/sell marketplace and the reviews
// section for tyre listings. Titles are free text in both, so entries are
// only accepted when a known brand and model family can be recognised.
type Pinkbike struct {
	client     *Client
	log        *slog.Logger
	urls       []string
	reviewsURL string
}

// NewPinkbike creates a Pinkbike scraper.
func NewPinkbike(client *Client, log *slog.Logger) *Pinkbike {
	return &Pinkbike{client: client, log: log, urls: pinkbikeURLs, reviewsURL: pinkbikeReviewsURL}
}

// Name returns the source label attached to scraped records.
func (s *Pinkbike) Name() string { return "Pinkbike" }

// Scrape fetches the marketplace listings and parses them into raw tyre
// records. A failed listing page degrades to zero records for that page.
func (s *Pinkbike) Scrape(ctx context.Context) []model.RawTyre {
	var tyres []model.RawTyre
	now := time.Now().UTC()

	for _, url := range s.urls {
		doc, err := s.client.Document(ctx, url)
		if err != nil {
			logScrapeFailure(s.log, s.Name(), err)
			continue
		}

		doc.Find(".buysell-item").Each(func(_ int, el *goquery.Selection) {
			title := strings.TrimSpace(el.Find(".buysell-item-title").Text())
			description := strings.TrimSpace(el.Find(".buysell-item-description").Text())
			price := strings.TrimSpace(el.Find(".buysell-item-price").Text())

			lower := strings.ToLower(title)
			if !strings.Contains(lower, "tyre") && !strings.Contains(lower, "tire") {
				return
			}

			brand, modelName, ok := matchKnownTyre(title)
			if !ok {
				return
			}

			desc := description
			if desc == "" {
				desc = title
			}

			tyres = append(tyres, model.RawTyre{
				Model:       modelName,
				Brand:       brand,
				Type:        detectType(title, description),
				Description: desc,
				Price:       price,
				Source:      s.Name(),
				URL:         url,
				ScrapedAt:   now,
			})
		})
	}

	tyres = append(tyres, s.scrapeReviews(ctx, now)...)

	logScrapeResult(s.log, s.Name(), len(tyres))
	return tyres
}

// scrapeReviews parses the reviews section, which uses its own markup and
// source label. Reviews carry no price.
func (s *Pinkbike) scrapeReviews(ctx context.Context, now time.Time) []model.RawTyre {
	doc, err := s.client.Document(ctx, s.reviewsURL)
	if err != nil {
		logScrapeFailure(s.log, "Pinkbike Reviews", err)
		return nil
	}

	var tyres []model.RawTyre
	doc.Find(".review-item").Each(func(_ int, el *goquery.Selection) {
		title := strings.TrimSpace(el.Find(".review-title").Text())
		content := strings.TrimSpace(el.Find(".review-content").Text())

		lower := strings.ToLower(title)
		if !strings.Contains(lower, "tyre") && !strings.Contains(lower, "tire") {
			return
		}

		brand, modelName, ok := matchKnownTyre(title)
		if !ok {
			return
		}

		desc := content
		if desc == "" {
			desc = title
		}

		tyres = append(tyres, model.RawTyre{
			Model:       modelName,
			Brand:       brand,
			Type:        detectType(title, content),
			Description: desc,
			Source:      "Pinkbike Reviews",
			URL:         s.reviewsURL,
			ScrapedAt:   now,
		})
	})

	return tyres
}
