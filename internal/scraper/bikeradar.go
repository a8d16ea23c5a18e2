package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tyreadvisor/internal/model"
)

const bikeRadarURL = "https://www.bikeradar.com/reviews/components/tyres"

// BikeRadar scrapes the BikeRadar tyre review listing.
type BikeRadar struct {
	client *Client
	log    *slog.Logger
	url    string
}

// NewBikeRadar creates a BikeRadar scraper.
func NewBikeRadar(client *Client, log *slog.Logger) *BikeRadar {
	return &BikeRadar{client: client, log: log, url: bikeRadarURL}
}

// Name returns the source label attached to scraped records.
func (s *BikeRadar) Name() string { return "bikeradar.com" }

// Scrape fetches the review listing and parses it into raw tyre records.
func (s *BikeRadar) Scrape(ctx context.Context) []model.RawTyre {
	doc, err := s.client.Document(ctx, s.url)
	if err != nil {
		logScrapeFailure(s.log, s.Name(), err)
		return nil
	}

	var tyres []model.RawTyre
	now := time.Now().UTC()

	doc.Find(".template-article-listing .card-details").Each(func(_ int, el *goquery.Selection) {
		link := el.Find("a.card-title-link")
		modelName := strings.TrimSpace(strings.TrimSuffix(link.Text(), " review"))
		url, _ := link.Attr("href")

		// Records missing both model and URL are dropped.
		if modelName == "" || url == "" {
			return
		}

		tyres = append(tyres, model.RawTyre{
			Model:       modelName,
			Brand:       brandFromTitle(modelName),
			Type:        "Tire",
			Description: strings.TrimSpace(el.Find("p.card-description").Text()),
			Rating:      parseRating(el.Find(".review-rating-average").Text()),
			Source:      s.Name(),
			URL:         url,
			ScrapedAt:   now,
		})
	})

	logScrapeResult(s.log, s.Name(), len(tyres))
	return tyres
}
