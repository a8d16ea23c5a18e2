package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tyreadvisor/internal/model"
)

const (
	mtbrBaseURL    = "https://www.mtbr.com"
	mtbrListingURL = mtbrBaseURL + "/product/tires-and-wheels/tire.html"
)

// MTBR scrapes the MTBR tyre product listing.
type MTBR struct {
	client *Client
	log    *slog.Logger
	url    string
}

// NewMTBR creates an MTBR scraper.
func NewMTBR(client *Client, log *slog.Logger) *MTBR {
	return &MTBR{client: client, log: log, url: mtbrListingURL}
}

// Name returns the source label attached to scraped records.
func (s *MTBR) Name() string { return "mtbr.com" }

// Scrape fetches the product listing and parses it into raw tyre records.
func (s *MTBR) Scrape(ctx context.Context) []model.RawTyre {
	doc, err := s.client.Document(ctx, s.url)
	if err != nil {
		logScrapeFailure(s.log, s.Name(), err)
		return nil
	}

	var tyres []model.RawTyre
	now := time.Now().UTC()

	doc.Find(".product-listing-row").Each(func(_ int, el *goquery.Selection) {
		link := el.Find(".product-listing-name a")
		modelName := strings.TrimSpace(link.Text())
		url, _ := link.Attr("href")

		if modelName == "" || url == "" {
			return
		}

		brand := strings.TrimSpace(el.Find(".product-listing-brand").Text())
		if brand == "" {
			brand = brandFromTitle(modelName)
		}

		reviewCount := parseCount(el.Find(".product-listing-reviews").Text())

		tyres = append(tyres, model.RawTyre{
			Model: modelName,
			Brand: brand,
			Type:  "Tire",
			// The listing page carries no description.
			Description: fmt.Sprintf("A popular tyre with %d reviews on MTBR.", reviewCount),
			Rating:      parseRating(el.Find(".product-listing-rating-score").Text()),
			ReviewCount: reviewCount,
			Source:      s.Name(),
			URL:         absoluteURL(mtbrBaseURL, url),
			ScrapedAt:   now,
		})
	})

	logScrapeResult(s.log, s.Name(), len(tyres))
	return tyres
}
