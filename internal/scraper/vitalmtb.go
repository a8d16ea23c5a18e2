package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tyreadvisor/internal/model"
)

const (
	vitalBaseURL    = "https://www.vitalmtb.com"
	vitalListingURL = vitalBaseURL + "/product/category/Tires"
)

// VitalMTB scrapes the Vital MTB tyre product category.
type VitalMTB struct {
	client *Client
	log    *slog.Logger
	url    string
}

// NewVitalMTB creates a VitalMTB scraper.
func NewVitalMTB(client *Client, log *slog.Logger) *VitalMTB {
	return &VitalMTB{client: client, log: log, url: vitalListingURL}
}

// Name returns the source label attached to scraped records.
func (s *VitalMTB) Name() string { return "vitalmtb.com" }

// Scrape fetches the product category and parses it into raw tyre records.
func (s *VitalMTB) Scrape(ctx context.Context) []model.RawTyre {
	doc, err := s.client.Document(ctx, s.url)
	if err != nil {
		logScrapeFailure(s.log, s.Name(), err)
		return nil
	}

	var tyres []model.RawTyre
	now := time.Now().UTC()

	doc.Find(".product-list-item").Each(func(_ int, el *goquery.Selection) {
		link := el.Find(".p-product-name a")
		modelName := strings.TrimSpace(link.Text())
		url, _ := link.Attr("href")
		brand := strings.TrimSpace(el.Find(".p-brand-name").Text())

		if modelName == "" || url == "" || brand == "" {
			return
		}

		// Vital renders the star rating in the title attribute,
		// e.g. "4.5 out of 5 stars".
		ratingTitle, _ := el.Find(".review-stars").Attr("title")
		rating := parseRating(ratingTitle)
		reviewCount := parseCount(el.Find(".review-count, .reviews-count").Text())

		tyres = append(tyres, model.RawTyre{
			Model:       modelName,
			Brand:       brand,
			Type:        "Tire",
			Description: strings.TrimSpace(el.Find(".short-description").Text()),
			Price:       strings.TrimSpace(el.Find(".price, .msrp, .cost").Text()),
			Rating:      rating,
			ReviewCount: reviewCount,
			Source:      s.Name(),
			URL:         absoluteURL(vitalBaseURL, url),
			ScrapedAt:   now,
		})
	})

	logScrapeResult(s.log, s.Name(), len(tyres))
	return tyres
}
