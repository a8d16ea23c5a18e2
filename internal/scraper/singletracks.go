package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tyreadvisor/internal/model"
)

const singletracksURL = "https://www.singletracks.com/mtb-gear/category/tires/"

// Singletracks scrapes the Singletracks gear category for tyres.
type Singletracks struct {
	client *Client
	log    *slog.Logger
	url    string
}

// NewSingletracks creates a Singletracks scraper.
func NewSingletracks(client *Client, log *slog.Logger) *Singletracks {
	return &Singletracks{client: client, log: log, url: singletracksURL}
}

// Name returns the source label attached to scraped records.
func (s *Singletracks) Name() string { return "singletracks.com" }

// Scrape fetches the gear listing and parses it into raw tyre records.
func (s *Singletracks) Scrape(ctx context.Context) []model.RawTyre {
	doc, err := s.client.Document(ctx, s.url)
	if err != nil {
		logScrapeFailure(s.log, s.Name(), err)
		return nil
	}

	var tyres []model.RawTyre
	now := time.Now().UTC()

	doc.Find("article.post-type-st_gear").Each(func(_ int, el *goquery.Selection) {
		link := el.Find("h2.entry-title a")
		modelName := strings.TrimSpace(link.Text())
		url, _ := link.Attr("href")

		if modelName == "" || url == "" {
			return
		}

		tyres = append(tyres, model.RawTyre{
			Model:       modelName,
			Brand:       brandFromTitle(modelName),
			Type:        "Tire",
			Description: strings.TrimSpace(el.Find(".entry-content p").Text()),
			Rating:      parseRating(el.Find(".rating-score").Text()),
			Source:      s.Name(),
			URL:         url,
			ScrapedAt:   now,
		})
	})

	logScrapeResult(s.log, s.Name(), len(tyres))
	return tyres
}
