package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tyreadvisor/internal/model"
)

// ErrNoData signals that every scraper settled with zero records. Callers
// use it to switch to a fallback catalog rather than showing nothing.
var ErrNoData = errors.New("no data scraped from any source")

// Aggregator fans out over all registered site scrapers and merges their
// results in registration order.
type Aggregator struct {
	scrapers []SiteScraper
	log      *slog.Logger
}

// NewAggregator creates an Aggregator over the given scrapers.
func NewAggregator(log *slog.Logger, scrapers ...SiteScraper) *Aggregator {
	return &Aggregator{scrapers: scrapers, log: log}
}

// ScrapeAll runs every scraper concurrently and waits for all of them to
// settle. A panicking scraper contributes zero records and is logged; it
// never aborts the others. Concatenation order is registration order.
// Returns ErrNoData when the merged result is empty.
func (a *Aggregator) ScrapeAll(ctx context.Context) ([]model.RawTyre, error) {
	results := make([][]model.RawTyre, len(a.scrapers))

	var wg sync.WaitGroup
	for i, s := range a.scrapers {
		i, s := i, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.log.Error("scraper panicked", "site", s.Name(), "panic", fmt.Sprint(r))
				}
			}()
			results[i] = s.Scrape(ctx)
		}()
	}
	wg.Wait()

	var merged []model.RawTyre
	for i, r := range results {
		if len(r) == 0 {
			a.log.Warn("scraper returned no records", "site", a.scrapers[i].Name())
			continue
		}
		merged = append(merged, r...)
	}

	a.log.Info("aggregation complete", "sources", len(a.scrapers), "tyres", len(merged))

	if len(merged) == 0 {
		return nil, ErrNoData
	}
	return merged, nil
}
