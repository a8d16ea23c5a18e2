// Package advisor wires the scrape, enrichment and scoring stages into the
// entry points the outer UI layer consumes.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tyreadvisor/internal/model"
	"tyreadvisor/internal/scraper"
	"tyreadvisor/internal/storage"
)

// Advisor drives one scrape-enrich-score cycle per request.
type Advisor struct {
	aggregator *scraper.Aggregator
	enricher   *Enricher
	store      storage.Store
	log        *slog.Logger
}

// New creates an Advisor over the given pipeline stages.
func New(agg *scraper.Aggregator, enricher *Enricher, store storage.Store, log *slog.Logger) *Advisor {
	return &Advisor{
		aggregator: agg,
		enricher:   enricher,
		store:      store,
		log:        log,
	}
}

// Result is the recommendation entry point's output.
type Result struct {
	Recommendations []model.Recommendation `json:"recommendations"`
	EnrichedData    []model.EnrichedTyre   `json:"enrichedData"`
}

// RefreshResult reports the outcome of a full data refresh.
type RefreshResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Recommendations answers the rider questionnaire. With a refinement
// question and an existing list it refines instead of scraping. The method
// is total: when scraping yields nothing the static fallback catalog is
// returned with empty enriched data, never an error.
func (a *Advisor) Recommendations(ctx context.Context, prefs model.UserPreferences, refinementQuestion string, current []model.Recommendation) *Result {
	if refinementQuestion != "" && len(current) > 0 {
		return &Result{Recommendations: Refine(current, refinementQuestion)}
	}

	raws, err := a.aggregator.ScrapeAll(ctx)
	if err != nil {
		if !errors.Is(err, scraper.ErrNoData) {
			a.log.Error("scrape cycle failed", "error", err)
		}
		a.log.Warn("serving fallback catalog", "reason", err)
		return &Result{
			Recommendations: Recommend(prefs, nil),
			EnrichedData:    []model.EnrichedTyre{},
		}
	}

	enriched := a.enricher.Enrich(ctx, raws)
	return &Result{
		Recommendations: Recommend(prefs, enriched),
		EnrichedData:    enriched,
	}
}

// RefreshAll clears the store and rebuilds it from a full scrape-and-enrich
// cycle. Unlike the read paths, persistence failures here are surfaced: an
// operator asked for the refresh and needs to know it did not stick.
func (a *Advisor) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	if err := a.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear store: %w", err)
	}

	raws, err := a.aggregator.ScrapeAll(ctx)
	if errors.Is(err, scraper.ErrNoData) {
		return &RefreshResult{
			Success: false,
			Message: "no data scraped from any source",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scrape all sources: %w", err)
	}

	enriched := a.enricher.Enrich(ctx, raws)

	stats, err := a.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify refreshed store: %w", err)
	}
	a.log.Info("data refresh complete", "scraped", len(raws), "persisted", stats.TotalTyres)

	return &RefreshResult{
		Success: true,
		Message: fmt.Sprintf("refreshed %d tyres from all sources", len(enriched)),
		Count:   len(enriched),
	}, nil
}

// Stats reports the persisted dataset counters.
func (a *Advisor) Stats(ctx context.Context) (model.Stats, error) {
	return a.store.Stats(ctx)
}

// Search returns stored tyres whose model or brand matches the query.
func (a *Advisor) Search(ctx context.Context, query string) ([]model.TyreRecord, error) {
	return a.store.SearchTyres(ctx, query)
}

// PopularTyres returns the best community-scored tyres for a location.
func (a *Advisor) PopularTyres(ctx context.Context, location string, limit int) ([]model.UsageRecord, error) {
	return a.store.PopularTyresByLocation(ctx, location, limit)
}

// Seed fills an empty store from the fallback catalog so a fresh deployment
// has something to recommend before its first scrape.
func (a *Advisor) Seed(ctx context.Context) error {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("check store: %w", err)
	}
	if stats.TotalTyres > 0 {
		return nil
	}

	for _, rec := range fallbackCatalog() {
		raw := model.RawTyre{
			Model:       rec.Model,
			Brand:       rec.Brand,
			Type:        rec.Type,
			Description: rec.Description,
			Price:       rec.PriceRange,
			Rating:      rec.Rating,
			Source:      rec.Source,
			URL:         rec.URL,
		}
		if _, err := a.store.UpsertTyre(ctx, raw); err != nil {
			return fmt.Errorf("seed %s %s: %w", raw.Brand, raw.Model, err)
		}
	}
	a.log.Info("seeded store from static catalog")
	return nil
}
