package advisor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"tyreadvisor/internal/community"
	"tyreadvisor/internal/model"
	"tyreadvisor/internal/storage"
)

// Enricher attaches community-derived metrics to raw scraped records and
// merges them into the store.
type Enricher struct {
	store     storage.Store
	community *community.Scraper
	log       *slog.Logger
	limiter   *rate.Limiter
	location  string
}

// NewEnricher creates an Enricher. delay spaces the per-tyre discussion
// lookups; location scopes the usage statistics when no geolocation is
// available.
func NewEnricher(store storage.Store, comm *community.Scraper, log *slog.Logger, delay time.Duration, location string) *Enricher {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	if location == "" {
		location = "Unknown"
	}
	return &Enricher{
		store:     store,
		community: comm,
		log:       log,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
		location:  location,
	}
}

// Enrich processes every raw record, best-effort and size-preserving: the
// result always has one entry per input, and a record whose enrichment fails
// comes through with its raw fields intact and zero community metrics. One
// bad tyre never aborts the batch.
func (e *Enricher) Enrich(ctx context.Context, raws []model.RawTyre) []model.EnrichedTyre {
	out := make([]model.EnrichedTyre, len(raws))
	for i, raw := range raws {
		enriched, err := e.enrichOne(ctx, raw)
		if err != nil {
			e.log.Error("enrichment failed", "model", raw.Model, "brand", raw.Brand, "error", err)
			out[i] = model.EnrichedTyre{RawTyre: raw}
			continue
		}
		out[i] = *enriched
	}
	e.log.Info("enrichment complete", "tyres", len(out))
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, raw model.RawTyre) (*model.EnrichedTyre, error) {
	// Inter-tyre spacing, same courtesy contract as the community scraper.
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	rec, err := e.store.UpsertTyre(ctx, raw)
	if err != nil {
		return nil, err
	}

	discussions := e.community.Discussions(ctx, raw.Model, raw.Brand)
	for _, d := range discussions {
		if _, err := e.store.AddDiscussion(ctx, d, rec.ID); err != nil {
			return nil, err
		}
	}

	var positive, negative int
	for _, d := range discussions {
		switch d.Sentiment {
		case model.SentimentPositive:
			positive++
		case model.SentimentNegative:
			negative++
		}
	}

	enriched := model.EnrichedTyre{
		RawTyre:           raw,
		PopularityScore:   popularity(raw.Rating, raw.ReviewCount),
		MentionsCount:     len(discussions),
		CommunityRating:   communityRating(discussions, raw.Rating),
		DiscussionThreads: discussions,
	}
	if len(discussions) > 0 {
		// Discussions arrive sorted most recent first.
		last := discussions[0].Date
		enriched.LastDiscussed = &last
	}

	// The derived metrics live on the stored record too, not only on the
	// in-memory batch result.
	if _, err := e.store.UpdateTyreMetrics(ctx, rec.ID, enriched.PopularityScore,
		enriched.MentionsCount, enriched.CommunityRating, enriched.LastDiscussed); err != nil {
		return nil, err
	}

	if _, err := e.store.UpdateUsageStats(ctx, rec.ID, e.location, 0, 0,
		len(discussions), overallSentiment(positive, negative)); err != nil {
		return nil, err
	}

	return &enriched, nil
}

// popularity blends the scraped rating with review volume: up to 10 points
// from the rating, up to 5 from review count. Zero without a rating.
func popularity(rating float64, reviewCount int) float64 {
	if rating <= 0 {
		return 0
	}
	bonus := float64(reviewCount) / 10
	if bonus > 5 {
		bonus = 5
	}
	return rating*2 + bonus
}

// communityRating is the mean per-discussion score (positive 1.0, neutral
// 0.5, negative 0.0) scaled to 0-5. Without discussions it falls back to the
// scraped rating, which may itself be zero.
func communityRating(discussions []model.Discussion, scrapedRating float64) float64 {
	if len(discussions) == 0 {
		return scrapedRating
	}
	var sum float64
	for _, d := range discussions {
		switch d.Sentiment {
		case model.SentimentPositive:
			sum += 1.0
		case model.SentimentNegative:
			sum += 0.0
		default:
			sum += 0.5
		}
	}
	return sum / float64(len(discussions)) * 5
}

func overallSentiment(positive, negative int) model.Sentiment {
	switch {
	case positive > negative:
		return model.SentimentPositive
	case negative > positive:
		return model.SentimentNegative
	}
	return model.SentimentNeutral
}
