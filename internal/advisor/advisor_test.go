package advisor

import (
	"context"
	"testing"
	"time"

	"tyreadvisor/internal/community"
	"tyreadvisor/internal/model"
	"tyreadvisor/internal/scraper"
	"tyreadvisor/internal/storage"
)

// stubScraper is a canned site scraper; panicking stubs exercise the
// settle-all contract.
type stubScraper struct {
	name    string
	records []model.RawTyre
	panics  bool
	called  bool
}

func (s *stubScraper) Name() string { return s.name }

func (s *stubScraper) Scrape(context.Context) []model.RawTyre {
	s.called = true
	if s.panics {
		panic("markup changed")
	}
	return s.records
}

func newTestAdvisor(t *testing.T, store storage.Store, client community.HTTPClient, scrapers ...scraper.SiteScraper) *Advisor {
	t.Helper()
	log := discardLogger()
	agg := scraper.NewAggregator(log, scrapers...)
	comm := community.New(client, log, time.Millisecond)
	enricher := NewEnricher(store, comm, log, time.Millisecond, "Test Valley")
	return New(agg, enricher, store, log)
}

func TestRecommendationsFallBackWhenAllScrapersFail(t *testing.T) {
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	adv := newTestAdvisor(t, store, noDiscussionsClient{},
		&stubScraper{name: "a", panics: true},
		&stubScraper{name: "b", panics: true},
		&stubScraper{name: "c", panics: true},
		&stubScraper{name: "d", panics: true},
	)

	got := adv.Recommendations(context.Background(), model.UserPreferences{}, "", nil)

	if len(got.Recommendations) == 0 {
		t.Fatal("expected the static fallback catalog, got no recommendations")
	}
	if got.EnrichedData == nil || len(got.EnrichedData) != 0 {
		t.Errorf("expected empty enriched data, got %v", got.EnrichedData)
	}
}

func TestRecommendationsFullCycle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	adv := newTestAdvisor(t, store, noDiscussionsClient{},
		&stubScraper{name: "reviews", records: []model.RawTyre{
			{Model: "Assegai", Brand: "Maxxis", Type: "Downhill", Description: "grip on rocky terrain", Rating: 4.9, Source: "reviews", URL: "u"},
		}},
	)

	got := adv.Recommendations(ctx, model.UserPreferences{RidingStyle: "Downhill"}, "", nil)

	if len(got.EnrichedData) != 1 {
		t.Fatalf("expected 1 enriched record, got %d", len(got.EnrichedData))
	}
	if got.Recommendations[0].Model != "Assegai" {
		t.Errorf("expected scraped tyre ranked first, got %s", got.Recommendations[0].Model)
	}

	// The cycle persisted the tyre as a side effect.
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTyres != 1 {
		t.Errorf("expected 1 persisted tyre, got %d", stats.TotalTyres)
	}
}

func TestRecommendationsRefinementSkipsScraping(t *testing.T) {
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	stub := &stubScraper{name: "reviews"}
	adv := newTestAdvisor(t, store, noDiscussionsClient{}, stub)

	current := []model.Recommendation{
		{Model: "A", Pros: []string{"Excellent grip"}},
		{Model: "B", Pros: []string{"Fast rolling"}},
	}
	got := adv.Recommendations(context.Background(), model.UserPreferences{}, "best in wet weather?", current)

	if stub.called {
		t.Error("refinement must not trigger a new scrape cycle")
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].Model != "A" {
		t.Errorf("expected only the grip recommendation, got %+v", got.Recommendations)
	}
}

func TestRefreshAllSuccess(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	adv := newTestAdvisor(t, store, noDiscussionsClient{},
		&stubScraper{name: "reviews", records: []model.RawTyre{
			{Model: "Minion DHF", Brand: "Maxxis", Source: "reviews", URL: "u1"},
			{Model: "Butcher", Brand: "Specialized", Source: "reviews", URL: "u2"},
		}},
	)

	got, err := adv.RefreshAll(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !got.Success {
		t.Errorf("expected success, got %+v", got)
	}
	if got.Count != 2 {
		t.Errorf("expected count 2, got %d", got.Count)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTyres != 2 {
		t.Errorf("expected 2 persisted tyres, got %d", stats.TotalTyres)
	}
}

func TestRefreshAllClearsPreviousData(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	if _, err := store.UpsertTyre(ctx, model.RawTyre{Model: "Stale", Brand: "Old", Source: "s", URL: "u"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	adv := newTestAdvisor(t, store, noDiscussionsClient{},
		&stubScraper{name: "reviews", records: []model.RawTyre{
			{Model: "Fresh", Brand: "New", Source: "reviews", URL: "u"},
		}},
	)
	if _, err := adv.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	stale, err := store.SearchTyres(ctx, "Stale")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(stale) != 0 {
		t.Error("refresh must clear previously persisted tyres")
	}
}

func TestRefreshAllReportsNoData(t *testing.T) {
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	adv := newTestAdvisor(t, store, noDiscussionsClient{}, &stubScraper{name: "empty"})

	got, err := adv.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got.Success {
		t.Error("expected failure report when nothing was scraped")
	}
	if got.Count != 0 {
		t.Errorf("expected count 0, got %d", got.Count)
	}
}

func TestSeedFillsEmptyStoreOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	adv := newTestAdvisor(t, store, noDiscussionsClient{})

	if err := adv.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	stats, err := adv.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTyres != len(fallbackCatalog()) {
		t.Errorf("expected %d seeded tyres, got %d", len(fallbackCatalog()), stats.TotalTyres)
	}

	// Seeding again is a no-op.
	if err := adv.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	stats, _ = adv.Stats(ctx)
	if stats.TotalTyres != len(fallbackCatalog()) {
		t.Errorf("second seed duplicated records: %d tyres", stats.TotalTyres)
	}
}
