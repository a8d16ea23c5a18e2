package advisor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tyreadvisor/internal/community"
	"tyreadvisor/internal/model"
	"tyreadvisor/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noDiscussionsClient fails every request, so the community scraper finds
// nothing.
type noDiscussionsClient struct{}

func (noDiscussionsClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("unreachable")
}

// forumFixture serves a canned Pinkbike search result and fails every other
// host.
const forumPage = `<html><body>
<div class="forum-thread">
  <div class="thread-title"><a href="/threads/1">Great tyre, love the grip</a></div>
  <span class="thread-author">alice</span>
  <span class="thread-date">2 days ago</span>
  <span class="thread-replies">5 replies</span>
  <span class="thread-views">120 views</span>
  <div class="thread-preview">Best tyre I have run on trail</div>
</div>
<div class="forum-thread">
  <div class="thread-title"><a href="/threads/2">Terrible in mud</a></div>
  <span class="thread-author">bob</span>
  <span class="thread-date">5 days ago</span>
  <span class="thread-replies">2 replies</span>
  <span class="thread-views">40 views</span>
  <div class="thread-preview">Worst wet weather performance</div>
</div>
</body></html>`

type forumFixture struct{}

func (forumFixture) Do(req *http.Request) (*http.Response, error) {
	if req.URL.Host != "www.pinkbike.com" {
		return nil, errors.New("unreachable")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader([]byte(forumPage))),
	}, nil
}

// failingStore errors on the first persistence call the enricher makes.
type failingStore struct {
	storage.Store
}

func (failingStore) UpsertTyre(context.Context, model.RawTyre) (*model.TyreRecord, error) {
	return nil, errors.New("disk full")
}

func newTestEnricher(t *testing.T, store storage.Store, client community.HTTPClient) *Enricher {
	t.Helper()
	comm := community.New(client, discardLogger(), time.Millisecond)
	return NewEnricher(store, comm, discardLogger(), time.Millisecond, "Test Valley")
}

func TestEnrichIsSizePreservingOnFailure(t *testing.T) {
	e := newTestEnricher(t, failingStore{}, noDiscussionsClient{})

	raws := []model.RawTyre{
		{Model: "Minion DHF", Brand: "Maxxis", Source: "a", URL: "u1"},
		{Model: "Butcher", Brand: "Specialized", Source: "a", URL: "u2"},
	}
	got := e.Enrich(context.Background(), raws)

	if len(got) != len(raws) {
		t.Fatalf("expected %d records, got %d", len(raws), len(got))
	}
	for i := range raws {
		want := model.EnrichedTyre{RawTyre: raws[i]}
		if diff := cmp.Diff(want, got[i]); diff != "" {
			t.Errorf("record %d: failed enrichment must pass the raw record through (-want +got):\n%s", i, diff)
		}
	}
}

func TestEnrichComputesCommunityMetrics(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	e := newTestEnricher(t, store, forumFixture{})

	raws := []model.RawTyre{
		{Model: "Minion DHF", Brand: "Maxxis", Rating: 4.5, ReviewCount: 30, Source: "BikeRadar", URL: "u"},
	}
	got := e.Enrich(ctx, raws)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}

	enriched := got[0]
	// One positive and one negative thread from the fixture.
	if enriched.MentionsCount != 2 {
		t.Errorf("mentions: expected 2, got %d", enriched.MentionsCount)
	}
	if enriched.CommunityRating != 2.5 {
		t.Errorf("community rating: expected 2.5, got %v", enriched.CommunityRating)
	}
	if enriched.PopularityScore != 4.5*2+3 {
		t.Errorf("popularity: expected 12, got %v", enriched.PopularityScore)
	}
	if enriched.LastDiscussed == nil {
		t.Fatal("expected LastDiscussed to be set")
	}
	if len(enriched.DiscussionThreads) != 2 {
		t.Fatalf("expected 2 threads attached, got %d", len(enriched.DiscussionThreads))
	}
	// Most recent thread first.
	if !enriched.LastDiscussed.Equal(enriched.DiscussionThreads[0].Date) {
		t.Error("LastDiscussed should be the newest thread's date")
	}

	// The store accumulated the tyre, its discussions and a usage record.
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTyres != 1 || stats.TotalDiscussions != 2 || stats.TotalUsageRecords != 1 {
		t.Errorf("unexpected store counts: %+v", stats)
	}

	// The derived metrics are written back onto the persisted record.
	persisted, err := store.SearchTyres(ctx, "Minion DHF")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("expected 1 persisted tyre, got %d", len(persisted))
	}
	rec := persisted[0]
	if rec.MentionsCount != enriched.MentionsCount ||
		rec.CommunityRating != enriched.CommunityRating ||
		rec.PopularityScore != enriched.PopularityScore {
		t.Errorf("persisted metrics diverge from enriched result: %+v", rec)
	}
	if rec.LastDiscussed == nil || !rec.LastDiscussed.Equal(*enriched.LastDiscussed) {
		t.Errorf("persisted LastDiscussed = %v, want %v", rec.LastDiscussed, enriched.LastDiscussed)
	}

	popular, err := store.PopularTyresByLocation(ctx, "Test Valley", 10)
	if err != nil {
		t.Fatalf("popular: %v", err)
	}
	if len(popular) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(popular))
	}
	if popular[0].TotalMentions != 2 {
		t.Errorf("usage mentions: expected 2, got %d", popular[0].TotalMentions)
	}
}

func TestEnrichWithNoDiscussionsFallsBackToScrapedRating(t *testing.T) {
	store := storage.NewMemory()
	defer func() { _ = store.Close() }()

	e := newTestEnricher(t, store, noDiscussionsClient{})

	got := e.Enrich(context.Background(), []model.RawTyre{
		{Model: "Ardent", Brand: "Maxxis", Rating: 4.4, Source: "a", URL: "u"},
	})
	if got[0].CommunityRating != 4.4 {
		t.Errorf("expected scraped rating fallback 4.4, got %v", got[0].CommunityRating)
	}
	if got[0].MentionsCount != 0 {
		t.Errorf("expected zero mentions, got %d", got[0].MentionsCount)
	}
}

func TestPopularity(t *testing.T) {
	tests := []struct {
		name    string
		rating  float64
		reviews int
		want    float64
	}{
		{"no rating means no score", 0, 500, 0},
		{"review bonus capped at five", 4.0, 500, 13},
		{"small review count", 4.5, 20, 11},
		{"no reviews", 3.0, 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := popularity(tt.rating, tt.reviews); got != tt.want {
				t.Errorf("popularity(%v, %d) = %v, want %v", tt.rating, tt.reviews, got, tt.want)
			}
		})
	}
}

func TestCommunityRating(t *testing.T) {
	pos := model.Discussion{Sentiment: model.SentimentPositive}
	neu := model.Discussion{Sentiment: model.SentimentNeutral}
	neg := model.Discussion{Sentiment: model.SentimentNegative}

	tests := []struct {
		name        string
		discussions []model.Discussion
		scraped     float64
		want        float64
	}{
		{"no discussions uses scraped rating", nil, 4.2, 4.2},
		{"no discussions no rating", nil, 0, 0},
		{"all positive", []model.Discussion{pos, pos}, 0, 5},
		{"all negative", []model.Discussion{neg, neg}, 4.8, 0},
		{"mixed", []model.Discussion{pos, neu, neg}, 0, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := communityRating(tt.discussions, tt.scraped); got != tt.want {
				t.Errorf("communityRating = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverallSentiment(t *testing.T) {
	tests := []struct {
		positive, negative int
		want               model.Sentiment
	}{
		{3, 1, model.SentimentPositive},
		{1, 3, model.SentimentNegative},
		{2, 2, model.SentimentNeutral},
		{0, 0, model.SentimentNeutral},
	}

	for _, tt := range tests {
		if got := overallSentiment(tt.positive, tt.negative); got != tt.want {
			t.Errorf("overallSentiment(%d, %d) = %s, want %s", tt.positive, tt.negative, got, tt.want)
		}
	}
}
