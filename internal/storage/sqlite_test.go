package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"tyreadvisor/internal/model"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	date := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	want := &model.Database{
		Tyres: []model.TyreRecord{
			{
				ID: "t-1", Model: "Minion DHF", Brand: "Maxxis", Type: "Trail",
				Description: "Aggressive front tyre", Rating: 4.8, ReviewCount: 120,
				Sources: []string{"BikeRadar"}, URLs: []string{"https://example.com/dhf"},
				CreatedAt: date, UpdatedAt: date,
			},
		},
		Discussions: []model.DiscussionRecord{
			{
				ID: "d-1", TyreID: "t-1", Title: "DHF in the wet", Content: "Great grip",
				Author: "rider1", Date: date, Source: "Pinkbike Forums",
				URL: "https://example.com/thread", Replies: 4, Views: 200,
				Sentiment: model.SentimentPositive, Tags: []string{"trail"},
				CreatedAt: date,
			},
		},
		UsageStats: []model.UsageRecord{
			{
				ID: "u-1", TyreID: "t-1", Location: "Lake District",
				UsageCount: 2, TotalMentions: 5, PositiveMentions: 4,
				CommunityScore: 8.2, TrendingScore: 3.1, LastUpdated: date,
			},
		},
	}

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(model.Database{}, "LastSync")); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.LastSync.IsZero() {
		t.Error("expected LastSync to be set on save")
	}
}

func TestSQLiteUpsertConcurrentSameTyre(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	raw := model.RawTyre{
		Model: "Butcher", Brand: "Specialized", Type: "Enduro",
		Source: "Vital MTB", URL: "https://example.com/butcher",
	}

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := s.UpsertTyre(ctx, raw)
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-done; err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	tyres, err := s.SearchTyres(ctx, "Butcher")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(tyres) != 1 {
		t.Fatalf("expected 1 tyre after concurrent upserts, got %d", len(tyres))
	}
}

// Ensure every backend satisfies the Store interface.
var (
	_ Store = (*SQLite)(nil)
	_ Store = (*blobStore)(nil)
)
