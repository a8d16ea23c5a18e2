// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"tyreadvisor/internal/model"
	"tyreadvisor/internal/score"
)

// Store is the interface for all persistence operations. Implementations
// are injected into the pipeline; there is no ambient global store.
type Store interface {
	Load(ctx context.Context) (*model.Database, error)
	Save(ctx context.Context, db *model.Database) error

	UpsertTyre(ctx context.Context, raw model.RawTyre) (*model.TyreRecord, error)
	TyreByID(ctx context.Context, id string) (*model.TyreRecord, error)
	SearchTyres(ctx context.Context, query string) ([]model.TyreRecord, error)
	UpdateTyreMetrics(ctx context.Context, tyreID string, popularity float64, mentions int, communityRating float64, lastDiscussed *time.Time) (*model.TyreRecord, error)

	AddDiscussion(ctx context.Context, d model.Discussion, tyreID string) (*model.DiscussionRecord, error)
	RecentDiscussions(ctx context.Context, tyreID string, limit int) ([]model.DiscussionRecord, error)

	UpdateUsageStats(ctx context.Context, tyreID, location string, lat, lon float64, mentions int, sentiment model.Sentiment) (*model.UsageRecord, error)
	PopularTyresByLocation(ctx context.Context, location string, limit int) ([]model.UsageRecord, error)

	Stats(ctx context.Context) (model.Stats, error)
	Clear(ctx context.Context) error

	Close() error
}

// The helpers below mutate a Database snapshot in place. Blob-style
// backends (memory, file, gist) share them; callers hold the backend lock.

// upsertTyre merges a raw record into the snapshot. Identity is
// (model, brand) case-insensitive: exactly one record exists per pair.
func upsertTyre(db *model.Database, raw model.RawTyre, now time.Time) *model.TyreRecord {
	for i := range db.Tyres {
		t := &db.Tyres[i]
		if !strings.EqualFold(t.Model, raw.Model) || !strings.EqualFold(t.Brand, raw.Brand) {
			continue
		}

		if raw.Description != "" {
			t.Description = raw.Description
		}
		if raw.Price != "" {
			t.Price = raw.Price
		}
		if raw.Rating != 0 {
			t.Rating = raw.Rating
		}
		if raw.ReviewCount != 0 {
			t.ReviewCount = raw.ReviewCount
		}
		if !containsString(t.Sources, raw.Source) {
			t.Sources = append(t.Sources, raw.Source)
		}
		if !containsString(t.URLs, raw.URL) {
			t.URLs = append(t.URLs, raw.URL)
		}
		t.UpdatedAt = now
		return t
	}

	db.Tyres = append(db.Tyres, model.TyreRecord{
		ID:          uuid.NewString(),
		Model:       raw.Model,
		Brand:       raw.Brand,
		Type:        raw.Type,
		Description: raw.Description,
		Price:       raw.Price,
		Rating:      raw.Rating,
		ReviewCount: raw.ReviewCount,
		Sources:     []string{raw.Source},
		URLs:        []string{raw.URL},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return &db.Tyres[len(db.Tyres)-1]
}

// addDiscussion appends a discussion keyed to the given tyre.
func addDiscussion(db *model.Database, d model.Discussion, tyreID string, now time.Time) *model.DiscussionRecord {
	db.Discussions = append(db.Discussions, model.DiscussionRecord{
		ID:        uuid.NewString(),
		TyreID:    tyreID,
		Title:     d.Title,
		Content:   d.Content,
		Author:    d.Author,
		Date:      d.Date,
		Source:    d.Source,
		URL:       d.URL,
		Replies:   d.Replies,
		Views:     d.Views,
		Sentiment: d.Sentiment,
		Tags:      d.Tags,
		CreatedAt: now,
	})
	return &db.Discussions[len(db.Discussions)-1]
}

// updateUsage accumulates mention counters for one (tyre, location) pair and
// recomputes the derived scores.
func updateUsage(db *model.Database, tyreID, location string, lat, lon float64, mentions int, sentiment model.Sentiment, now time.Time) *model.UsageRecord {
	var u *model.UsageRecord
	for i := range db.UsageStats {
		if db.UsageStats[i].TyreID == tyreID && db.UsageStats[i].Location == location {
			u = &db.UsageStats[i]
			break
		}
	}
	if u == nil {
		db.UsageStats = append(db.UsageStats, model.UsageRecord{
			ID:       uuid.NewString(),
			TyreID:   tyreID,
			Location: location,
			Latitude: lat, Longitude: lon,
		})
		u = &db.UsageStats[len(db.UsageStats)-1]
	}

	u.UsageCount++
	u.TotalMentions += mentions
	switch sentiment {
	case model.SentimentPositive:
		u.PositiveMentions += mentions
	case model.SentimentNegative:
		u.NegativeMentions += mentions
	}
	u.LastUpdated = now
	u.CommunityScore = score.Community(*u)
	u.TrendingScore = score.Trending(*u, now)
	return u
}

// updateTyreMetrics writes community-derived metrics onto a stored tyre.
// Returns nil when the record is absent.
func updateTyreMetrics(db *model.Database, tyreID string, popularity float64, mentions int, communityRating float64, lastDiscussed *time.Time, now time.Time) *model.TyreRecord {
	t := tyreByID(db, tyreID)
	if t == nil {
		return nil
	}
	t.PopularityScore = popularity
	t.MentionsCount = mentions
	t.CommunityRating = communityRating
	if lastDiscussed != nil {
		d := lastDiscussed.UTC()
		t.LastDiscussed = &d
	}
	t.UpdatedAt = now
	return t
}

func popularByLocation(db *model.Database, location string, limit int) []model.UsageRecord {
	var out []model.UsageRecord
	for _, u := range db.UsageStats {
		if u.Location == location {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CommunityScore > out[j].CommunityScore
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func recentDiscussions(db *model.Database, tyreID string, limit int) []model.DiscussionRecord {
	var out []model.DiscussionRecord
	for _, d := range db.Discussions {
		if d.TyreID == tyreID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func searchTyres(db *model.Database, query string) []model.TyreRecord {
	q := strings.ToLower(query)
	var out []model.TyreRecord
	for _, t := range db.Tyres {
		if strings.Contains(strings.ToLower(t.Model), q) ||
			strings.Contains(strings.ToLower(t.Brand), q) {
			out = append(out, t)
		}
	}
	return out
}

func tyreByID(db *model.Database, id string) *model.TyreRecord {
	for i := range db.Tyres {
		if db.Tyres[i].ID == id {
			return &db.Tyres[i]
		}
	}
	return nil
}

func snapshotStats(db *model.Database) model.Stats {
	return model.Stats{
		TotalTyres:        len(db.Tyres),
		TotalDiscussions:  len(db.Discussions),
		TotalUsageRecords: len(db.UsageStats),
		LastSync:          db.LastSync,
	}
}

func containsString(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
