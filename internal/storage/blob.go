package storage

import (
	"context"
	"sync"
	"time"

	"tyreadvisor/internal/model"
)

// blob is a backend that persists the database as one opaque snapshot.
type blob interface {
	load(ctx context.Context) (*model.Database, error)
	save(ctx context.Context, db *model.Database) error
	close() error
}

// blobStore implements Store on top of a blob backend with a
// read-modify-write cycle per operation. The mutex serialises upserts so
// concurrent requests cannot create duplicate tyre records.
type blobStore struct {
	mu   sync.Mutex
	blob blob
	now  func() time.Time
}

func newBlobStore(b blob) *blobStore {
	return &blobStore{
		blob: b,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *blobStore) Load(ctx context.Context) (*model.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob.load(ctx)
}

func (s *blobStore) Save(ctx context.Context, db *model.Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db.LastSync = s.now()
	return s.blob.save(ctx, db)
}

func (s *blobStore) UpsertTyre(ctx context.Context, raw model.RawTyre) (*model.TyreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return nil, err
	}
	rec := upsertTyre(db, raw, s.now())
	if err := s.blob.save(ctx, db); err != nil {
		return nil, err
	}
	cp := *rec
	return &cp, nil
}

func (s *blobStore) TyreByID(ctx context.Context, id string) (*model.TyreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return nil, err
	}
	rec := tyreByID(db, id)
	if rec == nil {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *blobStore) SearchTyres(ctx context.Context, query string) ([]model.TyreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return nil, err
	}
	return searchTyres(db, query), nil
}

func (s *blobStore) UpdateTyreMetrics(ctx context.Context, tyreID string, popularity float64, mentions int, communityRating float64, lastDiscussed *time.Time) (*model.TyreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return nil, err
	}
	rec := updateTyreMetrics(db, tyreID, popularity, mentions, communityRating, lastDiscussed, s.now())
	if rec == nil {
		return nil, nil
	}
	if err := s.blob.save(ctx, db); err != nil {
		return nil, err
	}
	cp := *rec
	return &cp, nil
}

func (s *blobStore) AddDiscussion(ctx context.Context, d model.Discussion, tyreID string) (*model.DiscussionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return nil, err
	}
	rec := addDiscussion(db, d, tyreID, s.now())
	if err := s.blob.save(ctx, db); err != nil {
		return nil, err
	}
	cp := *rec
	return &cp, nil
}

func (s *blobStore) RecentDiscussions(ctx context.Context, tyreID string, limit int) ([]model.DiscussionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return nil, err
	}
	return recentDiscussions(db, tyreID, limit), nil
}

func (s *blobStore) UpdateUsageStats(ctx context.Context, tyreID, location string, lat, lon float64, mentions int, sentiment model.Sentiment) (*model.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return nil, err
	}
	rec := updateUsage(db, tyreID, location, lat, lon, mentions, sentiment, s.now())
	if err := s.blob.save(ctx, db); err != nil {
		return nil, err
	}
	cp := *rec
	return &cp, nil
}

func (s *blobStore) PopularTyresByLocation(ctx context.Context, location string, limit int) ([]model.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return nil, err
	}
	return popularByLocation(db, location, limit), nil
}

func (s *blobStore) Stats(ctx context.Context) (model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.blob.load(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return snapshotStats(db), nil
}

func (s *blobStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := &model.Database{LastSync: s.now()}
	return s.blob.save(ctx, db)
}

func (s *blobStore) Close() error {
	return s.blob.close()
}
