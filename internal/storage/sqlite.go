package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"tyreadvisor/internal/model"
	"tyreadvisor/internal/score"
	"tyreadvisor/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Store backed by a SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection serialises writers and keeps :memory: databases
	// from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// UpsertTyre merges a raw record into the store. The whole read-modify-write
// runs in one transaction so concurrent upserts of the same (model, brand)
// cannot create duplicates.
func (s *SQLite) UpsertTyre(ctx context.Context, raw model.RawTyre) (*model.TyreRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+tyreColumns+` FROM tyres WHERE lower(model) = lower(?) AND lower(brand) = lower(?)`,
		raw.Model, raw.Brand,
	)

	now := s.now()
	existing, err := scanTyre(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		rec := model.TyreRecord{
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
		}
		if err := insertTyre(ctx, tx, &rec); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return &rec, nil

	case err != nil:
		return nil, err
	}

	if raw.Description != "" {
		existing.Description = raw.Description
	}
	if raw.Price != "" {
		existing.Price = raw.Price
	}
	if raw.Rating != 0 {
		existing.Rating = raw.Rating
	}
	if raw.ReviewCount != 0 {
		existing.ReviewCount = raw.ReviewCount
	}
	if !containsString(existing.Sources, raw.Source) {
		existing.Sources = append(existing.Sources, raw.Source)
	}
	if !containsString(existing.URLs, raw.URL) {
		existing.URLs = append(existing.URLs, raw.URL)
	}
	existing.UpdatedAt = now

	if err := updateTyre(ctx, tx, existing); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return existing, nil
}

// TyreByID returns a single tyre record, or nil when absent.
func (s *SQLite) TyreByID(ctx context.Context, id string) (*model.TyreRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tyreColumns+` FROM tyres WHERE id = ?`, id,
	)
	rec, err := scanTyre(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// UpdateTyreMetrics writes community-derived metrics onto a stored tyre.
// Absent records return nil without error, mirroring TyreByID.
func (s *SQLite) UpdateTyreMetrics(ctx context.Context, tyreID string, popularity float64, mentions int, communityRating float64, lastDiscussed *time.Time) (*model.TyreRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+tyreColumns+` FROM tyres WHERE id = ?`, tyreID)
	rec, err := scanTyre(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.PopularityScore = popularity
	rec.MentionsCount = mentions
	rec.CommunityRating = communityRating
	if lastDiscussed != nil {
		d := lastDiscussed.UTC()
		rec.LastDiscussed = &d
	}
	rec.UpdatedAt = s.now()

	if err := updateTyre(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// SearchTyres returns tyres whose model or brand contains the query.
func (s *SQLite) SearchTyres(ctx context.Context, query string) ([]model.TyreRecord, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tyreColumns+` FROM tyres
		 WHERE model LIKE ? COLLATE NOCASE OR brand LIKE ? COLLATE NOCASE
		 ORDER BY created_at`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("query tyres: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.TyreRecord
	for rows.Next() {
		rec, err := scanTyre(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// AddDiscussion persists a discussion keyed to the given tyre.
func (s *SQLite) AddDiscussion(ctx context.Context, d model.Discussion, tyreID string) (*model.DiscussionRecord, error) {
	now := s.now()
	rec := model.DiscussionRecord{
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
	}

	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO discussions
		 (id, tyre_id, title, content, author, date, source, url, replies, views, sentiment, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TyreID, rec.Title, rec.Content, rec.Author,
		rec.Date.UTC().Format(timeLayout), rec.Source, rec.URL,
		rec.Replies, rec.Views, string(rec.Sentiment), string(tags),
		now.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert discussion: %w", err)
	}
	return &rec, nil
}

// RecentDiscussions returns the newest discussions for a tyre. A
// non-positive limit means no limit.
func (s *SQLite) RecentDiscussions(ctx context.Context, tyreID string, limit int) ([]model.DiscussionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tyre_id, title, content, author, date, source, url, replies, views, sentiment, tags, created_at
		 FROM discussions WHERE tyre_id = ? ORDER BY date DESC LIMIT ?`,
		tyreID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query discussions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.DiscussionRecord
	for rows.Next() {
		rec, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// UpdateUsageStats accumulates mention counters for one (tyre, location)
// pair and recomputes the derived scores, transactionally.
func (s *SQLite) UpdateUsageStats(ctx context.Context, tyreID, location string, lat, lon float64, mentions int, sentiment model.Sentiment) (*model.UsageRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+usageColumns+` FROM usage_stats WHERE tyre_id = ? AND location = ?`,
		tyreID, location,
	)

	now := s.now()
	u, err := scanUsage(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u = &model.UsageRecord{
			ID:       uuid.NewString(),
			TyreID:   tyreID,
			Location: location,
			Latitude: lat, Longitude: lon,
		}
	case err != nil:
		return nil, err
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

	_, err = tx.ExecContext(ctx,
		`INSERT INTO usage_stats
		 (id, tyre_id, location, latitude, longitude, usage_count, total_mentions,
		  positive_mentions, negative_mentions, community_score, trending_score, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tyre_id, location) DO UPDATE SET
		  usage_count = excluded.usage_count,
		  total_mentions = excluded.total_mentions,
		  positive_mentions = excluded.positive_mentions,
		  negative_mentions = excluded.negative_mentions,
		  community_score = excluded.community_score,
		  trending_score = excluded.trending_score,
		  last_updated = excluded.last_updated`,
		u.ID, u.TyreID, u.Location, u.Latitude, u.Longitude, u.UsageCount,
		u.TotalMentions, u.PositiveMentions, u.NegativeMentions,
		u.CommunityScore, u.TrendingScore, u.LastUpdated.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert usage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

// PopularTyresByLocation returns usage records for a location ordered by
// community score, best first.
func (s *SQLite) PopularTyresByLocation(ctx context.Context, location string, limit int) ([]model.UsageRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+usageColumns+` FROM usage_stats
		 WHERE location = ? ORDER BY community_score DESC LIMIT ?`,
		location, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.UsageRecord
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Stats returns dataset counters.
func (s *SQLite) Stats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	var lastSync sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT
		 (SELECT COUNT(*) FROM tyres),
		 (SELECT COUNT(*) FROM discussions),
		 (SELECT COUNT(*) FROM usage_stats),
		 (SELECT last_sync FROM sync_meta WHERE id = 1)`,
	).Scan(&st.TotalTyres, &st.TotalDiscussions, &st.TotalUsageRecords, &lastSync)
	if err != nil {
		return model.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	if lastSync.Valid {
		st.LastSync, _ = time.Parse(timeLayout, lastSync.String)
	}
	return st, nil
}

// Load reads the full dataset as one snapshot.
func (s *SQLite) Load(ctx context.Context) (*model.Database, error) {
	db := &model.Database{}

	tyres, err := s.SearchTyres(ctx, "")
	if err != nil {
		return nil, err
	}
	db.Tyres = tyres

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tyre_id, title, content, author, date, source, url, replies, views, sentiment, tags, created_at
		 FROM discussions ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("query discussions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		rec, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		db.Discussions = append(db.Discussions, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	usageRows, err := s.db.QueryContext(ctx, `SELECT `+usageColumns+` FROM usage_stats ORDER BY last_updated`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer func() { _ = usageRows.Close() }()
	for usageRows.Next() {
		u, err := scanUsage(usageRows)
		if err != nil {
			return nil, err
		}
		db.UsageStats = append(db.UsageStats, *u)
	}
	if err := usageRows.Err(); err != nil {
		return nil, err
	}

	var lastSync sql.NullString
	err = s.db.QueryRowContext(ctx, `SELECT last_sync FROM sync_meta WHERE id = 1`).Scan(&lastSync)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query last sync: %w", err)
	}
	if lastSync.Valid {
		db.LastSync, _ = time.Parse(timeLayout, lastSync.String)
	}
	return db, nil
}

// Save replaces the full dataset with the given snapshot.
func (s *SQLite) Save(ctx context.Context, db *model.Database) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"usage_stats", "discussions", "tyres"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i := range db.Tyres {
		if err := insertTyre(ctx, tx, &db.Tyres[i]); err != nil {
			return err
		}
	}
	for _, d := range db.Discussions {
		tags, err := json.Marshal(d.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO discussions
			 (id, tyre_id, title, content, author, date, source, url, replies, views, sentiment, tags, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.TyreID, d.Title, d.Content, d.Author,
			d.Date.UTC().Format(timeLayout), d.Source, d.URL,
			d.Replies, d.Views, string(d.Sentiment), string(tags),
			d.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("insert discussion: %w", err)
		}
	}
	for _, u := range db.UsageStats {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO usage_stats
			 (id, tyre_id, location, latitude, longitude, usage_count, total_mentions,
			  positive_mentions, negative_mentions, community_score, trending_score, last_updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.TyreID, u.Location, u.Latitude, u.Longitude, u.UsageCount,
			u.TotalMentions, u.PositiveMentions, u.NegativeMentions,
			u.CommunityScore, u.TrendingScore, u.LastUpdated.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("insert usage: %w", err)
		}
	}

	if err := s.touchLastSync(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Clear truncates all three collections, typically before a full refresh.
func (s *SQLite) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"usage_stats", "discussions", "tyres"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := s.touchLastSync(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) touchLastSync(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sync_meta (id, last_sync) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET last_sync = excluded.last_sync`,
		s.now().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("update last sync: %w", err)
	}
	return nil
}

const tyreColumns = `id, model, brand, type, description, price, rating, review_count,
 popularity_score, mentions_count, community_rating, last_discussed, sources, urls, created_at, updated_at`

const usageColumns = `id, tyre_id, location, latitude, longitude, usage_count, total_mentions,
 positive_mentions, negative_mentions, community_score, trending_score, last_updated`

func insertTyre(ctx context.Context, tx *sql.Tx, rec *model.TyreRecord) error {
	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	urls, err := json.Marshal(rec.URLs)
	if err != nil {
		return fmt.Errorf("encode urls: %w", err)
	}

	var lastDiscussed *string
	if rec.LastDiscussed != nil {
		v := rec.LastDiscussed.UTC().Format(timeLayout)
		lastDiscussed = &v
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tyres (`+tyreColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Model, rec.Brand, rec.Type, rec.Description, rec.Price,
		rec.Rating, rec.ReviewCount, rec.PopularityScore, rec.MentionsCount,
		rec.CommunityRating, lastDiscussed, string(sources), string(urls),
		rec.CreatedAt.UTC().Format(timeLayout), rec.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert tyre: %w", err)
	}
	return nil
}

func updateTyre(ctx context.Context, tx *sql.Tx, rec *model.TyreRecord) error {
	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	urls, err := json.Marshal(rec.URLs)
	if err != nil {
		return fmt.Errorf("encode urls: %w", err)
	}

	var lastDiscussed *string
	if rec.LastDiscussed != nil {
		v := rec.LastDiscussed.UTC().Format(timeLayout)
		lastDiscussed = &v
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE tyres SET description = ?, price = ?, rating = ?, review_count = ?,
		 popularity_score = ?, mentions_count = ?, community_rating = ?, last_discussed = ?,
		 sources = ?, urls = ?, updated_at = ? WHERE id = ?`,
		rec.Description, rec.Price, rec.Rating, rec.ReviewCount,
		rec.PopularityScore, rec.MentionsCount, rec.CommunityRating, lastDiscussed,
		string(sources), string(urls), rec.UpdatedAt.UTC().Format(timeLayout), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update tyre: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTyre(row scannable) (*model.TyreRecord, error) {
	var rec model.TyreRecord
	var lastDiscussed sql.NullString
	var sources, urls, created, updated string

	err := row.Scan(&rec.ID, &rec.Model, &rec.Brand, &rec.Type, &rec.Description,
		&rec.Price, &rec.Rating, &rec.ReviewCount, &rec.PopularityScore,
		&rec.MentionsCount, &rec.CommunityRating, &lastDiscussed,
		&sources, &urls, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan tyre: %w", err)
	}

	if lastDiscussed.Valid {
		t, _ := time.Parse(timeLayout, lastDiscussed.String)
		rec.LastDiscussed = &t
	}
	if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	if err := json.Unmarshal([]byte(urls), &rec.URLs); err != nil {
		return nil, fmt.Errorf("decode urls: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &rec, nil
}

func scanDiscussion(row scannable) (*model.DiscussionRecord, error) {
	var rec model.DiscussionRecord
	var sentiment, tags, date, created string

	err := row.Scan(&rec.ID, &rec.TyreID, &rec.Title, &rec.Content, &rec.Author,
		&date, &rec.Source, &rec.URL, &rec.Replies, &rec.Views, &sentiment, &tags, &created)
	if err != nil {
		return nil, fmt.Errorf("scan discussion: %w", err)
	}

	rec.Sentiment = model.Sentiment(sentiment)
	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	rec.Date, _ = time.Parse(timeLayout, date)
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	return &rec, nil
}

func scanUsage(row scannable) (*model.UsageRecord, error) {
	var u model.UsageRecord
	var lastUpdated string

	err := row.Scan(&u.ID, &u.TyreID, &u.Location, &u.Latitude, &u.Longitude,
		&u.UsageCount, &u.TotalMentions, &u.PositiveMentions, &u.NegativeMentions,
		&u.CommunityScore, &u.TrendingScore, &lastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan usage: %w", err)
	}
	u.LastUpdated, _ = time.Parse(timeLayout, lastUpdated)
	return &u, nil
}
