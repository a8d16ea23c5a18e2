// Package model defines the domain types used across the application.
package model

import "time"

// Sentiment is the coarse tone classification of a community discussion.
type Sentiment string

// Supported sentiment values.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// RawTyre is an unprocessed tyre record produced by a single site scraper.
// It is immutable once emitted; ownership passes to the aggregator.
type RawTyre struct {
	Model       string    `json:"model"`
	Brand       string    `json:"brand"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Price       string    `json:"price,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	ReviewCount int       `json:"reviewCount,omitempty"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// Discussion is a community forum thread about a tyre, produced by the
// community scraper.
type Discussion struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Replies   int       `json:"replies"`
	Views     int       `json:"views"`
	Sentiment Sentiment `json:"sentiment"`
	Tags      []string  `json:"tags"`
}

// EnrichedTyre is a RawTyre with community-derived metrics attached by the
// enrichment stage. PopularityScore and CommunityRating are recomputed on
// every enrichment pass, never hand-edited.
type EnrichedTyre struct {
	RawTyre
	PopularityScore   float64      `json:"popularityScore"`
	MentionsCount     int          `json:"mentionsCount"`
	CommunityRating   float64      `json:"communityRating"`
	LastDiscussed     *time.Time   `json:"lastDiscussed,omitempty"`
	DiscussionThreads []Discussion `json:"discussionThreads,omitempty"`
}

// TyreRecord is the persisted form of a tyre, deduplicated by (model, brand)
// case-insensitive. Sources and URLs accumulate across repeated sightings.
type TyreRecord struct {
	ID              string     `json:"id"`
	Model           string     `json:"model"`
	Brand           string     `json:"brand"`
	Type            string     `json:"type"`
	Description     string     `json:"description"`
	Price           string     `json:"price,omitempty"`
	Rating          float64    `json:"rating,omitempty"`
	ReviewCount     int        `json:"reviewCount"`
	PopularityScore float64    `json:"popularityScore"`
	MentionsCount   int        `json:"mentionsCount"`
	CommunityRating float64    `json:"communityRating"`
	LastDiscussed   *time.Time `json:"lastDiscussed,omitempty"`
	Sources         []string   `json:"sources"`
	URLs            []string   `json:"urls"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// DiscussionRecord is a Discussion persisted against a tyre record.
type DiscussionRecord struct {
	ID        string    `json:"id"`
	TyreID    string    `json:"tyreId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Replies   int       `json:"replies"`
	Views     int       `json:"views"`
	Sentiment Sentiment `json:"sentiment"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// UsageRecord accumulates per (tyre, location) usage counters.
// CommunityScore and TrendingScore are pure functions of the counters and
// are recomputed on every update.
type UsageRecord struct {
	ID               string    `json:"id"`
	TyreID           string    `json:"tyreId"`
	Location         string    `json:"location"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	UsageCount       int       `json:"usageCount"`
	TotalMentions    int       `json:"totalMentions"`
	PositiveMentions int       `json:"positiveMentions"`
	NegativeMentions int       `json:"negativeMentions"`
	CommunityScore   float64   `json:"communityScore"`
	TrendingScore    float64   `json:"trendingScore"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// Database is the full persisted dataset: the snapshot exchanged with a
// storage backend.
type Database struct {
	Tyres       []TyreRecord       `json:"tyres"`
	Discussions []DiscussionRecord `json:"discussions"`
	UsageStats  []UsageRecord      `json:"usageStats"`
	LastSync    time.Time          `json:"lastSync"`
}

// Stats summarises the persisted dataset.
type Stats struct {
	TotalTyres        int       `json:"totalTyres"`
	TotalDiscussions  int       `json:"totalDiscussions"`
	TotalUsageRecords int       `json:"totalUsageRecords"`
	LastSync          time.Time `json:"lastSync"`
}

// UserPreferences holds the rider questionnaire answers.
type UserPreferences struct {
	RidingStyle         string `json:"ridingStyle"`
	Terrain             string `json:"terrain"`
	WeatherConditions   string `json:"weatherConditions"`
	SkillLevel          string `json:"skillLevel"`
	Budget              string `json:"budget"`
	BikeType            string `json:"bikeType"`
	WheelSize           string `json:"wheelSize"`
	Weight              string `json:"weight"`
	RidingFrequency     string `json:"ridingFrequency"`
	PerformancePriority string `json:"performancePriority"`
	SuspensionType      string `json:"suspensionType"`
	SuspensionTravel    string `json:"suspensionTravel"`
	AdditionalNotes     string `json:"additionalNotes"`
}

// Recommendation is the scorer output for one tyre. It is ephemeral:
// regenerated per request, never persisted.
type Recommendation struct {
	Model       string   `json:"model"`
	Brand       string   `json:"brand"`
	Type        string   `json:"type"`
	BestFor     string   `json:"bestFor"`
	PriceRange  string   `json:"priceRange"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	Source      string   `json:"source"`
	URL         string   `json:"url,omitempty"`
}
