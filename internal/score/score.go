// Package score computes community and trending scores from usage counters.
// All functions are pure and deterministic; callers re-invoke them whenever
// the underlying counters change.
package score

import (
	"time"

	"tyreadvisor/internal/model"
)

// Sentiment weights for the community score.
const (
	positiveWeight = 1.0
	negativeWeight = -0.5
	neutralWeight  = 0.1
)

// trendingWindow is the linear decay horizon for the trending score.
const trendingWindow = 30 * 24 * time.Hour

// Community returns the weighted sentiment favorability of a usage record,
// clamped to [0, 10]. Mentions that are neither positive nor negative count
// as neutral.
func Community(usage model.UsageRecord) float64 {
	neutral := usage.TotalMentions - usage.PositiveMentions - usage.NegativeMentions

	total := usage.TotalMentions
	if total < 1 {
		total = 1
	}

	s := (float64(usage.PositiveMentions)*positiveWeight +
		float64(usage.NegativeMentions)*negativeWeight +
		float64(neutral)*neutralWeight) / float64(total)

	s *= 10
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

// Trending returns the recency-decayed discussion volume: total mentions
// scaled by a factor that decays linearly from 1 to 0 over 30 days since
// the record was last updated.
func Trending(usage model.UsageRecord, now time.Time) float64 {
	age := now.Sub(usage.LastUpdated)
	recency := 1 - float64(age)/float64(trendingWindow)
	if recency < 0 {
		recency = 0
	}
	return float64(usage.TotalMentions) * recency
}
