package score

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tyreadvisor/internal/model"
)

func TestCommunity(t *testing.T) {
	tests := []struct {
		name  string
		usage model.UsageRecord
		want  float64
	}{
		{
			name:  "no mentions",
			usage: model.UsageRecord{},
			want:  0,
		},
		{
			name: "all positive",
			usage: model.UsageRecord{
				TotalMentions: 5, PositiveMentions: 5,
			},
			want: 10,
		},
		{
			name: "all negative clamps to zero",
			usage: model.UsageRecord{
				TotalMentions: 4, NegativeMentions: 4,
			},
			want: 0,
		},
		{
			name: "all neutral",
			usage: model.UsageRecord{
				TotalMentions: 10,
			},
			want: 1,
		},
		{
			name: "mixed",
			usage: model.UsageRecord{
				TotalMentions: 4, PositiveMentions: 2, NegativeMentions: 1,
			},
			// (2*1.0 - 1*0.5 + 1*0.1) / 4 * 10
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Community(tt.usage)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Community() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommunityMonotonicInPositiveMentions(t *testing.T) {
	prev := -1.0
	for pos := 0; pos <= 20; pos++ {
		u := model.UsageRecord{
			TotalMentions:    20,
			PositiveMentions: pos,
			NegativeMentions: 0,
		}
		got := Community(u)
		if got < prev {
			t.Fatalf("Community decreased at positiveMentions=%d: %v < %v", pos, got, prev)
		}
		if got < 0 || got > 10 {
			t.Fatalf("Community out of range at positiveMentions=%d: %v", pos, got)
		}
		prev = got
	}
}

func TestCommunityMonotonicInNegativeMentions(t *testing.T) {
	prev := 11.0
	for neg := 0; neg <= 20; neg++ {
		u := model.UsageRecord{
			TotalMentions:    20,
			PositiveMentions: 0,
			NegativeMentions: neg,
		}
		got := Community(u)
		if got > prev {
			t.Fatalf("Community increased at negativeMentions=%d: %v > %v", neg, got, prev)
		}
		if got < 0 || got > 10 {
			t.Fatalf("Community out of range at negativeMentions=%d: %v", neg, got)
		}
		prev = got
	}
}

func TestTrending(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		usage model.UsageRecord
		want  float64
	}{
		{
			name: "updated now yields total mentions",
			usage: model.UsageRecord{
				TotalMentions: 7, LastUpdated: now,
			},
			want: 7,
		},
		{
			name: "30 days old decays to zero",
			usage: model.UsageRecord{
				TotalMentions: 7, LastUpdated: now.Add(-30 * 24 * time.Hour),
			},
			want: 0,
		},
		{
			name: "older than window clamps at zero",
			usage: model.UsageRecord{
				TotalMentions: 7, LastUpdated: now.Add(-90 * 24 * time.Hour),
			},
			want: 0,
		},
		{
			name: "15 days old decays by half",
			usage: model.UsageRecord{
				TotalMentions: 8, LastUpdated: now.Add(-15 * 24 * time.Hour),
			},
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trending(tt.usage, now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Trending mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
