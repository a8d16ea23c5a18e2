package community

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tyreadvisor/internal/model"
)

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.Sentiment
	}{
		{
			name: "clearly positive",
			text: "Great tyre, excellent grip, love it",
			want: model.SentimentPositive,
		},
		{
			name: "clearly negative",
			text: "Terrible in mud, worst purchase I made",
			want: model.SentimentNegative,
		},
		{
			name: "tie is neutral",
			text: "Great grip but terrible wear",
			want: model.SentimentNeutral,
		},
		{
			name: "no keywords is neutral",
			text: "Ran these for a season on the hardtail",
			want: model.SentimentNeutral,
		},
		{
			name: "matching is case-insensitive",
			text: "AMAZING tyre",
			want: model.SentimentPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySentiment(tt.text); got != tt.want {
				t.Errorf("ClassifySentiment(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "vocabulary order, not text order",
			text: "Rode enduro laps then some trail",
			want: []string{"trail", "enduro"},
		},
		{
			name: "multi-word terms",
			text: "Perfect for cross country and bike park days",
			want: []string{"cross country", "bike park"},
		},
		{
			// Matching is plain substring, so "Excellent" carries "xc".
			name: "terms match inside words",
			text: "Excellent tyre",
			want: []string{"xc"},
		},
		{
			name: "no terms",
			text: "Commuting to work",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ExtractTags(tt.text)); diff != "" {
				t.Errorf("tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
