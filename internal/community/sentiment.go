package community

import (
	"strings"

	"tyreadvisor/internal/model"
)

// Sentiment and tag vocabularies. These are data, not code: the classifier
// below never special-cases individual words.
var (
	positiveKeywords = []string{
		"great", "excellent", "amazing", "love", "best", "perfect",
		"awesome", "fantastic", "outstanding", "superb", "brilliant",
		"incredible", "wonderful", "terrific",
	}
	negativeKeywords = []string{
		"terrible", "awful", "horrible", "worst", "hate", "bad", "poor",
		"disappointing", "useless", "broken", "defective", "faulty",
		"problem", "issue",
	}
	tagVocabulary = []string{
		"trail", "enduro", "downhill", "xc", "cross country",
		"all mountain", "dirt jump", "freeride", "technical", "flow",
		"singletrack", "bike park",
	}
)

// ClassifySentiment counts positive and negative keyword hits in text.
// More positive hits wins positive, more negative wins negative, a tie is
// neutral.
func ClassifySentiment(text string) model.Sentiment {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, w := range positiveKeywords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeKeywords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return model.SentimentPositive
	case negative > positive:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// ExtractTags returns every vocabulary term found in text, in vocabulary
// order.
func ExtractTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, term := range tagVocabulary {
		if strings.Contains(lower, term) {
			tags = append(tags, term)
		}
	}
	return tags
}
