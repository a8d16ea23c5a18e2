package advisor

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tyreadvisor/internal/model"
)

const maxRecommendations = 10

// The scorer is a keyword-table rule engine: all matching vocabulary lives
// in these maps so behaviour can be extended without touching control flow.

// styleMatches maps a rider's declared style to the tyre type substrings
// that satisfy it.
var styleMatches = map[string][]string{
	"Cross Country (XC)": {"Cross Country", "XC"},
	"Trail":              {"Trail", "All Mountain"},
	"Enduro":             {"Enduro", "Trail"},
	"Downhill":           {"Downhill", "DH"},
	"All Mountain":       {"All Mountain", "Trail", "Enduro"},
	"Gravel":             {"Gravel"},
	"Road":               {"Road"},
	"Urban/Commuting":    {"Road", "Gravel"},
}

// terrainMatches maps a terrain answer to description keywords.
var terrainMatches = map[string][]string{
	"Smooth trails":    {"smooth", "flow", "fast"},
	"Rocky trails":     {"rocky", "technical", "rough"},
	"Muddy trails":     {"mud", "wet", "slippery"},
	"Loose gravel":     {"loose", "gravel", "sandy"},
	"Hardpack":         {"hardpack", "hard", "packed"},
	"Mixed terrain":    {"mixed", "varied", "all-around"},
	"Pavement":         {"pavement", "road", "urban"},
	"Technical trails": {"technical", "challenging", "difficult"},
}

// weatherMatches maps a weather answer to description keywords.
var weatherMatches = map[string][]string{
	"Dry conditions":   {"dry", "summer", "hardpack"},
	"Wet conditions":   {"wet", "mud", "rain", "slippery"},
	"Mixed conditions": {"mixed", "all-weather", "versatile"},
	"All weather":      {"all-weather", "versatile", "mixed"},
	"Mostly dry":       {"dry", "summer", "hardpack"},
	"Mostly wet":       {"wet", "mud", "rain", "slippery"},
}

// vocabEntry pairs description keywords with the pro or con they earn.
type vocabEntry struct {
	keywords []string
	text     string
}

// prosVocabulary pairs description keywords with the pro they earn.
var prosVocabulary = []vocabEntry{
	{[]string{"grip", "traction"}, "Excellent grip and traction"},
	{[]string{"durable", "long-lasting"}, "Durable and long-lasting"},
	{[]string{"lightweight", "light"}, "Lightweight"},
	{[]string{"fast", "rolling"}, "Fast rolling"},
	{[]string{"puncture", "flat"}, "Puncture resistant"},
}

// consVocabulary pairs description keywords with the con they earn.
var consVocabulary = []vocabEntry{
	{[]string{"heavy", "weight"}, "Heavy"},
	{[]string{"slow", "rolling resistance"}, "Slow rolling"},
	{[]string{"expensive", "pricey"}, "Expensive"},
	{[]string{"noisy", "loud"}, "Noisy on pavement"},
}

// bestForByType maps tyre type substrings to a use-case phrase, checked in
// order.
var bestForByType = []struct {
	typeSubstr string
	phrase     string
}{
	{"Downhill", "Aggressive downhill and enduro riding"},
	{"Enduro", "Enduro and aggressive trail riding"},
	{"Trail", "Versatile trail riding"},
	{"Cross Country", "Fast cross country and light trail riding"},
	{"All Mountain", "All-around mountain biking"},
	{"Gravel", "Gravel and mixed surface riding"},
	{"Road", "Road and urban riding"},
}

// Recommend filters enriched candidates against the rider's preferences,
// converts survivors into recommendations, pads from the fallback catalog
// when too few survive, and returns the top candidates by rating. Pure over
// its inputs.
func Recommend(prefs model.UserPreferences, enriched []model.EnrichedTyre) []model.Recommendation {
	var recs []model.Recommendation

	candidates := filterCandidates(prefs, enriched)
	if len(candidates) > 20 {
		candidates = candidates[:20]
	}
	for _, t := range candidates {
		if rec := toRecommendation(t); rec != nil {
			recs = append(recs, *rec)
		}
	}

	if len(recs) < maxRecommendations {
		recs = append(recs, fallbackCatalog()...)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Rating > recs[j].Rating
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// filterCandidates applies the style, terrain and weather predicates
// conjunctively. A blank preference field skips its filter.
func filterCandidates(prefs model.UserPreferences, enriched []model.EnrichedTyre) []model.EnrichedTyre {
	var out []model.EnrichedTyre
	for _, t := range enriched {
		if prefs.RidingStyle != "" && !matchesAny(t.Type, styleMatches[prefs.RidingStyle], false) {
			continue
		}
		if prefs.Terrain != "" && !matchesAny(t.Description, terrainMatches[prefs.Terrain], true) {
			continue
		}
		if prefs.WeatherConditions != "" && !matchesAny(t.Description, weatherMatches[prefs.WeatherConditions], true) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesAny(text string, keywords []string, fold bool) bool {
	if fold {
		text = strings.ToLower(text)
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// toRecommendation converts one enriched tyre. Records without a model or
// brand are unusable and yield nil.
func toRecommendation(t model.EnrichedTyre) *model.Recommendation {
	if t.Model == "" || t.Brand == "" {
		return nil
	}

	rating := t.Rating
	if rating == 0 {
		rating = 4.0
	}

	return &model.Recommendation{
		Model:       t.Model,
		Brand:       t.Brand,
		Type:        t.Type,
		BestFor:     bestFor(t.Type),
		PriceRange:  priceRange(t),
		Rating:      rating,
		Description: t.Description,
		Pros:        scanVocabulary(t.Description, prosVocabulary, "Good all-around performance"),
		Cons:        scanVocabulary(t.Description, consVocabulary, "May not excel in all conditions"),
		Source:      t.Source,
		URL:         t.URL,
	}
}

func scanVocabulary(description string, vocab []vocabEntry, fallback string) []string {
	desc := strings.ToLower(description)

	var out []string
	for _, entry := range vocab {
		for _, kw := range entry.keywords {
			if strings.Contains(desc, kw) {
				out = append(out, entry.text)
				break
			}
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}

func bestFor(tyreType string) string {
	for _, entry := range bestForByType {
		if strings.Contains(tyreType, entry.typeSubstr) {
			return entry.phrase
		}
	}
	return "General mountain biking"
}

// priceRange uses the scraped price when present, otherwise a brand-tier
// estimate.
func priceRange(t model.EnrichedTyre) string {
	if t.Price != "" {
		return t.Price
	}
	switch t.Brand {
	case "Maxxis", "Continental":
		return "£47-63"
	case "Schwalbe", "Michelin":
		return "£40-55"
	case "Specialized", "Bontrager":
		return "£32-47"
	}
	return "£36-51"
}

// refinement strategies, checked in priority order. Each keeps only the
// recommendations whose pros mention one of its keywords.
var refineStrategies = []struct {
	triggers []string
	keep     []string
}{
	{[]string{"wet", "mud"}, []string{"grip", "traction"}},
	{[]string{"durability", "long-lasting"}, []string{"durable", "long-lasting"}},
	{[]string{"speed", "fast"}, []string{"fast", "rolling"}},
	{[]string{"weight", "light"}, []string{"lightweight"}},
}

var priceTriggers = []string{"price", "cost", "budget"}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Refine re-filters or re-sorts an existing recommendation list against a
// free-text follow-up question. An unmatched question is a no-op, not an
// error: the input is returned unchanged.
func Refine(recs []model.Recommendation, question string) []model.Recommendation {
	q := strings.ToLower(question)

	for _, strat := range refineStrategies {
		if !containsAny(q, strat.triggers) {
			continue
		}
		var kept []model.Recommendation
		for _, rec := range recs {
			if prosMention(rec.Pros, strat.keep) {
				kept = append(kept, rec)
			}
		}
		return kept
	}

	if containsAny(q, priceTriggers) {
		sorted := make([]model.Recommendation, len(recs))
		copy(sorted, recs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return parsePrice(sorted[i].PriceRange) < parsePrice(sorted[j].PriceRange)
		})
		return sorted
	}

	return recs
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func prosMention(pros []string, keywords []string) bool {
	for _, pro := range pros {
		if containsAny(strings.ToLower(pro), keywords) {
			return true
		}
	}
	return false
}

// parsePrice concatenates every digit in a price range and parses the
// result, mirroring how the ranges are compared everywhere else: "£47-63"
// sorts as 4763.
func parsePrice(priceRange string) float64 {
	digits := nonDigits.ReplaceAllString(priceRange, "")
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return v
}
