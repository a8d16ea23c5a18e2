package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ratingPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	digitsPattern = regexp.MustCompile(`\d+`)
)

// Known tyre brands and model families used to recognise tyres in
// marketplace-style listings where titles are free text.
var (
	knownBrands = []string{
		"Maxxis", "Continental", "Schwalbe", "Michelin", "Hutchinson",
		"Vittoria", "Pirelli", "Specialized", "Bontrager", "WTB",
		"Panaracer", "IRC",
	}
	knownModels = []string{
		"Minion", "High Roller", "Ardent", "Crossmark", "Trail King",
		"Mountain King", "Nobby Nic", "Rocket Ron", "Racing Ralph",
		"Wild Enduro", "DHR", "Aggressor",
	}
)

// brandFromTitle extracts the brand as the first whitespace-delimited token
// of a product title. This is a lossy heuristic: multi-word brands are
// truncated to their first word.
func brandFromTitle(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return "Unknown"
	}
	return fields[0]
}

// matchKnownTyre scans free text for a known brand and model family.
// Both must match or the listing is not treated as a tyre.
func matchKnownTyre(text string) (brand, modelName string, ok bool) {
	for _, b := range knownBrands {
		if strings.Contains(text, b) {
			brand = b
			break
		}
	}
	for _, m := range knownModels {
		if strings.Contains(text, m) {
			modelName = m
			break
		}
	}
	if brand == "" || modelName == "" {
		return "", "", false
	}
	return brand, brand + " " + modelName, true
}

// detectType classifies a tyre by scanning title and description for
// discipline keywords. Defaults to Trail.
func detectType(title, description string) string {
	text := strings.ToLower(title + " " + description)

	switch {
	case strings.Contains(text, "downhill") || strings.Contains(text, "dh"):
		return "Downhill"
	case strings.Contains(text, "enduro"):
		return "Enduro"
	case strings.Contains(text, "trail"):
		return "Trail"
	case strings.Contains(text, "cross country") || strings.Contains(text, "xc"):
		return "Cross Country"
	case strings.Contains(text, "all mountain"):
		return "All Mountain"
	case strings.Contains(text, "gravel"):
		return "Gravel"
	case strings.Contains(text, "road"):
		return "Road"
	}
	return "Trail"
}

// parseRating extracts the first decimal number from text and clamps it to
// the 0-5 star range. Returns 0 when no number is present.
func parseRating(text string) float64 {
	m := ratingPattern.FindString(text)
	if m == "" {
		return 0
	}
	r, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// parseCount extracts the first run of digits from text, for review and
// reply counters rendered as "1,250 reviews" or similar.
func parseCount(text string) int {
	cleaned := strings.ReplaceAll(text, ",", "")
	m := digitsPattern.FindString(cleaned)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// absoluteURL prefixes site-relative hrefs with the site base URL.
func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return base + href
}
