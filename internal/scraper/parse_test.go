package scraper

import "testing"

func TestBrandFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Maxxis Minion DHF", "Maxxis"},
		{"Continental Trail King", "Continental"},
		{"  Schwalbe Magic Mary  ", "Schwalbe"},
		{"", "Unknown"},
		{"   ", "Unknown"},
	}

	for _, tt := range tests {
		if got := brandFromTitle(tt.title); got != tt.want {
			t.Errorf("brandFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestMatchKnownTyre(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantBrand string
		wantModel string
		wantOK    bool
	}{
		{
			name:      "brand and model family",
			text:      "Maxxis Minion DHF 29x2.5 tyre",
			wantBrand: "Maxxis",
			wantModel: "Maxxis Minion",
			wantOK:    true,
		},
		{
			name:   "brand without model",
			text:   "Maxxis something unknown",
			wantOK: false,
		},
		{
			name:   "model without brand",
			text:   "Minion clone tyre",
			wantOK: false,
		},
		{
			name:   "neither",
			text:   "Shimano XT brakes",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand, modelName, ok := matchKnownTyre(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if brand != tt.wantBrand || modelName != tt.wantModel {
				t.Errorf("got (%q, %q), want (%q, %q)", brand, modelName, tt.wantBrand, tt.wantModel)
			}
		})
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		title       string
		description string
		want        string
	}{
		{"Minion DHF", "", "Downhill"}, // "dh" substring
		{"Big tyre", "perfect for downhill runs", "Downhill"},
		{"Wild Enduro", "", "Enduro"},
		{"Some tyre", "light trail duties", "Trail"},
		{"Race tyre", "xc racing", "Cross Country"},
		{"Gravel grinder", "", "Gravel"},
		{"Slick", "fast road riding", "Road"},
		{"Mystery tyre", "no keywords here", "Trail"},
	}

	for _, tt := range tests {
		if got := detectType(tt.title, tt.description); got != tt.want {
			t.Errorf("detectType(%q, %q) = %q, want %q", tt.title, tt.description, got, tt.want)
		}
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"4.5 out of 5", 4.5},
		{"Rating: 3", 3},
		{"9.2", 5}, // clamped
		{"no rating", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseRating(tt.text); got != tt.want {
			t.Errorf("parseRating(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"1,204 reviews", 1204},
		{"12", 12},
		{"no reviews yet", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseCount(tt.text); got != tt.want {
			t.Errorf("parseCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base string
		href string
		want string
	}{
		{"https://www.mtbr.com", "/products/minion", "https://www.mtbr.com/products/minion"},
		{"https://www.mtbr.com", "https://other.com/x", "https://other.com/x"},
		{"https://www.mtbr.com", "", ""},
	}

	for _, tt := range tests {
		if got := absoluteURL(tt.base, tt.href); got != tt.want {
			t.Errorf("absoluteURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}
