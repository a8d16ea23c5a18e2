package advisor

import "tyreadvisor/internal/model"

// fallbackCatalog returns the static recommendations served when scraping
// yields nothing. Returned fresh on every call so callers can mutate their
// copy freely.
func fallbackCatalog() []model.Recommendation {
	return []model.Recommendation{
		{
			Model:       "Maxxis Minion DHF",
			Brand:       "Maxxis",
			Type:        "Downhill/Trail",
			BestFor:     "Aggressive trail and enduro riding",
			PriceRange:  "£47-63",
			Rating:      4.8,
			Description: "Excellent grip and durability for aggressive riding",
			Pros:        []string{"Excellent grip", "Durable", "Good in wet conditions"},
			Cons:        []string{"Heavy", "Slow rolling"},
			Source:      "Pinkbike Reviews",
		},
		{
			Model:       "Continental Trail King",
			Brand:       "Continental",
			Type:        "Trail/All Mountain",
			BestFor:     "Versatile trail riding",
			PriceRange:  "£40-55",
			Rating:      4.5,
			Description: "Balanced performance for mixed terrain",
			Pros:        []string{"Good all-around performance", "Lightweight", "Fast rolling"},
			Cons:        []string{"Less grip in extreme conditions"},
			Source:      "Singletrackworld Reviews",
		},
		{
			Model:       "Schwalbe Nobby Nic",
			Brand:       "Schwalbe",
			Type:        "Cross Country/Trail",
			BestFor:     "Fast trail and XC riding",
			PriceRange:  "£36-51",
			Rating:      4.3,
			Description: "Fast rolling with good grip for XC and light trail use",
			Pros:        []string{"Fast rolling", "Lightweight", "Good for XC"},
			Cons:        []string{"Less durable", "Limited grip in technical terrain"},
			Source:      "Pinkbike Reviews",
		},
		{
			Model:       "Michelin Wild Enduro",
			Brand:       "Michelin",
			Type:        "Enduro/Downhill",
			BestFor:     "Aggressive enduro and downhill riding",
			PriceRange:  "£55-71",
			Rating:      4.7,
			Description: "Aggressive enduro tyre with excellent grip in all conditions",
			Pros:        []string{"Excellent grip", "Very durable", "All-weather performance"},
			Cons:        []string{"Heavy", "Expensive", "Slow rolling"},
			Source:      "Singletrackworld Reviews",
		},
		{
			Model:       "WTB Trail Boss",
			Brand:       "WTB",
			Type:        "Trail",
			BestFor:     "Versatile trail riding",
			PriceRange:  "£32-47",
			Rating:      4.2,
			Description: "Versatile trail tyre with good all-around performance",
			Pros:        []string{"Affordable", "Good all-around performance", "Reliable"},
			Cons:        []string{"Not exceptional in any area", "Limited grip in extreme conditions"},
			Source:      "Pinkbike Reviews",
		},
		{
			Model:       "Vittoria Mazza",
			Brand:       "Vittoria",
			Type:        "Enduro/Trail",
			BestFor:     "Aggressive enduro and trail riding",
			PriceRange:  "£51-67",
			Rating:      4.6,
			Description: "Aggressive enduro tyre with excellent grip and durability",
			Pros:        []string{"Excellent grip", "Durable", "Great for technical terrain"},
			Cons:        []string{"Heavy", "Expensive"},
			Source:      "Pinkbike Reviews",
		},
		{
			Model:       "Pirelli Scorpion XC",
			Brand:       "Pirelli",
			Type:        "Cross Country",
			BestFor:     "Fast cross country and racing",
			PriceRange:  "£40-55",
			Rating:      4.2,
			Description: "Fast rolling XC tyre with good grip for racing",
			Pros:        []string{"Fast rolling", "Lightweight", "Good for racing"},
			Cons:        []string{"Less durable", "Limited grip in technical terrain"},
			Source:      "Singletrackworld Reviews",
		},
		{
			Model:       "Maxxis High Roller II",
			Brand:       "Maxxis",
			Type:        "Trail/Enduro",
			BestFor:     "Versatile trail and enduro riding",
			PriceRange:  "£43-59",
			Rating:      4.5,
			Description: "Versatile trail tyre with excellent grip and good rolling speed",
			Pros:        []string{"Excellent grip", "Good rolling speed", "Versatile"},
			Cons:        []string{"Can be noisy on pavement"},
			Source:      "Pinkbike Reviews",
		},
		{
			Model:       "Schwalbe Magic Mary",
			Brand:       "Schwalbe",
			Type:        "Downhill/Enduro",
			BestFor:     "Aggressive downhill and enduro riding",
			PriceRange:  "£55-71",
			Rating:      4.7,
			Description: "Aggressive downhill tyre with exceptional grip in all conditions",
			Pros:        []string{"Exceptional grip", "All-weather performance", "Very durable"},
			Cons:        []string{"Heavy", "Expensive", "Slow rolling"},
			Source:      "Singletrackworld Reviews",
		},
		{
			Model:       "Hutchinson Toro",
			Brand:       "Hutchinson",
			Type:        "Trail/All Mountain",
			BestFor:     "Versatile all-mountain riding",
			PriceRange:  "£40-55",
			Rating:      4.3,
			Description: "Versatile all-mountain tyre with good grip and rolling speed",
			Pros:        []string{"Good all-around performance", "Tubeless ready", "Versatile"},
			Cons:        []string{"Not exceptional in any area"},
			Source:      "Pinkbike Reviews",
		},
	}
}
