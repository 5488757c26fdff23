// Package recipes implements a client for the public TheMealDB recipe
// lookup API.
package recipes

// Ingredient is a single ingredient line with its measure, e.g.
// "Chicken" / "500g".
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Recipe is a fully hydrated recipe as returned by lookup and search.
type Recipe struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Category     string       `json:"category"`
	Area         string       `json:"area"`
	Instructions string       `json:"instructions"`
	ThumbnailURL string       `json:"thumbnail_url"`
	Tags         string       `json:"tags"`
	YoutubeURL   string       `json:"youtube_url"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// Summary is the reduced recipe shape returned by filter endpoints, which
// omit instructions and ingredients.
type Summary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}
