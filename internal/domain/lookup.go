package domain

// Season is a uniquely-titled lookup entity describing when a recipe fits
// ("immer", "Sommer", "Weihnachten"). Title is the natural key; comparison
// is exact-string, so case or whitespace variants are distinct seasons.
type Season struct {
	Timestamps
	Title string `json:"title"`
}

// Category is a uniquely-titled lookup entity grouping recipes
// ("Hauptspeisen", "Desserts"). Same natural-key semantics as Season.
type Category struct {
	Timestamps
	Title string `json:"title"`
}
