package domain

// Default lookup titles synthesized when a recipe is created without an
// explicit season or category. A persisted recipe always references both.
const (
	DefaultSeasonTitle   = "immer"
	DefaultCategoryTitle = "Hauptspeisen"
)

// DefaultKind is the kind assigned to recipes created by the import
// pipeline, where the source gives no dietary information.
const DefaultKind = KindMeat

// Recipe is a single entry in the collection.
//
// Ingredients holds the combined ingredients-and-instructions text block:
// the ingredient list, a blank line, then the free-text preparation steps.
// The split into sub-headings lives in the text itself, not the schema.
type Recipe struct {
	Timestamps
	Name        string  `json:"name"`
	Place       string  `json:"place,omitempty"` // where the recipe came from (book, person, site)
	Ingredients string  `json:"ingredients"`
	Portions    string  `json:"portions"`
	SeasonID    string  `json:"season_id"`
	CategoryID  string  `json:"category_id"`
	Photo       []byte  `json:"-"`
	Kinds       Kind    `json:"kinds"`
	Specials    Special `json:"specials"`
}

// HasPhoto reports whether a photo payload is attached.
func (r *Recipe) HasPhoto() bool {
	return len(r.Photo) > 0
}
