package domain

import "strings"

// Kind classifies a recipe by its main ingredient profile.
// Kinds are independent bit flags so a recipe can carry several at once
// (e.g. a dish that works both vegetarian and with fish).
type Kind int

// Kind flags.
const (
	KindVegan      Kind = 1 << 0
	KindVegetarian Kind = 1 << 1
	KindFish       Kind = 1 << 2
	KindMeat       Kind = 1 << 3
)

// AllKinds lists every kind flag in display order.
var AllKinds = []Kind{KindVegan, KindVegetarian, KindFish, KindMeat}

// Contains reports whether all flags in other are set.
func (k Kind) Contains(other Kind) bool {
	return k&other == other
}

// DisplayName returns the label for a single kind flag.
// The labels are German, matching the recipe collection's language.
func (k Kind) DisplayName() string {
	switch k {
	case KindVegan:
		return "Vegan"
	case KindVegetarian:
		return "Vegetarisch"
	case KindFish:
		return "Fisch"
	case KindMeat:
		return "Fleisch"
	}
	return "Unbekannt"
}

// Title returns the comma-joined display names of all set flags.
// Empty string for an empty set.
func (k Kind) Title() string {
	names := make([]string, 0, len(AllKinds))
	for _, flag := range AllKinds {
		if k.Contains(flag) {
			names = append(names, flag.DisplayName())
		}
	}
	return strings.Join(names, ", ")
}

// Special marks a recipe for particular serving occasions.
// Like Kind, specials are independent bit flags.
type Special int

// Special flags.
const (
	SpecialAmuseGueule Special = 1 << 0
	SpecialSnack       Special = 1 << 1
	SpecialSoup        Special = 1 << 2
)

// AllSpecials lists every special flag in display order.
var AllSpecials = []Special{SpecialAmuseGueule, SpecialSnack, SpecialSoup}

// Contains reports whether all flags in other are set.
func (s Special) Contains(other Special) bool {
	return s&other == other
}

// DisplayName returns the label for a single special flag.
func (s Special) DisplayName() string {
	switch s {
	case SpecialAmuseGueule:
		return "Amuse-Gueule"
	case SpecialSnack:
		return "Snack"
	case SpecialSoup:
		return "Suppe"
	}
	return "Unbekannt"
}

// Title returns the comma-joined display names of all set flags.
func (s Special) Title() string {
	names := make([]string, 0, len(AllSpecials))
	for _, flag := range AllSpecials {
		if s.Contains(flag) {
			names = append(names, flag.DisplayName())
		}
	}
	return strings.Join(names, ", ")
}
