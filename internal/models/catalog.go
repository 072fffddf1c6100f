package models

import "time"

// Catalog categories (plural, matching the backing collections).
const (
	CategoryAccommodations = "accommodations"
	CategoryTransfers      = "transfers"
	CategoryExcursions     = "excursions"
	CategoryPackages       = "packages"
	CategoryFlights        = "flights"
)

// Categories lists the five catalog categories in display order.
var Categories = []string{
	CategoryAccommodations,
	CategoryTransfers,
	CategoryExcursions,
	CategoryPackages,
	CategoryFlights,
}

// ValidCategory reports whether c names a catalog category.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// categoryItemType maps a category onto the item type its entries produce.
var categoryItemType = map[string]string{
	CategoryAccommodations: TypeAccommodation,
	CategoryTransfers:      TypeTransfer,
	CategoryExcursions:     TypeExcursion,
	CategoryPackages:       TypePackage,
	CategoryFlights:        TypeFlight,
}

// ItemTypeForCategory returns the item type for a category, or "" if the
// category is unknown.
func ItemTypeForCategory(c string) string { return categoryItemType[c] }

// CategoryForItemType returns the category whose entries produce item type
// t, or "" if t is unknown.
func CategoryForItemType(t string) string {
	for c, it := range categoryItemType {
		if it == t {
			return c
		}
	}
	return ""
}

// CatalogEntry is a reusable travel product. All five category collections
// share this shape; Category scopes an entry to its collection. Entries are
// immutable from the builder's perspective except for api-search imports and
// the UsageCount bump on insertion into a quote.
type CatalogEntry struct {
	ID           uint   `gorm:"primaryKey"`
	Category     string `gorm:"size:16;not null;index"`
	Name         string `gorm:"size:160;not null"`
	Location     string `gorm:"size:120"`
	Description  string
	StandardRate float64
	Source       string `gorm:"size:8;not null;default:'catalog'"`
	Starred      bool
	UsageCount   int
	ExternalRef  string `gorm:"size:64"` // provider code for api imports
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
