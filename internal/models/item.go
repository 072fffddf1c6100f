package models

import "time"

// Item types (singular) and sources
const (
	TypeAccommodation = "accommodation"
	TypeTransfer      = "transfer"
	TypeExcursion     = "excursion"
	TypePackage       = "package"
	TypeFlight        = "flight"

	SourceCatalog = "catalog"
	SourceAPI     = "api"
)

// ItemTypes lists every valid item type.
var ItemTypes = []string{TypeAccommodation, TypeTransfer, TypeExcursion, TypePackage, TypeFlight}

// ValidItemType reports whether t is one of the five item types.
func ValidItemType(t string) bool {
	for _, it := range ItemTypes {
		if it == t {
			return true
		}
	}
	return false
}

// QuoteItem is one priced line inside a day. TotalPrice must equal
// round(UnitPrice*Quantity, 2); callers recompute it on every write.
type QuoteItem struct {
	ID          uint   `gorm:"primaryKey"`
	DayID       uint   `gorm:"not null;index"`
	ItemType    string `gorm:"size:16;not null"`
	ItemSource  string `gorm:"size:8;not null;default:'catalog'"`
	ItemName    string `gorm:"size:160;not null"`
	Description string
	StartTime   string `gorm:"size:5"` // HH:MM, optional
	EndTime     string `gorm:"size:5"`
	UnitPrice   float64
	Quantity    int `gorm:"not null;default:1"`
	TotalPrice  float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
