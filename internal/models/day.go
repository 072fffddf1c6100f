package models

import "time"

// QuoteDay is one dated unit within a quote's itinerary.
//
// DayNumber is a stable identifier: it is unique per quote, assigned as
// max(existing)+1 on creation, and never renumbered when other days are
// deleted, so gaps are allowed. DayTotal is derived from item totals.
type QuoteDay struct {
	ID        uint   `gorm:"primaryKey"`
	QuoteID   uint   `gorm:"not null;index;uniqueIndex:idx_quote_day_number"`
	DayNumber int    `gorm:"not null;uniqueIndex:idx_quote_day_number"`
	DayDate   string `gorm:"size:10"` // ISO date, YYYY-MM-DD
	DayTitle  string `gorm:"size:120"`
	DayNotes  string
	DayTotal  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
