package models

import "time"

// Quote statuses
const (
	StatusDraft = "Draft"
	StatusSent  = "Sent"
)

// Quote is the top-level itinerary-with-pricing document. TotalAmount is
// derived from day totals and maintained by the timeline ledger.
type Quote struct {
	ID          uint   `gorm:"primaryKey"`
	QuoteNumber string `gorm:"size:16;uniqueIndex"`
	ClientRef   string `gorm:"size:120"`
	StartDate   string `gorm:"size:10"` // ISO date, YYYY-MM-DD
	EndDate     string `gorm:"size:10"`
	TotalDays   int
	TotalAmount float64
	Status      string `gorm:"size:8;not null;default:'Draft'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
