// Package provider defines the contract with the external inventory source
// used by the API search dialog. This side owns the query shapes, their
// required fields, and the mapping of results onto catalog entries; the
// provider's own query language stays behind the HTTP client.
package provider

import (
	"context"
	"errors"

	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/validation"
)

// ErrInvalidQuery wraps query validation failures; the violations carry the
// per-field detail.
var ErrInvalidQuery = errors.New("invalid provider query")

// HotelQuery searches accommodations.
type HotelQuery struct {
	Destination string `json:"destination"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Rooms       int    `json:"rooms"`
}

func (q HotelQuery) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("destination", q.Destination, v)
	validation.Required("check_in", q.CheckIn, v)
	validation.Required("check_out", q.CheckOut, v)
	validation.ISODate("check_in", q.CheckIn, v)
	validation.ISODate("check_out", q.CheckOut, v)
	validation.MinInt("rooms", q.Rooms, 1, v)
	return v
}

// ActivityQuery searches excursions.
type ActivityQuery struct {
	Destination string `json:"destination"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
}

func (q ActivityQuery) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("destination", q.Destination, v)
	validation.Required("date_from", q.DateFrom, v)
	validation.Required("date_to", q.DateTo, v)
	validation.ISODate("date_from", q.DateFrom, v)
	validation.ISODate("date_to", q.DateTo, v)
	return v
}

// TransferQuery searches transfers.
type TransferQuery struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
	Time string `json:"time"`
}

func (q TransferQuery) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("from", q.From, v)
	validation.Required("to", q.To, v)
	validation.Required("date", q.Date, v)
	validation.Required("time", q.Time, v)
	validation.ISODate("date", q.Date, v)
	validation.ClockTime("time", q.Time, v)
	return v
}

// Result is one provider search hit, already reduced to the fields the
// builder consumes.
type Result struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Searcher is the inventory provider boundary. Only accommodations,
// excursions and transfers are searchable; packages and flights have no
// provider path.
type Searcher interface {
	SearchHotels(ctx context.Context, q HotelQuery) ([]Result, error)
	SearchActivities(ctx context.Context, q ActivityQuery) ([]Result, error)
	SearchTransfers(ctx context.Context, q TransferQuery) ([]Result, error)
}

// CatalogEntryFromResult maps a provider hit onto the catalog record shape
// for the add-to-catalog import path.
func CatalogEntryFromResult(r Result) models.CatalogEntry {
	return models.CatalogEntry{
		Name:         r.Name,
		Location:     r.Location,
		Description:  r.Description,
		StandardRate: r.Price,
		Source:       models.SourceAPI,
		ExternalRef:  r.Code,
	}
}
