// Package catalog serves the product catalog behind the sidebar and the
// generic search dialog: category-scoped listing, text search, and the
// canned filter chips.
//
// Filters compose as a logical AND: an entry must match the text query and
// the active chip to be listed. The original widget applied them as
// independent last-applied-wins visibility passes; that ambiguity is
// deliberately not preserved.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/records"
)

// Filter chips for the sidebar.
const (
	ChipStarred = "starred"
	ChipRecent  = "recent"  // created within the last 30 days
	ChipPopular = "popular" // used more than 5 times
)

// Source filters for the search dialog.
const (
	SourceAll     = "all"
	SourceStarred = "starred"
)

const recentWindow = 30 * 24 * time.Hour

var (
	ErrUnknownCategory = errors.New("unknown catalog category")
	ErrUnknownFilter   = errors.New("unknown catalog filter")
	ErrEntryNotFound   = errors.New("catalog entry not found")
)

type Service struct {
	store *records.Store
	now   func() time.Time
}

func New(store *records.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Filters narrows a category listing. Zero values match everything.
type Filters struct {
	Query string // case-insensitive substring over name/location/description
	Chip  string // "", starred, recent or popular
}

// List loads a category's collection and applies the filters. Every call is
// one backend query; nothing is cached across category switches.
func (s *Service) List(ctx context.Context, category string, f Filters) ([]models.CatalogEntry, error) {
	col, ok := records.CatalogCollection(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if f.Chip != "" && f.Chip != ChipStarred && f.Chip != ChipRecent && f.Chip != ChipPopular {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, f.Chip)
	}
	var entries []models.CatalogEntry
	s.store.Fetch(ctx, col, "", &entries)

	out := entries[:0]
	for _, e := range entries {
		if !s.matchChip(e, f.Chip) {
			continue
		}
		if !matchQuery(e, f.Query) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Search backs the generic search dialog: substring filter across
// name/location/description plus a source chip (all, catalog, api, starred).
func (s *Service) Search(ctx context.Context, category, query, source string) ([]models.CatalogEntry, error) {
	col, ok := records.CatalogCollection(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	switch source {
	case "", SourceAll, models.SourceCatalog, models.SourceAPI, SourceStarred:
	default:
		return nil, fmt.Errorf("%w: source %q", ErrUnknownFilter, source)
	}
	var entries []models.CatalogEntry
	s.store.Fetch(ctx, col, "", &entries)

	out := entries[:0]
	for _, e := range entries {
		switch source {
		case models.SourceCatalog, models.SourceAPI:
			if e.Source != source {
				continue
			}
		case SourceStarred:
			if !e.Starred {
				continue
			}
		}
		if !matchQuery(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Create persists a new entry into a category's collection.
func (s *Service) Create(ctx context.Context, category string, e *models.CatalogEntry) error {
	col, ok := records.CatalogCollection(category)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if e.Source == "" {
		e.Source = models.SourceCatalog
	}
	return s.store.Create(ctx, col, e)
}

// BumpUsage increments an entry's usage count after it was inserted into a
// quote. Feeds the popular filter.
func (s *Service) BumpUsage(ctx context.Context, category string, id uint) error {
	col, ok := records.CatalogCollection(category)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	var entries []models.CatalogEntry
	s.store.Fetch(ctx, col, fmt.Sprintf("ID == %d", id), &entries)
	if len(entries) == 0 {
		return fmt.Errorf("%w: id %d in %s", ErrEntryNotFound, id, category)
	}
	return s.store.Update(ctx, col, id, map[string]any{"UsageCount": entries[0].UsageCount + 1})
}

func (s *Service) matchChip(e models.CatalogEntry, chip string) bool {
	switch chip {
	case ChipStarred:
		return e.Starred
	case ChipRecent:
		return s.now().Sub(e.CreatedAt) <= recentWindow
	case ChipPopular:
		return e.UsageCount > 5
	default:
		return true
	}
}

func matchQuery(e models.CatalogEntry, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), q) ||
		strings.Contains(strings.ToLower(e.Location), q) ||
		strings.Contains(strings.ToLower(e.Description), q)
}
