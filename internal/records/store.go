// Package records wraps all backend record access behind the collection
// oriented CRUD facade the quote builder was written against: named
// collections, single-equality criteria strings, and fetch semantics that
// swallow errors into an empty result. Everything above this package talks
// in collections and criteria, not tables and SQL.
package records

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/dmcsuite/quotebuilder/internal/models"
)

// Collection names one of the backend record collections.
type Collection string

const (
	CollectionQuote          Collection = "Quote"
	CollectionQuoteDays      Collection = "QuoteDays"
	CollectionQuoteItems     Collection = "QuoteItems"
	CollectionAccommodations Collection = "Accommodations"
	CollectionTransfers      Collection = "Transfers"
	CollectionExcursions     Collection = "Excursions"
	CollectionPackages       Collection = "Packages"
	CollectionFlights        Collection = "Flights"
)

// ErrUnknownCollection is returned by mutating calls for collection names
// outside the enumerated set.
var ErrUnknownCollection = errors.New("unknown collection")

// binding ties a collection to its model prototype. The five catalog
// collections share the CatalogEntry model and differ only in the implicit
// category scope.
type binding struct {
	proto    func() any
	category string
}

var bindings = map[Collection]binding{
	CollectionQuote:          {proto: func() any { return &models.Quote{} }},
	CollectionQuoteDays:      {proto: func() any { return &models.QuoteDay{} }},
	CollectionQuoteItems:     {proto: func() any { return &models.QuoteItem{} }},
	CollectionAccommodations: {proto: func() any { return &models.CatalogEntry{} }, category: models.CategoryAccommodations},
	CollectionTransfers:      {proto: func() any { return &models.CatalogEntry{} }, category: models.CategoryTransfers},
	CollectionExcursions:     {proto: func() any { return &models.CatalogEntry{} }, category: models.CategoryExcursions},
	CollectionPackages:       {proto: func() any { return &models.CatalogEntry{} }, category: models.CategoryPackages},
	CollectionFlights:        {proto: func() any { return &models.CatalogEntry{} }, category: models.CategoryFlights},
}

// CatalogCollection maps a catalog category to its collection name, with ok
// false for unknown categories.
func CatalogCollection(category string) (Collection, bool) {
	for col, b := range bindings {
		if b.category != "" && b.category == category {
			return col, true
		}
	}
	return "", false
}

// Store is the record client. It is safe for concurrent use; a Store obtained
// from Transaction is scoped to that transaction.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// Create persists a record into a collection and populates its generated ID.
// For catalog collections the entry's Category is forced to the collection's
// category.
func (s *Store) Create(ctx context.Context, col Collection, rec any) error {
	b, ok := bindings[col]
	if !ok {
		return fmt.Errorf("create %q: %w", col, ErrUnknownCollection)
	}
	if b.category != "" {
		if e, ok := rec.(*models.CatalogEntry); ok {
			e.Category = b.category
		}
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create %s: %w", col, err)
	}
	return nil
}

// Fetch loads every record of a collection matching the criteria into dest,
// which must be a pointer to a slice of the collection's model. Order is not
// significant. Failures are logged and leave dest empty: list callers see an
// empty result, never an error.
func (s *Store) Fetch(ctx context.Context, col Collection, criteria string, dest any) {
	b, ok := bindings[col]
	if !ok {
		log.Printf("[records] fetch %s: unknown collection", col)
		return
	}
	cond, err := parseCriteria(criteria)
	if err != nil {
		log.Printf("[records] fetch %s: %v", col, err)
		return
	}
	q := s.db.WithContext(ctx)
	if b.category != "" {
		q = q.Where("category = ?", b.category)
	}
	if cond != nil {
		q = q.Where(fmt.Sprintf("%s = ?", cond.column), cond.value)
	}
	if err := q.Find(dest).Error; err != nil {
		log.Printf("[records] fetch %s: %v", col, err)
	}
}

// Update applies a partial update to one record. Field keys use record field
// names (DayTotal, ItemName, ...) and are mapped to columns here.
func (s *Store) Update(ctx context.Context, col Collection, id uint, fields map[string]any) error {
	b, ok := bindings[col]
	if !ok {
		return fmt.Errorf("update %q: %w", col, ErrUnknownCollection)
	}
	if len(fields) == 0 {
		return nil
	}
	cols := make(map[string]any, len(fields))
	for k, v := range fields {
		cols[columnName(k)] = v
	}
	if err := s.db.WithContext(ctx).Model(b.proto()).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fmt.Errorf("update %s id=%d: %w", col, id, err)
	}
	return nil
}

// Delete removes one record by ID.
func (s *Store) Delete(ctx context.Context, col Collection, id uint) error {
	b, ok := bindings[col]
	if !ok {
		return fmt.Errorf("delete %q: %w", col, ErrUnknownCollection)
	}
	if err := s.db.WithContext(ctx).Delete(b.proto(), id).Error; err != nil {
		return fmt.Errorf("delete %s id=%d: %w", col, id, err)
	}
	return nil
}

// DeleteWhere batch-deletes every record matching the criteria and returns
// the number of rows removed. Unlike Fetch, errors are surfaced: deletion is
// a mutation and its callers compensate.
func (s *Store) DeleteWhere(ctx context.Context, col Collection, criteria string) (int64, error) {
	b, ok := bindings[col]
	if !ok {
		return 0, fmt.Errorf("delete %q: %w", col, ErrUnknownCollection)
	}
	cond, err := parseCriteria(criteria)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", col, err)
	}
	if cond == nil {
		return 0, fmt.Errorf("delete %s: empty criteria refused", col)
	}
	q := s.db.WithContext(ctx)
	if b.category != "" {
		q = q.Where("category = ?", b.category)
	}
	res := q.Where(fmt.Sprintf("%s = ?", cond.column), cond.value).Delete(b.proto())
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s where %q: %w", col, criteria, res.Error)
	}
	return res.RowsAffected, nil
}

// Transaction runs fn against a transaction-scoped Store, committing when fn
// returns nil and rolling back otherwise.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
