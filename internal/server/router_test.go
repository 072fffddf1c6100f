package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmcsuite/quotebuilder/internal/catalog"
	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/provider"
	"github.com/dmcsuite/quotebuilder/internal/records"
	"github.com/dmcsuite/quotebuilder/internal/timeline"
)

type noopSearcher struct{}

func (noopSearcher) SearchHotels(context.Context, provider.HotelQuery) ([]provider.Result, error) {
	return nil, nil
}

func (noopSearcher) SearchActivities(context.Context, provider.ActivityQuery) ([]provider.Result, error) {
	return nil, nil
}

func (noopSearcher) SearchTransfers(context.Context, provider.TransferQuery) ([]provider.Result, error) {
	return nil, nil
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.Quote{}, &models.QuoteDay{}, &models.QuoteItem{}, &models.CatalogEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := records.New(db)
	notifier := notify.NewQueue(10)
	return New(Deps{
		DB:        db,
		Store:     store,
		Timelines: timeline.NewManager(store, notifier),
		Catalog:   catalog.New(store),
		Searcher:  noopSearcher{},
		Notifier:  notifier,
		Confirmer: notify.NewConfirmer(time.Minute),
	})
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	for _, path := range []string{"/health", "/healthz"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestMethodDispatch(t *testing.T) {
	h := newTestHandler(t)

	// quote creation is POST only
	r := httptest.NewRequest(http.MethodPut, "/api/quotes", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(`{"client_ref":"x"}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", w.Code, w.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestHandler(t)
	r := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
