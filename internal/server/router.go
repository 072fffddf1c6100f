package server

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/dmcsuite/quotebuilder/internal/catalog"
	"github.com/dmcsuite/quotebuilder/internal/handlers"
	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/provider"
	"github.com/dmcsuite/quotebuilder/internal/records"
	"github.com/dmcsuite/quotebuilder/internal/timeline"
)

// Deps carries the shared services the router wires into handlers. The
// caller owns construction so tests can swap in fakes.
type Deps struct {
	DB        *gorm.DB
	Store     *records.Store
	Timelines *timeline.Manager
	Catalog   *catalog.Service
	Searcher  provider.Searcher
	Notifier  *notify.Queue
	Confirmer *notify.Confirmer
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	qh := handlers.NewQuoteHandler(d.Store, d.Timelines)
	mux.HandleFunc("POST /api/quotes", qh.Create)
	mux.HandleFunc("GET /api/quotes/{id}", qh.Get)
	mux.HandleFunc("POST /api/quotes/{id}/save", qh.Save)
	mux.HandleFunc("POST /api/quotes/{id}/reconcile", qh.Reconcile)

	dh := handlers.NewDayHandler(d.Store, d.Timelines, d.Confirmer, d.Catalog)
	mux.HandleFunc("GET /api/quotes/{id}/days", dh.List)
	mux.HandleFunc("POST /api/quotes/{id}/days", dh.Create)
	mux.HandleFunc("POST /api/quotes/{id}/days/generate", dh.Generate)
	mux.HandleFunc("PATCH /api/days/{id}", dh.Update)
	mux.HandleFunc("DELETE /api/days/{id}", dh.Delete)
	mux.HandleFunc("POST /api/days/{id}/drop", dh.Drop)

	ih := handlers.NewItemHandler(d.Store, d.Timelines, d.Confirmer, d.Catalog)
	mux.HandleFunc("POST /api/quotes/{id}/items", ih.AddToLastDay)
	mux.HandleFunc("POST /api/days/{id}/items", ih.AddToDay)
	mux.HandleFunc("PATCH /api/items/{id}", ih.Update)
	mux.HandleFunc("DELETE /api/items/{id}", ih.Delete)
	mux.HandleFunc("POST /api/items/{id}/move", ih.Move)
	mux.HandleFunc("GET /api/items/preview", ih.Preview)

	ch := handlers.NewCatalogHandler(d.Catalog, d.Notifier)
	mux.HandleFunc("GET /api/catalog/{category}", ch.List)
	mux.HandleFunc("GET /api/catalog/{category}/search", ch.Search)
	mux.HandleFunc("POST /api/catalog/{category}", ch.Create)
	mux.HandleFunc("POST /api/catalog/{category}/import", ch.Import)

	sh := handlers.NewProviderHandler(d.Searcher, d.Notifier)
	mux.HandleFunc("POST /api/provider/search", sh.Search)

	nh := handlers.NewNotificationHandler(d.Notifier)
	mux.HandleFunc("GET /api/notifications", nh.List)

	cfh := handlers.NewConfirmHandler(d.Confirmer)
	mux.HandleFunc("POST /api/confirmations/{token}/cancel", cfh.Cancel)

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
