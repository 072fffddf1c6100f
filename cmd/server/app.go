package main

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/dmcsuite/quotebuilder/internal/catalog"
	"github.com/dmcsuite/quotebuilder/internal/config"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/provider"
	"github.com/dmcsuite/quotebuilder/internal/records"
	"github.com/dmcsuite/quotebuilder/internal/server"
	"github.com/dmcsuite/quotebuilder/internal/timeline"
)

const (
	notificationBuffer = 100
	confirmTTL         = 5 * time.Minute
)

// App bundles the wired application. Separate from main so end-to-end tests
// can stand up the full handler on an in-memory database.
type App struct {
	Handler   http.Handler
	Store     *records.Store
	Timelines *timeline.Manager
	Notifier  *notify.Queue
}

// NewApp wires the services onto a connected database and returns the
// ready-to-serve application.
func NewApp(conn *gorm.DB, cfg config.Config) *App {
	store := records.New(conn)
	notifier := notify.NewQueue(notificationBuffer)
	confirmer := notify.NewConfirmer(confirmTTL)
	timelines := timeline.NewManager(store, notifier)
	cat := catalog.New(store)
	searcher := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderAPISecret)

	handler := server.New(server.Deps{
		DB:        conn,
		Store:     store,
		Timelines: timelines,
		Catalog:   cat,
		Searcher:  searcher,
		Notifier:  notifier,
		Confirmer: confirmer,
	})
	return &App{
		Handler:   handler,
		Store:     store,
		Timelines: timelines,
		Notifier:  notifier,
	}
}
